package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"salonchat_backend/internal/models"
)

// registerCustomRules регистрирует кастомные функции валидации
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка регистрации правила - ошибка времени запуска,
			// приложение стартовать не должно
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'actorkind': вид актора из тройки customer/staff/admin
	mustRegister("actorkind", validateActorKind)
}

func validateActorKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения ловит 'required'
	}
	return models.ActorKind(value).Valid()
}
