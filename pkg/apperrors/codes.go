package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные и неизвестные ошибки
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	CodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// Мессенджер
	CodeActorNotFound ErrorCode = "ACTOR_NOT_FOUND"
	CodeReadConflict  ErrorCode = "READ_CONFLICT"

	// Аутентификация и Авторизация
	CodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	CodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
	CodeInvalidToken         ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"
)
