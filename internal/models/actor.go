package models

import "fmt"

// ActorKind - вид аккаунта, способного участвовать в переписке.
// Каждый вид живет в своей таблице со своей формой ключа
// (customers/staff - uuid, admins - числовой autoincrement).
type ActorKind string

const (
	ActorKindCustomer ActorKind = "customer"
	ActorKindStaff    ActorKind = "staff"
	ActorKindAdmin    ActorKind = "admin"
)

// Valid проверяет, что вид актора известен ядру
func (k ActorKind) Valid() bool {
	switch k {
	case ActorKindCustomer, ActorKindStaff, ActorKindAdmin:
		return true
	}
	return false
}

// ActorRef - tagged union (kind, id). Ядро мессенджера никогда не
// предполагает единый тип ключа: id хранится как непрозрачная строка,
// конкретную форму ключа знает только репозиторий соответствующей таблицы.
type ActorRef struct {
	Kind ActorKind `json:"kind"`
	ID   string    `json:"id"`
}

// GroupKey - ключ персональной группы актора в ws.Manager
func (a ActorRef) GroupKey() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.ID)
}

// Equal - сравнение пар (kind, id)
func (a ActorRef) Equal(b ActorRef) bool {
	return a.Kind == b.Kind && a.ID == b.ID
}

func (a ActorRef) String() string {
	return a.GroupKey()
}

// Identity - минимальная публичная идентичность актора,
// результат резолва через IdentityService
type Identity struct {
	ID          string    `json:"id"`
	Kind        ActorKind `json:"kind"`
	DisplayName string    `json:"display_name"`
}

// Ref возвращает пару (kind, id) идентичности
func (i Identity) Ref() ActorRef {
	return ActorRef{Kind: i.Kind, ID: i.ID}
}
