package chat

import (
	"time"

	"salonchat_backend/internal/models"
)

// Message - единственная персистентная сущность ядра.
// Неизменяемая, кроме одностороннего перехода is_read false -> true.
// "Диалог" не хранится отдельной строкой: он выводится группировкой
// по неупорядоченной паре акторов.
type Message struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	SenderKind   models.ActorKind `gorm:"type:varchar(20);not null;index:idx_sender" json:"sender_kind"`
	SenderID     string           `gorm:"not null;index:idx_sender" json:"sender_id"`
	ReceiverKind models.ActorKind `gorm:"type:varchar(20);not null;index:idx_receiver" json:"receiver_kind"`
	ReceiverID   string           `gorm:"not null;index:idx_receiver" json:"receiver_id"`

	Body string `gorm:"type:text" json:"body"`

	// Переход только false -> true, обратно никогда (conditional UPDATE в репозитории)
	IsRead bool `gorm:"default:false;index:idx_receiver" json:"is_read"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Message) TableName() string {
	return "messages"
}

// Sender возвращает пару (kind, id) автора
func (m *Message) Sender() models.ActorRef {
	return models.ActorRef{Kind: m.SenderKind, ID: m.SenderID}
}

// Receiver возвращает пару (kind, id) получателя
func (m *Message) Receiver() models.ActorRef {
	return models.ActorRef{Kind: m.ReceiverKind, ID: m.ReceiverID}
}

// CounterpartOf возвращает вторую сторону переписки для актора.
// ok=false если актор вообще не участвует в сообщении.
func (m *Message) CounterpartOf(actor models.ActorRef) (models.ActorRef, bool) {
	switch {
	case m.Sender().Equal(actor):
		return m.Receiver(), true
	case m.Receiver().Equal(actor):
		return m.Sender(), true
	}
	return models.ActorRef{}, false
}
