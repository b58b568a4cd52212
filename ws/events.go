package ws

import "encoding/json"

// IncomingWSMessage - входящий фрейм от клиента
type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Клиентские действия
const (
	ActionSendMessage       = "send_message"
	ActionMarkAsRead        = "mark_as_read"
	ActionTypingStart       = "typing_start"
	ActionTypingStop        = "typing_stop"
	ActionJoinConversation  = "join_conversation"
	ActionLeaveConversation = "leave_conversation"
)

// Event - исходящий фрейм сервера
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Серверные события
const (
	// ack отправителю: сообщение персистентно, внутри серверные id/created_at
	EventMessageSent = "message-sent"
	// живая доставка в персональную группу получателя
	EventNewMessage = "new-message"
	// отказ отправки (до персиста); после персиста сбои доставки не репортятся
	EventMessageError = "message-error"
	// уведомление автора (и других устройств читателя) о прочтении
	EventMessageRead = "message-read"

	EventUserTyping        = "user-typing"
	EventUserStoppedTyping = "user-stopped-typing"
	EventStatusUpdate      = "status-update"

	EventAuthError = "auth-error"
)

// ErrorPayload - тело message-error / auth-error
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusPayload - тело status-update (online/offline)
type StatusPayload struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Status string `json:"status"` // "online" | "offline"
}

// TypingPayload - тело user-typing / user-stopped-typing
type TypingPayload struct {
	SenderKind     string `json:"sender_kind"`
	SenderID       string `json:"sender_id"`
	SenderName     string `json:"sender_name,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}
