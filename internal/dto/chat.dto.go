package dto

// SendMessageRequest - тело POST /api/v1/messages
// (REST-зеркало ws-действия send_message)
type SendMessageRequest struct {
	ReceiverKind string `json:"receiver_kind" binding:"required" validate:"required,actorkind"`
	ReceiverID   string `json:"receiver_id" binding:"required" validate:"required"`
	Body         string `json:"body" binding:"required" validate:"required"`
}

// HistoryQuery - параметры GET /api/v1/messages/history
// kind/id задают собеседника; limit ограничен в хендлере 1..100
type HistoryQuery struct {
	Kind   string `form:"kind" validate:"required,actorkind"`
	ID     string `form:"id" validate:"required"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// UnreadCountResponse - ответ GET /api/v1/messages/unread-count
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// MarkReadResponse - ответ POST /api/v1/messages/:id/read.
// already_read=true - идемпотентный повтор, не ошибка.
type MarkReadResponse struct {
	MessageID   string `json:"message_id"`
	IsRead      bool   `json:"is_read"`
	AlreadyRead bool   `json:"already_read"`
}
