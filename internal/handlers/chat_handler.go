package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonchat_backend/internal/dto"
	"salonchat_backend/internal/models"
	chat "salonchat_backend/internal/services/chat"
	"salonchat_backend/ws"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// ChatHandler - request/response поверхность поверх ChatService.
// Рассылка ws-событий у REST-зеркал та же, что у ws-действий.
type ChatHandler struct {
	*BaseHandler
	Chat    *chat.ChatService
	Manager *ws.Manager
}

func NewChatHandler(base *BaseHandler, chatService *chat.ChatService, manager *ws.Manager) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		Chat:        chatService,
		Manager:     manager,
	}
}

func (h *ChatHandler) RegisterRoutes(api *gin.RouterGroup) {
	messages := api.Group("/messages")
	{
		messages.POST("", h.SendMessage)
		messages.GET("/history", h.GetHistory)
		messages.GET("/unread-count", h.GetUnreadCount)
		messages.POST("/:id/read", h.MarkRead)
	}
	api.GET("/conversations", h.GetConversations)
}

// SendMessage - POST /api/v1/messages
// REST-путь для клиентов без открытого сокета; персист и живой fan-out
// идут тем же путем, что и ws-действие send_message.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	sent, err := h.Chat.SendMessage(c.Request.Context(), actor, chat.SendMessageInput{
		ReceiverKind: models.ActorKind(req.ReceiverKind),
		ReceiverID:   req.ReceiverID,
		Body:         req.Body,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	// Живая доставка после успешного персиста, как в ws-пути
	h.Manager.BroadcastToActor(sent.Message.Receiver(), ws.Event{Event: ws.EventNewMessage, Data: sent})

	c.JSON(http.StatusCreated, sent)
}

// GetHistory - GET /api/v1/messages/history?kind=&id=&limit=&offset=
// История с собеседником в обе стороны, по возрастанию (created_at, id)
func (h *ChatHandler) GetHistory(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var query dto.HistoryQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	counterpart := models.ActorRef{Kind: models.ActorKind(query.Kind), ID: query.ID}
	messages, err := h.Chat.History(actor, counterpart, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetUnreadCount - GET /api/v1/messages/unread-count
func (h *ChatHandler) GetUnreadCount(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	count, err := h.Chat.UnreadCount(actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{UnreadCount: count})
}

// MarkRead - POST /api/v1/messages/:id/read
// Идемпотентен: повторный вызов по прочитанному - 200 с already_read,
// message-read при этом второй раз не рассылается.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	messageID := c.Param("id")
	message, flipped, err := h.Chat.MarkRead(messageID, actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if flipped {
		readEvent := ws.Event{Event: ws.EventMessageRead, Data: message}
		h.Manager.BroadcastToActor(message.Sender(), readEvent)
		h.Manager.BroadcastToActor(message.Receiver(), readEvent)
	}

	c.JSON(http.StatusOK, dto.MarkReadResponse{
		MessageID:   message.ID,
		IsRead:      message.IsRead,
		AlreadyRead: !flipped,
	})
}

// GetConversations - GET /api/v1/conversations
// Список собеседников с последним сообщением и unread; пересчет на каждый вызов
func (h *ChatHandler) GetConversations(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	conversations, err := h.Chat.Conversations(c.Request.Context(), actor)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}
