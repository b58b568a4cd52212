package ws

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"salonchat_backend/internal/logger"
	"salonchat_backend/internal/models"
	chat "salonchat_backend/internal/services/chat"
	"salonchat_backend/pkg/apperrors"
)

// Client - одно аутентифицированное соединение. Идентичность привязана
// на рукопожатии и не меняется; актор может держать сколько угодно
// таких соединений одновременно.
type Client struct {
	Identity models.Identity
	Conn     *websocket.Conn
	Send     chan Event

	Manager     *Manager
	ChatService *chat.ChatService

	// ключи групп, где состоит соединение; мутируется только под мьютексом менеджера
	groups map[string]bool
	// ставится менеджером перед close(Send); читается только под его мьютексом
	closed bool
}

func (c *Client) readPump() {
	defer func() {
		// Сорвавшееся соединение молча снимается со всех групп.
		// In-flight сообщения не откатываются - персист уже случился
		// до любого broadcast, дисконнект теряет только живую доставку.
		c.Manager.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			logger.WSLog("read", c.Identity.Ref().GroupKey(), err)
			break
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.WSLog("parse", c.Identity.Ref().GroupKey(), err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	for msg := range c.Send {
		if err := c.Conn.WriteJSON(msg); err != nil {
			logger.WSLog("write", c.Identity.Ref().GroupKey(), err)
			break
		}
	}
	c.Conn.Close()
}

// Централизованный обработчик действий клиента
func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {

	case ActionSendMessage:
		var payload struct {
			ReceiverKind models.ActorKind `json:"receiver_kind"`
			ReceiverID   string           `json:"receiver_id"`
			Body         string           `json:"body"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.sendError(apperrors.NewBadRequestError("Invalid send_message payload"))
			return
		}
		c.handleSend(payload.ReceiverKind, payload.ReceiverID, payload.Body)

	case ActionMarkAsRead:
		var payload struct {
			MessageID string `json:"message_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.sendError(apperrors.NewBadRequestError("Invalid mark_as_read payload"))
			return
		}
		c.handleMarkRead(payload.MessageID)

	case ActionTypingStart, ActionTypingStop:
		var payload struct {
			ReceiverKind   models.ActorKind `json:"receiver_kind"`
			ReceiverID     string           `json:"receiver_id"`
			ConversationID string           `json:"conversation_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return // эфемерный сигнал, терять можно
		}
		c.handleTyping(msg.Action, payload.ReceiverKind, payload.ReceiverID, payload.ConversationID)

	case ActionJoinConversation:
		var payload struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.ConversationID == "" {
			return
		}
		c.Manager.JoinConversation(c, payload.ConversationID)

	case ActionLeaveConversation:
		var payload struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.ConversationID == "" {
			return
		}
		c.Manager.LeaveConversation(c, payload.ConversationID)

	default:
		logger.WSLog("unhandled action: "+msg.Action, c.Identity.Ref().GroupKey(), nil)
	}
}

// handleSend - путь отправки: персист, ack отправителю, затем живой
// fan-out получателю. Broadcast строго после успешного append.
func (c *Client) handleSend(receiverKind models.ActorKind, receiverID, body string) {
	// У сокета нет request-контекста, персист живет своей жизнью
	sent, err := c.ChatService.SendMessage(context.Background(), c.Identity.Ref(), chat.SendMessageInput{
		ReceiverKind: receiverKind,
		ReceiverID:   receiverID,
		Body:         body,
	})
	if err != nil {
		// Отказ до персиста репортится синхронно и только отправителю
		c.sendError(err)
		return
	}

	// ack: клиент сверяет оптимистичный UI с серверными id/created_at.
	// Через менеджер, а не напрямую в канал: пока readPump стоял в
	// персисте, менеджер мог снять это же соединение за забитый буфер.
	c.Manager.sendToClient(c, Event{Event: EventMessageSent, Data: sent})

	// Получатель не подключен - событие просто не уходит, история
	// и unread уже durable в Message Store
	c.Manager.BroadcastToActor(sent.Message.Receiver(), Event{Event: EventNewMessage, Data: sent})
}

func (c *Client) handleMarkRead(messageID string) {
	message, flipped, err := c.ChatService.MarkRead(messageID, c.Identity.Ref())
	if err != nil {
		c.sendError(err)
		return
	}
	if !flipped {
		// Не получатель либо уже прочитано - безвредный no-op, событий нет
		logger.WSLog("mark_as_read: "+apperrors.ErrReadConflict.Error(), c.Identity.Ref().GroupKey(), nil)
		return
	}

	readEvent := Event{Event: EventMessageRead, Data: message}
	// Уведомляем автора...
	c.Manager.BroadcastToActor(message.Sender(), readEvent)
	// ...и остальные устройства читателя, чтобы read-state не расходился
	c.Manager.BroadcastToActor(message.Receiver(), readEvent)
}

// handleTyping - ретрансляция без персиста, без ack, без ретраев
func (c *Client) handleTyping(action string, receiverKind models.ActorKind, receiverID, conversationID string) {
	event := EventUserTyping
	if action == ActionTypingStop {
		event = EventUserStoppedTyping
	}

	payload := TypingPayload{
		SenderKind:     string(c.Identity.Kind),
		SenderID:       c.Identity.ID,
		SenderName:     c.Identity.DisplayName,
		ConversationID: conversationID,
	}

	if receiverID != "" && receiverKind.Valid() {
		c.Manager.BroadcastToActor(models.ActorRef{Kind: receiverKind, ID: receiverID}, Event{Event: event, Data: payload})
	}
	if conversationID != "" {
		c.Manager.BroadcastToGroup("conv:"+conversationID, Event{Event: event, Data: payload})
	}
}

func (c *Client) sendError(err error) {
	payload := ErrorPayload{Code: string(apperrors.CodeInternalError), Message: "Internal server error"}
	if appErr, ok := apperrors.AsAppError(err); ok {
		payload = ErrorPayload{Code: string(appErr.Code), Message: appErr.Message}
	}
	c.Manager.sendToClient(c, Event{Event: EventMessageError, Data: payload})
}
