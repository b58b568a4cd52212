package ws

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"salonchat_backend/internal/auth"
	"salonchat_backend/internal/logger"
	"salonchat_backend/internal/services"
	chat "salonchat_backend/internal/services/chat"
	"salonchat_backend/pkg/apperrors"
)

// Handler превращает анонимное входящее соединение в аутентифицированную
// адресуемую сессию: верификация токена -> резолв идентичности ->
// подписка на персональную группу.
type Handler struct {
	Manager     *Manager
	ChatService *chat.ChatService
	Resolver    services.IdentityResolver

	HandshakeTimeout time.Duration
	SendBuffer       int
}

func NewHandler(manager *Manager, chatService *chat.ChatService, resolver services.IdentityResolver, handshakeTimeout time.Duration, sendBuffer int) *Handler {
	return &Handler{
		Manager:          manager,
		ChatService:      chatService,
		Resolver:         resolver,
		HandshakeTimeout: handshakeTimeout,
		SendBuffer:       sendBuffer,
	}
}

// ServeWS - GET /ws/connect. Токен приходит в ?token= или в Authorization.
// Любой дефект аутентификации - отказ соединения без ретраев со стороны
// сервера; частично аутентифицированных сессий не бывает.
func (h *Handler) ServeWS(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.GetHeader("Authorization")
		tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if tokenStr == "" {
		h.rejectHandshake(c, nil, "Missing credential")
		return
	}

	claims, err := auth.ParseToken(tokenStr)
	if err != nil {
		h.rejectHandshake(c, err, "Invalid token")
		return
	}

	// Токен валиден, но актор мог исчезнуть - тоже отказ.
	// Резолв ограничен окном рукопожатия: зависший lookup не держит
	// полуоткрытую сессию дольше handshake_timeout.
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.HandshakeTimeout)
	defer cancel()
	identity, err := h.Resolver.Resolve(ctx, claims.ActorKind, claims.ActorID)
	if err != nil {
		h.rejectHandshake(c, err, "Unknown actor")
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: h.HandshakeTimeout,
		CheckOrigin: func(r *http.Request) bool {
			return true // проверка origin - забота внешнего слоя
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		Identity:    *identity,
		Conn:        conn,
		Send:        make(chan Event, h.SendBuffer),
		Manager:     h.Manager,
		ChatService: h.ChatService,
		groups:      make(map[string]bool),
	}

	h.Manager.register <- client

	go client.readPump()
	go client.writePump()
}

// rejectHandshake - единственный ответ на дефект аутентификации:
// один auth-error кадр, соединение не апгрейдится, ретраев нет
func (h *Handler) rejectHandshake(c *gin.Context, err error, message string) {
	appErr := apperrors.ErrAuthenticationFailed(err)
	appErr.Message = message
	logger.WSLog("handshake rejected: "+message, "", err)
	c.JSON(appErr.HTTPCode, Event{
		Event: EventAuthError,
		Data:  ErrorPayload{Code: string(appErr.Code), Message: appErr.Message},
	})
}
