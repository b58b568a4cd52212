package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonchat_backend/internal/handlers"
	"salonchat_backend/internal/logger"
	"salonchat_backend/internal/middleware"
	"salonchat_backend/ws"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	chatHandler *handlers.ChatHandler,
	wsHandler *ws.Handler,
) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// HTTP API v1 (query-поверхность, только авторизованные акторы)
	api := ginRouter.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())
	{
		chatHandler.RegisterRoutes(api)
	}

	// WebSocket: аутентификация происходит внутри рукопожатия,
	// токен приходит query-параметром
	wsGroup := ginRouter.Group("/ws")
	{
		wsGroup.GET("/connect", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws/connect registered")
}
