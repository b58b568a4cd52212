package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"salonchat_backend/internal/auth"
	"salonchat_backend/internal/logger"
	"salonchat_backend/internal/models"
)

// AuthMiddleware - middleware проверки JWT.
// Кладет пару (actorKind, actorID) в контекст запроса.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// Сохраняем claims в контекст
		c.Set("actorID", claims.ActorID)
		c.Set("actorKind", claims.ActorKind)
		c.Next()
	}
}

// extractToken достает bearer-токен из заголовка или из query
// (?token=... нужен websocket-клиентам, браузер не умеет заголовки на upgrade)
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// GetActor извлекает пару (kind, id) актора из контекста
func GetActor(c *gin.Context) (models.ActorRef, bool) {
	idVal, ok := c.Get("actorID")
	if !ok {
		return models.ActorRef{}, false
	}
	kindVal, ok := c.Get("actorKind")
	if !ok {
		return models.ActorRef{}, false
	}

	id, ok := idVal.(string)
	if !ok || id == "" {
		return models.ActorRef{}, false
	}
	kind, ok := kindVal.(models.ActorKind)
	if !ok || !kind.Valid() {
		return models.ActorRef{}, false
	}

	return models.ActorRef{Kind: kind, ID: id}, true
}

// RequestLogger - access-лог через общий логгер
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.HTTPLog(
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.Writer.Size(),
		)
	}
}
