package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"salonchat_backend/internal/config"
	"salonchat_backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims - полезная нагрузка токена: пара (actor_id, actor_kind).
// Сам выпуск токенов - зона ответственности auth-подсистемы,
// ядро мессенджера токены только проверяет.
type Claims struct {
	ActorID   string           `json:"actor_id"`
	ActorKind models.ActorKind `json:"actor_kind"`
	jwt.RegisteredClaims
}

func secret() []byte {
	if config.AppConfig != nil && config.AppConfig.JWT.Secret != "" {
		return []byte(config.AppConfig.JWT.Secret)
	}
	return []byte(os.Getenv("JWT_SECRET"))
}

func ttl() time.Duration {
	if config.AppConfig != nil && config.AppConfig.JWT.TTL > 0 {
		return time.Duration(config.AppConfig.JWT.TTL) * time.Minute
	}
	return 24 * time.Hour
}

// GenerateToken выпускает HS256-токен для актора
func GenerateToken(actorID string, kind models.ActorKind) (string, error) {
	now := time.Now()
	claims := &Claims{
		ActorID:   actorID,
		ActorKind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ParseToken проверяет подпись и срок токена и возвращает claims.
// Любой дефект токена - жесткий отказ, частично аутентифицированных
// сессий не бывает.
func ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret(), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ActorID == "" || !claims.ActorKind.Valid() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
