package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonchat_backend/internal/config"
	"salonchat_backend/internal/models"
)

func init() {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
}

func TestToken_Roundtrip(t *testing.T) {
	t.Parallel()

	tokenStr, err := GenerateToken("c1", models.ActorKindCustomer)
	require.NoError(t, err)

	claims, err := ParseToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "c1", claims.ActorID)
	assert.Equal(t, models.ActorKindCustomer, claims.ActorKind)
}

// Сценарий D: подделанный/просроченный токен - всегда отказ,
// частично аутентифицированной сессии не бывает
func TestToken_TamperedRejected(t *testing.T) {
	t.Parallel()

	tokenStr, err := GenerateToken("c1", models.ActorKindCustomer)
	require.NoError(t, err)

	tampered := tokenStr[:len(tokenStr)-4] + "xxxx"
	_, err = ParseToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_WrongSecretRejected(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		ActorID:   "c1",
		ActorKind: models.ActorKindCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_ExpiredRejected(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		ActorID:   "c1",
		ActorKind: models.ActorKindCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestToken_GarbageRejected(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := ParseToken(bad)
		assert.Error(t, err, "token %q must be rejected", bad)
	}
}

// Токен без вида актора или с неизвестным видом не принимается
func TestToken_InvalidClaimsRejected(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		ActorID:   "c1",
		ActorKind: models.ActorKind("robot"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
