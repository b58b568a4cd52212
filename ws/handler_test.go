package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonchat_backend/internal/auth"
	"salonchat_backend/internal/config"
	"salonchat_backend/internal/models"
	"salonchat_backend/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
}

// stubResolver знает ровно одного актора
type stubResolver struct {
	identity models.Identity
}

func (r *stubResolver) Resolve(ctx context.Context, kind models.ActorKind, id string) (*models.Identity, error) {
	if kind == r.identity.Kind && id == r.identity.ID {
		identity := r.identity
		return &identity, nil
	}
	return nil, apperrors.ErrActorNotFound(string(kind), id)
}

// stalledResolver имитирует зависший identity lookup:
// отвечает только когда контекст истекает
type stalledResolver struct{}

func (stalledResolver) Resolve(ctx context.Context, kind models.ActorKind, id string) (*models.Identity, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	manager := newTestManager()
	resolver := &stubResolver{identity: customerIdentity}
	handler := NewHandler(manager, nil, resolver, 10*time.Second, 16)

	router := gin.New()
	router.GET("/ws/connect", handler.ServeWS)
	return router
}

// Сценарий D на уровне транспорта: дефект аутентификации - отказ
// рукопожатия, сессия не создается
func TestServeWS_MissingTokenRejected(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/connect", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), EventAuthError)
	assert.Contains(t, w.Body.String(), "Missing credential")
}

func TestServeWS_BadTokenRejected(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/connect?token=not-a-jwt", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

// Токен валиден, но актор исчез из хранилища - тоже отказ
func TestServeWS_UnknownActorRejected(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	tokenStr, err := auth.GenerateToken("ghost", models.ActorKindStaff)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/connect?token="+tokenStr, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), EventAuthError)
	assert.Contains(t, w.Body.String(), "Unknown actor")
}

// Зависший identity lookup не держит рукопожатие дольше
// handshake_timeout: резолв обрывается по контексту, соединение
// отклоняется
func TestServeWS_StalledResolveBoundedByHandshakeTimeout(t *testing.T) {
	t.Parallel()

	manager := newTestManager()
	handler := NewHandler(manager, nil, stalledResolver{}, 20*time.Millisecond, 16)

	router := gin.New()
	router.GET("/ws/connect", handler.ServeWS)

	tokenStr, err := auth.GenerateToken("c1", models.ActorKindCustomer)
	require.NoError(t, err)

	start := time.Now()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/connect?token="+tokenStr, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), EventAuthError)
	assert.Less(t, time.Since(start), 2*time.Second)
}

// Аутентификация прошла, но запрос не websocket - падает уже апгрейд,
// а не авторизация
func TestServeWS_AuthenticatedNonUpgradeRequest(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	tokenStr, err := auth.GenerateToken(customerIdentity.ID, customerIdentity.Kind)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/connect?token="+tokenStr, nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
