package services

import (
	"context"
	"errors"

	"salonchat_backend/internal/models"
	"salonchat_backend/internal/repositories"
	"salonchat_backend/pkg/apperrors"
)

// IdentityResolver - контракт резолвера: (kind, id) -> Identity | ActorNotFound.
// Интерфейс, чтобы ws-слой и чат-сервис можно было тестировать без БД.
// Контекст ограничивает lookup: на ws-рукопожатии им управляет
// handshake_timeout.
type IdentityResolver interface {
	Resolve(ctx context.Context, kind models.ActorKind, id string) (*models.Identity, error)
}

type IdentityService struct {
	repo *repositories.IdentityRepository
}

func NewIdentityService(repo *repositories.IdentityRepository) *IdentityService {
	return &IdentityService{repo: repo}
}

// Resolve подтверждает существование актора и возвращает публичную
// идентичность. Несуществующий id - жесткий отказ ActorNotFound,
// никаких тихих фолбэков у вызывающих.
func (s *IdentityService) Resolve(ctx context.Context, kind models.ActorKind, id string) (*models.Identity, error) {
	if !kind.Valid() || id == "" {
		return nil, apperrors.ErrActorNotFound(string(kind), id)
	}

	identity, err := s.repo.Find(ctx, kind, id)
	if err != nil {
		if errors.Is(err, repositories.ErrIdentityNotFound) {
			return nil, apperrors.ErrActorNotFound(string(kind), id)
		}
		return nil, apperrors.InternalError(err)
	}

	return identity, nil
}
