package repositories

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"salonchat_backend/internal/models"
)

var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRepository - read-only lookups по трем таблицам идентичности.
// Единственное место, которое знает форму ключа каждой таблицы;
// наружу id всегда ходит строкой.
type IdentityRepository struct {
	DB *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) *IdentityRepository {
	return &IdentityRepository{DB: db}
}

// Find ищет актора в таблице его вида и возвращает минимальную
// публичную идентичность {id, kind, displayName}
func (r *IdentityRepository) Find(ctx context.Context, kind models.ActorKind, id string) (*models.Identity, error) {
	switch kind {
	case models.ActorKindCustomer:
		return r.findCustomer(ctx, id)
	case models.ActorKindStaff:
		return r.findStaff(ctx, id)
	case models.ActorKindAdmin:
		return r.findAdmin(ctx, id)
	}
	return nil, ErrIdentityNotFound
}

func (r *IdentityRepository) findCustomer(ctx context.Context, id string) (*models.Identity, error) {
	var customer models.Customer
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &models.Identity{
		ID:          customer.ID,
		Kind:        models.ActorKindCustomer,
		DisplayName: customer.Name,
	}, nil
}

func (r *IdentityRepository) findStaff(ctx context.Context, id string) (*models.Identity, error) {
	var staff models.Staff
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &models.Identity{
		ID:          staff.ID,
		Kind:        models.ActorKindStaff,
		DisplayName: staff.Name,
	}, nil
}

func (r *IdentityRepository) findAdmin(ctx context.Context, id string) (*models.Identity, error) {
	// admins - числовой ключ, строка парсится здесь и только здесь
	numericID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	var admin models.Admin
	err = r.DB.WithContext(ctx).Where("id = ?", numericID).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &models.Identity{
		ID:          strconv.FormatUint(uint64(admin.ID), 10),
		Kind:        models.ActorKindAdmin,
		DisplayName: admin.Name,
	}, nil
}
