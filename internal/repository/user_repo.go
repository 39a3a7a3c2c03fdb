package repository

import (
	"context"

	"gorm.io/gorm"

	"okulpazar/backend/internal/model"
)

// UserRepository user lookups
type UserRepository interface {
	GetActiveByID(ctx context.Context, id string) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a UserRepository
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetActiveByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", id, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ── UserInstitutionAccess ──

// AccessRepository explicit institution grants
type AccessRepository interface {
	ListActiveByUser(ctx context.Context, userID string) ([]model.UserInstitutionAccess, error)
}

type accessRepo struct {
	db *gorm.DB
}

// NewAccessRepo creates an AccessRepository
func NewAccessRepo(db *gorm.DB) AccessRepository {
	return &accessRepo{db: db}
}

func (r *accessRepo) ListActiveByUser(ctx context.Context, userID string) ([]model.UserInstitutionAccess, error) {
	var grants []model.UserInstitutionAccess
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&grants).Error
	return grants, err
}
