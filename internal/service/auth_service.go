package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
)

var (
	ErrRevocationUnavailable = pkgerrors.Business("Token revocation is unavailable")
	ErrUserNotFound          = pkgerrors.NotFound("User not found")
)

// TokenRevoker persists revoked token ids; satisfied by *redis.Client
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService session operations
type AuthService interface {
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, actor *access.Actor) (*dto.MeResponse, error)
}

type authService struct {
	repo    *repository.Repository
	revoker TokenRevoker
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService revoker may be nil when redis is down
func NewAuthService(repo *repository.Repository, revoker TokenRevoker, logger *zap.Logger) AuthService {
	return &authService{
		repo:    repo,
		revoker: revoker,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return pkgerrors.Validation("Token has no id")
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if s.revoker == nil {
		return ErrRevocationUnavailable
	}
	if err := s.revoker.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("blacklist token failed", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, actor *access.Actor) (*dto.MeResponse, error) {
	if actor == nil {
		return nil, pkgerrors.Forbidden("Authentication required")
	}
	user, err := s.repo.User.GetActiveByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("get user failed", zap.String("id", actor.UserID), zap.Error(err))
		return nil, err
	}
	return &dto.MeResponse{
		UserID:    user.UserID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		RoleLevel: user.RoleLevel,
		BrandIDs:  nonNil(actor.BrandIDs),
		CampusIDs: nonNil(actor.CampusIDs),
		SchoolIDs: nonNil(actor.SchoolIDs),
	}, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
