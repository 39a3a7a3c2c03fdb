package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
)

var ErrActorInactive = pkgerrors.Forbidden("User account is inactive")

// ActorService turns an authenticated user id into an access.Actor
type ActorService interface {
	Load(ctx context.Context, userID string) (*access.Actor, error)
}

type actorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewActorService creates an ActorService
func NewActorService(repo *repository.Repository, logger *zap.Logger) ActorService {
	return &actorService{repo: repo, logger: logger}
}

func (s *actorService) Load(ctx context.Context, userID string) (*access.Actor, error) {
	user, err := s.repo.User.GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActorInactive
		}
		s.logger.Error("load actor user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	actor := &access.Actor{UserID: user.UserID, Role: user.Role, RoleLevel: user.RoleLevel}
	if actor.IsSystem() || actor.IsParent() {
		return actor, nil
	}

	grants, err := s.repo.Access.ListActiveByUser(ctx, userID)
	if err != nil {
		s.logger.Error("load institution grants failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	var schoolIDs []string
	for _, g := range grants {
		switch g.AccessType {
		case model.AccessTypeBrand:
			actor.BrandIDs = append(actor.BrandIDs, g.EntityID)
		case model.AccessTypeCampus:
			actor.CampusIDs = append(actor.CampusIDs, g.EntityID)
		case model.AccessTypeSchool:
			schoolIDs = append(schoolIDs, g.EntityID)
		}
	}

	// brand → campuses → schools
	brandCampuses, err := s.repo.Institution.ListCampusIDsByBrands(ctx, actor.BrandIDs)
	if err != nil {
		return nil, err
	}
	actor.CampusIDs = dedupe(append(actor.CampusIDs, brandCampuses...))

	campusSchools, err := s.repo.Institution.ListSchoolIDsByCampuses(ctx, actor.CampusIDs)
	if err != nil {
		return nil, err
	}
	actor.SchoolIDs = dedupe(append(schoolIDs, campusSchools...))

	return actor, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
