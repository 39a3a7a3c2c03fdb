package repository

import (
	"context"

	"gorm.io/gorm"

	"okulpazar/backend/internal/model"
)

// InstitutionRepository Brand → Campus → School lookups
type InstitutionRepository interface {
	GetActiveSchool(ctx context.Context, id string) (*model.School, error)
	// GetBookableSchool resolves an active school whose campus is subscribed
	GetBookableSchool(ctx context.Context, id string) (*model.School, error)
	GetPublicSchoolBySlug(ctx context.Context, slug string) (*model.School, error)
	GetActiveCampus(ctx context.Context, id string) (*model.Campus, error)
	ListCampusIDsByBrands(ctx context.Context, brandIDs []string) ([]string, error)
	ListSchoolIDsByCampuses(ctx context.Context, campusIDs []string) ([]string, error)
}

type institutionRepo struct {
	db *gorm.DB
}

// NewInstitutionRepo creates an InstitutionRepository
func NewInstitutionRepo(db *gorm.DB) InstitutionRepository {
	return &institutionRepo{db: db}
}

func (r *institutionRepo) GetActiveSchool(ctx context.Context, id string) (*model.School, error) {
	var school model.School
	err := r.db.WithContext(ctx).
		Preload("Campus").
		Where("school_id = ? AND is_active = ?", id, true).
		First(&school).Error
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *institutionRepo) subscribed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Campus").
		Joins("JOIN campuses ON campuses.campus_id = schools.campus_id").
		Where("schools.is_active = ? AND campuses.is_active = ? AND campuses.is_subscribed = ?", true, true, true).
		Where("campuses.deleted_at IS NULL")
}

func (r *institutionRepo) GetBookableSchool(ctx context.Context, id string) (*model.School, error) {
	var school model.School
	err := r.subscribed(ctx).
		Where("schools.school_id = ?", id).
		First(&school).Error
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *institutionRepo) GetPublicSchoolBySlug(ctx context.Context, slug string) (*model.School, error) {
	var school model.School
	err := r.subscribed(ctx).
		Where("schools.slug = ?", slug).
		First(&school).Error
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (r *institutionRepo) GetActiveCampus(ctx context.Context, id string) (*model.Campus, error) {
	var campus model.Campus
	err := r.db.WithContext(ctx).
		Where("campus_id = ? AND is_active = ?", id, true).
		First(&campus).Error
	if err != nil {
		return nil, err
	}
	return &campus, nil
}

func (r *institutionRepo) ListCampusIDsByBrands(ctx context.Context, brandIDs []string) ([]string, error) {
	var ids []string
	if len(brandIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Campus{}).
		Where("brand_id IN ? AND is_active = ?", brandIDs, true).
		Pluck("campus_id", &ids).Error
	return ids, err
}

func (r *institutionRepo) ListSchoolIDsByCampuses(ctx context.Context, campusIDs []string) ([]string, error) {
	var ids []string
	if len(campusIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.School{}).
		Where("campus_id IN ? AND is_active = ?", campusIDs, true).
		Pluck("school_id", &ids).Error
	return ids, err
}
