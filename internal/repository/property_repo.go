package repository

import (
	"context"

	"gorm.io/gorm"

	"okulpazar/backend/internal/model"
)

// PropertyRepository institution property definitions and values
type PropertyRepository interface {
	GetActiveByID(ctx context.Context, id string) (*model.InstitutionProperty, error)
	// FindValue returns the value row for property within exactly one of campusID / schoolID
	FindValue(ctx context.Context, propertyID string, campusID, schoolID *string) (*model.InstitutionPropertyValue, error)
	SaveValue(ctx context.Context, value *model.InstitutionPropertyValue) error
	ListValues(ctx context.Context, campusID, schoolID *string) ([]model.InstitutionPropertyValue, error)
}

type propertyRepo struct {
	db *gorm.DB
}

// NewPropertyRepo creates a PropertyRepository
func NewPropertyRepo(db *gorm.DB) PropertyRepository {
	return &propertyRepo{db: db}
}

func (r *propertyRepo) GetActiveByID(ctx context.Context, id string) (*model.InstitutionProperty, error) {
	var p model.InstitutionProperty
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scopeValues(db *gorm.DB, campusID, schoolID *string) *gorm.DB {
	if campusID != nil {
		return db.Where("campus_id = ? AND school_id IS NULL", *campusID)
	}
	return db.Where("school_id = ? AND campus_id IS NULL", *schoolID)
}

func (r *propertyRepo) FindValue(ctx context.Context, propertyID string, campusID, schoolID *string) (*model.InstitutionPropertyValue, error) {
	var v model.InstitutionPropertyValue
	db := r.db.WithContext(ctx).Where("property_id = ?", propertyID)
	err := scopeValues(db, campusID, schoolID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *propertyRepo) SaveValue(ctx context.Context, value *model.InstitutionPropertyValue) error {
	if value.ValueID == "" {
		return r.db.WithContext(ctx).Create(value).Error
	}
	return r.db.WithContext(ctx).Save(value).Error
}

func (r *propertyRepo) ListValues(ctx context.Context, campusID, schoolID *string) ([]model.InstitutionPropertyValue, error) {
	var values []model.InstitutionPropertyValue
	db := r.db.WithContext(ctx).Preload("Property")
	err := scopeValues(db, campusID, schoolID).
		Order("created_at ASC").
		Find(&values).Error
	return values, err
}
