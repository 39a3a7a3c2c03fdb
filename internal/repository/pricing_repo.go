package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"okulpazar/backend/internal/model"
)

// OpenPricingStatuses price lists still in the approval workflow
var OpenPricingStatuses = []string{model.PricingStatusDraft, model.PricingStatusPendingApproval}

// PricingRepository school pricing data access
type PricingRepository interface {
	Create(ctx context.Context, p *model.SchoolPricing) error
	GetActiveByID(ctx context.Context, id string) (*model.SchoolPricing, error)
	Save(ctx context.Context, p *model.SchoolPricing) error
	// ExistsOpen a DRAFT or PENDING_APPROVAL pricing for the key. The live
	// ACTIVE row does not count, a replacement draft may sit beside it.
	ExistsOpen(ctx context.Context, schoolID, academicYear, gradeLevel string) (bool, error)
	GetCurrent(ctx context.Context, schoolID, gradeLevel, academicYear string) (*model.SchoolPricing, error)
	// DeactivateOtherCurrent supersedes every other current ACTIVE row of the key
	DeactivateOtherCurrent(ctx context.Context, keepID, schoolID, gradeLevel, academicYear string) error
	ListBySchool(ctx context.Context, schoolID string) ([]model.SchoolPricing, error)
}

type pricingRepo struct {
	db *gorm.DB
}

// NewPricingRepo creates a PricingRepository
func NewPricingRepo(db *gorm.DB) PricingRepository {
	return &pricingRepo{db: db}
}

func (r *pricingRepo) Create(ctx context.Context, p *model.SchoolPricing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *pricingRepo) GetActiveByID(ctx context.Context, id string) (*model.SchoolPricing, error) {
	var p model.SchoolPricing
	err := r.db.WithContext(ctx).
		Preload("School").Preload("School.Campus").
		Where("pricing_id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pricingRepo) Save(ctx context.Context, p *model.SchoolPricing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *pricingRepo) ExistsOpen(ctx context.Context, schoolID, academicYear, gradeLevel string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.SchoolPricing{}).
		Where("school_id = ? AND academic_year = ? AND grade_level = ?", schoolID, academicYear, gradeLevel).
		Where("is_active = ? AND status IN ?", true, OpenPricingStatuses).
		Count(&count).Error
	return count > 0, err
}

func (r *pricingRepo) GetCurrent(ctx context.Context, schoolID, gradeLevel, academicYear string) (*model.SchoolPricing, error) {
	var p model.SchoolPricing
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND grade_level = ? AND academic_year = ?", schoolID, gradeLevel, academicYear).
		Where("is_current = ? AND is_active = ? AND status = ?", true, true, model.PricingStatusActive).
		Order("version DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pricingRepo) DeactivateOtherCurrent(ctx context.Context, keepID, schoolID, gradeLevel, academicYear string) error {
	return r.db.WithContext(ctx).
		Model(&model.SchoolPricing{}).
		Where("school_id = ? AND grade_level = ? AND academic_year = ?", schoolID, gradeLevel, academicYear).
		Where("pricing_id <> ? AND is_current = ? AND status = ?", keepID, true, model.PricingStatusActive).
		Updates(map[string]interface{}{
			"is_current": false,
			"status":     model.PricingStatusInactive,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *pricingRepo) ListBySchool(ctx context.Context, schoolID string) ([]model.SchoolPricing, error) {
	var list []model.SchoolPricing
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND is_active = ?", schoolID, true).
		Order("academic_year DESC, grade_level ASC").
		Find(&list).Error
	return list, err
}

// ── CustomFee ──

// CustomFeeRepository custom fee data access
type CustomFeeRepository interface {
	Create(ctx context.Context, fee *model.CustomFee) error
	ExistsByName(ctx context.Context, pricingID, name string) (bool, error)
	ListByPricing(ctx context.Context, pricingID string) ([]model.CustomFee, error)
}

type customFeeRepo struct {
	db *gorm.DB
}

// NewCustomFeeRepo creates a CustomFeeRepository
func NewCustomFeeRepo(db *gorm.DB) CustomFeeRepository {
	return &customFeeRepo{db: db}
}

func (r *customFeeRepo) Create(ctx context.Context, fee *model.CustomFee) error {
	return r.db.WithContext(ctx).Create(fee).Error
}

func (r *customFeeRepo) ExistsByName(ctx context.Context, pricingID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CustomFee{}).
		Where("pricing_id = ? AND LOWER(name) = LOWER(?)", pricingID, name).
		Count(&count).Error
	return count > 0, err
}

func (r *customFeeRepo) ListByPricing(ctx context.Context, pricingID string) ([]model.CustomFee, error) {
	var fees []model.CustomFee
	err := r.db.WithContext(ctx).
		Where("pricing_id = ? AND status = ?", pricingID, model.FeeStatusActive).
		Order("created_at ASC").
		Find(&fees).Error
	return fees, err
}

// ── PriceHistory ──

// PriceHistoryRepository append-only price change log
type PriceHistoryRepository interface {
	CreateBatch(ctx context.Context, rows []model.PriceHistory) error
	ListByPricing(ctx context.Context, pricingID string) ([]model.PriceHistory, error)
}

type priceHistoryRepo struct {
	db *gorm.DB
}

// NewPriceHistoryRepo creates a PriceHistoryRepository
func NewPriceHistoryRepo(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepo{db: db}
}

func (r *priceHistoryRepo) CreateBatch(ctx context.Context, rows []model.PriceHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *priceHistoryRepo) ListByPricing(ctx context.Context, pricingID string) ([]model.PriceHistory, error) {
	var rows []model.PriceHistory
	err := r.db.WithContext(ctx).
		Where("pricing_id = ?", pricingID).
		Order("changed_at DESC").
		Find(&rows).Error
	return rows, err
}
