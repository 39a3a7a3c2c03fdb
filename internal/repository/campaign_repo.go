package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"okulpazar/backend/internal/model"
	pkgerrors "okulpazar/backend/pkg/errors"
)

// OpenUsageStatuses usages that block removing a school from a campaign
var OpenUsageStatuses = []string{model.UsageStatusPending, model.UsageStatusValidated, model.UsageStatusApproved}

// CampaignRepository campaign data access
type CampaignRepository interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetActiveByID(ctx context.Context, id string) (*model.Campaign, error)
	LockActiveByID(ctx context.Context, id string) (*model.Campaign, error)
	Update(ctx context.Context, c *model.Campaign) error
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsByPromoCode(ctx context.Context, code string) (bool, error)
	// GetByPromoCode case-insensitive
	GetByPromoCode(ctx context.Context, code string) (*model.Campaign, error)
	// IncrementUsage atomically bumps usage_count while it stays within
	// usage_limit; false when the limit was already reached
	IncrementUsage(ctx context.Context, id string) (bool, error)
}

type campaignRepo struct {
	db *gorm.DB
}

// NewCampaignRepo creates a CampaignRepository
func NewCampaignRepo(db *gorm.DB) CampaignRepository {
	return &campaignRepo{db: db}
}

func (r *campaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *campaignRepo) GetActiveByID(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND is_active = ?", id, true).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *campaignRepo) LockActiveByID(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("campaign_id = ? AND is_active = ?", id, true).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update writes mutable columns. usage_count is only ever changed by IncrementUsage.
func (r *campaignRepo) Update(ctx context.Context, c *model.Campaign) error {
	oldVersion := c.Version
	result := r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("campaign_id = ? AND version = ?", c.CampaignID, oldVersion).
		Updates(map[string]interface{}{
			"title":       c.Title,
			"description": c.Description,
			"status":      c.Status,
			"start_date":  c.StartDate,
			"end_date":    c.EndDate,
			"is_active":   c.IsActive,
			"updated_by":  c.UpdatedBy,
			"updated_at":  gorm.Expr("NOW()"),
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version = oldVersion + 1
	return nil
}

func (r *campaignRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&model.Campaign{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

func (r *campaignRepo) ExistsByPromoCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("LOWER(promo_code) = LOWER(?)", code).
		Count(&count).Error
	return count > 0, err
}

func (r *campaignRepo) GetByPromoCode(ctx context.Context, code string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.db.WithContext(ctx).
		Where("LOWER(promo_code) = LOWER(?)", code).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *campaignRepo) IncrementUsage(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("campaign_id = ?", id).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ── CampaignSchool ──

// CampaignSchoolRepository campaign ↔ school links
type CampaignSchoolRepository interface {
	Create(ctx context.Context, link *model.CampaignSchool) error
	// GetLink latest non-removed link for the pair
	GetLink(ctx context.Context, campaignID, schoolID string) (*model.CampaignSchool, error)
	Save(ctx context.Context, link *model.CampaignSchool) error
	ListByCampaign(ctx context.Context, campaignID string) ([]model.CampaignSchool, error)
}

type campaignSchoolRepo struct {
	db *gorm.DB
}

// NewCampaignSchoolRepo creates a CampaignSchoolRepository
func NewCampaignSchoolRepo(db *gorm.DB) CampaignSchoolRepository {
	return &campaignSchoolRepo{db: db}
}

func (r *campaignSchoolRepo) Create(ctx context.Context, link *model.CampaignSchool) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(link).Error
}

func (r *campaignSchoolRepo) GetLink(ctx context.Context, campaignID, schoolID string) (*model.CampaignSchool, error) {
	var link model.CampaignSchool
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND school_id = ? AND status <> ?", campaignID, schoolID, model.CampaignSchoolStatusRemoved).
		Order("created_at DESC").
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *campaignSchoolRepo) Save(ctx context.Context, link *model.CampaignSchool) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(link).Error
}

func (r *campaignSchoolRepo) ListByCampaign(ctx context.Context, campaignID string) ([]model.CampaignSchool, error) {
	var links []model.CampaignSchool
	err := r.db.WithContext(ctx).
		Preload("School").
		Where("campaign_id = ? AND status <> ?", campaignID, model.CampaignSchoolStatusRemoved).
		Order("display_priority DESC, created_at ASC").
		Find(&links).Error
	return links, err
}

// ── CampaignUsage ──

// CampaignUsageRepository campaign redemption data access
type CampaignUsageRepository interface {
	Create(ctx context.Context, u *model.CampaignUsage) error
	GetByID(ctx context.Context, id string) (*model.CampaignUsage, error)
	Save(ctx context.Context, u *model.CampaignUsage) error
	// CountByUser / CountBySchool exclude CANCELLED usages
	CountByUser(ctx context.Context, campaignID, userID string) (int64, error)
	CountBySchool(ctx context.Context, campaignID, schoolID string) (int64, error)
	CountOpenBySchool(ctx context.Context, campaignID, schoolID string) (int64, error)
	// ExpirePending cancels PENDING usages whose validation code expired before now
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type campaignUsageRepo struct {
	db *gorm.DB
}

// NewCampaignUsageRepo creates a CampaignUsageRepository
func NewCampaignUsageRepo(db *gorm.DB) CampaignUsageRepository {
	return &campaignUsageRepo{db: db}
}

func (r *campaignUsageRepo) Create(ctx context.Context, u *model.CampaignUsage) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *campaignUsageRepo) GetByID(ctx context.Context, id string) (*model.CampaignUsage, error) {
	var u model.CampaignUsage
	err := r.db.WithContext(ctx).
		Preload("Campaign").
		Where("usage_id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *campaignUsageRepo) Save(ctx context.Context, u *model.CampaignUsage) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error
}

func (r *campaignUsageRepo) CountByUser(ctx context.Context, campaignID, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CampaignUsage{}).
		Where("campaign_id = ? AND user_id = ? AND status <> ?", campaignID, userID, model.UsageStatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *campaignUsageRepo) CountBySchool(ctx context.Context, campaignID, schoolID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CampaignUsage{}).
		Where("campaign_id = ? AND school_id = ? AND status <> ?", campaignID, schoolID, model.UsageStatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *campaignUsageRepo) CountOpenBySchool(ctx context.Context, campaignID, schoolID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CampaignUsage{}).
		Where("campaign_id = ? AND school_id = ? AND status IN ?", campaignID, schoolID, OpenUsageStatuses).
		Count(&count).Error
	return count, err
}

func (r *campaignUsageRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CampaignUsage{}).
		Where("status = ? AND validation_expires_at < ?", model.UsageStatusPending, now).
		Updates(map[string]interface{}{
			"status":              model.UsageStatusCancelled,
			"cancelled_at":        now,
			"cancellation_reason": "Validation code expired",
			"updated_at":          now,
		})
	return result.RowsAffected, result.Error
}
