package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Campaign types
const (
	CampaignTypeEnrollment   = "ENROLLMENT"
	CampaignTypeEarlyBird    = "EARLY_BIRD"
	CampaignTypeSibling      = "SIBLING"
	CampaignTypeSeasonal     = "SEASONAL"
	CampaignTypeScholarship  = "SCHOLARSHIP"
	CampaignTypeReferral     = "REFERRAL"
	CampaignTypeLimitedOffer = "LIMITED_OFFER"
)

// Discount types
const (
	DiscountTypePercentage  = "PERCENTAGE"
	DiscountTypeFixedAmount = "FIXED_AMOUNT"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "DRAFT"
	CampaignStatusActive    = "ACTIVE"
	CampaignStatusPaused    = "PAUSED"
	CampaignStatusCancelled = "CANCELLED"
	CampaignStatusCompleted = "COMPLETED"
)

// Campaign campaigns
type Campaign struct {
	CampaignID                  string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"campaign_id"`
	Title                       string           `gorm:"type:varchar(200);not null"                     json:"title"`
	Slug                        string           `gorm:"type:varchar(160);not null;uniqueIndex"         json:"slug"`
	Description                 string           `gorm:"type:text"                                      json:"description,omitempty"`
	CampaignType                string           `gorm:"type:varchar(30);not null"                      json:"campaign_type"`
	DiscountType                string           `gorm:"type:varchar(20);not null"                      json:"discount_type"`
	DiscountAmount              *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"discount_amount,omitempty"`
	DiscountPercentage          *decimal.Decimal `gorm:"type:numeric(5,2)"                              json:"discount_percentage,omitempty"`
	MaxDiscountAmount           *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"max_discount_amount,omitempty"`
	MinPurchaseAmount           *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"min_purchase_amount,omitempty"`
	StartDate                   time.Time        `gorm:"not null"                                       json:"start_date"`
	EndDate                     time.Time        `gorm:"not null"                                       json:"end_date"`
	EarlyBirdEndDate            *time.Time       `                                                      json:"early_bird_end_date,omitempty"`
	EarlyBirdDiscountPercentage *decimal.Decimal `gorm:"type:numeric(5,2)"                              json:"early_bird_discount_percentage,omitempty"`
	UsageLimit                  *int             `                                                      json:"usage_limit,omitempty"`
	PerUserLimit                *int             `                                                      json:"per_user_limit,omitempty"`
	PerSchoolLimit              *int             `                                                      json:"per_school_limit,omitempty"`
	UsageCount                  int              `gorm:"not null;default:0"                             json:"usage_count"`
	PromoCode                   *string          `gorm:"type:varchar(50)"                               json:"promo_code,omitempty"`
	TargetGrades                datatypes.JSON   `gorm:"type:jsonb"                                     json:"target_grades,omitempty"`
	Status                      string           `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	BrandID                     *string          `gorm:"type:uuid"                                      json:"brand_id,omitempty"`
	CampusID                    *string          `gorm:"type:uuid"                                      json:"campus_id,omitempty"`
	IsActive                    bool             `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

func (Campaign) TableName() string { return "campaigns" }

// RunsAt reports whether t falls inside the campaign window
func (c *Campaign) RunsAt(t time.Time) bool {
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}

// Campaign-school link statuses
const (
	CampaignSchoolStatusActive  = "ACTIVE"
	CampaignSchoolStatusPaused  = "PAUSED"
	CampaignSchoolStatusRemoved = "REMOVED"
)

// CampaignSchool campaign_schools: per-school participation and overrides
type CampaignSchool struct {
	CampaignSchoolID         string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"campaign_school_id"`
	CampaignID               string           `gorm:"type:uuid;not null;index"                       json:"campaign_id"`
	SchoolID                 string           `gorm:"type:uuid;not null;index"                       json:"school_id"`
	Status                   string           `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"`
	CustomDiscountPercentage *decimal.Decimal `gorm:"type:numeric(5,2)"                              json:"custom_discount_percentage,omitempty"`
	CustomDiscountAmount     *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"custom_discount_amount,omitempty"`
	CustomUsageLimit         *int             `                                                      json:"custom_usage_limit,omitempty"`
	CustomStartDate          *time.Time       `                                                      json:"custom_start_date,omitempty"`
	CustomEndDate            *time.Time       `                                                      json:"custom_end_date,omitempty"`
	IsFeatured               bool             `gorm:"not null;default:false"                         json:"is_featured"`
	DisplayPriority          int              `gorm:"not null;default:0"                             json:"display_priority"`
	BaseModel

	School *School `gorm:"foreignKey:SchoolID;references:SchoolID" json:"school,omitempty"`
}

func (CampaignSchool) TableName() string { return "campaign_schools" }

// Usage types
const (
	UsageTypeEnrollment   = "ENROLLMENT"
	UsageTypeApplication  = "APPLICATION"
	UsageTypeRegistration = "REGISTRATION"
)

// Usage statuses
const (
	UsageStatusPending   = "PENDING"
	UsageStatusValidated = "VALIDATED"
	UsageStatusApproved  = "APPROVED"
	UsageStatusCancelled = "CANCELLED"
)

// CampaignUsage campaign_usages: one redemption
type CampaignUsage struct {
	UsageID             string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"usage_id"`
	CampaignID          string          `gorm:"type:uuid;not null;index"                       json:"campaign_id"`
	SchoolID            string          `gorm:"type:uuid;not null;index"                       json:"school_id"`
	UserID              string          `gorm:"type:uuid;not null;index"                       json:"user_id"`
	UsageType           string          `gorm:"type:varchar(20);not null"                      json:"usage_type"`
	OriginalAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"original_amount"`
	DiscountAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"discount_amount"`
	FinalAmount         decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"final_amount"`
	PromoCodeUsed       *string         `gorm:"type:varchar(50)"                               json:"promo_code_used,omitempty"`
	StudentName         string          `gorm:"type:varchar(100)"                              json:"student_name,omitempty"`
	GradeLevel          string          `gorm:"type:varchar(30)"                               json:"grade_level,omitempty"`
	Status              string          `gorm:"type:varchar(20);not null;default:'PENDING'"    json:"status"`
	ValidationCode      string          `gorm:"type:varchar(12);not null"                      json:"validation_code"`
	ValidationExpiresAt time.Time       `gorm:"not null"                                       json:"validation_expires_at"`
	ValidatedAt         *time.Time      `                                                      json:"validated_at,omitempty"`
	ApprovedAt          *time.Time      `                                                      json:"approved_at,omitempty"`
	ApprovedBy          *string         `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	CancelledAt         *time.Time      `                                                      json:"cancelled_at,omitempty"`
	CancellationReason  string          `gorm:"type:varchar(500)"                              json:"cancellation_reason,omitempty"`
	BaseModel

	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:CampaignID" json:"campaign,omitempty"`
}

func (CampaignUsage) TableName() string { return "campaign_usages" }
