package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Campaign ──

// CreateCampaignRequest create a campaign, optionally assigning schools
type CreateCampaignRequest struct {
	Title                       string           `json:"title"                          binding:"required,min=3,max=200"`
	Description                 string           `json:"description"                    binding:"omitempty,max=5000"`
	CampaignType                string           `json:"campaign_type"                  binding:"required"`
	DiscountType                string           `json:"discount_type"                  binding:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	DiscountAmount              *decimal.Decimal `json:"discount_amount"`
	DiscountPercentage          *decimal.Decimal `json:"discount_percentage"`
	MaxDiscountAmount           *decimal.Decimal `json:"max_discount_amount"`
	MinPurchaseAmount           *decimal.Decimal `json:"min_purchase_amount"`
	StartDate                   time.Time        `json:"start_date"                     binding:"required"`
	EndDate                     time.Time        `json:"end_date"                       binding:"required"`
	EarlyBirdEndDate            *time.Time       `json:"early_bird_end_date"`
	EarlyBirdDiscountPercentage *decimal.Decimal `json:"early_bird_discount_percentage"`
	UsageLimit                  *int             `json:"usage_limit"                    binding:"omitempty,min=1"`
	PerUserLimit                *int             `json:"per_user_limit"                 binding:"omitempty,min=1"`
	PerSchoolLimit              *int             `json:"per_school_limit"               binding:"omitempty,min=1"`
	PromoCode                   string           `json:"promo_code"                     binding:"omitempty,max=50"`
	TargetGrades                []string         `json:"target_grades"`
	BrandID                     *string          `json:"brand_id"                       binding:"omitempty,uuid"`
	CampusID                    *string          `json:"campus_id"                      binding:"omitempty,uuid"`
	SchoolIDs                   []string         `json:"school_ids"`
}

// UpdateCampaignStatusRequest status transition
type UpdateCampaignStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT ACTIVE PAUSED CANCELLED COMPLETED"`
}

// CampaignResponse campaign view
type CampaignResponse struct {
	ID                 string                  `json:"id"`
	Title              string                  `json:"title"`
	Slug               string                  `json:"slug"`
	Description        string                  `json:"description,omitempty"`
	CampaignType       string                  `json:"campaign_type"`
	DiscountType       string                  `json:"discount_type"`
	DiscountAmount     *decimal.Decimal        `json:"discount_amount,omitempty"`
	DiscountPercentage *decimal.Decimal        `json:"discount_percentage,omitempty"`
	MaxDiscountAmount  *decimal.Decimal        `json:"max_discount_amount,omitempty"`
	MinPurchaseAmount  *decimal.Decimal        `json:"min_purchase_amount,omitempty"`
	StartDate          string                  `json:"start_date"`
	EndDate            string                  `json:"end_date"`
	EarlyBirdEndDate   string                  `json:"early_bird_end_date,omitempty"`
	UsageLimit         *int                    `json:"usage_limit,omitempty"`
	PerUserLimit       *int                    `json:"per_user_limit,omitempty"`
	PerSchoolLimit     *int                    `json:"per_school_limit,omitempty"`
	UsageCount         int                     `json:"usage_count"`
	PromoCode          *string                 `json:"promo_code,omitempty"`
	TargetGrades       []string                `json:"target_grades,omitempty"`
	Status             string                  `json:"status"`
	Version            int                     `json:"version"`
	SchoolAssignment   *SchoolAssignmentResult `json:"school_assignment,omitempty"`
}

// ── Campaign ↔ School ──

// AssignSchoolsRequest link schools to a campaign with optional overrides
type AssignSchoolsRequest struct {
	SchoolIDs                []string         `json:"school_ids"                 binding:"required,min=1"`
	CustomDiscountPercentage *decimal.Decimal `json:"custom_discount_percentage"`
	CustomDiscountAmount     *decimal.Decimal `json:"custom_discount_amount"`
	CustomUsageLimit         *int             `json:"custom_usage_limit"         binding:"omitempty,min=1"`
	CustomStartDate          *time.Time       `json:"custom_start_date"`
	CustomEndDate            *time.Time       `json:"custom_end_date"`
	IsFeatured               bool             `json:"is_featured"`
	DisplayPriority          int              `json:"display_priority"`
}

// UpdateCampaignSchoolsRequest change overrides / status of existing links
type UpdateCampaignSchoolsRequest struct {
	SchoolIDs                []string         `json:"school_ids"                 binding:"required,min=1"`
	Status                   *string          `json:"status"                     binding:"omitempty,oneof=ACTIVE PAUSED"`
	CustomDiscountPercentage *decimal.Decimal `json:"custom_discount_percentage"`
	CustomDiscountAmount     *decimal.Decimal `json:"custom_discount_amount"`
	CustomUsageLimit         *int             `json:"custom_usage_limit"         binding:"omitempty,min=1"`
	IsFeatured               *bool            `json:"is_featured"`
	DisplayPriority          *int             `json:"display_priority"`
}

// RemoveSchoolsRequest unlink schools
type RemoveSchoolsRequest struct {
	SchoolIDs []string `json:"school_ids" binding:"required,min=1"`
}

// SchoolAssignmentResult per-school outcome of an assign/update/remove pass
type SchoolAssignmentResult struct {
	Total        int           `json:"total"`
	SuccessCount int           `json:"success_count"`
	Success      bool          `json:"success"`
	Processed    []string      `json:"processed"`
	Errors       []ItemMessage `json:"errors"`
	Warnings     []ItemMessage `json:"warnings"`
}

// CampaignSchoolResponse link view
type CampaignSchoolResponse struct {
	ID                       string           `json:"id"`
	CampaignID               string           `json:"campaign_id"`
	SchoolID                 string           `json:"school_id"`
	SchoolName               string           `json:"school_name,omitempty"`
	Status                   string           `json:"status"`
	CustomDiscountPercentage *decimal.Decimal `json:"custom_discount_percentage,omitempty"`
	CustomDiscountAmount     *decimal.Decimal `json:"custom_discount_amount,omitempty"`
	CustomUsageLimit         *int             `json:"custom_usage_limit,omitempty"`
	IsFeatured               bool             `json:"is_featured"`
	DisplayPriority          int              `json:"display_priority"`
}

// ── Usage ──

// CreateCampaignUsageRequest redeem a campaign
type CreateCampaignUsageRequest struct {
	CampaignID     string          `json:"campaign_id"     binding:"required,uuid"`
	SchoolID       string          `json:"school_id"       binding:"required,uuid"`
	UsageType      string          `json:"usage_type"      binding:"required,oneof=ENROLLMENT APPLICATION REGISTRATION"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	PromoCode      string          `json:"promo_code"      binding:"omitempty,max=50"`
	StudentName    string          `json:"student_name"    binding:"omitempty,max=100"`
	GradeLevel     string          `json:"grade_level"     binding:"omitempty,max=30"`
}

// ValidateUsageRequest confirm a usage with its validation code
type ValidateUsageRequest struct {
	ValidationCode string `json:"validation_code" binding:"required"`
}

// CancelUsageRequest cancel a usage
type CancelUsageRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// CampaignUsageResponse usage view
type CampaignUsageResponse struct {
	ID                  string          `json:"id"`
	CampaignID          string          `json:"campaign_id"`
	SchoolID            string          `json:"school_id"`
	UserID              string          `json:"user_id"`
	UsageType           string          `json:"usage_type"`
	OriginalAmount      decimal.Decimal `json:"original_amount"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	FinalAmount         decimal.Decimal `json:"final_amount"`
	PromoCodeUsed       *string         `json:"promo_code_used,omitempty"`
	Status              string          `json:"status"`
	ValidationCode      string          `json:"validation_code,omitempty"`
	ValidationExpiresAt string          `json:"validation_expires_at"`
	CreatedAt           string          `json:"created_at"`
}

// PromoCodeResponse result of a successful promo code lookup
type PromoCodeResponse struct {
	Valid              bool             `json:"valid"`
	CampaignID         string           `json:"campaign_id"`
	Title              string           `json:"title"`
	DiscountType       string           `json:"discount_type"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	MaxDiscountAmount  *decimal.Decimal `json:"max_discount_amount,omitempty"`
	MinPurchaseAmount  *decimal.Decimal `json:"min_purchase_amount,omitempty"`
	EndDate            string           `json:"end_date"`
}
