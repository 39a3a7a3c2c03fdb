package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing statuses
const (
	PricingStatusDraft           = "DRAFT"
	PricingStatusPendingApproval = "PENDING_APPROVAL"
	PricingStatusActive          = "ACTIVE"
	PricingStatusInactive        = "INACTIVE"
	PricingStatusArchived        = "ARCHIVED"
)

// Payment frequencies
const (
	PaymentFrequencyMonthly   = "MONTHLY"
	PaymentFrequencyQuarterly = "QUARTERLY"
	PaymentFrequencyAnnually  = "ANNUALLY"
	PaymentFrequencyOnce      = "ONE_TIME"
)

// SchoolPricing school_pricings, versioned price list per school/year/grade
type SchoolPricing struct {
	PricingID                      string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pricing_id"`
	SchoolID                       string           `gorm:"type:uuid;not null;index"                       json:"school_id"`
	AcademicYear                   string           `gorm:"type:varchar(9);not null"                       json:"academic_year"` // 2026-2027
	GradeLevel                     string           `gorm:"type:varchar(30);not null"                      json:"grade_level"`
	Currency                       string           `gorm:"type:varchar(3);not null;default:'TRY'"         json:"currency"`
	RegistrationFee                *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"registration_fee,omitempty"`
	ApplicationFee                 *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"application_fee,omitempty"`
	EnrollmentFee                  *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"enrollment_fee,omitempty"`
	AnnualTuition                  *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"annual_tuition,omitempty"`
	MonthlyTuition                 *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"monthly_tuition,omitempty"`
	BookFee                        *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"book_fee,omitempty"`
	UniformFee                     *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"uniform_fee,omitempty"`
	ActivityFee                    *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"activity_fee,omitempty"`
	TechnologyFee                  *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"technology_fee,omitempty"`
	TransportationFee              *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"transportation_fee,omitempty"`
	CafeteriaFee                   *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"cafeteria_fee,omitempty"`
	PaymentFrequency               string           `gorm:"type:varchar(20);not null;default:'MONTHLY'"    json:"payment_frequency"`
	InstallmentCount               *int             `                                                      json:"installment_count,omitempty"`
	DownPaymentPercentage          *decimal.Decimal `gorm:"type:numeric(5,2)"                              json:"down_payment_percentage,omitempty"`
	EarlyPaymentDiscountPercentage *decimal.Decimal `gorm:"type:numeric(5,2)"                              json:"early_payment_discount_percentage,omitempty"`
	SiblingDiscountPercentage      *decimal.Decimal `gorm:"type:numeric(5,2)"                              json:"sibling_discount_percentage,omitempty"`
	ValidFrom                      *time.Time       `gorm:"type:date"                                      json:"valid_from,omitempty"`
	ValidUntil                     *time.Time       `gorm:"type:date"                                      json:"valid_until,omitempty"`
	TotalOneTimeFees               decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"          json:"total_one_time_fees"`
	TotalMonthlyCost               decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"          json:"total_monthly_cost"`
	Status                         string           `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	IsCurrent                      bool             `gorm:"not null;default:true"                          json:"is_current"`
	ShowPublicly                   bool             `gorm:"not null;default:true"                          json:"show_publicly"`
	ShowDetailedBreakdown          bool             `gorm:"not null;default:true"                          json:"show_detailed_breakdown"`
	InternalNotes                  string           `gorm:"type:text"                                      json:"internal_notes,omitempty"`
	CompetitorAnalysis             string           `gorm:"type:text"                                      json:"competitor_analysis,omitempty"`
	ApprovedBy                     *string          `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	ApprovedAt                     *time.Time       `                                                      json:"approved_at,omitempty"`
	ApprovalNotes                  string           `gorm:"type:varchar(1000)"                             json:"approval_notes,omitempty"`
	Version                        int              `gorm:"not null;default:1"                             json:"version"`
	IsActive                       bool             `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	School *School `gorm:"foreignKey:SchoolID;references:SchoolID" json:"school,omitempty"`
}

func (SchoolPricing) TableName() string { return "school_pricings" }

// Custom fee types
const (
	FeeTypeMandatory = "MANDATORY"
	FeeTypeOptional  = "OPTIONAL"
	FeeTypeDeposit   = "DEPOSIT"
	FeeTypeService   = "SERVICE"
)

// Custom fee statuses
const (
	FeeStatusActive   = "ACTIVE"
	FeeStatusInactive = "INACTIVE"
)

// CustomFee custom_fees: extra charge attached to a SchoolPricing
type CustomFee struct {
	FeeID                string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"fee_id"`
	PricingID            string          `gorm:"type:uuid;not null;index"                       json:"pricing_id"`
	Name                 string          `gorm:"type:varchar(150);not null"                     json:"name"`
	Description          string          `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Amount               decimal.Decimal `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	FeeType              string          `gorm:"type:varchar(20);not null;default:'OPTIONAL'"   json:"fee_type"`
	Frequency            string          `gorm:"type:varchar(20);not null;default:'ONE_TIME'"   json:"frequency"`
	IsMandatory          bool            `gorm:"not null;default:false"                         json:"is_mandatory"`
	IsRefundable         bool            `gorm:"not null;default:false"                         json:"is_refundable"`
	AppliesToNewStudents bool            `gorm:"not null;default:true"                          json:"applies_to_new_students"`
	AppliesToExisting    bool            `gorm:"not null;default:true"                          json:"applies_to_existing"`
	ValidFrom            *time.Time      `gorm:"type:date"                                      json:"valid_from,omitempty"`
	ValidUntil           *time.Time      `gorm:"type:date"                                      json:"valid_until,omitempty"`
	Status               string          `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"`
	BaseModel
}

func (CustomFee) TableName() string { return "custom_fees" }

// PriceHistory price_history: append-only log of monetary changes
type PriceHistory struct {
	HistoryID        string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	PricingID        string           `gorm:"type:uuid;not null;index"                       json:"pricing_id"`
	FieldName        string           `gorm:"type:varchar(50);not null"                      json:"field_name"`
	OldValue         *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"old_value,omitempty"`
	NewValue         *decimal.Decimal `gorm:"type:numeric(12,2)"                             json:"new_value,omitempty"`
	ChangePercentage *decimal.Decimal `gorm:"type:numeric(9,2)"                              json:"change_percentage,omitempty"`
	ChangeType       string           `gorm:"type:varchar(30);not null"                      json:"change_type"` // UPDATE | BULK_PERCENTAGE | BULK_FIXED
	ChangeReason     string           `gorm:"type:varchar(500)"                              json:"change_reason,omitempty"`
	ChangedBy        *string          `gorm:"type:uuid"                                      json:"changed_by,omitempty"`
	ChangedAt        time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"changed_at"`
}

func (PriceHistory) TableName() string { return "price_history" }
