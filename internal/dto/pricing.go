package dto

import "github.com/shopspring/decimal"

// ── School pricing ──

// PricingFees the monetary fields shared by create and update
type PricingFees struct {
	RegistrationFee   *decimal.Decimal `json:"registration_fee"`
	ApplicationFee    *decimal.Decimal `json:"application_fee"`
	EnrollmentFee     *decimal.Decimal `json:"enrollment_fee"`
	AnnualTuition     *decimal.Decimal `json:"annual_tuition"`
	MonthlyTuition    *decimal.Decimal `json:"monthly_tuition"`
	BookFee           *decimal.Decimal `json:"book_fee"`
	UniformFee        *decimal.Decimal `json:"uniform_fee"`
	ActivityFee       *decimal.Decimal `json:"activity_fee"`
	TechnologyFee     *decimal.Decimal `json:"technology_fee"`
	TransportationFee *decimal.Decimal `json:"transportation_fee"`
	CafeteriaFee      *decimal.Decimal `json:"cafeteria_fee"`
}

// CreatePricingRequest create a price list
type CreatePricingRequest struct {
	SchoolID     string `json:"school_id"     binding:"required,uuid"`
	AcademicYear string `json:"academic_year" binding:"required,len=9"`
	GradeLevel   string `json:"grade_level"   binding:"required,max=30"`
	Currency     string `json:"currency"      binding:"omitempty,len=3"`
	PricingFees
	PaymentFrequency               string           `json:"payment_frequency"                 binding:"omitempty,oneof=MONTHLY QUARTERLY ANNUALLY ONE_TIME"`
	InstallmentCount               *int             `json:"installment_count"                 binding:"omitempty,min=1,max=24"`
	DownPaymentPercentage          *decimal.Decimal `json:"down_payment_percentage"`
	EarlyPaymentDiscountPercentage *decimal.Decimal `json:"early_payment_discount_percentage"`
	SiblingDiscountPercentage      *decimal.Decimal `json:"sibling_discount_percentage"`
	ValidFrom                      string           `json:"valid_from"                        binding:"omitempty,datetime=2006-01-02"`
	ValidUntil                     string           `json:"valid_until"                       binding:"omitempty,datetime=2006-01-02"`
	ShowPublicly                   *bool            `json:"show_publicly"`
	ShowDetailedBreakdown          *bool            `json:"show_detailed_breakdown"`
	InternalNotes                  string           `json:"internal_notes"`
	CompetitorAnalysis             string           `json:"competitor_analysis"`
}

// UpdatePricingRequest only non-nil fields are applied
type UpdatePricingRequest struct {
	PricingFees
	PaymentFrequency               *string          `json:"payment_frequency"                 binding:"omitempty,oneof=MONTHLY QUARTERLY ANNUALLY ONE_TIME"`
	InstallmentCount               *int             `json:"installment_count"                 binding:"omitempty,min=1,max=24"`
	DownPaymentPercentage          *decimal.Decimal `json:"down_payment_percentage"`
	EarlyPaymentDiscountPercentage *decimal.Decimal `json:"early_payment_discount_percentage"`
	SiblingDiscountPercentage      *decimal.Decimal `json:"sibling_discount_percentage"`
	ValidFrom                      *string          `json:"valid_from"                        binding:"omitempty,datetime=2006-01-02"`
	ValidUntil                     *string          `json:"valid_until"                       binding:"omitempty,datetime=2006-01-02"`
	ShowPublicly                   *bool            `json:"show_publicly"`
	ShowDetailedBreakdown          *bool            `json:"show_detailed_breakdown"`
	InternalNotes                  *string          `json:"internal_notes"`
	CompetitorAnalysis             *string          `json:"competitor_analysis"`
	ChangeReason                   string           `json:"change_reason"                     binding:"omitempty,max=500"`
}

// ApprovePricingRequest approval notes
type ApprovePricingRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=1000"`
}

// PublicPricingResponse the price list as shown to parents
type PublicPricingResponse struct {
	ID           string `json:"id"`
	SchoolID     string `json:"school_id"`
	SchoolName   string `json:"school_name,omitempty"`
	AcademicYear string `json:"academic_year"`
	GradeLevel   string `json:"grade_level"`
	Currency     string `json:"currency"`
	PricingFees
	PaymentFrequency               string              `json:"payment_frequency"`
	InstallmentCount               *int                `json:"installment_count,omitempty"`
	DownPaymentPercentage          *decimal.Decimal    `json:"down_payment_percentage,omitempty"`
	EarlyPaymentDiscountPercentage *decimal.Decimal    `json:"early_payment_discount_percentage,omitempty"`
	SiblingDiscountPercentage      *decimal.Decimal    `json:"sibling_discount_percentage,omitempty"`
	ValidFrom                      string              `json:"valid_from,omitempty"`
	ValidUntil                     string              `json:"valid_until,omitempty"`
	TotalOneTimeFees               decimal.Decimal     `json:"total_one_time_fees"`
	TotalMonthlyCost               decimal.Decimal     `json:"total_monthly_cost"`
	Status                         string              `json:"status"`
	IsCurrent                      bool                `json:"is_current"`
	Version                        int                 `json:"version"`
	CustomFees                     []CustomFeeResponse `json:"custom_fees,omitempty"`
}

// PricingResponse full view for institution staff
type PricingResponse struct {
	PublicPricingResponse
	ShowPublicly          bool    `json:"show_publicly"`
	ShowDetailedBreakdown bool    `json:"show_detailed_breakdown"`
	InternalNotes         string  `json:"internal_notes,omitempty"`
	CompetitorAnalysis    string  `json:"competitor_analysis,omitempty"`
	ApprovedBy            *string `json:"approved_by,omitempty"`
	ApprovedAt            string  `json:"approved_at,omitempty"`
	ApprovalNotes         string  `json:"approval_notes,omitempty"`
}

// ── Custom fees ──

// CreateCustomFeeRequest attach a fee to a price list
type CreateCustomFeeRequest struct {
	Name                 string          `json:"name"                    binding:"required,max=150"`
	Description          string          `json:"description"             binding:"omitempty,max=500"`
	Amount               decimal.Decimal `json:"amount"`
	FeeType              string          `json:"fee_type"                binding:"omitempty,oneof=MANDATORY OPTIONAL DEPOSIT SERVICE"`
	Frequency            string          `json:"frequency"               binding:"omitempty,oneof=MONTHLY QUARTERLY ANNUALLY ONE_TIME"`
	IsMandatory          bool            `json:"is_mandatory"`
	IsRefundable         bool            `json:"is_refundable"`
	AppliesToNewStudents *bool           `json:"applies_to_new_students"`
	AppliesToExisting    *bool           `json:"applies_to_existing"`
	ValidFrom            string          `json:"valid_from"              binding:"omitempty,datetime=2006-01-02"`
	ValidUntil           string          `json:"valid_until"             binding:"omitempty,datetime=2006-01-02"`
}

// CustomFeeResponse fee view
type CustomFeeResponse struct {
	ID           string          `json:"id"`
	PricingID    string          `json:"pricing_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	FeeType      string          `json:"fee_type"`
	Frequency    string          `json:"frequency"`
	IsMandatory  bool            `json:"is_mandatory"`
	IsRefundable bool            `json:"is_refundable"`
	Status       string          `json:"status"`
}

// ── Cost calculation ──

// CostCalculationRequest parameters of a tuition quote
type CostCalculationRequest struct {
	SchoolID     string `json:"school_id"     binding:"required,uuid"`
	GradeLevel   string `json:"grade_level"   binding:"required"`
	AcademicYear string `json:"academic_year" binding:"required"`
	HasSibling   bool   `json:"has_sibling"`
	EarlyPayment bool   `json:"early_payment"`
}

// CostCalculationResponse itemized quote. Discount fields are omitted when not applied.
type CostCalculationResponse struct {
	PricingID            string           `json:"pricing_id"`
	Currency             string           `json:"currency"`
	BaseTuition          decimal.Decimal  `json:"base_tuition"`
	TotalOneTimeFees     decimal.Decimal  `json:"total_one_time_fees"`
	SiblingDiscount      *decimal.Decimal `json:"sibling_discount,omitempty"`
	EarlyPaymentDiscount *decimal.Decimal `json:"early_payment_discount,omitempty"`
	TotalDiscounts       decimal.Decimal  `json:"total_discounts"`
	FinalAmount          decimal.Decimal  `json:"final_amount"`
	InstallmentCount     *int             `json:"installment_count,omitempty"`
	DownPayment          *decimal.Decimal `json:"down_payment,omitempty"`
	InstallmentAmount    *decimal.Decimal `json:"installment_amount,omitempty"`
}

// ── Bulk ──

// BulkPricingItem one price list adjustment
type BulkPricingItem struct {
	PricingID string          `json:"pricing_id" binding:"required"`
	Operation string          `json:"operation"  binding:"required"`
	Value     decimal.Decimal `json:"value"`
}

// BulkPricingRequest adjust many price lists
type BulkPricingRequest struct {
	Items  []BulkPricingItem `json:"items"  binding:"required,min=1,max=500,dive"`
	Reason string            `json:"reason" binding:"omitempty,max=500"`
}

// BulkPricingResult aggregate of a bulk adjustment
type BulkPricingResult struct {
	TotalRequested int           `json:"total_requested"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	Success        bool          `json:"success"`
	UpdatedIDs     []string      `json:"updated_ids"`
	Errors         []ItemMessage `json:"errors"`
}

// PriceHistoryResponse one change record
type PriceHistoryResponse struct {
	ID               string           `json:"id"`
	FieldName        string           `json:"field_name"`
	OldValue         *decimal.Decimal `json:"old_value,omitempty"`
	NewValue         *decimal.Decimal `json:"new_value,omitempty"`
	ChangePercentage *decimal.Decimal `json:"change_percentage,omitempty"`
	ChangeType       string           `json:"change_type"`
	ChangeReason     string           `json:"change_reason,omitempty"`
	ChangedBy        *string          `json:"changed_by,omitempty"`
	ChangedAt        string           `json:"changed_at"`
}
