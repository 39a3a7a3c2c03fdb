package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"okulpazar/backend/config"
	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
)

// ── pricing errors ──

var (
	ErrPricingDenied        = pkgerrors.Forbidden("User does not have permission to manage pricing for this school")
	ErrPricingApproveDenied = pkgerrors.Forbidden("User does not have permission to approve pricing")
	ErrPricingExists        = pkgerrors.Business("Pricing already exists for this school, academic year and grade level")
	ErrNegativeMoney        = pkgerrors.Business("Monetary values cannot be negative")
	ErrValidityOrder        = pkgerrors.Business("Valid from date must be before valid until date")
	ErrPricingNotPending    = pkgerrors.Business("Pricing is not in pending approval status")
	ErrPricingNotDraft      = pkgerrors.Business("Only draft pricing can be submitted for approval")
	ErrFeeAmountNotPositive = pkgerrors.Business("Fee amount must be greater than zero")
	ErrFeeNameExists        = pkgerrors.Business("Custom fee with this name already exists")
	ErrNoCurrentPricing     = pkgerrors.NotFound("No current pricing found for the selected school, grade and academic year")
	ErrPublicSchoolNotFound = pkgerrors.NotFound("School not found or not available")
	ErrNothingToAdjust      = pkgerrors.Business("Pricing has no tuition to adjust")
)

// Bulk pricing operations
const (
	PricingOpPercentageIncrease  = "PERCENTAGE_INCREASE"
	PricingOpFixedAmountIncrease = "FIXED_AMOUNT_INCREASE"
)

// Price history change types
const (
	ChangeTypeUpdate         = "UPDATE"
	ChangeTypeBulkPercentage = "BULK_PERCENTAGE"
	ChangeTypeBulkFixed      = "BULK_FIXED"
)

var twelve = decimal.NewFromInt(12)

func pricingNotFound(id string) error {
	return pkgerrors.NotFoundf("Pricing not found with ID: %s", id)
}

// PricingService school price lists, custom fees and quotes
type PricingService interface {
	CreateSchoolPricing(ctx context.Context, req *dto.CreatePricingRequest, actor *access.Actor) (*dto.PricingResponse, error)
	GetSchoolPricing(ctx context.Context, id string, actor *access.Actor) (*dto.PricingResponse, error)
	ListSchoolPricing(ctx context.Context, schoolID string, actor *access.Actor) ([]dto.PricingResponse, error)
	UpdateSchoolPricing(ctx context.Context, id string, req *dto.UpdatePricingRequest, actor *access.Actor) (*dto.PricingResponse, error)
	SubmitSchoolPricing(ctx context.Context, id string, actor *access.Actor) (*dto.PricingResponse, error)
	ApproveSchoolPricing(ctx context.Context, id string, req *dto.ApprovePricingRequest, actor *access.Actor) (*dto.PricingResponse, error)
	CreateCustomFee(ctx context.Context, pricingID string, req *dto.CreateCustomFeeRequest, actor *access.Actor) (*dto.CustomFeeResponse, error)
	GetPublicSchoolPricing(ctx context.Context, slug, gradeLevel, academicYear string) (*dto.PublicPricingResponse, error)
	CalculateTotalCost(ctx context.Context, req *dto.CostCalculationRequest) (*dto.CostCalculationResponse, error)
	BulkUpdatePricing(ctx context.Context, req *dto.BulkPricingRequest, actor *access.Actor) (*dto.BulkPricingResult, error)
	ListPriceHistory(ctx context.Context, pricingID string, actor *access.Actor) ([]dto.PriceHistoryResponse, error)
}

type pricingService struct {
	cfg    *config.PricingConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewPricingService creates a PricingService
func NewPricingService(cfg *config.PricingConfig, repo *repository.Repository, logger *zap.Logger) PricingService {
	return &pricingService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// Create
// ════════════════════════════════════════════════════════════

func (s *pricingService) CreateSchoolPricing(ctx context.Context, req *dto.CreatePricingRequest, actor *access.Actor) (*dto.PricingResponse, error) {
	school, err := s.repo.Institution.GetActiveSchool(ctx, req.SchoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schoolNotFound(req.SchoolID)
		}
		s.logger.Error("load school failed", zap.String("id", req.SchoolID), zap.Error(err))
		return nil, err
	}
	if !access.Can(actor, access.SchoolScope(school), access.ManagePricing) {
		return nil, ErrPricingDenied
	}

	exists, err := s.repo.Pricing.ExistsOpen(ctx, req.SchoolID, req.AcademicYear, req.GradeLevel)
	if err != nil {
		s.logger.Error("check pricing duplicate failed", zap.String("school_id", req.SchoolID), zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrPricingExists
	}

	if anyNegative(feeValues(&req.PricingFees)...) ||
		anyNegative(req.DownPaymentPercentage, req.EarlyPaymentDiscountPercentage, req.SiblingDiscountPercentage) {
		return nil, ErrNegativeMoney
	}

	validFrom, err := parseOptionalDate(req.ValidFrom)
	if err != nil {
		return nil, err
	}
	validUntil, err := parseOptionalDate(req.ValidUntil)
	if err != nil {
		return nil, err
	}
	if validFrom != nil && validUntil != nil && !validFrom.Before(*validUntil) {
		return nil, ErrValidityOrder
	}

	p := &model.SchoolPricing{
		SchoolID:                       req.SchoolID,
		AcademicYear:                   req.AcademicYear,
		GradeLevel:                     req.GradeLevel,
		Currency:                       strings.ToUpper(req.Currency),
		PaymentFrequency:               req.PaymentFrequency,
		InstallmentCount:               req.InstallmentCount,
		DownPaymentPercentage:          req.DownPaymentPercentage,
		EarlyPaymentDiscountPercentage: req.EarlyPaymentDiscountPercentage,
		SiblingDiscountPercentage:      req.SiblingDiscountPercentage,
		ValidFrom:                      validFrom,
		ValidUntil:                     validUntil,
		Status:                         model.PricingStatusDraft,
		IsCurrent:                      true,
		ShowPublicly:                   boolOr(req.ShowPublicly, true),
		ShowDetailedBreakdown:          boolOr(req.ShowDetailedBreakdown, true),
		InternalNotes:                  req.InternalNotes,
		CompetitorAnalysis:             req.CompetitorAnalysis,
		Version:                        1,
		IsActive:                       true,
	}
	if p.Currency == "" {
		p.Currency = s.cfg.DefaultCurrency
	}
	if p.PaymentFrequency == "" {
		p.PaymentFrequency = model.PaymentFrequencyMonthly
	}
	setFees(p, &req.PricingFees)
	recomputeTotals(p)
	p.CreatedBy = &actor.UserID

	if err := s.repo.Pricing.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPricingExists
		}
		s.logger.Error("create pricing failed", zap.String("school_id", req.SchoolID), zap.Error(err))
		return nil, err
	}
	p.School = school

	s.logger.Info("pricing created",
		zap.String("pricing_id", p.PricingID),
		zap.String("school_id", p.SchoolID),
		zap.String("grade_level", p.GradeLevel),
		zap.String("academic_year", p.AcademicYear))

	return toPricingResponse(p, nil), nil
}

// ════════════════════════════════════════════════════════════
// Read
// ════════════════════════════════════════════════════════════

func (s *pricingService) GetSchoolPricing(ctx context.Context, id string, actor *access.Actor) (*dto.PricingResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, pricingScope(p), access.ManagePricing) {
		return nil, ErrPricingDenied
	}
	fees, err := s.repo.CustomFee.ListByPricing(ctx, p.PricingID)
	if err != nil {
		s.logger.Error("list custom fees failed", zap.String("pricing_id", id), zap.Error(err))
		return nil, err
	}
	return toPricingResponse(p, fees), nil
}

func (s *pricingService) ListSchoolPricing(ctx context.Context, schoolID string, actor *access.Actor) ([]dto.PricingResponse, error) {
	school, err := s.repo.Institution.GetActiveSchool(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schoolNotFound(schoolID)
		}
		return nil, err
	}
	if !access.Can(actor, access.SchoolScope(school), access.ManagePricing) {
		return nil, ErrPricingDenied
	}

	list, err := s.repo.Pricing.ListBySchool(ctx, schoolID)
	if err != nil {
		s.logger.Error("list pricing failed", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.PricingResponse, 0, len(list))
	for i := range list {
		result = append(result, *toPricingResponse(&list[i], nil))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// Update
// ════════════════════════════════════════════════════════════

func (s *pricingService) UpdateSchoolPricing(ctx context.Context, id string, req *dto.UpdatePricingRequest, actor *access.Actor) (*dto.PricingResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, pricingScope(p), access.ManagePricing) {
		return nil, ErrPricingDenied
	}

	if anyNegative(feeValues(&req.PricingFees)...) ||
		anyNegative(req.DownPaymentPercentage, req.EarlyPaymentDiscountPercentage, req.SiblingDiscountPercentage) {
		return nil, ErrNegativeMoney
	}

	validFrom, validUntil := p.ValidFrom, p.ValidUntil
	if req.ValidFrom != nil {
		if validFrom, err = parseOptionalDate(*req.ValidFrom); err != nil {
			return nil, err
		}
	}
	if req.ValidUntil != nil {
		if validUntil, err = parseOptionalDate(*req.ValidUntil); err != nil {
			return nil, err
		}
	}
	if validFrom != nil && validUntil != nil && !validFrom.Before(*validUntil) {
		return nil, ErrValidityOrder
	}

	// ── money: record every change, bump version on a large one ──
	changes := diffFees(p, &req.PricingFees)
	setFees(p, &req.PricingFees)

	if req.PaymentFrequency != nil {
		p.PaymentFrequency = *req.PaymentFrequency
	}
	if req.InstallmentCount != nil {
		p.InstallmentCount = req.InstallmentCount
	}
	if req.DownPaymentPercentage != nil {
		p.DownPaymentPercentage = req.DownPaymentPercentage
	}
	if req.EarlyPaymentDiscountPercentage != nil {
		p.EarlyPaymentDiscountPercentage = req.EarlyPaymentDiscountPercentage
	}
	if req.SiblingDiscountPercentage != nil {
		p.SiblingDiscountPercentage = req.SiblingDiscountPercentage
	}
	if req.ShowPublicly != nil {
		p.ShowPublicly = *req.ShowPublicly
	}
	if req.ShowDetailedBreakdown != nil {
		p.ShowDetailedBreakdown = *req.ShowDetailedBreakdown
	}
	if req.InternalNotes != nil {
		p.InternalNotes = *req.InternalNotes
	}
	if req.CompetitorAnalysis != nil {
		p.CompetitorAnalysis = *req.CompetitorAnalysis
	}
	p.ValidFrom, p.ValidUntil = validFrom, validUntil

	if err := s.saveWithHistory(ctx, p, changes, ChangeTypeUpdate, req.ChangeReason, actor); err != nil {
		s.logger.Error("update pricing failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPricingResponse(p, nil), nil
}

// saveWithHistory recomputes totals, bumps version when a change crosses the
// threshold, then persists the row and its history in one transaction
func (s *pricingService) saveWithHistory(ctx context.Context, p *model.SchoolPricing, changes []feeChange, changeType, reason string, actor *access.Actor) error {
	recomputeTotals(p)

	threshold := decimal.NewFromInt(int64(s.cfg.VersionBumpThreshold))
	for _, c := range changes {
		if c.exceeds(threshold) {
			p.Version++
			break
		}
	}
	p.UpdatedBy = &actor.UserID

	now := s.now()
	history := make([]model.PriceHistory, 0, len(changes))
	for _, c := range changes {
		history = append(history, model.PriceHistory{
			PricingID:        p.PricingID,
			FieldName:        c.field,
			OldValue:         c.old,
			NewValue:         c.new,
			ChangePercentage: c.percentage(),
			ChangeType:       changeType,
			ChangeReason:     reason,
			ChangedBy:        &actor.UserID,
			ChangedAt:        now,
		})
	}

	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Pricing.Save(ctx, p); err != nil {
			return err
		}
		if len(history) == 0 {
			return nil
		}
		return tx.PriceHistory.CreateBatch(ctx, history)
	})
}

// ════════════════════════════════════════════════════════════
// Approval workflow
// ════════════════════════════════════════════════════════════

func (s *pricingService) SubmitSchoolPricing(ctx context.Context, id string, actor *access.Actor) (*dto.PricingResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, pricingScope(p), access.ManagePricing) {
		return nil, ErrPricingDenied
	}
	if p.Status != model.PricingStatusDraft {
		return nil, ErrPricingNotDraft
	}

	p.Status = model.PricingStatusPendingApproval
	p.UpdatedBy = &actor.UserID
	if err := s.repo.Pricing.Save(ctx, p); err != nil {
		s.logger.Error("submit pricing failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPricingResponse(p, nil), nil
}

func (s *pricingService) ApproveSchoolPricing(ctx context.Context, id string, req *dto.ApprovePricingRequest, actor *access.Actor) (*dto.PricingResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, pricingScope(p), access.ApprovePricing) {
		return nil, ErrPricingApproveDenied
	}
	if p.Status != model.PricingStatusPendingApproval {
		return nil, ErrPricingNotPending
	}

	now := s.now()
	p.Status = model.PricingStatusActive
	p.IsCurrent = true
	p.ApprovedBy = &actor.UserID
	p.ApprovedAt = &now
	p.ApprovalNotes = req.Notes
	p.UpdatedBy = &actor.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Pricing.DeactivateOtherCurrent(ctx, p.PricingID, p.SchoolID, p.GradeLevel, p.AcademicYear); err != nil {
			return err
		}
		return tx.Pricing.Save(ctx, p)
	})
	if err != nil {
		s.logger.Error("approve pricing failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("pricing approved", zap.String("pricing_id", p.PricingID), zap.String("approved_by", actor.UserID))
	return toPricingResponse(p, nil), nil
}

// ════════════════════════════════════════════════════════════
// Custom fees
// ════════════════════════════════════════════════════════════

func (s *pricingService) CreateCustomFee(ctx context.Context, pricingID string, req *dto.CreateCustomFeeRequest, actor *access.Actor) (*dto.CustomFeeResponse, error) {
	p, err := s.load(ctx, pricingID)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, pricingScope(p), access.ManagePricing) {
		return nil, ErrPricingDenied
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.CustomFee.ExistsByName(ctx, pricingID, name)
	if err != nil {
		s.logger.Error("check fee name failed", zap.String("pricing_id", pricingID), zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrFeeNameExists
	}
	if !req.Amount.IsPositive() {
		return nil, ErrFeeAmountNotPositive
	}

	validFrom, err := parseOptionalDate(req.ValidFrom)
	if err != nil {
		return nil, err
	}
	validUntil, err := parseOptionalDate(req.ValidUntil)
	if err != nil {
		return nil, err
	}
	if validFrom != nil && validUntil != nil && !validFrom.Before(*validUntil) {
		return nil, ErrValidityOrder
	}

	fee := &model.CustomFee{
		PricingID:            pricingID,
		Name:                 name,
		Description:          req.Description,
		Amount:               req.Amount.Round(2),
		FeeType:              req.FeeType,
		Frequency:            req.Frequency,
		IsMandatory:          req.IsMandatory,
		IsRefundable:         req.IsRefundable,
		AppliesToNewStudents: boolOr(req.AppliesToNewStudents, true),
		AppliesToExisting:    boolOr(req.AppliesToExisting, true),
		ValidFrom:            validFrom,
		ValidUntil:           validUntil,
		Status:               model.FeeStatusActive,
	}
	if fee.FeeType == "" {
		fee.FeeType = model.FeeTypeOptional
	}
	if fee.Frequency == "" {
		fee.Frequency = model.PaymentFrequencyOnce
	}
	fee.CreatedBy = &actor.UserID

	if err := s.repo.CustomFee.Create(ctx, fee); err != nil {
		s.logger.Error("create custom fee failed", zap.String("pricing_id", pricingID), zap.Error(err))
		return nil, err
	}
	resp := toCustomFeeResponse(fee)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// Public view / quote
// ════════════════════════════════════════════════════════════

func (s *pricingService) GetPublicSchoolPricing(ctx context.Context, slug, gradeLevel, academicYear string) (*dto.PublicPricingResponse, error) {
	school, err := s.repo.Institution.GetPublicSchoolBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPublicSchoolNotFound
		}
		s.logger.Error("load public school failed", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	p, err := s.repo.Pricing.GetCurrent(ctx, school.SchoolID, gradeLevel, academicYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCurrentPricing
		}
		s.logger.Error("load current pricing failed", zap.String("school_id", school.SchoolID), zap.Error(err))
		return nil, err
	}
	if !p.ShowPublicly {
		return nil, ErrNoCurrentPricing
	}
	p.School = school

	fees, err := s.repo.CustomFee.ListByPricing(ctx, p.PricingID)
	if err != nil {
		s.logger.Error("list custom fees failed", zap.String("pricing_id", p.PricingID), zap.Error(err))
		return nil, err
	}

	view := toPublicPricing(p, fees)
	if !p.ShowDetailedBreakdown {
		view.PricingFees = dto.PricingFees{AnnualTuition: p.AnnualTuition, MonthlyTuition: p.MonthlyTuition}
		view.CustomFees = nil
	}
	return &view, nil
}

func (s *pricingService) CalculateTotalCost(ctx context.Context, req *dto.CostCalculationRequest) (*dto.CostCalculationResponse, error) {
	p, err := s.repo.Pricing.GetCurrent(ctx, req.SchoolID, req.GradeLevel, req.AcademicYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCurrentPricing
		}
		s.logger.Error("load current pricing failed", zap.String("school_id", req.SchoolID), zap.Error(err))
		return nil, err
	}
	return quote(p, req.HasSibling, req.EarlyPayment), nil
}

// quote itemizes the yearly cost of p. Discounts are taken from base tuition
// only, every amount is rounded half-up to 2 decimals.
func quote(p *model.SchoolPricing, hasSibling, earlyPayment bool) *dto.CostCalculationResponse {
	base := valueOf(p.AnnualTuition)
	resp := &dto.CostCalculationResponse{
		PricingID:        p.PricingID,
		Currency:         p.Currency,
		BaseTuition:      base.Round(2),
		TotalOneTimeFees: p.TotalOneTimeFees.Round(2),
		TotalDiscounts:   decimal.Zero,
	}

	if hasSibling && p.SiblingDiscountPercentage != nil {
		d := base.Mul(*p.SiblingDiscountPercentage).Div(hundred).Round(2)
		resp.SiblingDiscount = &d
		resp.TotalDiscounts = resp.TotalDiscounts.Add(d)
	}
	if earlyPayment && p.EarlyPaymentDiscountPercentage != nil {
		d := base.Mul(*p.EarlyPaymentDiscountPercentage).Div(hundred).Round(2)
		resp.EarlyPaymentDiscount = &d
		resp.TotalDiscounts = resp.TotalDiscounts.Add(d)
	}

	resp.FinalAmount = base.Add(p.TotalOneTimeFees).Sub(resp.TotalDiscounts).Round(2)

	if p.InstallmentCount != nil && *p.InstallmentCount > 0 {
		down := resp.FinalAmount.Mul(valueOf(p.DownPaymentPercentage)).Div(hundred).Round(2)
		per := resp.FinalAmount.Sub(down).Div(decimal.NewFromInt(int64(*p.InstallmentCount))).Round(2)
		resp.InstallmentCount = p.InstallmentCount
		resp.DownPayment = &down
		resp.InstallmentAmount = &per
	}
	return resp
}

// ════════════════════════════════════════════════════════════
// Bulk
// ════════════════════════════════════════════════════════════

func (s *pricingService) BulkUpdatePricing(ctx context.Context, req *dto.BulkPricingRequest, actor *access.Actor) (*dto.BulkPricingResult, error) {
	result := &dto.BulkPricingResult{
		TotalRequested: len(req.Items),
		UpdatedIDs:     []string{},
		Errors:         []dto.ItemMessage{},
	}

	for _, item := range req.Items {
		if err := s.applyBulk(ctx, item, req.Reason, actor); err != nil {
			result.Errors = append(result.Errors, dto.ItemMessage{ID: item.PricingID, Message: err.Error()})
			continue
		}
		result.UpdatedIDs = append(result.UpdatedIDs, item.PricingID)
	}

	result.SuccessCount = len(result.UpdatedIDs)
	result.FailureCount = len(result.Errors)
	result.Success = result.FailureCount == 0

	s.logger.Info("bulk pricing update",
		zap.Int("requested", result.TotalRequested),
		zap.Int("failed", result.FailureCount))
	return result, nil
}

func (s *pricingService) applyBulk(ctx context.Context, item dto.BulkPricingItem, reason string, actor *access.Actor) error {
	p, err := s.load(ctx, item.PricingID)
	if err != nil {
		return err
	}
	if !access.Can(actor, pricingScope(p), access.ManagePricing) {
		return ErrPricingDenied
	}
	if p.MonthlyTuition == nil && p.AnnualTuition == nil {
		return ErrNothingToAdjust
	}

	var (
		fees       dto.PricingFees
		changeType string
	)
	switch strings.ToUpper(item.Operation) {
	case PricingOpPercentageIncrease:
		factor := decimal.NewFromInt(1).Add(item.Value.Div(hundred))
		fees.MonthlyTuition = scaled(p.MonthlyTuition, factor)
		fees.AnnualTuition = scaled(p.AnnualTuition, factor)
		changeType = ChangeTypeBulkPercentage
	case PricingOpFixedAmountIncrease:
		fees.MonthlyTuition = shifted(p.MonthlyTuition, item.Value)
		fees.AnnualTuition = shifted(p.AnnualTuition, item.Value.Mul(twelve))
		changeType = ChangeTypeBulkFixed
	default:
		return pkgerrors.Businessf("Unsupported operation: %s", item.Operation)
	}
	if anyNegative(fees.MonthlyTuition, fees.AnnualTuition) {
		return ErrNegativeMoney
	}

	changes := diffFees(p, &fees)
	setFees(p, &fees)
	return s.saveWithHistory(ctx, p, changes, changeType, reason, actor)
}

// ════════════════════════════════════════════════════════════
// History
// ════════════════════════════════════════════════════════════

func (s *pricingService) ListPriceHistory(ctx context.Context, pricingID string, actor *access.Actor) ([]dto.PriceHistoryResponse, error) {
	p, err := s.load(ctx, pricingID)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, pricingScope(p), access.ManagePricing) {
		return nil, ErrPricingDenied
	}

	rows, err := s.repo.PriceHistory.ListByPricing(ctx, pricingID)
	if err != nil {
		s.logger.Error("list price history failed", zap.String("pricing_id", pricingID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.PriceHistoryResponse, 0, len(rows))
	for i := range rows {
		h := &rows[i]
		result = append(result, dto.PriceHistoryResponse{
			ID:               h.HistoryID,
			FieldName:        h.FieldName,
			OldValue:         h.OldValue,
			NewValue:         h.NewValue,
			ChangePercentage: h.ChangePercentage,
			ChangeType:       h.ChangeType,
			ChangeReason:     h.ChangeReason,
			ChangedBy:        h.ChangedBy,
			ChangedAt:        dto.FormatTime(&h.ChangedAt),
		})
	}
	return result, nil
}

// ── helpers ──

func (s *pricingService) load(ctx context.Context, id string) (*model.SchoolPricing, error) {
	p, err := s.repo.Pricing.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pricingNotFound(id)
		}
		s.logger.Error("load pricing failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func pricingScope(p *model.SchoolPricing) access.Scope {
	if p.School != nil {
		return access.SchoolScope(p.School)
	}
	return access.Scope{SchoolID: p.SchoolID}
}

// feeChange one monetary field moving from old to new
type feeChange struct {
	field    string
	old, new *decimal.Decimal
}

// exceeds reports a relative change strictly above threshold percent.
// Moving away from zero or from an unset value always exceeds.
func (c feeChange) exceeds(threshold decimal.Decimal) bool {
	oldV, newV := valueOf(c.old), valueOf(c.new)
	if oldV.IsZero() {
		return !newV.IsZero()
	}
	pct := newV.Sub(oldV).Abs().Div(oldV.Abs()).Mul(hundred)
	return pct.GreaterThan(threshold)
}

func (c feeChange) percentage() *decimal.Decimal {
	oldV := valueOf(c.old)
	if oldV.IsZero() {
		return nil
	}
	pct := valueOf(c.new).Sub(oldV).Div(oldV).Mul(hundred).Round(2)
	return &pct
}

// feeField binds a column name to its slot in both the model and the request
type feeField struct {
	name  string
	model func(*model.SchoolPricing) **decimal.Decimal
	req   func(*dto.PricingFees) **decimal.Decimal
}

var feeFields = []feeField{
	{"registration_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.RegistrationFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.RegistrationFee }},
	{"application_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.ApplicationFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.ApplicationFee }},
	{"enrollment_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.EnrollmentFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.EnrollmentFee }},
	{"annual_tuition", func(p *model.SchoolPricing) **decimal.Decimal { return &p.AnnualTuition }, func(f *dto.PricingFees) **decimal.Decimal { return &f.AnnualTuition }},
	{"monthly_tuition", func(p *model.SchoolPricing) **decimal.Decimal { return &p.MonthlyTuition }, func(f *dto.PricingFees) **decimal.Decimal { return &f.MonthlyTuition }},
	{"book_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.BookFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.BookFee }},
	{"uniform_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.UniformFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.UniformFee }},
	{"activity_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.ActivityFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.ActivityFee }},
	{"technology_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.TechnologyFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.TechnologyFee }},
	{"transportation_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.TransportationFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.TransportationFee }},
	{"cafeteria_fee", func(p *model.SchoolPricing) **decimal.Decimal { return &p.CafeteriaFee }, func(f *dto.PricingFees) **decimal.Decimal { return &f.CafeteriaFee }},
}

func feeValues(f *dto.PricingFees) []*decimal.Decimal {
	out := make([]*decimal.Decimal, 0, len(feeFields))
	for _, ff := range feeFields {
		out = append(out, *ff.req(f))
	}
	return out
}

// setFees copies every non-nil request fee onto p
func setFees(p *model.SchoolPricing, f *dto.PricingFees) {
	for _, ff := range feeFields {
		if v := *ff.req(f); v != nil {
			rounded := v.Round(2)
			*ff.model(p) = &rounded
		}
	}
}

// diffFees lists the non-nil request fees that differ from p
func diffFees(p *model.SchoolPricing, f *dto.PricingFees) []feeChange {
	var changes []feeChange
	for _, ff := range feeFields {
		next := *ff.req(f)
		if next == nil {
			continue
		}
		prev := *ff.model(p)
		if prev != nil && prev.Equal(*next) {
			continue
		}
		rounded := next.Round(2)
		changes = append(changes, feeChange{field: ff.name, old: prev, new: &rounded})
	}
	return changes
}

// recomputeTotals one-time = registration+application+enrollment+book+uniform,
// monthly = tuition+activity+technology+transportation+cafeteria
func recomputeTotals(p *model.SchoolPricing) {
	p.TotalOneTimeFees = sum(p.RegistrationFee, p.ApplicationFee, p.EnrollmentFee, p.BookFee, p.UniformFee).Round(2)
	p.TotalMonthlyCost = sum(p.MonthlyTuition, p.ActivityFee, p.TechnologyFee, p.TransportationFee, p.CafeteriaFee).Round(2)
}

func sum(values ...*decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		if v != nil {
			total = total.Add(*v)
		}
	}
	return total
}

func anyNegative(values ...*decimal.Decimal) bool {
	for _, v := range values {
		if v != nil && v.IsNegative() {
			return true
		}
	}
	return false
}

func valueOf(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}

func scaled(v *decimal.Decimal, factor decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	out := v.Mul(factor).Round(2)
	return &out
}

func shifted(v *decimal.Decimal, delta decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	out := v.Add(delta).Round(2)
	return &out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, pkgerrors.Validation(fmt.Sprintf("Invalid date: %s", v))
	}
	return &d, nil
}

func toPublicPricing(p *model.SchoolPricing, fees []model.CustomFee) dto.PublicPricingResponse {
	view := dto.PublicPricingResponse{
		ID:           p.PricingID,
		SchoolID:     p.SchoolID,
		AcademicYear: p.AcademicYear,
		GradeLevel:   p.GradeLevel,
		Currency:     p.Currency,
		PricingFees: dto.PricingFees{
			RegistrationFee:   p.RegistrationFee,
			ApplicationFee:    p.ApplicationFee,
			EnrollmentFee:     p.EnrollmentFee,
			AnnualTuition:     p.AnnualTuition,
			MonthlyTuition:    p.MonthlyTuition,
			BookFee:           p.BookFee,
			UniformFee:        p.UniformFee,
			ActivityFee:       p.ActivityFee,
			TechnologyFee:     p.TechnologyFee,
			TransportationFee: p.TransportationFee,
			CafeteriaFee:      p.CafeteriaFee,
		},
		PaymentFrequency:               p.PaymentFrequency,
		InstallmentCount:               p.InstallmentCount,
		DownPaymentPercentage:          p.DownPaymentPercentage,
		EarlyPaymentDiscountPercentage: p.EarlyPaymentDiscountPercentage,
		SiblingDiscountPercentage:      p.SiblingDiscountPercentage,
		ValidFrom:                      dto.FormatDate(p.ValidFrom),
		ValidUntil:                     dto.FormatDate(p.ValidUntil),
		TotalOneTimeFees:               p.TotalOneTimeFees,
		TotalMonthlyCost:               p.TotalMonthlyCost,
		Status:                         p.Status,
		IsCurrent:                      p.IsCurrent,
		Version:                        p.Version,
	}
	if p.School != nil {
		view.SchoolName = p.School.Name
	}
	for i := range fees {
		view.CustomFees = append(view.CustomFees, toCustomFeeResponse(&fees[i]))
	}
	return view
}

func toPricingResponse(p *model.SchoolPricing, fees []model.CustomFee) *dto.PricingResponse {
	return &dto.PricingResponse{
		PublicPricingResponse: toPublicPricing(p, fees),
		ShowPublicly:          p.ShowPublicly,
		ShowDetailedBreakdown: p.ShowDetailedBreakdown,
		InternalNotes:         p.InternalNotes,
		CompetitorAnalysis:    p.CompetitorAnalysis,
		ApprovedBy:            p.ApprovedBy,
		ApprovedAt:            dto.FormatTime(p.ApprovedAt),
		ApprovalNotes:         p.ApprovalNotes,
	}
}

func toCustomFeeResponse(f *model.CustomFee) dto.CustomFeeResponse {
	return dto.CustomFeeResponse{
		ID:           f.FeeID,
		PricingID:    f.PricingID,
		Name:         f.Name,
		Description:  f.Description,
		Amount:       f.Amount,
		FeeType:      f.FeeType,
		Frequency:    f.Frequency,
		IsMandatory:  f.IsMandatory,
		IsRefundable: f.IsRefundable,
		Status:       f.Status,
	}
}
