package service

import (
	"context"
	"errors"
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
	"okulpazar/backend/pkg/slug"
)

// ── campaign errors ──

var (
	ErrCampaignDenied         = pkgerrors.Forbidden("User does not have permission to manage campaigns")
	ErrCampaignDateOrder      = pkgerrors.Business("Campaign start date must be before end date")
	ErrPromoCodeExists        = pkgerrors.Business("Promo code already exists")
	ErrCampaignNotForSchool   = pkgerrors.Business("Campaign is not active for this school")
	ErrCampaignNotRunning     = pkgerrors.Business("Campaign is not currently active")
	ErrCampaignUsageLimit     = pkgerrors.Business("Campaign usage limit exceeded")
	ErrUserUsageLimit         = pkgerrors.Business("User usage limit exceeded for this campaign")
	ErrSchoolUsageLimit       = pkgerrors.Business("School usage limit exceeded for this campaign")
	ErrInvalidPromoCode       = pkgerrors.Business("Invalid promo code")
	ErrPromoCodeInactive      = pkgerrors.Business("Promo code is not active")
	ErrPromoCodeOutOfWindow   = pkgerrors.Business("Promo code has expired or is not yet valid")
	ErrPromoCodeNotForSchool  = pkgerrors.Business("Promo code is not valid for this school")
	ErrMinPurchaseNotMet      = pkgerrors.Business("Minimum purchase amount not met")
	ErrSchoolHasOpenUsages    = pkgerrors.Business("Cannot remove school from campaign while it has active usages")
	ErrCampaignEnded          = pkgerrors.Business("Campaign has already ended")
	ErrUsageNotPending        = pkgerrors.Business("Campaign usage is not pending validation")
	ErrUsageNotValidated      = pkgerrors.Business("Campaign usage is not validated")
	ErrUsageNotCancellable    = pkgerrors.Business("Campaign usage cannot be cancelled")
	ErrValidationCodeExpired  = pkgerrors.Business("Validation code has expired")
	ErrInvalidValidationCode  = pkgerrors.Business("Invalid validation code")
	ErrUsageDenied            = pkgerrors.Forbidden("User does not have access to this campaign usage")
	ErrDiscountValueRequired  = pkgerrors.Validation("Discount value is required for the selected discount type")
	ErrNegativeOriginalAmount = pkgerrors.Validation("Original amount cannot be negative")
)

var hundred = decimal.NewFromInt(100)

// campaignTransitions legal status moves
var campaignTransitions = map[string][]string{
	model.CampaignStatusDraft:  {model.CampaignStatusActive, model.CampaignStatusCancelled},
	model.CampaignStatusActive: {model.CampaignStatusPaused, model.CampaignStatusCancelled, model.CampaignStatusCompleted},
	model.CampaignStatusPaused: {model.CampaignStatusActive, model.CampaignStatusCancelled, model.CampaignStatusCompleted},
}

func campaignNotFound(id string) error {
	return pkgerrors.NotFoundf("Campaign not found with ID: %s", id)
}

// CampaignService campaigns, school assignment and redemption
type CampaignService interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, actor *access.Actor) (*dto.CampaignResponse, error)
	GetCampaign(ctx context.Context, id string) (*dto.CampaignResponse, error)
	UpdateCampaignStatus(ctx context.Context, id string, req *dto.UpdateCampaignStatusRequest, actor *access.Actor) (*dto.CampaignResponse, error)

	AssignSchoolsToCampaign(ctx context.Context, campaignID string, req *dto.AssignSchoolsRequest, actor *access.Actor) (*dto.SchoolAssignmentResult, error)
	UpdateCampaignSchoolAssignment(ctx context.Context, campaignID string, req *dto.UpdateCampaignSchoolsRequest, actor *access.Actor) (*dto.SchoolAssignmentResult, error)
	RemoveSchoolFromCampaign(ctx context.Context, campaignID, schoolID string, actor *access.Actor) error
	RemoveSchoolsFromCampaign(ctx context.Context, campaignID string, req *dto.RemoveSchoolsRequest, actor *access.Actor) (*dto.SchoolAssignmentResult, error)
	ListCampaignSchools(ctx context.Context, campaignID string) ([]dto.CampaignSchoolResponse, error)

	CreateCampaignUsage(ctx context.Context, req *dto.CreateCampaignUsageRequest, actor *access.Actor) (*dto.CampaignUsageResponse, error)
	ValidateCampaignUsage(ctx context.Context, usageID string, req *dto.ValidateUsageRequest, actor *access.Actor) (*dto.CampaignUsageResponse, error)
	ApproveCampaignUsage(ctx context.Context, usageID string, actor *access.Actor) (*dto.CampaignUsageResponse, error)
	CancelCampaignUsage(ctx context.Context, usageID string, req *dto.CancelUsageRequest, actor *access.Actor) (*dto.CampaignUsageResponse, error)
	ValidatePromoCode(ctx context.Context, code, schoolID string) (*dto.PromoCodeResponse, error)

	// ExpireStaleUsages cancels PENDING usages whose validation code has expired
	ExpireStaleUsages(ctx context.Context) (int64, error)
}

type campaignService struct {
	cfg    *config.CampaignConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCampaignService creates a CampaignService
func NewCampaignService(cfg *config.CampaignConfig, repo *repository.Repository, logger *zap.Logger) CampaignService {
	return &campaignService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// Campaign
// ════════════════════════════════════════════════════════════

func (s *campaignService) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest, actor *access.Actor) (*dto.CampaignResponse, error) {
	scope, err := s.ownerScope(ctx, req.BrandID, req.CampusID)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, scope, access.ManageCampaigns) {
		return nil, ErrCampaignDenied
	}

	if !req.StartDate.Before(req.EndDate) {
		return nil, ErrCampaignDateOrder
	}
	switch req.DiscountType {
	case model.DiscountTypePercentage:
		if req.DiscountPercentage == nil {
			return nil, ErrDiscountValueRequired
		}
	case model.DiscountTypeFixedAmount:
		if req.DiscountAmount == nil {
			return nil, ErrDiscountValueRequired
		}
	}

	var promo *string
	if code := strings.TrimSpace(req.PromoCode); code != "" {
		exists, err := s.repo.Campaign.ExistsByPromoCode(ctx, code)
		if err != nil {
			s.logger.Error("check promo code failed", zap.Error(err))
			return nil, err
		}
		if exists {
			return nil, ErrPromoCodeExists
		}
		promo = &code
	}

	slugValue, err := slug.Unique(ctx, req.Title, s.repo.Campaign.ExistsBySlug)
	if err != nil {
		s.logger.Error("generate campaign slug failed", zap.Error(err))
		return nil, err
	}

	grades, err := encodeJSON(req.TargetGrades)
	if err != nil {
		return nil, err
	}

	c := &model.Campaign{
		Title:                       strings.TrimSpace(req.Title),
		Slug:                        slugValue,
		Description:                 req.Description,
		CampaignType:                req.CampaignType,
		DiscountType:                req.DiscountType,
		MaxDiscountAmount:           req.MaxDiscountAmount,
		MinPurchaseAmount:           req.MinPurchaseAmount,
		StartDate:                   req.StartDate,
		EndDate:                     req.EndDate,
		EarlyBirdEndDate:            req.EarlyBirdEndDate,
		EarlyBirdDiscountPercentage: req.EarlyBirdDiscountPercentage,
		UsageLimit:                  req.UsageLimit,
		PerUserLimit:                req.PerUserLimit,
		PerSchoolLimit:              req.PerSchoolLimit,
		UsageCount:                  0,
		PromoCode:                   promo,
		TargetGrades:                grades,
		Status:                      model.CampaignStatusDraft,
		BrandID:                     req.BrandID,
		CampusID:                    req.CampusID,
		IsActive:                    true,
	}
	// discount amount and percentage are mutually exclusive
	if c.DiscountType == model.DiscountTypePercentage {
		c.DiscountPercentage = req.DiscountPercentage
	} else {
		c.DiscountAmount = req.DiscountAmount
	}
	c.CreatedBy = &actor.UserID

	if err := s.repo.Campaign.Create(ctx, c); err != nil {
		s.logger.Error("create campaign failed", zap.String("title", c.Title), zap.Error(err))
		return nil, err
	}

	s.logger.Info("campaign created", zap.String("campaign_id", c.CampaignID), zap.String("slug", c.Slug))

	resp := toCampaignResponse(c)
	if len(req.SchoolIDs) > 0 {
		resp.SchoolAssignment = s.assign(ctx, c, &dto.AssignSchoolsRequest{SchoolIDs: req.SchoolIDs}, actor)
	}
	return resp, nil
}

func (s *campaignService) GetCampaign(ctx context.Context, id string) (*dto.CampaignResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCampaignResponse(c), nil
}

func (s *campaignService) UpdateCampaignStatus(ctx context.Context, id string, req *dto.UpdateCampaignStatusRequest, actor *access.Actor) (*dto.CampaignResponse, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, campaignScope(c), access.ManageCampaigns) {
		return nil, ErrCampaignDenied
	}

	if c.Status == req.Status {
		return toCampaignResponse(c), nil
	}
	allowed := false
	for _, next := range campaignTransitions[c.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, pkgerrors.Businessf("Invalid campaign status transition from %s to %s", c.Status, req.Status)
	}
	if req.Status == model.CampaignStatusActive && s.now().After(c.EndDate) {
		return nil, ErrCampaignEnded
	}

	c.Status = req.Status
	c.UpdatedBy = &actor.UserID
	if err := s.repo.Campaign.Update(ctx, c); err != nil {
		s.logger.Error("update campaign status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCampaignResponse(c), nil
}

// ════════════════════════════════════════════════════════════
// School assignment
// ════════════════════════════════════════════════════════════

func (s *campaignService) AssignSchoolsToCampaign(ctx context.Context, campaignID string, req *dto.AssignSchoolsRequest, actor *access.Actor) (*dto.SchoolAssignmentResult, error) {
	c, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, campaignScope(c), access.ManageCampaigns) {
		return nil, ErrCampaignDenied
	}
	return s.assign(ctx, c, req, actor), nil
}

// assign links every school independently; one failure never aborts the rest
func (s *campaignService) assign(ctx context.Context, c *model.Campaign, req *dto.AssignSchoolsRequest, actor *access.Actor) *dto.SchoolAssignmentResult {
	result := newAssignmentResult(len(req.SchoolIDs))

	for _, schoolID := range req.SchoolIDs {
		school, err := s.repo.Institution.GetActiveSchool(ctx, schoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Errors = append(result.Errors, dto.ItemMessage{ID: schoolID, Message: schoolNotFound(schoolID).Error()})
				continue
			}
			result.Errors = append(result.Errors, dto.ItemMessage{ID: schoolID, Message: err.Error()})
			continue
		}
		if !access.Can(actor, access.SchoolScope(school), access.ManageCampaigns) {
			result.Errors = append(result.Errors, dto.ItemMessage{ID: schoolID, Message: "User does not have permission to assign this school"})
			continue
		}

		_, err = s.repo.CampaignSchool.GetLink(ctx, c.CampaignID, schoolID)
		if err == nil {
			result.Warnings = append(result.Warnings, dto.ItemMessage{ID: schoolID, Message: "School is already assigned to this campaign"})
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			result.Errors = append(result.Errors, dto.ItemMessage{ID: schoolID, Message: err.Error()})
			continue
		}

		link := &model.CampaignSchool{
			CampaignID:               c.CampaignID,
			SchoolID:                 schoolID,
			Status:                   model.CampaignSchoolStatusActive,
			CustomDiscountPercentage: req.CustomDiscountPercentage,
			CustomDiscountAmount:     req.CustomDiscountAmount,
			CustomUsageLimit:         req.CustomUsageLimit,
			CustomStartDate:          req.CustomStartDate,
			CustomEndDate:            req.CustomEndDate,
			IsFeatured:               req.IsFeatured,
			DisplayPriority:          req.DisplayPriority,
		}
		link.CreatedBy = &actor.UserID
		if err := s.repo.CampaignSchool.Create(ctx, link); err != nil {
			s.logger.Error("create campaign school link failed",
				zap.String("campaign_id", c.CampaignID), zap.String("school_id", schoolID), zap.Error(err))
			result.Errors = append(result.Errors, dto.ItemMessage{ID: schoolID, Message: err.Error()})
			continue
		}
		result.Processed = append(result.Processed, schoolID)
	}

	return finishAssignment(result)
}

func (s *campaignService) UpdateCampaignSchoolAssignment(ctx context.Context, campaignID string, req *dto.UpdateCampaignSchoolsRequest, actor *access.Actor) (*dto.SchoolAssignmentResult, error) {
	c, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, campaignScope(c), access.ManageCampaigns) {
		return nil, ErrCampaignDenied
	}

	result := newAssignmentResult(len(req.SchoolIDs))
	for _, schoolID := range req.SchoolIDs {
		link, err := s.repo.CampaignSchool.GetLink(ctx, campaignID, schoolID)
		if err != nil {
			msg := err.Error()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				msg = "School is not assigned to this campaign"
			}
			result.Errors = append(result.Errors, dto.ItemMessage{ID: schoolID, Message: msg})
			continue
		}

		if req.Status != nil {
			link.Status = *req.Status
		}
		if req.CustomDiscountPercentage != nil {
			link.CustomDiscountPercentage = req.CustomDiscountPercentage
		}
		if req.CustomDiscountAmount != nil {
			link.CustomDiscountAmount = req.CustomDiscountAmount
		}
		if req.CustomUsageLimit != nil {
			link.CustomUsageLimit = req.CustomUsageLimit
		}
		if req.IsFeatured != nil {
			link.IsFeatured = *req.IsFeatured
		}
		if req.DisplayPriority != nil {
			link.DisplayPriority = *req.DisplayPriority
		}
		link.UpdatedBy = &actor.UserID

		if err := s.repo.CampaignSchool.Save(ctx, link); err != nil {
			s.logger.Error("update campaign school link failed", zap.String("id", link.CampaignSchoolID), zap.Error(err))
			result.Errors = append(result.Errors, dto.ItemMessage{ID: schoolID, Message: err.Error()})
			continue
		}
		result.Processed = append(result.Processed, schoolID)
	}
	return finishAssignment(result), nil
}

func (s *campaignService) RemoveSchoolFromCampaign(ctx context.Context, campaignID, schoolID string, actor *access.Actor) error {
	c, err := s.load(ctx, campaignID)
	if err != nil {
		return err
	}
	if !access.Can(actor, campaignScope(c), access.ManageCampaigns) {
		return ErrCampaignDenied
	}
	return s.remove(ctx, campaignID, schoolID, actor)
}

func (s *campaignService) RemoveSchoolsFromCampaign(ctx context.Context, campaignID string, req *dto.RemoveSchoolsRequest, actor *access.Actor) (*dto.SchoolAssignmentResult, error) {
	c, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, campaignScope(c), access.ManageCampaigns) {
		return nil, ErrCampaignDenied
	}

	result := newAssignmentResult(len(req.SchoolIDs))
	for _, schoolID := range req.SchoolIDs {
		if err := s.remove(ctx, campaignID, schoolID, actor); err != nil {
			result.Errors = append(result.Errors, dto.ItemMessage{ID: schoolID, Message: err.Error()})
			continue
		}
		result.Processed = append(result.Processed, schoolID)
	}
	return finishAssignment(result), nil
}

func (s *campaignService) remove(ctx context.Context, campaignID, schoolID string, actor *access.Actor) error {
	link, err := s.repo.CampaignSchool.GetLink(ctx, campaignID, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound("School is not assigned to this campaign")
		}
		return err
	}

	open, err := s.repo.CampaignUsage.CountOpenBySchool(ctx, campaignID, schoolID)
	if err != nil {
		s.logger.Error("count open usages failed", zap.String("campaign_id", campaignID), zap.Error(err))
		return err
	}
	if open > 0 {
		return ErrSchoolHasOpenUsages
	}

	link.Status = model.CampaignSchoolStatusRemoved
	link.UpdatedBy = &actor.UserID
	return s.repo.CampaignSchool.Save(ctx, link)
}

func (s *campaignService) ListCampaignSchools(ctx context.Context, campaignID string) ([]dto.CampaignSchoolResponse, error) {
	if _, err := s.load(ctx, campaignID); err != nil {
		return nil, err
	}
	links, err := s.repo.CampaignSchool.ListByCampaign(ctx, campaignID)
	if err != nil {
		s.logger.Error("list campaign schools failed", zap.String("campaign_id", campaignID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.CampaignSchoolResponse, 0, len(links))
	for i := range links {
		l := &links[i]
		item := dto.CampaignSchoolResponse{
			ID:                       l.CampaignSchoolID,
			CampaignID:               l.CampaignID,
			SchoolID:                 l.SchoolID,
			Status:                   l.Status,
			CustomDiscountPercentage: l.CustomDiscountPercentage,
			CustomDiscountAmount:     l.CustomDiscountAmount,
			CustomUsageLimit:         l.CustomUsageLimit,
			IsFeatured:               l.IsFeatured,
			DisplayPriority:          l.DisplayPriority,
		}
		if l.School != nil {
			item.SchoolName = l.School.Name
		}
		result = append(result, item)
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// Usage
// ════════════════════════════════════════════════════════════

func (s *campaignService) CreateCampaignUsage(ctx context.Context, req *dto.CreateCampaignUsageRequest, actor *access.Actor) (*dto.CampaignUsageResponse, error) {
	if req.OriginalAmount.IsNegative() {
		return nil, ErrNegativeOriginalAmount
	}

	var usage *model.CampaignUsage
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		c, err := tx.Campaign.LockActiveByID(ctx, req.CampaignID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return campaignNotFound(req.CampaignID)
			}
			return err
		}

		link, err := tx.CampaignSchool.GetLink(ctx, c.CampaignID, req.SchoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotForSchool
			}
			return err
		}
		if link.Status != model.CampaignSchoolStatusActive {
			return ErrCampaignNotForSchool
		}

		now := s.now()
		if c.Status != model.CampaignStatusActive || !runsAt(c, link, now) {
			return ErrCampaignNotRunning
		}

		if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
			return ErrCampaignUsageLimit
		}
		if c.PerUserLimit != nil {
			n, err := tx.CampaignUsage.CountByUser(ctx, c.CampaignID, actor.UserID)
			if err != nil {
				return err
			}
			if n >= int64(*c.PerUserLimit) {
				return ErrUserUsageLimit
			}
		}
		if limit := schoolLimit(c, link); limit != nil {
			n, err := tx.CampaignUsage.CountBySchool(ctx, c.CampaignID, req.SchoolID)
			if err != nil {
				return err
			}
			if n >= int64(*limit) {
				return ErrSchoolUsageLimit
			}
		}

		var promoUsed *string
		if c.PromoCode != nil && *c.PromoCode != "" {
			if !strings.EqualFold(strings.TrimSpace(req.PromoCode), *c.PromoCode) {
				return ErrInvalidPromoCode
			}
			promoUsed = c.PromoCode
		}

		if c.MinPurchaseAmount != nil && req.OriginalAmount.LessThan(*c.MinPurchaseAmount) {
			return ErrMinPurchaseNotMet
		}

		amount := req.OriginalAmount.Round(2)
		discount := computeDiscount(c, link, amount, now)

		code, err := randomCode(8)
		if err != nil {
			return err
		}

		ok, err := tx.Campaign.IncrementUsage(ctx, c.CampaignID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCampaignUsageLimit
		}

		usage = &model.CampaignUsage{
			CampaignID:          c.CampaignID,
			SchoolID:            req.SchoolID,
			UserID:              actor.UserID,
			UsageType:           req.UsageType,
			OriginalAmount:      amount,
			DiscountAmount:      discount,
			FinalAmount:         amount.Sub(discount),
			PromoCodeUsed:       promoUsed,
			StudentName:         req.StudentName,
			GradeLevel:          req.GradeLevel,
			Status:              model.UsageStatusPending,
			ValidationCode:      code,
			ValidationExpiresAt: now.Add(s.cfg.ValidationCodeTTL),
		}
		usage.CreatedBy = &actor.UserID
		return tx.CampaignUsage.Create(ctx, usage)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == 0 {
			s.logger.Error("create campaign usage failed", zap.String("campaign_id", req.CampaignID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("campaign usage created",
		zap.String("usage_id", usage.UsageID),
		zap.String("campaign_id", usage.CampaignID),
		zap.String("discount", usage.DiscountAmount.StringFixed(2)))

	return toUsageResponse(usage, true), nil
}

func (s *campaignService) ValidateCampaignUsage(ctx context.Context, usageID string, req *dto.ValidateUsageRequest, actor *access.Actor) (*dto.CampaignUsageResponse, error) {
	u, err := s.loadUsage(ctx, usageID)
	if err != nil {
		return nil, err
	}
	if u.UserID != actor.UserID && !s.canManageUsage(u, actor) {
		return nil, ErrUsageDenied
	}
	if u.Status != model.UsageStatusPending {
		return nil, ErrUsageNotPending
	}
	now := s.now()
	if now.After(u.ValidationExpiresAt) {
		return nil, ErrValidationCodeExpired
	}
	if !strings.EqualFold(strings.TrimSpace(req.ValidationCode), u.ValidationCode) {
		return nil, ErrInvalidValidationCode
	}

	u.Status = model.UsageStatusValidated
	u.ValidatedAt = &now
	u.UpdatedBy = &actor.UserID
	if err := s.repo.CampaignUsage.Save(ctx, u); err != nil {
		s.logger.Error("validate usage failed", zap.String("id", usageID), zap.Error(err))
		return nil, err
	}
	return toUsageResponse(u, false), nil
}

func (s *campaignService) ApproveCampaignUsage(ctx context.Context, usageID string, actor *access.Actor) (*dto.CampaignUsageResponse, error) {
	u, err := s.loadUsage(ctx, usageID)
	if err != nil {
		return nil, err
	}
	if !s.canManageUsage(u, actor) {
		return nil, ErrCampaignDenied
	}
	if u.Status != model.UsageStatusValidated {
		return nil, ErrUsageNotValidated
	}

	now := s.now()
	u.Status = model.UsageStatusApproved
	u.ApprovedAt = &now
	u.ApprovedBy = &actor.UserID
	u.UpdatedBy = &actor.UserID
	if err := s.repo.CampaignUsage.Save(ctx, u); err != nil {
		s.logger.Error("approve usage failed", zap.String("id", usageID), zap.Error(err))
		return nil, err
	}
	return toUsageResponse(u, false), nil
}

func (s *campaignService) CancelCampaignUsage(ctx context.Context, usageID string, req *dto.CancelUsageRequest, actor *access.Actor) (*dto.CampaignUsageResponse, error) {
	u, err := s.loadUsage(ctx, usageID)
	if err != nil {
		return nil, err
	}
	if u.UserID != actor.UserID && !s.canManageUsage(u, actor) {
		return nil, ErrUsageDenied
	}
	if u.Status == model.UsageStatusCancelled || u.Status == model.UsageStatusApproved {
		return nil, ErrUsageNotCancellable
	}

	now := s.now()
	u.Status = model.UsageStatusCancelled
	u.CancelledAt = &now
	u.CancellationReason = req.Reason
	u.UpdatedBy = &actor.UserID
	if err := s.repo.CampaignUsage.Save(ctx, u); err != nil {
		s.logger.Error("cancel usage failed", zap.String("id", usageID), zap.Error(err))
		return nil, err
	}
	return toUsageResponse(u, false), nil
}

func (s *campaignService) ValidatePromoCode(ctx context.Context, code, schoolID string) (*dto.PromoCodeResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidPromoCode
	}

	c, err := s.repo.Campaign.GetByPromoCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPromoCode
		}
		s.logger.Error("promo code lookup failed", zap.Error(err))
		return nil, err
	}
	if !c.IsActive || c.Status != model.CampaignStatusActive {
		return nil, ErrPromoCodeInactive
	}
	if !c.RunsAt(s.now()) {
		return nil, ErrPromoCodeOutOfWindow
	}

	link, err := s.repo.CampaignSchool.GetLink(ctx, c.CampaignID, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoCodeNotForSchool
		}
		return nil, err
	}
	if link.Status != model.CampaignSchoolStatusActive {
		return nil, ErrPromoCodeNotForSchool
	}

	return &dto.PromoCodeResponse{
		Valid:              true,
		CampaignID:         c.CampaignID,
		Title:              c.Title,
		DiscountType:       c.DiscountType,
		DiscountAmount:     firstDecimal(link.CustomDiscountAmount, c.DiscountAmount),
		DiscountPercentage: firstDecimal(link.CustomDiscountPercentage, c.DiscountPercentage),
		MaxDiscountAmount:  c.MaxDiscountAmount,
		MinPurchaseAmount:  c.MinPurchaseAmount,
		EndDate:            dto.FormatTime(&c.EndDate),
	}, nil
}

func (s *campaignService) ExpireStaleUsages(ctx context.Context) (int64, error) {
	n, err := s.repo.CampaignUsage.ExpirePending(ctx, s.now())
	if err != nil {
		s.logger.Error("expire stale usages failed", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ── helpers ──

func (s *campaignService) load(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := s.repo.Campaign.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, campaignNotFound(id)
		}
		s.logger.Error("load campaign failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *campaignService) loadUsage(ctx context.Context, id string) (*model.CampaignUsage, error) {
	u, err := s.repo.CampaignUsage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFoundf("Campaign usage not found with ID: %s", id)
		}
		s.logger.Error("load usage failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (s *campaignService) canManageUsage(u *model.CampaignUsage, actor *access.Actor) bool {
	if u.Campaign == nil {
		return actor.IsSystem()
	}
	return access.Can(actor, campaignScope(u.Campaign), access.ManageCampaigns)
}

// ownerScope resolves the brand of a campus-owned campaign
func (s *campaignService) ownerScope(ctx context.Context, brandID, campusID *string) (access.Scope, error) {
	var scope access.Scope
	if brandID != nil {
		scope.BrandID = *brandID
	}
	if campusID != nil {
		campus, err := s.repo.Institution.GetActiveCampus(ctx, *campusID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return scope, ErrCampusNotFound
			}
			return scope, err
		}
		scope.CampusID = campus.CampusID
		if scope.BrandID == "" {
			scope.BrandID = campus.BrandID
		}
	}
	return scope, nil
}

func campaignScope(c *model.Campaign) access.Scope {
	var scope access.Scope
	if c.BrandID != nil {
		scope.BrandID = *c.BrandID
	}
	if c.CampusID != nil {
		scope.CampusID = *c.CampusID
	}
	if c.CreatedBy != nil {
		scope.CreatedBy = *c.CreatedBy
	}
	return scope
}

// runsAt campaign window, narrowed by the school link's custom window
func runsAt(c *model.Campaign, link *model.CampaignSchool, t time.Time) bool {
	if !c.RunsAt(t) {
		return false
	}
	if link.CustomStartDate != nil && t.Before(*link.CustomStartDate) {
		return false
	}
	if link.CustomEndDate != nil && t.After(*link.CustomEndDate) {
		return false
	}
	return true
}

func schoolLimit(c *model.Campaign, link *model.CampaignSchool) *int {
	if link.CustomUsageLimit != nil {
		return link.CustomUsageLimit
	}
	return c.PerSchoolLimit
}

// computeDiscount applies the campaign (or school override) discount to amount.
// The rounded result is capped at maxDiscountAmount and at the rounded amount.
func computeDiscount(c *model.Campaign, link *model.CampaignSchool, amount decimal.Decimal, now time.Time) decimal.Decimal {
	var discount decimal.Decimal
	amount = amount.Round(2)

	switch c.DiscountType {
	case model.DiscountTypePercentage:
		pct := firstDecimal(link.CustomDiscountPercentage, c.DiscountPercentage)
		if c.EarlyBirdEndDate != nil && c.EarlyBirdDiscountPercentage != nil && !now.After(*c.EarlyBirdEndDate) {
			pct = c.EarlyBirdDiscountPercentage
		}
		if pct != nil {
			discount = amount.Mul(*pct).Div(hundred)
		}
	case model.DiscountTypeFixedAmount:
		if v := firstDecimal(link.CustomDiscountAmount, c.DiscountAmount); v != nil {
			discount = *v
		}
	}

	discount = discount.Round(2)
	if c.MaxDiscountAmount != nil && discount.GreaterThan(*c.MaxDiscountAmount) {
		discount = c.MaxDiscountAmount.Round(2)
	}
	if discount.GreaterThan(amount) {
		discount = amount
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount
}

func firstDecimal(values ...*decimal.Decimal) *decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func newAssignmentResult(total int) *dto.SchoolAssignmentResult {
	return &dto.SchoolAssignmentResult{
		Total:     total,
		Processed: []string{},
		Errors:    []dto.ItemMessage{},
		Warnings:  []dto.ItemMessage{},
	}
}

func finishAssignment(r *dto.SchoolAssignmentResult) *dto.SchoolAssignmentResult {
	r.SuccessCount = len(r.Processed)
	r.Success = len(r.Errors) == 0
	return r
}

func toCampaignResponse(c *model.Campaign) *dto.CampaignResponse {
	resp := &dto.CampaignResponse{
		ID:                 c.CampaignID,
		Title:              c.Title,
		Slug:               c.Slug,
		Description:        c.Description,
		CampaignType:       c.CampaignType,
		DiscountType:       c.DiscountType,
		DiscountAmount:     c.DiscountAmount,
		DiscountPercentage: c.DiscountPercentage,
		MaxDiscountAmount:  c.MaxDiscountAmount,
		MinPurchaseAmount:  c.MinPurchaseAmount,
		StartDate:          dto.FormatTime(&c.StartDate),
		EndDate:            dto.FormatTime(&c.EndDate),
		EarlyBirdEndDate:   dto.FormatTime(c.EarlyBirdEndDate),
		UsageLimit:         c.UsageLimit,
		PerUserLimit:       c.PerUserLimit,
		PerSchoolLimit:     c.PerSchoolLimit,
		UsageCount:         c.UsageCount,
		PromoCode:          c.PromoCode,
		TargetGrades:       decodeStrings(c.TargetGrades),
		Status:             c.Status,
		Version:            c.Version,
	}
	return resp
}

// toUsageResponse withCode exposes the validation code (only to its creator at creation)
func toUsageResponse(u *model.CampaignUsage, withCode bool) *dto.CampaignUsageResponse {
	resp := &dto.CampaignUsageResponse{
		ID:                  u.UsageID,
		CampaignID:          u.CampaignID,
		SchoolID:            u.SchoolID,
		UserID:              u.UserID,
		UsageType:           u.UsageType,
		OriginalAmount:      u.OriginalAmount,
		DiscountAmount:      u.DiscountAmount,
		FinalAmount:         u.FinalAmount,
		PromoCodeUsed:       u.PromoCodeUsed,
		Status:              u.Status,
		ValidationExpiresAt: dto.FormatTime(&u.ValidationExpiresAt),
		CreatedAt:           dto.FormatTime(&u.CreatedAt),
	}
	if withCode {
		resp.ValidationCode = u.ValidationCode
	}
	return resp
}
