package handler

import (
	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/service"
	"okulpazar/backend/pkg/response"
)

// CampaignHandler campaigns, school assignments and usages
type CampaignHandler struct {
	campaignSvc service.CampaignService
}

// NewCampaignHandler creates a CampaignHandler
func NewCampaignHandler(campaignSvc service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignSvc: campaignSvc}
}

// CreateCampaign POST /api/v1/campaigns
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req dto.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	campaign, err := h.campaignSvc.CreateCampaign(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, campaign)
}

// GetCampaign GET /api/v1/campaigns/:id
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.campaignSvc.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, campaign)
}

// UpdateStatus PUT /api/v1/campaigns/:id/status
func (h *CampaignHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	campaign, err := h.campaignSvc.UpdateCampaignStatus(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, campaign)
}

// ── school assignments ──

// AssignSchools POST /api/v1/campaigns/:id/schools
func (h *CampaignHandler) AssignSchools(c *gin.Context) {
	var req dto.AssignSchoolsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.campaignSvc.AssignSchoolsToCampaign(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateSchools PUT /api/v1/campaigns/:id/schools
func (h *CampaignHandler) UpdateSchools(c *gin.Context) {
	var req dto.UpdateCampaignSchoolsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.campaignSvc.UpdateCampaignSchoolAssignment(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// RemoveSchools DELETE /api/v1/campaigns/:id/schools
func (h *CampaignHandler) RemoveSchools(c *gin.Context) {
	var req dto.RemoveSchoolsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.campaignSvc.RemoveSchoolsFromCampaign(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// RemoveSchool DELETE /api/v1/campaigns/:id/schools/:school_id
func (h *CampaignHandler) RemoveSchool(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.campaignSvc.RemoveSchoolFromCampaign(c.Request.Context(), c.Param("id"), c.Param("school_id"), actor); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListSchools GET /api/v1/campaigns/:id/schools
func (h *CampaignHandler) ListSchools(c *gin.Context) {
	schools, err := h.campaignSvc.ListCampaignSchools(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": schools})
}

// ── usages ──

// CreateUsage POST /api/v1/campaign-usages
func (h *CampaignHandler) CreateUsage(c *gin.Context) {
	var req dto.CreateCampaignUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	usage, err := h.campaignSvc.CreateCampaignUsage(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, usage)
}

// ValidateUsage POST /api/v1/campaign-usages/:id/validate
func (h *CampaignHandler) ValidateUsage(c *gin.Context) {
	var req dto.ValidateUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	usage, err := h.campaignSvc.ValidateCampaignUsage(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, usage)
}

// ApproveUsage POST /api/v1/campaign-usages/:id/approve
func (h *CampaignHandler) ApproveUsage(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	usage, err := h.campaignSvc.ApproveCampaignUsage(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, usage)
}

// CancelUsage POST /api/v1/campaign-usages/:id/cancel
func (h *CampaignHandler) CancelUsage(c *gin.Context) {
	var req dto.CancelUsageRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	usage, err := h.campaignSvc.CancelCampaignUsage(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, usage)
}

// ValidatePromoCode GET /api/v1/public/promo-codes/:code?school_id=
func (h *CampaignHandler) ValidatePromoCode(c *gin.Context) {
	schoolID := c.Query("school_id")
	if schoolID == "" {
		response.BadRequest(c, CodeValidation, "school_id is required")
		return
	}

	promo, err := h.campaignSvc.ValidatePromoCode(c.Request.Context(), c.Param("code"), schoolID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, promo)
}
