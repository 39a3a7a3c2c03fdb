package handler

import (
	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/service"
	"okulpazar/backend/pkg/response"
)

// PricingHandler school price lists, approval and quotes
type PricingHandler struct {
	pricingSvc service.PricingService
}

// NewPricingHandler creates a PricingHandler
func NewPricingHandler(pricingSvc service.PricingService) *PricingHandler {
	return &PricingHandler{pricingSvc: pricingSvc}
}

// CreatePricing POST /api/v1/pricing
func (h *PricingHandler) CreatePricing(c *gin.Context) {
	var req dto.CreatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	pricing, err := h.pricingSvc.CreateSchoolPricing(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, pricing)
}

// GetPricing GET /api/v1/pricing/:id
func (h *PricingHandler) GetPricing(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	pricing, err := h.pricingSvc.GetSchoolPricing(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, pricing)
}

// ListPricing GET /api/v1/schools/:id/pricing
func (h *PricingHandler) ListPricing(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, err := h.pricingSvc.ListSchoolPricing(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// UpdatePricing PUT /api/v1/pricing/:id
func (h *PricingHandler) UpdatePricing(c *gin.Context) {
	var req dto.UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	pricing, err := h.pricingSvc.UpdateSchoolPricing(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, pricing)
}

// SubmitPricing POST /api/v1/pricing/:id/submit
func (h *PricingHandler) SubmitPricing(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	pricing, err := h.pricingSvc.SubmitSchoolPricing(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, pricing)
}

// ApprovePricing POST /api/v1/pricing/:id/approve
func (h *PricingHandler) ApprovePricing(c *gin.Context) {
	var req dto.ApprovePricingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	pricing, err := h.pricingSvc.ApproveSchoolPricing(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, pricing)
}

// CreateCustomFee POST /api/v1/pricing/:id/fees
func (h *PricingHandler) CreateCustomFee(c *gin.Context) {
	var req dto.CreateCustomFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	fee, err := h.pricingSvc.CreateCustomFee(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, fee)
}

// BulkUpdate POST /api/v1/pricing/bulk
func (h *PricingHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.pricingSvc.BulkUpdatePricing(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// ListHistory GET /api/v1/pricing/:id/history
func (h *PricingHandler) ListHistory(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	history, err := h.pricingSvc.ListPriceHistory(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": history})
}

// GetPublicPricing GET /api/v1/public/pricing/:slug?grade_level=&academic_year=
func (h *PricingHandler) GetPublicPricing(c *gin.Context) {
	gradeLevel, academicYear := c.Query("grade_level"), c.Query("academic_year")
	if gradeLevel == "" || academicYear == "" {
		response.BadRequest(c, CodeValidation, "grade_level and academic_year are required")
		return
	}

	pricing, err := h.pricingSvc.GetPublicSchoolPricing(c.Request.Context(), c.Param("slug"), gradeLevel, academicYear)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, pricing)
}

// CalculateCost POST /api/v1/public/pricing/quote
func (h *PricingHandler) CalculateCost(c *gin.Context) {
	var req dto.CostCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	quote, err := h.pricingSvc.CalculateTotalCost(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, quote)
}
