package handler

import (
	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/service"
	"okulpazar/backend/pkg/response"
)

// PropertyHandler typed institution attributes
type PropertyHandler struct {
	propertySvc service.PropertyService
}

// NewPropertyHandler creates a PropertyHandler
func NewPropertyHandler(propertySvc service.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertySvc: propertySvc}
}

// SetValue PUT /api/v1/properties/values
func (h *PropertyHandler) SetValue(c *gin.Context) {
	var req dto.SetPropertyValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	value, err := h.propertySvc.SetPropertyValue(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, value)
}

// ListValues GET /api/v1/public/properties?campus_id=|school_id=
func (h *PropertyHandler) ListValues(c *gin.Context) {
	var q dto.PropertyValueQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	values, err := h.propertySvc.ListPropertyValues(c.Request.Context(), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": values})
}
