package handler

import (
	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/service"
	"okulpazar/backend/pkg/response"
)

// SlotHandler recurring appointment slots
type SlotHandler struct {
	slotSvc service.SlotService
}

// NewSlotHandler creates a SlotHandler
func NewSlotHandler(slotSvc service.SlotService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc}
}

// CreateSlot POST /api/v1/slots
func (h *SlotHandler) CreateSlot(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	slot, err := h.slotSvc.CreateSlot(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, slot)
}

// GetSlot GET /api/v1/slots/:id
func (h *SlotHandler) GetSlot(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	slot, err := h.slotSvc.GetSlot(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, slot)
}

// UpdateSlot PUT /api/v1/slots/:id
func (h *SlotHandler) UpdateSlot(c *gin.Context) {
	var req dto.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	slot, err := h.slotSvc.UpdateSlot(c.Request.Context(), c.Param("id"), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, slot)
}

// DeactivateSlot DELETE /api/v1/slots/:id
func (h *SlotHandler) DeactivateSlot(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.slotSvc.DeactivateSlot(c.Request.Context(), c.Param("id"), actor); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListSlots GET /api/v1/schools/:id/slots
func (h *SlotHandler) ListSlots(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	slots, err := h.slotSvc.ListSlots(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": slots})
}
