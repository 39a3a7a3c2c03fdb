package handler

import (
	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/service"
	"okulpazar/backend/pkg/response"
)

// AppointmentHandler bookings, availability and the waitlist
type AppointmentHandler struct {
	appointmentSvc service.AppointmentService
}

// NewAppointmentHandler creates an AppointmentHandler
func NewAppointmentHandler(appointmentSvc service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentSvc: appointmentSvc}
}

// CreateAppointment POST /api/v1/appointments
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	apt, err := h.appointmentSvc.CreateAppointment(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, apt)
}

// CreatePublicAppointment POST /api/v1/public/appointments
func (h *AppointmentHandler) CreatePublicAppointment(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	apt, err := h.appointmentSvc.CreatePublicAppointment(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, apt)
}

// GetAppointment GET /api/v1/appointments/:id
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	apt, err := h.appointmentSvc.GetAppointment(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, apt)
}

// GetAppointmentByNumber GET /api/v1/public/appointments/:number
func (h *AppointmentHandler) GetAppointmentByNumber(c *gin.Context) {
	apt, err := h.appointmentSvc.GetAppointmentByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, apt)
}

// CancelAppointment POST /api/v1/appointments/:id/cancel
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	var req dto.CancelAppointmentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	req.AppointmentID = c.Param("id")
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	apt, err := h.appointmentSvc.CancelAppointment(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, apt)
}

// CancelPublicAppointment POST /api/v1/public/appointments/:number/cancel
func (h *AppointmentHandler) CancelPublicAppointment(c *gin.Context) {
	var req dto.PublicCancelRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	req.AppointmentNumber = c.Param("number")

	apt, err := h.appointmentSvc.CancelPublicAppointment(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, apt)
}

// RescheduleAppointment POST /api/v1/appointments/:id/reschedule
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req dto.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.AppointmentID = c.Param("id")
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	apt, err := h.appointmentSvc.RescheduleAppointment(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, apt)
}

// ConfirmAppointment POST /api/v1/appointments/:id/confirm
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	apt, err := h.appointmentSvc.ConfirmAppointment(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, apt)
}

// CompleteAppointment POST /api/v1/appointments/:id/complete
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	apt, err := h.appointmentSvc.CompleteAppointment(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, apt)
}

// BulkUpdate POST /api/v1/appointments/bulk
func (h *AppointmentHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.appointmentSvc.BulkUpdateAppointments(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// SearchAppointments GET /api/v1/appointments
func (h *AppointmentHandler) SearchAppointments(c *gin.Context) {
	var req dto.AppointmentSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	list, total, err := h.appointmentSvc.SearchAppointments(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKPage(c, list, total, req.Page, req.Size)
}

// GetAvailability GET /api/v1/public/schools/:id/availability
func (h *AppointmentHandler) GetAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	req.SchoolID = c.Param("id")

	days, err := h.appointmentSvc.GetAvailabilityBetweenDates(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": days})
}

// AddToWaitlist POST /api/v1/public/waitlist
// Anonymous requests are accepted; a parent's token links the entry to the account.
func (h *AppointmentHandler) AddToWaitlist(c *gin.Context) {
	var req dto.WaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	entry, err := h.appointmentSvc.AddToWaitlist(c.Request.Context(), &req, OptionalActor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, entry)
}

// ListWaitlist GET /api/v1/schools/:id/waitlist
func (h *AppointmentHandler) ListWaitlist(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	entries, err := h.appointmentSvc.ListWaitlist(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": entries})
}
