package handler

import (
	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/service"
	"okulpazar/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ReportHandler appointment statistics and exports
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// GetStatistics GET /api/v1/reports/appointments/statistics?school_id=&date_from=&date_to=
func (h *ReportHandler) GetStatistics(c *gin.Context) {
	var req dto.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	stats, err := h.reportSvc.GetAppointmentStatistics(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, stats)
}

// GenerateReport GET /api/v1/reports/appointments?report_type=SUMMARY|STAFF_PERFORMANCE
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	var req dto.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.GenerateAppointmentReport(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, report)
}

// ExportReport GET /api/v1/reports/appointments/export
func (h *ReportHandler) ExportReport(c *gin.Context) {
	var req dto.StatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportSvc.ExportAppointmentReport(c.Request.Context(), &req, actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.File(c, contentTypeXLSX, filename, buf.Bytes())
}

// ExportICS GET /api/v1/public/appointments/:number/ics
func (h *ReportHandler) ExportICS(c *gin.Context) {
	body, filename, err := h.reportSvc.ExportAppointmentICS(c.Request.Context(), c.Param("number"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.File(c, contentTypeICS, filename, body)
}
