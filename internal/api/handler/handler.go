package handler

import "okulpazar/backend/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Auth        *AuthHandler
	Slot        *SlotHandler
	Appointment *AppointmentHandler
	Report      *ReportHandler
	Campaign    *CampaignHandler
	Pricing     *PricingHandler
	Content     *ContentHandler
	Property    *PropertyHandler
}

// NewHandler wires handlers onto the service aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Slot:        NewSlotHandler(svc.Slot),
		Appointment: NewAppointmentHandler(svc.Appointment),
		Report:      NewReportHandler(svc.Report),
		Campaign:    NewCampaignHandler(svc.Campaign),
		Pricing:     NewPricingHandler(svc.Pricing),
		Content:     NewContentHandler(svc.Content),
		Property:    NewPropertyHandler(svc.Property),
	}
}
