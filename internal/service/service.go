package service

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"okulpazar/backend/config"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
)

// Service aggregates every service
type Service struct {
	Actor       ActorService
	Auth        AuthService
	Slot        SlotService
	Appointment AppointmentService
	Report      ReportService
	Campaign    CampaignService
	Pricing     PricingService
	Content     ContentService
	Property    PropertyService
}

// NewService wires every service on one repository aggregate
func NewService(cfg *config.Config, repo *repository.Repository, revoker TokenRevoker, logger *zap.Logger) *Service {
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		Actor:       NewActorService(repo, logger),
		Auth:        NewAuthService(repo, revoker, logger),
		Slot:        NewSlotService(repo, logger),
		Appointment: NewAppointmentService(&cfg.Booking, loc, repo, logger),
		Report:      NewReportService(&cfg.Booking, loc, repo, logger),
		Campaign:    NewCampaignService(&cfg.Campaign, repo, logger),
		Pricing:     NewPricingService(&cfg.Pricing, repo, logger),
		Content:     NewContentService(repo, logger),
		Property:    NewPropertyService(repo, logger),
	}
}

// ── shared errors ──

var (
	ErrCampusNotFound   = pkgerrors.NotFound("Campus not found")
	ErrPropertyNotFound = pkgerrors.NotFound("Property not found")
)

// ── helpers ──

func schoolNotFound(id string) error {
	return pkgerrors.NotFoundf("School not found with ID: %s", id)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// encodeJSON marshals v into a JSON column; empty slices store NULL
func encodeJSON[T any](v []T) (datatypes.JSON, error) {
	if len(v) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomCode n uppercase alphanumerics from crypto/rand
func randomCode(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b), nil
}

// decodeStrings reads a JSON string array column; malformed content yields nil
func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
