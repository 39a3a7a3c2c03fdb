package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
)

var (
	ErrSlotTimeOrder            = pkgerrors.Business("Start time cannot be after end time")
	ErrSlotTimeMismatch         = pkgerrors.Business("Requested time does not match the slot's time window")
	ErrSlotOverlap              = pkgerrors.Business("An overlapping slot already exists for this time range")
	ErrManageAppointmentsDenied = pkgerrors.Forbidden("User does not have permission to manage appointments for this school")
	ErrReadAppointmentsDenied   = pkgerrors.Forbidden("User does not have access to appointments of this school")
)

func slotNotFound(id string) error {
	return pkgerrors.NotFoundf("Slot not found with ID: %s", id)
}

// SlotService recurring availability slots
type SlotService interface {
	CreateSlot(ctx context.Context, req *dto.CreateSlotRequest, actor *access.Actor) (*dto.SlotResponse, error)
	GetSlot(ctx context.Context, id string, actor *access.Actor) (*dto.SlotResponse, error)
	UpdateSlot(ctx context.Context, id string, req *dto.UpdateSlotRequest, actor *access.Actor) (*dto.SlotResponse, error)
	// DeactivateSlot slots are never hard-deleted
	DeactivateSlot(ctx context.Context, id string, actor *access.Actor) error
	ListSlots(ctx context.Context, schoolID string, actor *access.Actor) ([]dto.SlotResponse, error)
}

type slotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSlotService creates a SlotService
func NewSlotService(repo *repository.Repository, logger *zap.Logger) SlotService {
	return &slotService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *slotService) CreateSlot(ctx context.Context, req *dto.CreateSlotRequest, actor *access.Actor) (*dto.SlotResponse, error) {
	school, err := s.repo.Institution.GetActiveSchool(ctx, req.SchoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schoolNotFound(req.SchoolID)
		}
		s.logger.Error("load school failed", zap.String("id", req.SchoolID), zap.Error(err))
		return nil, err
	}

	if !access.Can(actor, access.SchoolScope(school), access.ManageAppointments) {
		return nil, ErrManageAppointmentsDenied
	}

	startTime, endTime, err := clockRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if req.StaffUserID != nil {
		if err := s.ensureStaff(ctx, *req.StaffUserID); err != nil {
			return nil, err
		}
	}

	overlap, err := s.repo.Slot.ExistsOverlapping(ctx, school.SchoolID, req.DayOfWeek, startTime, endTime, req.StaffUserID, "")
	if err != nil {
		s.logger.Error("slot overlap check failed", zap.Error(err))
		return nil, err
	}
	if overlap {
		return nil, ErrSlotOverlap
	}

	excluded, err := encodeJSON(req.ExcludedDates)
	if err != nil {
		return nil, err
	}

	capacity := req.Capacity
	if capacity == 0 {
		capacity = 1
	}

	slot := &model.AppointmentSlot{
		SchoolID:            school.SchoolID,
		StaffUserID:         req.StaffUserID,
		DayOfWeek:           req.DayOfWeek,
		StartTime:           startTime,
		EndTime:             endTime,
		Capacity:            capacity,
		AppointmentType:     req.AppointmentType,
		AdvanceBookingHours: req.AdvanceBookingHours,
		CancellationHours:   req.CancellationHours,
		RequiresApproval:    req.RequiresApproval,
		ExcludedDates:       excluded,
		IsActive:            true,
	}
	slot.CreatedBy = &actor.UserID
	slot.UpdatedBy = &actor.UserID

	if err := s.repo.Slot.Create(ctx, slot); err != nil {
		s.logger.Error("create slot failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("slot created",
		zap.String("slot_id", slot.SlotID),
		zap.String("school_id", slot.SchoolID),
		zap.Int("day_of_week", slot.DayOfWeek))

	return toSlotResponse(slot), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *slotService) GetSlot(ctx context.Context, id string, actor *access.Actor) (*dto.SlotResponse, error) {
	slot, err := s.loadSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, slotScope(slot), access.ReadAppointments) {
		return nil, ErrReadAppointmentsDenied
	}
	return toSlotResponse(slot), nil
}

func (s *slotService) ListSlots(ctx context.Context, schoolID string, actor *access.Actor) ([]dto.SlotResponse, error) {
	school, err := s.repo.Institution.GetActiveSchool(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schoolNotFound(schoolID)
		}
		return nil, err
	}
	if !access.Can(actor, access.SchoolScope(school), access.ReadAppointments) {
		return nil, ErrReadAppointmentsDenied
	}

	slots, err := s.repo.Slot.ListBySchool(ctx, schoolID, false)
	if err != nil {
		s.logger.Error("list slots failed", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, *toSlotResponse(&slots[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *slotService) UpdateSlot(ctx context.Context, id string, req *dto.UpdateSlotRequest, actor *access.Actor) (*dto.SlotResponse, error) {
	slot, err := s.loadSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, slotScope(slot), access.ManageAppointments) {
		return nil, ErrManageAppointmentsDenied
	}

	if req.StaffUserID != nil {
		if err := s.ensureStaff(ctx, *req.StaffUserID); err != nil {
			return nil, err
		}
		slot.StaffUserID = req.StaffUserID
	}
	if req.DayOfWeek != nil {
		slot.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.Capacity != nil {
		slot.Capacity = *req.Capacity
	}
	if req.AppointmentType != nil {
		slot.AppointmentType = *req.AppointmentType
	}
	if req.AdvanceBookingHours != nil {
		slot.AdvanceBookingHours = *req.AdvanceBookingHours
	}
	if req.CancellationHours != nil {
		slot.CancellationHours = *req.CancellationHours
	}
	if req.RequiresApproval != nil {
		slot.RequiresApproval = *req.RequiresApproval
	}
	if req.ExcludedDates != nil {
		excluded, err := encodeJSON(*req.ExcludedDates)
		if err != nil {
			return nil, err
		}
		slot.ExcludedDates = excluded
	}

	if slot.StartTime, slot.EndTime, err = clockRange(slot.StartTime, slot.EndTime); err != nil {
		return nil, err
	}

	overlap, err := s.repo.Slot.ExistsOverlapping(ctx, slot.SchoolID, slot.DayOfWeek, slot.StartTime, slot.EndTime, slot.StaffUserID, slot.SlotID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrSlotOverlap
	}

	slot.UpdatedBy = &actor.UserID
	if err := s.repo.Slot.Update(ctx, slot); err != nil {
		s.logger.Error("update slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSlotResponse(slot), nil
}

// ────────────────────── Deactivate ──────────────────────

func (s *slotService) DeactivateSlot(ctx context.Context, id string, actor *access.Actor) error {
	slot, err := s.loadSlot(ctx, id)
	if err != nil {
		return err
	}
	if !access.Can(actor, slotScope(slot), access.ManageAppointments) {
		return ErrManageAppointmentsDenied
	}

	slot.IsActive = false
	slot.UpdatedBy = &actor.UserID
	if err := s.repo.Slot.Update(ctx, slot); err != nil {
		s.logger.Error("deactivate slot failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("slot deactivated", zap.String("slot_id", id), zap.String("by", actor.UserID))
	return nil
}

// ── helpers ──

func (s *slotService) loadSlot(ctx context.Context, id string) (*model.AppointmentSlot, error) {
	slot, err := s.repo.Slot.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, slotNotFound(id)
		}
		s.logger.Error("load slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func (s *slotService) ensureStaff(ctx context.Context, userID string) error {
	if _, err := s.repo.User.GetActiveByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFoundf("Staff user not found with ID: %s", userID)
		}
		return err
	}
	return nil
}

// clockRange parses "H:MM" or "HH:MM" clocks, requires start < end and
// returns both in canonical "HH:MM" form
func clockRange(start, end string) (string, string, error) {
	st, err := time.Parse(dto.TimeLayout, start)
	if err != nil {
		return "", "", pkgerrors.Validation(fmt.Sprintf("Invalid time: %s", start))
	}
	et, err := time.Parse(dto.TimeLayout, end)
	if err != nil {
		return "", "", pkgerrors.Validation(fmt.Sprintf("Invalid time: %s", end))
	}
	if !st.Before(et) {
		return "", "", ErrSlotTimeOrder
	}
	return st.Format(dto.TimeLayout), et.Format(dto.TimeLayout), nil
}

// bindToSlot checks a booking against the slot's weekly window. Empty clocks
// take the slot's times.
func bindToSlot(slot *model.AppointmentSlot, date time.Time, start, end string) (string, string, error) {
	if isoWeekday(date.Weekday()) != slot.DayOfWeek {
		return "", "", ErrSlotDateExcluded
	}
	if start == "" && end == "" {
		return slot.StartTime, slot.EndTime, nil
	}
	st, et, err := clockRange(start, end)
	if err != nil {
		return "", "", err
	}
	if st != slot.StartTime || et != slot.EndTime {
		return "", "", ErrSlotTimeMismatch
	}
	return st, et, nil
}

func slotScope(slot *model.AppointmentSlot) access.Scope {
	if slot.School != nil {
		return access.SchoolScope(slot.School)
	}
	return access.Scope{SchoolID: slot.SchoolID}
}

func toSlotResponse(slot *model.AppointmentSlot) *dto.SlotResponse {
	return &dto.SlotResponse{
		ID:                  slot.SlotID,
		SchoolID:            slot.SchoolID,
		StaffUserID:         slot.StaffUserID,
		DayOfWeek:           slot.DayOfWeek,
		StartTime:           slot.StartTime,
		EndTime:             slot.EndTime,
		Capacity:            slot.Capacity,
		AppointmentType:     slot.AppointmentType,
		AdvanceBookingHours: slot.AdvanceBookingHours,
		CancellationHours:   slot.CancellationHours,
		RequiresApproval:    slot.RequiresApproval,
		ExcludedDates:       decodeStrings(slot.ExcludedDates),
		IsActive:            slot.IsActive,
		Version:             slot.Version,
	}
}
