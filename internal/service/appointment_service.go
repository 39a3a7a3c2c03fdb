package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"okulpazar/backend/config"
	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
)

// ── appointment errors ──

var (
	ErrAppointmentInPast        = pkgerrors.Business("Cannot book appointment in the past")
	ErrSlotWrongSchool          = pkgerrors.Business("Slot does not belong to the specified school")
	ErrNoCapacity               = pkgerrors.Business("No available capacity for the selected time slot")
	ErrSlotDateExcluded         = pkgerrors.Business("Selected date is not available for this slot")
	ErrSchoolNotBookable        = pkgerrors.NotFound("School not found or not available for booking")
	ErrPublicContactRequired    = pkgerrors.Business("Parent and student information is required for public bookings")
	ErrCannotCancel             = pkgerrors.Business("Appointment cannot be canceled due to time restrictions")
	ErrCannotReschedule         = pkgerrors.Business("Appointment cannot be rescheduled due to time restrictions or current status")
	ErrCancelDenied             = pkgerrors.Forbidden("User does not have permission to modify this appointment")
	ErrOnlyPendingConfirmable   = pkgerrors.Business("Only pending appointments can be confirmed")
	ErrOnlyConfirmedCompletable = pkgerrors.Business("Only confirmed appointments can be completed")
	ErrAlreadyOnWaitlist        = pkgerrors.Business("Parent is already on the waitlist for this school")
	ErrNumberExhausted          = errors.New("could not generate a unique appointment number")
)

func appointmentNotFound(id string) error {
	return pkgerrors.NotFoundf("Appointment not found with ID: %s", id)
}

// Bulk operations
const (
	BulkOperationConfirm = "CONFIRM"
	BulkOperationCancel  = "CANCEL"
)

// AppointmentService appointment lifecycle, availability and waitlist
type AppointmentService interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest, actor *access.Actor) (*dto.AppointmentResponse, error)
	CreatePublicAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, id string, actor *access.Actor) (*dto.AppointmentResponse, error)
	GetAppointmentByNumber(ctx context.Context, number string) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, req *dto.CancelAppointmentRequest, actor *access.Actor) (*dto.AppointmentResponse, error)
	CancelPublicAppointment(ctx context.Context, req *dto.PublicCancelRequest) (*dto.AppointmentResponse, error)
	RescheduleAppointment(ctx context.Context, req *dto.RescheduleAppointmentRequest, actor *access.Actor) (*dto.AppointmentResponse, error)
	ConfirmAppointment(ctx context.Context, id string, actor *access.Actor) (*dto.AppointmentResponse, error)
	CompleteAppointment(ctx context.Context, id string, actor *access.Actor) (*dto.AppointmentResponse, error)
	BulkUpdateAppointments(ctx context.Context, req *dto.BulkAppointmentRequest, actor *access.Actor) (*dto.BulkAppointmentResult, error)
	SearchAppointments(ctx context.Context, req *dto.AppointmentSearchRequest, actor *access.Actor) ([]dto.AppointmentResponse, int64, error)
	GetAvailabilityBetweenDates(ctx context.Context, req *dto.AvailabilityRequest) ([]dto.DayAvailability, error)
	AddToWaitlist(ctx context.Context, req *dto.WaitlistRequest, actor *access.Actor) (*dto.WaitlistResponse, error)
	ListWaitlist(ctx context.Context, schoolID string, actor *access.Actor) ([]dto.WaitlistResponse, error)
	// CompletePastAppointments closes CONFIRMED appointments that ended more than grace ago
	CompletePastAppointments(ctx context.Context, grace time.Duration) (int64, error)
}

type appointmentService struct {
	cfg    *config.BookingConfig
	loc    *time.Location
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAppointmentService creates an AppointmentService; slot clocks are in loc
func NewAppointmentService(cfg *config.BookingConfig, loc *time.Location, repo *repository.Repository, logger *zap.Logger) AppointmentService {
	return &appointmentService{cfg: cfg, loc: loc, repo: repo, logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// Create
// ════════════════════════════════════════════════════════════

func (s *appointmentService) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest, actor *access.Actor) (*dto.AppointmentResponse, error) {
	school, err := s.repo.Institution.GetActiveSchool(ctx, req.SchoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schoolNotFound(req.SchoolID)
		}
		s.logger.Error("load school failed", zap.String("id", req.SchoolID), zap.Error(err))
		return nil, err
	}

	if !actor.IsParent() && !access.Can(actor, access.SchoolScope(school), access.ManageAppointments) {
		return nil, ErrManageAppointmentsDenied
	}

	apt, err := s.book(ctx, school, req, false)
	if err != nil {
		return nil, err
	}
	if actor.IsParent() {
		apt.ParentUserID = &actor.UserID
	}
	apt.CreatedBy = &actor.UserID

	return s.persistNew(ctx, apt, req.SlotID)
}

func (s *appointmentService) CreatePublicAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	school, err := s.repo.Institution.GetBookableSchool(ctx, req.SchoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSchoolNotBookable
		}
		s.logger.Error("load bookable school failed", zap.String("id", req.SchoolID), zap.Error(err))
		return nil, err
	}

	if isBlank(req.ParentName) || isBlank(req.ParentEmail) || isBlank(req.ParentPhone) || isBlank(req.StudentName) {
		return nil, ErrPublicContactRequired
	}

	apt, err := s.book(ctx, school, req, true)
	if err != nil {
		return nil, err
	}
	return s.persistNew(ctx, apt, req.SlotID)
}

// book validates the request and builds the unsaved appointment
func (s *appointmentService) book(ctx context.Context, school *model.School, req *dto.CreateAppointmentRequest, public bool) (*model.Appointment, error) {
	date, err := s.parseDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}

	var slot *model.AppointmentSlot
	if req.SlotID != nil {
		if slot, err = s.slotFor(ctx, *req.SlotID, school.SchoolID); err != nil {
			return nil, err
		}
	}

	startTime, endTime, err := s.window(slot, date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	start, err := s.combine(date, startTime)
	if err != nil {
		return nil, err
	}
	if !start.After(s.now()) {
		return nil, ErrAppointmentInPast
	}

	apt := &model.Appointment{
		SchoolID:        school.SchoolID,
		SlotID:          req.SlotID,
		StaffUserID:     req.StaffUserID,
		AppointmentDate: date,
		StartTime:       startTime,
		EndTime:         endTime,
		Status:          model.AppointmentStatusConfirmed,
		AppointmentType: req.AppointmentType,
		Notes:           req.Notes,
		ParentName:      strings.TrimSpace(req.ParentName),
		ParentEmail:     strings.TrimSpace(req.ParentEmail),
		ParentPhone:     strings.TrimSpace(req.ParentPhone),
		StudentName:     strings.TrimSpace(req.StudentName),
		StudentAge:      req.StudentAge,
		StudentGrade:    req.StudentGrade,
		IsActive:        true,
	}

	if slot != nil {
		if err := s.checkSlotDate(slot, date, start); err != nil {
			return nil, err
		}
		if slot.RequiresApproval {
			apt.Status = model.AppointmentStatusPending
		}
		if apt.StaffUserID == nil {
			apt.StaffUserID = slot.StaffUserID
		}
	}

	if public {
		apt.Status = model.AppointmentStatusPending
	}
	if apt.Status == model.AppointmentStatusConfirmed {
		now := s.now()
		apt.ConfirmedAt = &now
	}
	return apt, nil
}

// slotFor loads an active slot and checks it belongs to schoolID
func (s *appointmentService) slotFor(ctx context.Context, slotID, schoolID string) (*model.AppointmentSlot, error) {
	slot, err := s.repo.Slot.GetActiveByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, slotNotFound(slotID)
		}
		return nil, err
	}
	if slot.SchoolID != schoolID {
		return nil, ErrSlotWrongSchool
	}
	return slot, nil
}

// window canonical clock range; slot-bound bookings take the slot's window
func (s *appointmentService) window(slot *model.AppointmentSlot, date time.Time, start, end string) (string, string, error) {
	if slot != nil {
		return bindToSlot(slot, date, start, end)
	}
	if start == "" || end == "" {
		return "", "", pkgerrors.Validation("Start and end time are required when no slot is given")
	}
	return clockRange(start, end)
}

// persistNew re-checks capacity under a slot row lock and inserts
func (s *appointmentService) persistNew(ctx context.Context, apt *model.Appointment, slotID *string) (*dto.AppointmentResponse, error) {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if slotID != nil {
			if err := s.reserve(ctx, tx, *slotID, apt); err != nil {
				return err
			}
		}
		number, err := s.generateNumber(ctx, tx)
		if err != nil {
			return err
		}
		apt.AppointmentNumber = number
		return tx.Appointment.Create(ctx, apt)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == 0 {
			s.logger.Error("create appointment failed", zap.String("school_id", apt.SchoolID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("appointment created",
		zap.String("appointment_id", apt.AppointmentID),
		zap.String("number", apt.AppointmentNumber),
		zap.String("status", apt.Status))

	return s.toResponse(apt), nil
}

// reserve locks the slot and checks a seat is left on apt's date
func (s *appointmentService) reserve(ctx context.Context, tx *repository.Repository, slotID string, apt *model.Appointment) error {
	slot, err := tx.Slot.LockActiveByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slotNotFound(slotID)
		}
		return err
	}
	if slot.SchoolID != apt.SchoolID {
		return ErrSlotWrongSchool
	}
	if _, _, err := bindToSlot(slot, apt.AppointmentDate, apt.StartTime, apt.EndTime); err != nil {
		return err
	}
	booked, err := tx.Appointment.CountBooked(ctx, slot.SlotID, apt.AppointmentDate)
	if err != nil {
		return err
	}
	if booked >= int64(slot.Capacity) {
		return ErrNoCapacity
	}
	return nil
}

func (s *appointmentService) checkSlotDate(slot *model.AppointmentSlot, date, start time.Time) error {
	day := date.Format(time.DateOnly)
	for _, d := range decodeStrings(slot.ExcludedDates) {
		if d == day {
			return ErrSlotDateExcluded
		}
	}
	if slot.AdvanceBookingHours > 0 && start.Before(s.now().Add(time.Duration(slot.AdvanceBookingHours)*time.Hour)) {
		return pkgerrors.Businessf("Appointment must be booked at least %d hours in advance", slot.AdvanceBookingHours)
	}
	return nil
}

func (s *appointmentService) generateNumber(ctx context.Context, repo *repository.Repository) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		suffix, err := randomCode(8)
		if err != nil {
			return "", err
		}
		number := s.cfg.NumberPrefix + suffix

		exists, err := repo.Appointment.ExistsByNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrNumberExhausted
}

// ════════════════════════════════════════════════════════════
// Read
// ════════════════════════════════════════════════════════════

func (s *appointmentService) GetAppointment(ctx context.Context, id string, actor *access.Actor) (*dto.AppointmentResponse, error) {
	apt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isParticipant(apt, actor) && !access.Can(actor, appointmentScope(apt), access.ReadAppointments) {
		return nil, ErrReadAppointmentsDenied
	}
	return s.toResponse(apt), nil
}

func (s *appointmentService) GetAppointmentByNumber(ctx context.Context, number string) (*dto.AppointmentResponse, error) {
	apt, err := s.repo.Appointment.GetActiveByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFoundf("Appointment not found with number: %s", number)
		}
		s.logger.Error("load appointment by number failed", zap.String("number", number), zap.Error(err))
		return nil, err
	}
	return s.toResponse(apt), nil
}

// ════════════════════════════════════════════════════════════
// Cancel
// ════════════════════════════════════════════════════════════

func (s *appointmentService) CancelAppointment(ctx context.Context, req *dto.CancelAppointmentRequest, actor *access.Actor) (*dto.AppointmentResponse, error) {
	apt, err := s.load(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	canManage := access.Can(actor, appointmentScope(apt), access.ManageAppointments)
	if !isParticipant(apt, actor) && !canManage {
		return nil, ErrCancelDenied
	}

	if !s.canCancel(apt) {
		return nil, ErrCannotCancel
	}

	byType := req.CanceledByType
	if byType == "" {
		byType = cancellerType(apt, actor)
	}
	s.markCancelled(apt, req.Reason, &actor.UserID, byType)

	if err := s.repo.Appointment.Update(ctx, apt); err != nil {
		s.logger.Error("cancel appointment failed", zap.String("id", apt.AppointmentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("appointment cancelled",
		zap.String("appointment_id", apt.AppointmentID),
		zap.String("canceled_by_type", byType))

	return s.toResponse(apt), nil
}

func (s *appointmentService) CancelPublicAppointment(ctx context.Context, req *dto.PublicCancelRequest) (*dto.AppointmentResponse, error) {
	apt, err := s.repo.Appointment.GetActiveByNumber(ctx, req.AppointmentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFoundf("Appointment not found with number: %s", req.AppointmentNumber)
		}
		return nil, err
	}

	if !s.canCancel(apt) {
		return nil, ErrCannotCancel
	}

	s.markCancelled(apt, req.Reason, nil, model.CanceledByParent)
	if err := s.repo.Appointment.Update(ctx, apt); err != nil {
		s.logger.Error("public cancel failed", zap.String("number", req.AppointmentNumber), zap.Error(err))
		return nil, err
	}
	return s.toResponse(apt), nil
}

func (s *appointmentService) markCancelled(apt *model.Appointment, reason string, byID *string, byType string) {
	now := s.now()
	apt.Status = model.AppointmentStatusCancelled
	apt.CancellationReason = reason
	apt.CanceledByID = byID
	apt.CanceledByType = byType
	apt.CanceledAt = &now
	apt.UpdatedBy = byID
}

// canCancel PENDING/CONFIRMED and, when slot-bound, at least cancellationHours ahead
func (s *appointmentService) canCancel(apt *model.Appointment) bool {
	if apt.Status != model.AppointmentStatusPending && apt.Status != model.AppointmentStatusConfirmed {
		return false
	}
	if apt.Slot == nil {
		return true
	}
	start, err := s.combine(apt.AppointmentDate, apt.StartTime)
	if err != nil {
		return false
	}
	deadline := s.now().Add(time.Duration(apt.Slot.CancellationHours) * time.Hour)
	return !deadline.After(start)
}

func (s *appointmentService) canReschedule(apt *model.Appointment) bool {
	return apt.RescheduleCount < s.cfg.MaxReschedules && s.canCancel(apt)
}

// ════════════════════════════════════════════════════════════
// Reschedule
// ════════════════════════════════════════════════════════════

func (s *appointmentService) RescheduleAppointment(ctx context.Context, req *dto.RescheduleAppointmentRequest, actor *access.Actor) (*dto.AppointmentResponse, error) {
	original, err := s.load(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	if !isParticipant(original, actor) && !access.Can(actor, appointmentScope(original), access.ManageAppointments) {
		return nil, ErrCancelDenied
	}

	if !s.canReschedule(original) {
		return nil, ErrCannotReschedule
	}

	date, err := s.parseDate(req.NewDate)
	if err != nil {
		return nil, err
	}

	slotID := original.SlotID
	if req.NewSlotID != nil {
		slotID = req.NewSlotID
	}
	var slot *model.AppointmentSlot
	if slotID != nil {
		if slot, err = s.slotFor(ctx, *slotID, original.SchoolID); err != nil {
			return nil, err
		}
	}

	startTime, endTime, err := s.window(slot, date, req.NewStartTime, req.NewEndTime)
	if err != nil {
		return nil, err
	}
	start, err := s.combine(date, startTime)
	if err != nil {
		return nil, err
	}
	if !start.After(s.now()) {
		return nil, ErrAppointmentInPast
	}

	status := original.Status
	staffID := original.StaffUserID
	if slot != nil {
		if err := s.checkSlotDate(slot, date, start); err != nil {
			return nil, err
		}
		if slot.StaffUserID != nil {
			staffID = slot.StaffUserID
		}
		if req.NewSlotID != nil && slot.RequiresApproval {
			status = model.AppointmentStatusPending
		}
	}

	next := &model.Appointment{
		SlotID:            slotID,
		SchoolID:          original.SchoolID,
		ParentUserID:      original.ParentUserID,
		StaffUserID:       staffID,
		AppointmentDate:   date,
		StartTime:         startTime,
		EndTime:           endTime,
		Status:            status,
		AppointmentType:   original.AppointmentType,
		Notes:             original.Notes,
		ParentName:        original.ParentName,
		ParentEmail:       original.ParentEmail,
		ParentPhone:       original.ParentPhone,
		StudentName:       original.StudentName,
		StudentAge:        original.StudentAge,
		StudentGrade:      original.StudentGrade,
		RescheduleCount:   original.RescheduleCount + 1,
		RescheduledFromID: &original.AppointmentID,
		ConfirmedAt:       original.ConfirmedAt,
		IsActive:          true,
	}
	next.CreatedBy = &actor.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		original.Status = model.AppointmentStatusRescheduled
		original.UpdatedBy = &actor.UserID
		if err := tx.Appointment.Update(ctx, original); err != nil {
			return err
		}
		if next.SlotID != nil {
			if err := s.reserve(ctx, tx, *next.SlotID, next); err != nil {
				return err
			}
		}
		number, err := s.generateNumber(ctx, tx)
		if err != nil {
			return err
		}
		next.AppointmentNumber = number
		return tx.Appointment.Create(ctx, next)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == 0 {
			s.logger.Error("reschedule appointment failed", zap.String("id", req.AppointmentID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("appointment rescheduled",
		zap.String("from", original.AppointmentID),
		zap.String("to", next.AppointmentID),
		zap.Int("reschedule_count", next.RescheduleCount))

	return s.toResponse(next), nil
}

// ════════════════════════════════════════════════════════════
// Confirm / Complete
// ════════════════════════════════════════════════════════════

func (s *appointmentService) ConfirmAppointment(ctx context.Context, id string, actor *access.Actor) (*dto.AppointmentResponse, error) {
	apt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, appointmentScope(apt), access.ManageAppointments) {
		return nil, ErrManageAppointmentsDenied
	}
	if apt.Status != model.AppointmentStatusPending {
		return nil, ErrOnlyPendingConfirmable
	}

	now := s.now()
	apt.Status = model.AppointmentStatusConfirmed
	apt.ConfirmedAt = &now
	apt.UpdatedBy = &actor.UserID
	if err := s.repo.Appointment.Update(ctx, apt); err != nil {
		s.logger.Error("confirm appointment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toResponse(apt), nil
}

func (s *appointmentService) CompleteAppointment(ctx context.Context, id string, actor *access.Actor) (*dto.AppointmentResponse, error) {
	apt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, appointmentScope(apt), access.ManageAppointments) {
		return nil, ErrManageAppointmentsDenied
	}
	if apt.Status != model.AppointmentStatusConfirmed {
		return nil, ErrOnlyConfirmedCompletable
	}

	now := s.now()
	apt.Status = model.AppointmentStatusCompleted
	apt.CompletedAt = &now
	apt.UpdatedBy = &actor.UserID
	if err := s.repo.Appointment.Update(ctx, apt); err != nil {
		s.logger.Error("complete appointment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toResponse(apt), nil
}

func (s *appointmentService) CompletePastAppointments(ctx context.Context, grace time.Duration) (int64, error) {
	cutoff := s.now().Add(-grace)
	n, err := s.repo.Appointment.CompletePast(ctx, cutoff, s.loc.String())
	if err != nil {
		s.logger.Error("complete past appointments failed", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ════════════════════════════════════════════════════════════
// Bulk
// ════════════════════════════════════════════════════════════

func (s *appointmentService) BulkUpdateAppointments(ctx context.Context, req *dto.BulkAppointmentRequest, actor *access.Actor) (*dto.BulkAppointmentResult, error) {
	result := &dto.BulkAppointmentResult{
		TotalRequested: len(req.AppointmentIDs),
		SucceededIDs:   []string{},
		Errors:         []dto.ItemMessage{},
	}

	op := strings.ToUpper(strings.TrimSpace(req.Operation))
	for _, id := range req.AppointmentIDs {
		if err := s.applyBulk(ctx, id, op, req, actor); err != nil {
			result.Errors = append(result.Errors, dto.ItemMessage{ID: id, Message: err.Error()})
			continue
		}
		result.SucceededIDs = append(result.SucceededIDs, id)
	}

	result.SuccessCount = len(result.SucceededIDs)
	result.FailureCount = len(result.Errors)
	result.Success = result.FailureCount == 0
	if req.NotifyParticipants {
		result.NotificationsSent = intPtr(result.SuccessCount)
	}

	s.logger.Info("bulk appointment update",
		zap.String("operation", op),
		zap.Int("requested", result.TotalRequested),
		zap.Int("failed", result.FailureCount))

	return result, nil
}

func (s *appointmentService) applyBulk(ctx context.Context, id, op string, req *dto.BulkAppointmentRequest, actor *access.Actor) error {
	if op != BulkOperationConfirm && op != BulkOperationCancel {
		return pkgerrors.Businessf("Unsupported operation: %s", req.Operation)
	}

	apt, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.Can(actor, appointmentScope(apt), access.ManageAppointments) {
		return ErrManageAppointmentsDenied
	}

	switch op {
	case BulkOperationConfirm:
		if apt.Status != model.AppointmentStatusPending && apt.Status != model.AppointmentStatusConfirmed {
			return pkgerrors.Businessf("Appointment cannot be confirmed in status %s", apt.Status)
		}
		now := s.now()
		apt.Status = model.AppointmentStatusConfirmed
		apt.ConfirmedAt = &now
		apt.UpdatedBy = &actor.UserID
	case BulkOperationCancel:
		if apt.Status != model.AppointmentStatusPending && apt.Status != model.AppointmentStatusConfirmed {
			return pkgerrors.Businessf("Appointment cannot be canceled in status %s", apt.Status)
		}
		s.markCancelled(apt, req.Reason, &actor.UserID, cancellerType(apt, actor))
	}

	return s.repo.Appointment.Update(ctx, apt)
}

// ════════════════════════════════════════════════════════════
// Search
// ════════════════════════════════════════════════════════════

func (s *appointmentService) SearchAppointments(ctx context.Context, req *dto.AppointmentSearchRequest, actor *access.Actor) ([]dto.AppointmentResponse, int64, error) {
	if req.Size <= 0 {
		req.Size = s.cfg.DefaultPageSize
	}
	size := req.Size

	filter := repository.AppointmentFilter{
		StaffUserID: req.StaffUserID,
		Statuses:    req.Statuses,
		Types:       req.Types,
		Query:       req.Query,
		Page:        req.Page,
		Size:        size,
		SortBy:      req.SortBy,
		SortDir:     req.SortDir,
	}

	switch {
	case actor.IsSystem():
		if len(req.SchoolIDs) > 0 {
			filter.SchoolIDs = req.SchoolIDs
		}
	case actor.IsParent():
		filter.ParentUserID = actor.UserID
		if len(req.SchoolIDs) > 0 {
			filter.SchoolIDs = req.SchoolIDs
		}
	default:
		filter.SchoolIDs = append([]string{}, actor.SchoolIDs...)
	}

	if req.DateFrom != "" {
		d, err := s.parseDate(req.DateFrom)
		if err != nil {
			return nil, 0, err
		}
		filter.DateFrom = &d
	}
	if req.DateTo != "" {
		d, err := s.parseDate(req.DateTo)
		if err != nil {
			return nil, 0, err
		}
		filter.DateTo = &d
	}

	list, total, err := s.repo.Appointment.Search(ctx, filter)
	if err != nil {
		s.logger.Error("search appointments failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AppointmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *s.toResponse(&list[i]))
	}
	return result, total, nil
}

// ════════════════════════════════════════════════════════════
// Availability
// ════════════════════════════════════════════════════════════

// GetAvailabilityBetweenDates days without a matching slot are omitted
func (s *appointmentService) GetAvailabilityBetweenDates(ctx context.Context, req *dto.AvailabilityRequest) ([]dto.DayAvailability, error) {
	from, err := s.parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	to, err := s.parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, pkgerrors.Validation("End date must not be before start date")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > s.cfg.MaxAvailabilityDays {
		return nil, pkgerrors.Validation(fmt.Sprintf("Date range cannot exceed %d days", s.cfg.MaxAvailabilityDays))
	}

	if _, err := s.repo.Institution.GetActiveSchool(ctx, req.SchoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schoolNotFound(req.SchoolID)
		}
		return nil, err
	}

	all, err := s.repo.Slot.ListBySchool(ctx, req.SchoolID, true)
	if err != nil {
		s.logger.Error("list slots failed", zap.String("school_id", req.SchoolID), zap.Error(err))
		return nil, err
	}

	type slotInfo struct {
		slot     *model.AppointmentSlot
		excluded map[string]bool
	}
	byDay := make(map[int][]slotInfo)
	var slotIDs []string
	for i := range all {
		slot := &all[i]
		if req.AppointmentType != "" && slot.AppointmentType != req.AppointmentType {
			continue
		}
		excluded := make(map[string]bool)
		for _, d := range decodeStrings(slot.ExcludedDates) {
			excluded[d] = true
		}
		byDay[slot.DayOfWeek] = append(byDay[slot.DayOfWeek], slotInfo{slot: slot, excluded: excluded})
		slotIDs = append(slotIDs, slot.SlotID)
	}

	counts, err := s.repo.Appointment.CountBookedBySlots(ctx, slotIDs, from, to)
	if err != nil {
		s.logger.Error("count booked failed", zap.Error(err))
		return nil, err
	}
	booked := make(map[string]int, len(counts))
	for _, c := range counts {
		booked[c.SlotID+"|"+c.Date.Format(time.DateOnly)] = int(c.Count)
	}

	result := []dto.DayAvailability{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		dow := isoWeekday(day.Weekday())

		var slots []dto.SlotAvailability
		for _, info := range byDay[dow] {
			if info.excluded[key] {
				continue
			}
			n := booked[info.slot.SlotID+"|"+key]
			available := info.slot.Capacity - n
			if available < 0 {
				available = 0
			}
			slots = append(slots, dto.SlotAvailability{
				SlotID:          info.slot.SlotID,
				StartTime:       info.slot.StartTime,
				EndTime:         info.slot.EndTime,
				AppointmentType: info.slot.AppointmentType,
				StaffUserID:     info.slot.StaffUserID,
				Capacity:        info.slot.Capacity,
				Booked:          n,
				Available:       available,
			})
		}
		if len(slots) == 0 {
			continue
		}

		entry := dto.DayAvailability{Date: key, DayOfWeek: dow, Slots: slots}
		for _, sa := range slots {
			entry.TotalSlots += sa.Capacity
			entry.BookedSlots += sa.Booked
			entry.AvailableSlots += sa.Available
		}
		result = append(result, entry)
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// Waitlist
// ════════════════════════════════════════════════════════════

func (s *appointmentService) AddToWaitlist(ctx context.Context, req *dto.WaitlistRequest, actor *access.Actor) (*dto.WaitlistResponse, error) {
	if _, err := s.repo.Institution.GetActiveSchool(ctx, req.SchoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schoolNotFound(req.SchoolID)
		}
		return nil, err
	}

	entry := &model.AppointmentWaitlist{
		SchoolID:           req.SchoolID,
		ParentName:         req.ParentName,
		ParentEmail:        strings.TrimSpace(req.ParentEmail),
		ParentPhone:        req.ParentPhone,
		StudentName:        req.StudentName,
		PreferredStartTime: req.PreferredStartTime,
		PreferredEndTime:   req.PreferredEndTime,
		Status:             model.WaitlistStatusWaiting,
		AutoAccept:         req.AutoAccept,
		IsActive:           true,
	}
	if actor != nil {
		entry.CreatedBy = &actor.UserID
		if actor.IsParent() {
			entry.ParentUserID = &actor.UserID
		}
	}

	var err error
	if req.PreferredStartTime != "" && req.PreferredEndTime != "" {
		if entry.PreferredStartTime, entry.PreferredEndTime, err = clockRange(req.PreferredStartTime, req.PreferredEndTime); err != nil {
			return nil, err
		}
	}
	if entry.PreferredTypes, err = encodeJSON(req.PreferredTypes); err != nil {
		return nil, err
	}
	if entry.PreferredDays, err = encodeJSON(req.PreferredDays); err != nil {
		return nil, err
	}
	if req.EarliestDate != "" {
		d, err := s.parseDate(req.EarliestDate)
		if err != nil {
			return nil, err
		}
		entry.EarliestDate = &d
	}
	if req.LatestDate != "" {
		d, err := s.parseDate(req.LatestDate)
		if err != nil {
			return nil, err
		}
		entry.LatestDate = &d
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		exists, err := tx.Waitlist.ExistsActive(ctx, entry.SchoolID, entry.ParentEmail)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyOnWaitlist
		}
		waiting, err := tx.Waitlist.CountWaiting(ctx, entry.SchoolID)
		if err != nil {
			return err
		}
		entry.QueuePosition = int(waiting) + 1
		return tx.Waitlist.Create(ctx, entry)
	})
	if err != nil {
		if pkgerrors.KindOf(err) == 0 {
			s.logger.Error("add to waitlist failed", zap.String("school_id", req.SchoolID), zap.Error(err))
		}
		return nil, err
	}
	return toWaitlistResponse(entry), nil
}

func (s *appointmentService) ListWaitlist(ctx context.Context, schoolID string, actor *access.Actor) ([]dto.WaitlistResponse, error) {
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

	entries, err := s.repo.Waitlist.ListBySchool(ctx, schoolID)
	if err != nil {
		s.logger.Error("list waitlist failed", zap.String("school_id", schoolID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.WaitlistResponse, 0, len(entries))
	for i := range entries {
		result = append(result, *toWaitlistResponse(&entries[i]))
	}
	return result, nil
}

// ── helpers ──

func (s *appointmentService) load(ctx context.Context, id string) (*model.Appointment, error) {
	apt, err := s.repo.Appointment.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointmentNotFound(id)
		}
		s.logger.Error("load appointment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return apt, nil
}

func (s *appointmentService) parseDate(v string) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, v, s.loc)
	if err != nil {
		return time.Time{}, pkgerrors.Validation(fmt.Sprintf("Invalid date: %s", v))
	}
	return d, nil
}

func (s *appointmentService) combine(date time.Time, clock string) (time.Time, error) {
	return combineDateClock(date, clock, s.loc)
}

func (s *appointmentService) toResponse(apt *model.Appointment) *dto.AppointmentResponse {
	resp := toAppointmentResponse(apt)
	resp.CanCancel = s.canCancel(apt)
	resp.CanReschedule = s.canReschedule(apt)
	return resp
}

// combineDateClock places an "HH:MM" wall clock on date's calendar day in loc
func combineDateClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(dto.TimeLayout, clock)
	if err != nil {
		return time.Time{}, pkgerrors.Validation(fmt.Sprintf("Invalid time: %s", clock))
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// isoWeekday Monday=1 … Sunday=7
func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func isParticipant(apt *model.Appointment, actor *access.Actor) bool {
	if actor == nil {
		return false
	}
	if apt.ParentUserID != nil && *apt.ParentUserID == actor.UserID {
		return true
	}
	return apt.StaffUserID != nil && *apt.StaffUserID == actor.UserID
}

func cancellerType(apt *model.Appointment, actor *access.Actor) string {
	switch {
	case actor.IsSystem():
		return model.CanceledBySystem
	case apt.ParentUserID != nil && *apt.ParentUserID == actor.UserID:
		return model.CanceledByParent
	case apt.StaffUserID != nil && *apt.StaffUserID == actor.UserID:
		return model.CanceledByStaff
	default:
		return model.CanceledBySchool
	}
}

func appointmentScope(apt *model.Appointment) access.Scope {
	if apt.School != nil {
		return access.SchoolScope(apt.School)
	}
	return access.Scope{SchoolID: apt.SchoolID}
}

func toAppointmentResponse(apt *model.Appointment) *dto.AppointmentResponse {
	date := apt.AppointmentDate
	resp := &dto.AppointmentResponse{
		ID:                 apt.AppointmentID,
		AppointmentNumber:  apt.AppointmentNumber,
		SlotID:             apt.SlotID,
		SchoolID:           apt.SchoolID,
		ParentUserID:       apt.ParentUserID,
		StaffUserID:        apt.StaffUserID,
		AppointmentDate:    dto.FormatDate(&date),
		StartTime:          apt.StartTime,
		EndTime:            apt.EndTime,
		Status:             apt.Status,
		AppointmentType:    apt.AppointmentType,
		Notes:              apt.Notes,
		ParentName:         apt.ParentName,
		ParentEmail:        apt.ParentEmail,
		ParentPhone:        apt.ParentPhone,
		StudentName:        apt.StudentName,
		StudentAge:         apt.StudentAge,
		StudentGrade:       apt.StudentGrade,
		RescheduleCount:    apt.RescheduleCount,
		RescheduledFromID:  apt.RescheduledFromID,
		ConfirmedAt:        dto.FormatTime(apt.ConfirmedAt),
		CompletedAt:        dto.FormatTime(apt.CompletedAt),
		CancellationReason: apt.CancellationReason,
		CanceledByID:       apt.CanceledByID,
		CanceledByType:     apt.CanceledByType,
		CanceledAt:         dto.FormatTime(apt.CanceledAt),
	}
	if apt.School != nil {
		resp.SchoolName = apt.School.Name
	}
	return resp
}

func toWaitlistResponse(e *model.AppointmentWaitlist) *dto.WaitlistResponse {
	created := e.CreatedAt
	return &dto.WaitlistResponse{
		ID:            e.WaitlistID,
		SchoolID:      e.SchoolID,
		ParentName:    e.ParentName,
		ParentEmail:   e.ParentEmail,
		StudentName:   e.StudentName,
		Status:        e.Status,
		QueuePosition: e.QueuePosition,
		AutoAccept:    e.AutoAccept,
		CreatedAt:     dto.FormatTime(&created),
	}
}
