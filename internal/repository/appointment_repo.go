package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"okulpazar/backend/internal/model"
	pkgerrors "okulpazar/backend/pkg/errors"
)

// BookedStatuses statuses that consume slot capacity
var BookedStatuses = []string{model.AppointmentStatusPending, model.AppointmentStatusConfirmed}

// AppointmentFilter search criteria. A non-nil SchoolIDs restricts the
// result to those schools even when empty.
type AppointmentFilter struct {
	SchoolIDs    []string
	ParentUserID string
	StaffUserID  string
	Statuses     []string
	Types        []string
	DateFrom     *time.Time
	DateTo       *time.Time
	Query        string
	Page         int
	Size         int
	SortBy       string
	SortDir      string
}

// SlotDateCount booked appointments of one slot on one date
type SlotDateCount struct {
	SlotID string
	Date   time.Time
	Count  int64
}

// StatusCount a grouped count
type StatusCount struct {
	Key   string
	Count int64
}

// StaffPerformanceRow per-staff aggregation
type StaffPerformanceRow struct {
	StaffUserID string
	StaffName   string
	Total       int64
	Completed   int64
	Cancelled   int64
	NoShow      int64
}

// AppointmentRepository appointment data access
type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	GetActiveByID(ctx context.Context, id string) (*model.Appointment, error)
	GetActiveByNumber(ctx context.Context, number string) (*model.Appointment, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	Update(ctx context.Context, apt *model.Appointment) error
	// CountBooked active bookings of a slot on one date
	CountBooked(ctx context.Context, slotID string, date time.Time) (int64, error)
	CountBookedBySlots(ctx context.Context, slotIDs []string, from, to time.Time) ([]SlotDateCount, error)
	Search(ctx context.Context, f AppointmentFilter) ([]model.Appointment, int64, error)
	CountByStatus(ctx context.Context, schoolIDs []string, from, to time.Time) ([]StatusCount, error)
	CountByType(ctx context.Context, schoolIDs []string, from, to time.Time) ([]StatusCount, error)
	StaffPerformance(ctx context.Context, schoolIDs []string, from, to time.Time) ([]StaffPerformanceRow, error)
	// CompletePast marks CONFIRMED appointments that ended before cutoff as
	// COMPLETED; date and end time are wall clock in the named zone
	CompletePast(ctx context.Context, cutoff time.Time, zone string) (int64, error)
}

type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo creates an AppointmentRepository
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(apt).Error
}

func (r *appointmentRepo) GetActiveByID(ctx context.Context, id string) (*model.Appointment, error) {
	var apt model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Preload("School.Campus").
		Where("appointment_id = ? AND is_active = ?", id, true).
		First(&apt).Error
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

func (r *appointmentRepo) GetActiveByNumber(ctx context.Context, number string) (*model.Appointment, error) {
	var apt model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Preload("School.Campus").
		Where("appointment_number = ? AND is_active = ?", number, true).
		First(&apt).Error
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

func (r *appointmentRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("appointment_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

func (r *appointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	oldVersion := apt.Version
	result := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("appointment_id = ? AND version = ?", apt.AppointmentID, oldVersion).
		Updates(map[string]interface{}{
			"status":              apt.Status,
			"slot_id":             apt.SlotID,
			"staff_user_id":       apt.StaffUserID,
			"appointment_date":    apt.AppointmentDate,
			"start_time":          apt.StartTime,
			"end_time":            apt.EndTime,
			"notes":               apt.Notes,
			"confirmed_at":        apt.ConfirmedAt,
			"completed_at":        apt.CompletedAt,
			"cancellation_reason": apt.CancellationReason,
			"canceled_by_id":      apt.CanceledByID,
			"canceled_by_type":    apt.CanceledByType,
			"canceled_at":         apt.CanceledAt,
			"is_active":           apt.IsActive,
			"updated_by":          apt.UpdatedBy,
			"updated_at":          gorm.Expr("NOW()"),
			"version":             oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	apt.Version = oldVersion + 1
	return nil
}

func (r *appointmentRepo) CountBooked(ctx context.Context, slotID string, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("slot_id = ? AND appointment_date = ?", slotID, date.Format(time.DateOnly)).
		Where("status IN ? AND is_active = ?", BookedStatuses, true).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepo) CountBookedBySlots(ctx context.Context, slotIDs []string, from, to time.Time) ([]SlotDateCount, error) {
	var rows []SlotDateCount
	if len(slotIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Select("slot_id, appointment_date AS date, COUNT(*) AS count").
		Where("slot_id IN ?", slotIDs).
		Where("appointment_date BETWEEN ? AND ?", from.Format(time.DateOnly), to.Format(time.DateOnly)).
		Where("status IN ? AND is_active = ?", BookedStatuses, true).
		Group("slot_id, appointment_date").
		Scan(&rows).Error
	return rows, err
}

var appointmentSortColumns = map[string]string{
	"appointmentDate":   "appointment_date",
	"appointment_date":  "appointment_date",
	"startTime":         "start_time",
	"start_time":        "start_time",
	"status":            "status",
	"createdAt":         "created_at",
	"created_at":        "created_at",
	"appointmentNumber": "appointment_number",
}

func (r *appointmentRepo) Search(ctx context.Context, f AppointmentFilter) ([]model.Appointment, int64, error) {
	var list []model.Appointment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Appointment{}).Where("is_active = ?", true)

	if f.SchoolIDs != nil {
		if len(f.SchoolIDs) == 0 {
			return list, 0, nil
		}
		db = db.Where("school_id IN ?", f.SchoolIDs)
	}
	if f.ParentUserID != "" {
		db = db.Where("parent_user_id = ?", f.ParentUserID)
	}
	if f.StaffUserID != "" {
		db = db.Where("staff_user_id = ?", f.StaffUserID)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	if len(f.Types) > 0 {
		db = db.Where("appointment_type IN ?", f.Types)
	}
	if f.DateFrom != nil {
		db = db.Where("appointment_date >= ?", f.DateFrom.Format(time.DateOnly))
	}
	if f.DateTo != nil {
		db = db.Where("appointment_date <= ?", f.DateTo.Format(time.DateOnly))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(parent_name) LIKE ? OR LOWER(student_name) LIKE ? OR LOWER(appointment_number) LIKE ? OR LOWER(parent_email) LIKE ?",
			like, like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "appointment_date DESC, start_time DESC"
	if col, ok := appointmentSortColumns[f.SortBy]; ok {
		dir := "ASC"
		if strings.EqualFold(f.SortDir, "desc") {
			dir = "DESC"
		}
		order = col + " " + dir
	}

	err := db.Preload("School.Campus").
		Order(order).
		Offset(f.Page * f.Size).Limit(f.Size).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *appointmentRepo) countGrouped(ctx context.Context, column string, schoolIDs []string, from, to time.Time) ([]StatusCount, error) {
	var rows []StatusCount
	db := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Select(column+" AS key, COUNT(*) AS count").
		Where("is_active = ?", true).
		Where("appointment_date BETWEEN ? AND ?", from.Format(time.DateOnly), to.Format(time.DateOnly))
	if schoolIDs != nil {
		db = db.Where("school_id IN ?", schoolIDs)
	}
	err := db.Group(column).Order(column).Scan(&rows).Error
	return rows, err
}

func (r *appointmentRepo) CountByStatus(ctx context.Context, schoolIDs []string, from, to time.Time) ([]StatusCount, error) {
	return r.countGrouped(ctx, "status", schoolIDs, from, to)
}

func (r *appointmentRepo) CountByType(ctx context.Context, schoolIDs []string, from, to time.Time) ([]StatusCount, error) {
	return r.countGrouped(ctx, "appointment_type", schoolIDs, from, to)
}

func (r *appointmentRepo) StaffPerformance(ctx context.Context, schoolIDs []string, from, to time.Time) ([]StaffPerformanceRow, error) {
	var rows []StaffPerformanceRow
	db := r.db.WithContext(ctx).
		Table("appointments a").
		Select(`a.staff_user_id AS staff_user_id,
			COALESCE(u.name, '') AS staff_name,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE a.status = ?) AS completed,
			COUNT(*) FILTER (WHERE a.status = ?) AS cancelled,
			COUNT(*) FILTER (WHERE a.status = ?) AS no_show`,
			model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, model.AppointmentStatusNoShow).
		Joins("LEFT JOIN users u ON u.user_id = a.staff_user_id").
		Where("a.is_active = ? AND a.staff_user_id IS NOT NULL", true).
		Where("a.appointment_date BETWEEN ? AND ?", from.Format(time.DateOnly), to.Format(time.DateOnly))
	if schoolIDs != nil {
		db = db.Where("a.school_id IN ?", schoolIDs)
	}
	err := db.Group("a.staff_user_id, u.name").Order("total DESC").Scan(&rows).Error
	return rows, err
}

func (r *appointmentRepo) CompletePast(ctx context.Context, cutoff time.Time, zone string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("status = ? AND is_active = ?", model.AppointmentStatusConfirmed, true).
		Where("((appointment_date + end_time::time) AT TIME ZONE ?) < ?", zone, cutoff).
		Updates(map[string]interface{}{
			"status":       model.AppointmentStatusCompleted,
			"completed_at": gorm.Expr("NOW()"),
			"updated_at":   gorm.Expr("NOW()"),
			"version":      gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// ── Waitlist ──

// WaitlistRepository appointment waitlist data access
type WaitlistRepository interface {
	Create(ctx context.Context, entry *model.AppointmentWaitlist) error
	ExistsActive(ctx context.Context, schoolID, parentEmail string) (bool, error)
	CountWaiting(ctx context.Context, schoolID string) (int64, error)
	ListBySchool(ctx context.Context, schoolID string) ([]model.AppointmentWaitlist, error)
}

type waitlistRepo struct {
	db *gorm.DB
}

// NewWaitlistRepo creates a WaitlistRepository
func NewWaitlistRepo(db *gorm.DB) WaitlistRepository {
	return &waitlistRepo{db: db}
}

func (r *waitlistRepo) Create(ctx context.Context, entry *model.AppointmentWaitlist) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *waitlistRepo) ExistsActive(ctx context.Context, schoolID, parentEmail string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AppointmentWaitlist{}).
		Where("school_id = ? AND LOWER(parent_email) = LOWER(?) AND is_active = ?", schoolID, parentEmail, true).
		Where("status IN ?", []string{model.WaitlistStatusWaiting, model.WaitlistStatusNotified}).
		Count(&count).Error
	return count > 0, err
}

func (r *waitlistRepo) CountWaiting(ctx context.Context, schoolID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AppointmentWaitlist{}).
		Where("school_id = ? AND status = ? AND is_active = ?", schoolID, model.WaitlistStatusWaiting, true).
		Count(&count).Error
	return count, err
}

func (r *waitlistRepo) ListBySchool(ctx context.Context, schoolID string) ([]model.AppointmentWaitlist, error) {
	var list []model.AppointmentWaitlist
	err := r.db.WithContext(ctx).
		Where("school_id = ? AND is_active = ?", schoolID, true).
		Order("queue_position ASC").
		Find(&list).Error
	return list, err
}
