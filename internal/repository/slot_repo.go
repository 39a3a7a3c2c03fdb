package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"okulpazar/backend/internal/model"
	pkgerrors "okulpazar/backend/pkg/errors"
)

// SlotRepository appointment slot data access
type SlotRepository interface {
	Create(ctx context.Context, slot *model.AppointmentSlot) error
	GetActiveByID(ctx context.Context, id string) (*model.AppointmentSlot, error)
	// LockActiveByID selects the slot FOR UPDATE; call inside a transaction
	LockActiveByID(ctx context.Context, id string) (*model.AppointmentSlot, error)
	Update(ctx context.Context, slot *model.AppointmentSlot) error
	ListBySchool(ctx context.Context, schoolID string, activeOnly bool) ([]model.AppointmentSlot, error)
	// ExistsOverlapping reports an active slot of the same school, day and
	// staff (nil matches nil) whose [start, end) intersects the given range
	ExistsOverlapping(ctx context.Context, schoolID string, dayOfWeek int, start, end string, staffUserID *string, excludeSlotID string) (bool, error)
}

type slotRepo struct {
	db *gorm.DB
}

// NewSlotRepo creates a SlotRepository
func NewSlotRepo(db *gorm.DB) SlotRepository {
	return &slotRepo{db: db}
}

func (r *slotRepo) Create(ctx context.Context, slot *model.AppointmentSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *slotRepo) GetActiveByID(ctx context.Context, id string) (*model.AppointmentSlot, error) {
	var slot model.AppointmentSlot
	err := r.db.WithContext(ctx).
		Preload("School").Preload("School.Campus").
		Where("slot_id = ? AND is_active = ?", id, true).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepo) LockActiveByID(ctx context.Context, id string) (*model.AppointmentSlot, error) {
	var slot model.AppointmentSlot
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("slot_id = ? AND is_active = ?", id, true).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepo) Update(ctx context.Context, slot *model.AppointmentSlot) error {
	oldVersion := slot.Version
	result := r.db.WithContext(ctx).
		Model(&model.AppointmentSlot{}).
		Where("slot_id = ? AND version = ?", slot.SlotID, oldVersion).
		Updates(map[string]interface{}{
			"staff_user_id":         slot.StaffUserID,
			"day_of_week":           slot.DayOfWeek,
			"start_time":            slot.StartTime,
			"end_time":              slot.EndTime,
			"capacity":              slot.Capacity,
			"appointment_type":      slot.AppointmentType,
			"advance_booking_hours": slot.AdvanceBookingHours,
			"cancellation_hours":    slot.CancellationHours,
			"requires_approval":     slot.RequiresApproval,
			"excluded_dates":        slot.ExcludedDates,
			"is_active":             slot.IsActive,
			"updated_by":            slot.UpdatedBy,
			"updated_at":            gorm.Expr("NOW()"),
			"version":               oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	slot.Version = oldVersion + 1
	return nil
}

func (r *slotRepo) ListBySchool(ctx context.Context, schoolID string, activeOnly bool) ([]model.AppointmentSlot, error) {
	var slots []model.AppointmentSlot
	db := r.db.WithContext(ctx).Where("school_id = ?", schoolID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("day_of_week ASC, start_time ASC").Find(&slots).Error
	return slots, err
}

func (r *slotRepo) ExistsOverlapping(ctx context.Context, schoolID string, dayOfWeek int, start, end string, staffUserID *string, excludeSlotID string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&model.AppointmentSlot{}).
		Where("school_id = ? AND day_of_week = ? AND is_active = ?", schoolID, dayOfWeek, true).
		Where("start_time::time < ?::time AND end_time::time > ?::time", end, start)

	if staffUserID != nil {
		db = db.Where("staff_user_id = ?", *staffUserID)
	} else {
		db = db.Where("staff_user_id IS NULL")
	}
	if excludeSlotID != "" {
		db = db.Where("slot_id <> ?", excludeSlotID)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
