package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	pkgerrors "okulpazar/backend/pkg/errors"
)

func setupTestSlotService() (SlotService, *mockRepos) {
	repo, m := newMockRepository()
	m.users.users["staff-1"] = &model.User{UserID: "staff-1", Name: "Ayse", IsActive: true}
	m.users.users["staff-2"] = &model.User{UserID: "staff-2", Name: "Mehmet", IsActive: true}
	return NewSlotService(repo, zap.NewNop()), m
}

func mondaySlotRequest() *dto.CreateSlotRequest {
	return &dto.CreateSlotRequest{
		SchoolID:        "school-1",
		DayOfWeek:       1,
		StartTime:       "10:00",
		EndTime:         "11:00",
		Capacity:        2,
		AppointmentType: model.AppointmentTypeSchoolTour,
	}
}

// ── CreateSlot ──

func TestSlotService_CreateSlot_Success(t *testing.T) {
	svc, m := setupTestSlotService()

	req := mondaySlotRequest()
	req.ExcludedDates = []string{"2026-03-09"}
	result, err := svc.CreateSlot(context.Background(), req, schoolActor)
	if err != nil {
		t.Fatalf("CreateSlot should succeed: %v", err)
	}
	if result.Capacity != 2 || !result.IsActive {
		t.Errorf("unexpected slot %+v", result)
	}
	if len(result.ExcludedDates) != 1 || result.ExcludedDates[0] != "2026-03-09" {
		t.Errorf("excluded dates not kept: %v", result.ExcludedDates)
	}
	if len(m.slots.slots) != 1 {
		t.Errorf("expected 1 stored slot, got %d", len(m.slots.slots))
	}
}

func TestSlotService_CreateSlot_DefaultCapacity(t *testing.T) {
	svc, _ := setupTestSlotService()

	req := mondaySlotRequest()
	req.Capacity = 0
	result, err := svc.CreateSlot(context.Background(), req, schoolActor)
	if err != nil {
		t.Fatalf("CreateSlot should succeed: %v", err)
	}
	if result.Capacity != 1 {
		t.Errorf("expected capacity 1, got %d", result.Capacity)
	}
}

func TestSlotService_CreateSlot_TimeOrder(t *testing.T) {
	svc, _ := setupTestSlotService()

	req := mondaySlotRequest()
	req.StartTime, req.EndTime = "11:00", "10:00"
	_, err := svc.CreateSlot(context.Background(), req, schoolActor)
	if !errors.Is(err, ErrSlotTimeOrder) {
		t.Errorf("expected ErrSlotTimeOrder, got %v", err)
	}
	if err.Error() != "Start time cannot be after end time" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSlotService_CreateSlot_SingleDigitHour(t *testing.T) {
	svc, m := setupTestSlotService()

	req := mondaySlotRequest()
	req.StartTime, req.EndTime = "9:00", "10:00"
	result, err := svc.CreateSlot(context.Background(), req, schoolActor)
	if err != nil {
		t.Fatalf("9:00-10:00 is a valid range: %v", err)
	}
	if result.StartTime != "09:00" || m.slots.slots[result.ID].StartTime != "09:00" {
		t.Errorf("expected stored start 09:00, got %s", m.slots.slots[result.ID].StartTime)
	}
}

func TestSlotService_CreateSlot_OverlapAcrossClockSpellings(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	req := mondaySlotRequest()
	req.StartTime, req.EndTime = "09:00", "10:00"
	if _, err := svc.CreateSlot(ctx, req, schoolActor); err != nil {
		t.Fatalf("first slot: %v", err)
	}

	dup := mondaySlotRequest()
	dup.StartTime, dup.EndTime = "9:00", "10:00"
	if _, err := svc.CreateSlot(ctx, dup, schoolActor); !errors.Is(err, ErrSlotOverlap) {
		t.Errorf("expected ErrSlotOverlap, got %v", err)
	}
}

func TestSlotService_CreateSlot_InvalidClock(t *testing.T) {
	svc, _ := setupTestSlotService()

	req := mondaySlotRequest()
	req.EndTime = "25:00"
	_, err := svc.CreateSlot(context.Background(), req, schoolActor)
	if pkgerrors.KindOf(err) != pkgerrors.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestSlotService_CreateSlot_Overlap(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	if _, err := svc.CreateSlot(ctx, mondaySlotRequest(), schoolActor); err != nil {
		t.Fatalf("first slot: %v", err)
	}

	req := mondaySlotRequest()
	req.StartTime, req.EndTime = "10:30", "11:30"
	_, err := svc.CreateSlot(ctx, req, schoolActor)
	if !errors.Is(err, ErrSlotOverlap) {
		t.Errorf("expected ErrSlotOverlap, got %v", err)
	}
}

func TestSlotService_CreateSlot_AdjacentIsNotOverlap(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	if _, err := svc.CreateSlot(ctx, mondaySlotRequest(), schoolActor); err != nil {
		t.Fatalf("first slot: %v", err)
	}
	req := mondaySlotRequest()
	req.StartTime, req.EndTime = "11:00", "12:00"
	if _, err := svc.CreateSlot(ctx, req, schoolActor); err != nil {
		t.Errorf("touching ranges should not overlap: %v", err)
	}
}

func TestSlotService_CreateSlot_DifferentStaffMayOverlap(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	first := mondaySlotRequest()
	first.StaffUserID = strPtr("staff-1")
	if _, err := svc.CreateSlot(ctx, first, schoolActor); err != nil {
		t.Fatalf("first slot: %v", err)
	}

	second := mondaySlotRequest()
	second.StaffUserID = strPtr("staff-2")
	if _, err := svc.CreateSlot(ctx, second, schoolActor); err != nil {
		t.Errorf("other staff should be allowed: %v", err)
	}

	// a slot without staff is a separate overlap key too
	if _, err := svc.CreateSlot(ctx, mondaySlotRequest(), schoolActor); err != nil {
		t.Errorf("unassigned slot should be allowed: %v", err)
	}
}

func TestSlotService_CreateSlot_StaffNotFound(t *testing.T) {
	svc, _ := setupTestSlotService()

	req := mondaySlotRequest()
	req.StaffUserID = strPtr("ghost")
	_, err := svc.CreateSlot(context.Background(), req, schoolActor)
	if !pkgerrors.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSlotService_CreateSlot_Forbidden(t *testing.T) {
	svc, _ := setupTestSlotService()

	_, err := svc.CreateSlot(context.Background(), mondaySlotRequest(), otherActor)
	if !errors.Is(err, ErrManageAppointmentsDenied) {
		t.Errorf("expected ErrManageAppointmentsDenied, got %v", err)
	}
}

func TestSlotService_CreateSlot_SchoolNotFound(t *testing.T) {
	svc, _ := setupTestSlotService()

	req := mondaySlotRequest()
	req.SchoolID = "missing"
	_, err := svc.CreateSlot(context.Background(), req, systemActor)
	if !pkgerrors.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

// ── Get / List ──

func TestSlotService_GetSlot_NotFound(t *testing.T) {
	svc, _ := setupTestSlotService()

	_, err := svc.GetSlot(context.Background(), "nope", systemActor)
	if !pkgerrors.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestSlotService_ListSlots_IncludesInactive(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	created, _ := svc.CreateSlot(ctx, mondaySlotRequest(), schoolActor)
	if err := svc.DeactivateSlot(ctx, created.ID, schoolActor); err != nil {
		t.Fatalf("DeactivateSlot: %v", err)
	}

	list, err := svc.ListSlots(ctx, "school-1", schoolActor)
	if err != nil {
		t.Fatalf("ListSlots: %v", err)
	}
	if len(list) != 1 || list[0].IsActive {
		t.Errorf("expected one inactive slot, got %+v", list)
	}
}

// ── Update / Deactivate ──

func TestSlotService_UpdateSlot_OverlapIgnoresSelf(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	created, _ := svc.CreateSlot(ctx, mondaySlotRequest(), schoolActor)

	end := "11:30"
	result, err := svc.UpdateSlot(ctx, created.ID, &dto.UpdateSlotRequest{EndTime: &end}, schoolActor)
	if err != nil {
		t.Fatalf("UpdateSlot should succeed: %v", err)
	}
	if result.EndTime != "11:30" {
		t.Errorf("expected end 11:30, got %s", result.EndTime)
	}
}

func TestSlotService_UpdateSlot_TimeOrder(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	created, _ := svc.CreateSlot(ctx, mondaySlotRequest(), schoolActor)

	start := "12:00"
	_, err := svc.UpdateSlot(ctx, created.ID, &dto.UpdateSlotRequest{StartTime: &start}, schoolActor)
	if !errors.Is(err, ErrSlotTimeOrder) {
		t.Errorf("expected ErrSlotTimeOrder, got %v", err)
	}
}

func TestSlotService_DeactivateSlot_HidesFromGet(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	created, _ := svc.CreateSlot(ctx, mondaySlotRequest(), schoolActor)
	if err := svc.DeactivateSlot(ctx, created.ID, schoolActor); err != nil {
		t.Fatalf("DeactivateSlot: %v", err)
	}
	if _, err := svc.GetSlot(ctx, created.ID, schoolActor); !pkgerrors.IsNotFound(err) {
		t.Errorf("deactivated slot should not resolve, got %v", err)
	}
}

func TestSlotService_DeactivateSlot_Forbidden(t *testing.T) {
	svc, _ := setupTestSlotService()
	ctx := context.Background()

	created, _ := svc.CreateSlot(ctx, mondaySlotRequest(), schoolActor)
	if err := svc.DeactivateSlot(ctx, created.ID, otherActor); !errors.Is(err, ErrManageAppointmentsDenied) {
		t.Errorf("expected ErrManageAppointmentsDenied, got %v", err)
	}
}
