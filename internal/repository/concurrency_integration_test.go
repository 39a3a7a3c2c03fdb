//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"okulpazar/backend/config"
	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	"okulpazar/backend/internal/service"
)

const contenders = 12

// race runs fn from contenders goroutines released together and returns the errors
func race(fn func() error) []error {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, contenders)
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

// nextMonday at least a week ahead, so advance and past checks never trip
func nextMonday() time.Time {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func TestConcurrentBookingsNeverExceedCapacity(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	slot := newSlot(f.school.SchoolID)
	slot.Capacity = 3
	mustCreate(t, ctx, slot)

	svc := service.NewAppointmentService(&config.BookingConfig{MaxReschedules: 3, NumberPrefix: "APT"}, time.UTC, repo, zap.NewNop())
	parent := &access.Actor{UserID: f.user.UserID, RoleLevel: model.RoleLevelParent}
	date := nextMonday().Format(time.DateOnly)

	errs := race(func() error {
		_, err := svc.CreateAppointment(ctx, &dto.CreateAppointmentRequest{
			SchoolID:        f.school.SchoolID,
			SlotID:          &slot.SlotID,
			AppointmentDate: date,
			AppointmentType: slot.AppointmentType,
		}, parent)
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, service.ErrNoCapacity):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != slot.Capacity {
		t.Errorf("expected exactly %d bookings, got %d", slot.Capacity, succeeded)
	}

	booked, err := repo.Appointment.CountBooked(ctx, slot.SlotID, nextMonday())
	if err != nil {
		t.Fatalf("CountBooked: %v", err)
	}
	if booked != int64(slot.Capacity) {
		t.Errorf("stored bookings: expected %d, got %d", slot.Capacity, booked)
	}
}

func TestConcurrentRedemptionsStopAtUsageLimit(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	limit := 5
	pct := decimal.NewFromInt(10)
	c := &model.Campaign{
		Title:              "Son Kontenjan",
		Slug:               "son-kontenjan-" + uuid.NewString()[:8],
		CampaignType:       model.CampaignTypeEnrollment,
		DiscountType:       model.DiscountTypePercentage,
		DiscountPercentage: &pct,
		StartDate:          time.Now().Add(-time.Hour),
		EndDate:            time.Now().Add(24 * time.Hour),
		UsageLimit:         &limit,
		UsageCount:         limit - 1,
		Status:             model.CampaignStatusActive,
		BrandID:            &f.brand.BrandID,
		IsActive:           true,
	}
	mustCreate(t, ctx, c)
	mustCreate(t, ctx, &model.CampaignSchool{CampaignID: c.CampaignID, SchoolID: f.school.SchoolID, Status: model.CampaignSchoolStatusActive})

	svc := service.NewCampaignService(&config.CampaignConfig{ValidationCodeTTL: time.Hour}, repo, zap.NewNop())
	parent := &access.Actor{UserID: f.user.UserID, RoleLevel: model.RoleLevelParent}

	errs := race(func() error {
		_, err := svc.CreateCampaignUsage(ctx, &dto.CreateCampaignUsageRequest{
			CampaignID:     c.CampaignID,
			SchoolID:       f.school.SchoolID,
			UsageType:      model.UsageTypeEnrollment,
			OriginalAmount: decimal.NewFromInt(10000),
		}, parent)
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, service.ErrCampaignUsageLimit):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one redemption of the last seat, got %d", succeeded)
	}

	found, err := repo.Campaign.GetActiveByID(ctx, c.CampaignID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if found.UsageCount != limit {
		t.Errorf("usage_count: expected %d, got %d", limit, found.UsageCount)
	}
}
