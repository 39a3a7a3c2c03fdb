//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	"okulpazar/backend/pkg/database"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=okulpazar password=okulpazar dbname=okulpazar_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "get sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate test database: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type fixture struct {
	brand  *model.Brand
	campus *model.Campus
	school *model.School
	user   *model.User
}

// seed creates one subscribed brand → campus → school chain plus a parent user
func seed(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	f := &fixture{
		brand: &model.Brand{Name: "Marka " + suffix, Slug: "marka-" + suffix, IsActive: true},
	}
	mustCreate(t, ctx, f.brand)

	f.campus = &model.Campus{BrandID: f.brand.BrandID, Name: "Kampus " + suffix, Slug: "kampus-" + suffix, IsSubscribed: true, IsActive: true}
	mustCreate(t, ctx, f.campus)

	f.school = &model.School{CampusID: f.campus.CampusID, Name: "Okul " + suffix, Slug: "okul-" + suffix, IsActive: true}
	mustCreate(t, ctx, f.school)

	f.user = &model.User{Name: "Veli " + suffix, Email: "veli-" + suffix + "@example.com", Role: "parent", RoleLevel: model.RoleLevelParent, IsActive: true}
	mustCreate(t, ctx, f.user)

	t.Cleanup(func() {
		id := f.school.SchoolID
		testDB.Exec("DELETE FROM post_likes WHERE post_id IN (SELECT post_id FROM posts WHERE school_id = ?)", id)
		testDB.Exec("DELETE FROM post_comments WHERE post_id IN (SELECT post_id FROM posts WHERE school_id = ?)", id)
		for _, table := range []string{"posts", "campaign_usages", "campaign_schools", "appointments", "appointment_slots", "school_pricings"} {
			testDB.Exec("DELETE FROM "+table+" WHERE school_id = ?", id)
		}
		testDB.Exec("DELETE FROM campaigns WHERE brand_id = ?", f.brand.BrandID)
		testDB.Exec("DELETE FROM schools WHERE school_id = ?", id)
		testDB.Exec("DELETE FROM campuses WHERE campus_id = ?", f.campus.CampusID)
		testDB.Exec("DELETE FROM brands WHERE brand_id = ?", f.brand.BrandID)
		testDB.Exec("DELETE FROM users WHERE user_id = ?", f.user.UserID)
	})
	return f
}

func mustCreate(t *testing.T, ctx context.Context, v interface{}) {
	t.Helper()
	if err := testDB.WithContext(ctx).Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

func newSlot(schoolID string) *model.AppointmentSlot {
	return &model.AppointmentSlot{
		SchoolID:        schoolID,
		DayOfWeek:       1,
		StartTime:       "09:00",
		EndTime:         "10:00",
		Capacity:        2,
		AppointmentType: model.AppointmentTypeInfoMeeting,
		IsActive:        true,
	}
}

func TestTransaction_Rollback(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	slot := newSlot(f.school.SchoolID)
	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Slot.Create(ctx, slot); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	if _, err := repo.Slot.GetActiveByID(ctx, slot.SlotID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("slot must not survive a rolled back transaction, got %v", err)
	}
}

func TestTransaction_Commit(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	slot := newSlot(f.school.SchoolID)
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		return txRepo.Slot.Create(ctx, slot)
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	found, err := repo.Slot.GetActiveByID(ctx, slot.SlotID)
	if err != nil {
		t.Fatalf("get committed slot: %v", err)
	}
	if found.Capacity != 2 {
		t.Errorf("capacity: expected 2, got %d", found.Capacity)
	}
}

func TestSlot_ExistsOverlapping(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	slot := newSlot(f.school.SchoolID)
	mustCreate(t, ctx, slot)

	tests := []struct {
		name       string
		start, end string
		staff      *string
		exclude    string
		want       bool
	}{
		{"same range", "09:00", "10:00", nil, "", true},
		{"partial overlap", "09:30", "10:30", nil, "", true},
		{"touching end", "10:00", "11:00", nil, "", false},
		{"other staff", "09:00", "10:00", &f.user.UserID, "", false},
		{"excluded self", "09:00", "10:00", nil, slot.SlotID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Slot.ExistsOverlapping(ctx, f.school.SchoolID, 1, tt.start, tt.end, tt.staff, tt.exclude)
			if err != nil {
				t.Fatalf("ExistsOverlapping: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAppointment_CountBookedAndCompletePast(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	slot := newSlot(f.school.SchoolID)
	mustCreate(t, ctx, slot)

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for i, status := range []string{model.AppointmentStatusConfirmed, model.AppointmentStatusPending, model.AppointmentStatusCancelled} {
		apt := &model.Appointment{
			AppointmentNumber: fmt.Sprintf("IT%s%d", uuid.NewString()[:8], i),
			SlotID:            &slot.SlotID,
			SchoolID:          f.school.SchoolID,
			AppointmentDate:   day,
			StartTime:         "09:00",
			EndTime:           "10:00",
			Status:            status,
			AppointmentType:   slot.AppointmentType,
			IsActive:          true,
		}
		if err := repo.Appointment.Create(ctx, apt); err != nil {
			t.Fatalf("create appointment: %v", err)
		}
	}

	booked, err := repo.Appointment.CountBooked(ctx, slot.SlotID, day)
	if err != nil {
		t.Fatalf("CountBooked: %v", err)
	}
	if booked != 2 {
		t.Errorf("cancelled appointments must not hold capacity: expected 2, got %d", booked)
	}

	n, err := repo.Appointment.CompletePast(ctx, day.Add(48*time.Hour), "UTC")
	if err != nil {
		t.Fatalf("CompletePast: %v", err)
	}
	if n < 1 {
		t.Errorf("expected the confirmed appointment to be completed, got %d rows", n)
	}
}

func TestAppointment_CompletePastUsesZone(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	slot := newSlot(f.school.SchoolID)
	mustCreate(t, ctx, slot)

	// 09:00-10:00 wall clock; in Istanbul (UTC+3) that ends at 07:00 UTC
	apt := &model.Appointment{
		AppointmentNumber: "TZ" + uuid.NewString()[:8],
		SlotID:            &slot.SlotID,
		SchoolID:          f.school.SchoolID,
		AppointmentDate:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		StartTime:         "09:00",
		EndTime:           "10:00",
		Status:            model.AppointmentStatusConfirmed,
		AppointmentType:   slot.AppointmentType,
		IsActive:          true,
	}
	mustCreate(t, ctx, apt)
	cutoff := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

	if _, err := repo.Appointment.CompletePast(ctx, cutoff, "UTC"); err != nil {
		t.Fatalf("CompletePast: %v", err)
	}
	found, err := repo.Appointment.GetActiveByID(ctx, apt.AppointmentID)
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}
	if found.Status != model.AppointmentStatusConfirmed {
		t.Fatalf("10:00 UTC has not passed 08:00 UTC, got %s", found.Status)
	}

	if _, err := repo.Appointment.CompletePast(ctx, cutoff, "Europe/Istanbul"); err != nil {
		t.Fatalf("CompletePast: %v", err)
	}
	found, err = repo.Appointment.GetActiveByID(ctx, apt.AppointmentID)
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}
	if found.Status != model.AppointmentStatusCompleted {
		t.Errorf("10:00 Istanbul ended before 08:00 UTC, got %s", found.Status)
	}
}

func TestPricing_OneCurrentActivePerKey(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	newPricing := func(status string) *model.SchoolPricing {
		return &model.SchoolPricing{
			SchoolID:         f.school.SchoolID,
			AcademicYear:     "2026-2027",
			GradeLevel:       "5",
			Currency:         "TRY",
			PaymentFrequency: model.PaymentFrequencyMonthly,
			Status:           status,
			IsCurrent:        true,
			Version:          1,
			IsActive:         true,
		}
	}

	live := newPricing(model.PricingStatusActive)
	if err := repo.Pricing.Create(ctx, live); err != nil {
		t.Fatalf("create live pricing: %v", err)
	}
	draft := newPricing(model.PricingStatusDraft)
	if err := repo.Pricing.Create(ctx, draft); err != nil {
		t.Fatalf("a draft may sit beside the live row: %v", err)
	}
	if err := repo.Pricing.Create(ctx, newPricing(model.PricingStatusPendingApproval)); err == nil {
		t.Error("second open pricing for the key must violate uk_school_pricings_open")
	}
	if err := repo.Pricing.Create(ctx, newPricing(model.PricingStatusActive)); err == nil {
		t.Error("second current ACTIVE pricing must violate uk_school_pricings_current")
	}

	open, err := repo.Pricing.ExistsOpen(ctx, f.school.SchoolID, "2026-2027", "5")
	if err != nil || !open {
		t.Errorf("ExistsOpen: expected true, got %v, %v", open, err)
	}

	err = repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Pricing.DeactivateOtherCurrent(ctx, draft.PricingID, draft.SchoolID, draft.GradeLevel, draft.AcademicYear); err != nil {
			return err
		}
		draft.Status = model.PricingStatusActive
		return tx.Pricing.Save(ctx, draft)
	})
	if err != nil {
		t.Fatalf("supersede: %v", err)
	}

	cur, err := repo.Pricing.GetCurrent(ctx, f.school.SchoolID, "5", "2026-2027")
	if err != nil {
		t.Fatalf("GetCurrent: %v", err)
	}
	if cur.PricingID != draft.PricingID {
		t.Errorf("expected %s to be current, got %s", draft.PricingID, cur.PricingID)
	}
}

func TestCampaign_IncrementUsageRespectsLimit(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	limit := 2
	pct := decimal.NewFromInt(10)
	c := &model.Campaign{
		Title:              "Erken Kayit",
		Slug:               "erken-kayit-" + uuid.NewString()[:8],
		CampaignType:       model.CampaignTypeEarlyBird,
		DiscountType:       model.DiscountTypePercentage,
		DiscountPercentage: &pct,
		StartDate:          time.Now().Add(-time.Hour),
		EndDate:            time.Now().Add(30 * 24 * time.Hour),
		UsageLimit:         &limit,
		Status:             model.CampaignStatusActive,
		BrandID:            &f.brand.BrandID,
		IsActive:           true,
	}
	if err := repo.Campaign.Create(ctx, c); err != nil {
		t.Fatalf("create campaign: %v", err)
	}

	for i := 0; i < limit; i++ {
		ok, err := repo.Campaign.IncrementUsage(ctx, c.CampaignID)
		if err != nil || !ok {
			t.Fatalf("increment %d: ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := repo.Campaign.IncrementUsage(ctx, c.CampaignID)
	if err != nil {
		t.Fatalf("increment past limit: %v", err)
	}
	if ok {
		t.Error("increment must fail once usage_limit is reached")
	}

	found, err := repo.Campaign.GetActiveByID(ctx, c.CampaignID)
	if err != nil {
		t.Fatalf("get campaign: %v", err)
	}
	if found.UsageCount != limit {
		t.Errorf("usage_count: expected %d, got %d", limit, found.UsageCount)
	}
}

func TestCampaignUsage_ExpirePending(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	amount := decimal.NewFromInt(500)
	c := &model.Campaign{
		Title:          "Kardes",
		Slug:           "kardes-" + uuid.NewString()[:8],
		CampaignType:   model.CampaignTypeSibling,
		DiscountType:   model.DiscountTypeFixedAmount,
		DiscountAmount: &amount,
		StartDate:      time.Now().Add(-time.Hour),
		EndDate:        time.Now().Add(time.Hour),
		Status:         model.CampaignStatusActive,
		BrandID:        &f.brand.BrandID,
		IsActive:       true,
	}
	mustCreate(t, ctx, c)

	now := time.Now().UTC()
	stale := &model.CampaignUsage{
		CampaignID:          c.CampaignID,
		SchoolID:            f.school.SchoolID,
		UserID:              f.user.UserID,
		UsageType:           model.UsageTypeEnrollment,
		OriginalAmount:      decimal.NewFromInt(10000),
		DiscountAmount:      amount,
		FinalAmount:         decimal.NewFromInt(9500),
		Status:              model.UsageStatusPending,
		ValidationCode:      "ABCD1234",
		ValidationExpiresAt: now.Add(-time.Minute),
	}
	if err := repo.CampaignUsage.Create(ctx, stale); err != nil {
		t.Fatalf("create usage: %v", err)
	}

	n, err := repo.CampaignUsage.ExpirePending(ctx, now)
	if err != nil {
		t.Fatalf("ExpirePending: %v", err)
	}
	if n < 1 {
		t.Fatalf("expected at least one expired usage, got %d", n)
	}

	found, err := repo.CampaignUsage.GetByID(ctx, stale.UsageID)
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	if found.Status != model.UsageStatusCancelled {
		t.Errorf("status: expected %s, got %s", model.UsageStatusCancelled, found.Status)
	}
}

func TestPost_CountersAndLikeUniqueness(t *testing.T) {
	f := seed(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	post := &model.Post{
		Title:    "Acik Kapi",
		Slug:     "acik-kapi-" + uuid.NewString()[:8],
		Content:  "Herkes davetli",
		SchoolID: &f.school.SchoolID,
		AuthorID: f.user.UserID,
		Status:   model.PostStatusPublished,
		IsActive: true,
	}
	if err := repo.Post.Create(ctx, post); err != nil {
		t.Fatalf("create post: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := repo.Post.IncrementViewCount(ctx, post.PostID); err != nil {
			t.Fatalf("IncrementViewCount: %v", err)
		}
	}

	like := &model.PostLike{PostID: post.PostID, UserID: f.user.UserID, ReactionType: model.ReactionLike}
	if err := repo.Post.CreateLike(ctx, like); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}
	dup := &model.PostLike{PostID: post.PostID, UserID: f.user.UserID, ReactionType: model.ReactionLove}
	if err := repo.Post.CreateLike(ctx, dup); err == nil {
		t.Error("second like by the same user must violate uk_post_like")
	}

	found, err := repo.Post.GetActiveByID(ctx, post.PostID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if found.ViewCount != 3 {
		t.Errorf("view_count: expected 3, got %d", found.ViewCount)
	}
}
