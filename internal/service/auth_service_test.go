package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/model"
	pkgerrors "okulpazar/backend/pkg/errors"
)

type fakeRevoker struct {
	jti string
	ttl time.Duration
	err error
}

func (f *fakeRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.jti, f.ttl = jti, ttl
	return nil
}

func setupTestAuthService(revoker TokenRevoker) (*authService, *mockRepos) {
	repo, m := newMockRepository()
	svc := NewAuthService(repo, revoker, zap.NewNop()).(*authService)
	svc.now = func() time.Time { return time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) }
	return svc, m
}

func TestAuthService_Logout_BlacklistsForRemainingLifetime(t *testing.T) {
	rev := &fakeRevoker{}
	svc, _ := setupTestAuthService(rev)

	exp := svc.now().Add(12 * time.Minute)
	if err := svc.Logout(context.Background(), "jti-1", exp); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rev.jti != "jti-1" || rev.ttl != 12*time.Minute {
		t.Errorf("unexpected blacklist entry %q ttl=%v", rev.jti, rev.ttl)
	}
}

func TestAuthService_Logout_ExpiredTokenIsNoop(t *testing.T) {
	rev := &fakeRevoker{}
	svc, _ := setupTestAuthService(rev)

	if err := svc.Logout(context.Background(), "jti-1", svc.now().Add(-time.Second)); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rev.jti != "" {
		t.Error("expired token must not be written to the blacklist")
	}
}

func TestAuthService_Logout_Rejections(t *testing.T) {
	svc, _ := setupTestAuthService(nil)
	exp := svc.now().Add(time.Minute)

	if err := svc.Logout(context.Background(), "", exp); pkgerrors.KindOf(err) != pkgerrors.KindValidation {
		t.Errorf("empty jti: expected validation error, got %v", err)
	}
	if err := svc.Logout(context.Background(), "jti-1", exp); !errors.Is(err, ErrRevocationUnavailable) {
		t.Errorf("nil revoker: expected ErrRevocationUnavailable, got %v", err)
	}

	boom := errors.New("redis down")
	svc.revoker = &fakeRevoker{err: boom}
	if err := svc.Logout(context.Background(), "jti-1", exp); !errors.Is(err, boom) {
		t.Errorf("expected revoker error, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, m := setupTestAuthService(nil)
	m.users.users["u-1"] = &model.User{UserID: "u-1", Name: "Ayse", Email: "ayse@example.com", Role: "school_admin", RoleLevel: model.RoleLevelSchool, IsActive: true}

	me, err := svc.Me(context.Background(), &access.Actor{UserID: "u-1", RoleLevel: model.RoleLevelSchool, SchoolIDs: []string{"school-1"}})
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Email != "ayse@example.com" || len(me.SchoolIDs) != 1 {
		t.Errorf("unexpected profile %+v", me)
	}
	if me.BrandIDs == nil || me.CampusIDs == nil {
		t.Error("empty scopes must serialize as [] not null")
	}

	if _, err := svc.Me(context.Background(), &access.Actor{UserID: "ghost"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Me(context.Background(), nil); !pkgerrors.IsForbidden(err) {
		t.Errorf("nil actor: expected forbidden, got %v", err)
	}
}
