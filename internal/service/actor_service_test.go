package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"

	"okulpazar/backend/internal/model"
)

func setupTestActorService() (ActorService, *mockRepos) {
	repo, m := newMockRepository()
	return NewActorService(repo, zap.NewNop()), m
}

func TestActorService_Load_BrandExpandsToSchools(t *testing.T) {
	svc, m := setupTestActorService()
	m.users.users["u-brand"] = &model.User{UserID: "u-brand", Role: "brand_admin", RoleLevel: model.RoleLevelBrand, IsActive: true}
	m.access.grants = []model.UserInstitutionAccess{
		{UserID: "u-brand", AccessType: model.AccessTypeBrand, EntityID: "brand-1", IsActive: true},
		{UserID: "u-brand", AccessType: model.AccessTypeSchool, EntityID: "school-2", IsActive: false},
	}

	actor, err := svc.Load(context.Background(), "u-brand")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(actor.BrandIDs, []string{"brand-1"}) {
		t.Errorf("unexpected brands %v", actor.BrandIDs)
	}
	if !slices.Contains(actor.CampusIDs, "campus-1") || slices.Contains(actor.CampusIDs, "campus-2") {
		t.Errorf("unexpected campuses %v", actor.CampusIDs)
	}
	if !slices.Equal(actor.SchoolIDs, []string{"school-1"}) {
		t.Errorf("inactive grant must be ignored, got %v", actor.SchoolIDs)
	}
}

func TestActorService_Load_NoDuplicates(t *testing.T) {
	svc, m := setupTestActorService()
	m.users.users["u-campus"] = &model.User{UserID: "u-campus", RoleLevel: model.RoleLevelCampus, IsActive: true}
	m.access.grants = []model.UserInstitutionAccess{
		{UserID: "u-campus", AccessType: model.AccessTypeCampus, EntityID: "campus-1", IsActive: true},
		{UserID: "u-campus", AccessType: model.AccessTypeSchool, EntityID: "school-1", IsActive: true},
	}

	actor, err := svc.Load(context.Background(), "u-campus")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(actor.SchoolIDs) != 1 || len(actor.CampusIDs) != 1 {
		t.Errorf("expected deduplicated scope, got campuses=%v schools=%v", actor.CampusIDs, actor.SchoolIDs)
	}
}

func TestActorService_Load_ParentSkipsGrants(t *testing.T) {
	svc, m := setupTestActorService()
	m.users.users["u-parent"] = &model.User{UserID: "u-parent", RoleLevel: model.RoleLevelParent, IsActive: true}
	m.access.grants = []model.UserInstitutionAccess{
		{UserID: "u-parent", AccessType: model.AccessTypeSchool, EntityID: "school-1", IsActive: true},
	}

	actor, err := svc.Load(context.Background(), "u-parent")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !actor.IsParent() || len(actor.SchoolIDs) != 0 {
		t.Errorf("unexpected actor %+v", actor)
	}
}

func TestActorService_Load_Inactive(t *testing.T) {
	svc, m := setupTestActorService()
	m.users.users["u-gone"] = &model.User{UserID: "u-gone", RoleLevel: model.RoleLevelSchool}

	if _, err := svc.Load(context.Background(), "u-gone"); !errors.Is(err, ErrActorInactive) {
		t.Errorf("expected ErrActorInactive, got %v", err)
	}
	if _, err := svc.Load(context.Background(), "missing"); !errors.Is(err, ErrActorInactive) {
		t.Errorf("expected ErrActorInactive, got %v", err)
	}
}
