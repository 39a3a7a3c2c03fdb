package access

import (
	"testing"

	"okulpazar/backend/internal/model"
)

func TestResolve_System(t *testing.T) {
	a := &Actor{UserID: "u-1", RoleLevel: model.RoleLevelSystem}
	caps := Resolve(a, Scope{SchoolID: "anything"})
	for _, c := range []Capability{ReadAppointments, ManageAppointments, ManageCampaigns, ManagePricing, ApprovePricing, ManageContent} {
		if !caps.Has(c) {
			t.Errorf("system should hold capability %d", c)
		}
	}
}

func TestResolve_BrandInScope(t *testing.T) {
	a := &Actor{UserID: "u-1", RoleLevel: model.RoleLevelBrand, BrandIDs: []string{"b-1"}}
	if !Can(a, Scope{BrandID: "b-1", SchoolID: "s-9"}, ApprovePricing) {
		t.Error("brand manager should approve pricing in own brand")
	}
	if Can(a, Scope{BrandID: "b-2", SchoolID: "s-9"}, ManageCampaigns) {
		t.Error("brand manager should not manage another brand")
	}
}

func TestResolve_CampusCreator(t *testing.T) {
	a := &Actor{UserID: "u-7", RoleLevel: model.RoleLevelCampus}
	caps := Resolve(a, Scope{CreatedBy: "u-7"})
	if !caps.Has(ManageCampaigns) {
		t.Error("creator should manage own campaign")
	}
	if caps.Has(ApprovePricing) {
		t.Error("campus tier cannot approve pricing")
	}
}

func TestResolve_SchoolTier(t *testing.T) {
	a := &Actor{UserID: "u-3", RoleLevel: model.RoleLevelSchool, SchoolIDs: []string{"s-1"}}
	caps := Resolve(a, Scope{CampusID: "c-1", SchoolID: "s-1"})
	if !caps.Has(ManageAppointments | ReadAppointments) {
		t.Error("school staff should manage appointments of own school")
	}
	if caps.Has(ManageCampaigns) {
		t.Error("school tier cannot manage campaigns")
	}
	if Resolve(a, Scope{SchoolID: "s-2"}) != 0 {
		t.Error("school staff has nothing on another school")
	}
	// created-by does not lift school tier
	if Resolve(a, Scope{CreatedBy: "u-3"}) != 0 {
		t.Error("school tier is scoped by grants only")
	}
}

func TestResolve_ParentAndNil(t *testing.T) {
	p := &Actor{UserID: "p-1", RoleLevel: model.RoleLevelParent, SchoolIDs: []string{"s-1"}}
	if Resolve(p, Scope{SchoolID: "s-1"}) != 0 {
		t.Error("parents hold no capabilities")
	}
	if Resolve(nil, Scope{SchoolID: "s-1"}) != 0 {
		t.Error("nil actor holds no capabilities")
	}
}

func TestSchoolScope(t *testing.T) {
	s := &model.School{SchoolID: "s-1", CampusID: "c-1", Campus: &model.Campus{CampusID: "c-1", BrandID: "b-1"}}
	got := SchoolScope(s)
	if got.BrandID != "b-1" || got.CampusID != "c-1" || got.SchoolID != "s-1" {
		t.Errorf("unexpected scope %+v", got)
	}
}
