// Package access resolves what an actor may do to an institution-scoped resource.
package access

import (
	"slices"

	"okulpazar/backend/internal/model"
)

// Capability a single permission bit
type Capability uint8

const (
	ReadAppointments Capability = 1 << iota
	ManageAppointments
	ManageCampaigns
	ManagePricing
	ApprovePricing
	ManageContent
)

const allCapabilities = ReadAppointments | ManageAppointments | ManageCampaigns |
	ManagePricing | ApprovePricing | ManageContent

// CapabilitySet a bitmask of capabilities
type CapabilitySet Capability

// Has reports whether every bit of c is granted
func (s CapabilitySet) Has(c Capability) bool {
	return Capability(s)&c == c
}

// Actor authenticated caller; scope sets are expanded down the hierarchy
type Actor struct {
	UserID    string
	Role      string
	RoleLevel string
	BrandIDs  []string
	CampusIDs []string
	SchoolIDs []string
}

// IsSystem platform operators
func (a *Actor) IsSystem() bool { return a != nil && a.RoleLevel == model.RoleLevelSystem }

// IsParent end users booking appointments
func (a *Actor) IsParent() bool { return a != nil && a.RoleLevel == model.RoleLevelParent }

// Scope identifies the owner chain of a resource. Empty fields are ignored.
type Scope struct {
	BrandID   string
	CampusID  string
	SchoolID  string
	CreatedBy string
}

// SchoolScope builds a scope from a loaded school (campus preloaded when available)
func SchoolScope(s *model.School) Scope {
	return Scope{BrandID: s.BrandID(), CampusID: s.CampusID, SchoolID: s.SchoolID}
}

// Resolve returns the capabilities actor holds on a resource in scope
func Resolve(a *Actor, scope Scope) CapabilitySet {
	if a == nil {
		return 0
	}

	switch a.RoleLevel {
	case model.RoleLevelSystem:
		return CapabilitySet(allCapabilities)

	case model.RoleLevelBrand:
		if a.created(scope) || a.coversBrand(scope) || a.coversCampus(scope) || a.coversSchool(scope) {
			return CapabilitySet(allCapabilities)
		}

	case model.RoleLevelCampus:
		if a.created(scope) || a.coversCampus(scope) || a.coversSchool(scope) {
			return CapabilitySet(allCapabilities &^ ApprovePricing)
		}

	case model.RoleLevelSchool:
		if a.coversSchool(scope) {
			return CapabilitySet(ReadAppointments | ManageAppointments | ManagePricing | ManageContent)
		}
	}
	return 0
}

// Can is shorthand for Resolve(a, scope).Has(c)
func Can(a *Actor, scope Scope, c Capability) bool {
	return Resolve(a, scope).Has(c)
}

func (a *Actor) created(s Scope) bool {
	return s.CreatedBy != "" && s.CreatedBy == a.UserID
}

func (a *Actor) coversBrand(s Scope) bool {
	return s.BrandID != "" && slices.Contains(a.BrandIDs, s.BrandID)
}

func (a *Actor) coversCampus(s Scope) bool {
	return s.CampusID != "" && slices.Contains(a.CampusIDs, s.CampusID)
}

func (a *Actor) coversSchool(s Scope) bool {
	return s.SchoolID != "" && slices.Contains(a.SchoolIDs, s.SchoolID)
}
