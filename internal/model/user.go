package model

import "time"

// Role levels, highest first
const (
	RoleLevelSystem = "SYSTEM"
	RoleLevelBrand  = "BRAND"
	RoleLevelCampus = "CAMPUS"
	RoleLevelSchool = "SCHOOL"
	RoleLevelParent = "PARENT"
)

// User users
type User struct {
	UserID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email     string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Phone     string `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Role      string `gorm:"type:varchar(50);not null"                      json:"role"`
	RoleLevel string `gorm:"type:varchar(20);not null;default:'PARENT'"     json:"role_level"`
	IsActive  bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

func (User) TableName() string { return "users" }

// Institution access grant types
const (
	AccessTypeBrand  = "BRAND"
	AccessTypeCampus = "CAMPUS"
	AccessTypeSchool = "SCHOOL"
)

// UserInstitutionAccess user_institution_access: explicit scope grants
type UserInstitutionAccess struct {
	AccessID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"access_id"`
	UserID     string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	AccessType string    `gorm:"type:varchar(20);not null"                      json:"access_type"` // BRAND | CAMPUS | SCHOOL
	EntityID   string    `gorm:"type:uuid;not null"                             json:"entity_id"`
	IsActive   bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (UserInstitutionAccess) TableName() string { return "user_institution_access" }
