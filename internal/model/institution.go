package model

// Brand brands (top of the Brand → Campus → School hierarchy)
type Brand struct {
	BrandID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"brand_id"`
	Name     string `gorm:"type:varchar(200);not null"                     json:"name"`
	Slug     string `gorm:"type:varchar(160);not null;uniqueIndex"         json:"slug"`
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

func (Brand) TableName() string { return "brands" }

// Campus campuses
type Campus struct {
	CampusID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"campus_id"`
	BrandID      string `gorm:"type:uuid;not null;index"                       json:"brand_id"`
	Name         string `gorm:"type:varchar(200);not null"                     json:"name"`
	Slug         string `gorm:"type:varchar(160);not null;uniqueIndex"         json:"slug"`
	IsSubscribed bool   `gorm:"not null;default:false"                         json:"is_subscribed"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	Brand *Brand `gorm:"foreignKey:BrandID;references:BrandID" json:"brand,omitempty"`
}

func (Campus) TableName() string { return "campuses" }

// School schools
type School struct {
	SchoolID          string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_id"`
	CampusID          string  `gorm:"type:uuid;not null;index"                       json:"campus_id"`
	InstitutionTypeID *string `gorm:"type:uuid"                                      json:"institution_type_id,omitempty"`
	Name              string  `gorm:"type:varchar(200);not null"                     json:"name"`
	Slug              string  `gorm:"type:varchar(160);not null;uniqueIndex"         json:"slug"`
	Email             string  `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Phone             string  `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	IsActive          bool    `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel

	Campus *Campus `gorm:"foreignKey:CampusID;references:CampusID" json:"campus,omitempty"`
}

func (School) TableName() string { return "schools" }

// BrandID returns the owning brand when the campus is loaded
func (s *School) BrandID() string {
	if s.Campus == nil {
		return ""
	}
	return s.Campus.BrandID
}

// InstitutionType institution_types (kindergarten, primary, high school …)
type InstitutionType struct {
	InstitutionTypeID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"institution_type_id"`
	Code              string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"code"`
	Name              string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive          bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (InstitutionType) TableName() string { return "institution_types" }
