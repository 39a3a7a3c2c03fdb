package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Property data types
const (
	DataTypeText     = "TEXT"
	DataTypeNumber   = "NUMBER"
	DataTypeBoolean  = "BOOLEAN"
	DataTypeDate     = "DATE"
	DataTypeDateTime = "DATETIME"
	DataTypeJSON     = "JSON"
	DataTypeFile     = "FILE"
)

// InstitutionProperty institution_properties: a typed attribute definition
type InstitutionProperty struct {
	PropertyID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"property_id"`
	InstitutionTypeID *string `gorm:"type:uuid"                                      json:"institution_type_id,omitempty"`
	Name              string  `gorm:"type:varchar(100);not null"                     json:"name"`
	DisplayName       string  `gorm:"type:varchar(200);not null"                     json:"display_name"`
	DataType          string  `gorm:"type:varchar(20);not null"                      json:"data_type"`
	IsRequired        bool    `gorm:"not null;default:false"                         json:"is_required"`
	IsActive          bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

func (InstitutionProperty) TableName() string { return "institution_properties" }

// InstitutionPropertyValue institution_property_values; use Value/SetValue
type InstitutionPropertyValue struct {
	ValueID       string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"value_id"`
	PropertyID    string         `gorm:"type:uuid;not null;index"                       json:"property_id"`
	CampusID      *string        `gorm:"type:uuid;index"                                json:"campus_id,omitempty"`
	SchoolID      *string        `gorm:"type:uuid;index"                                json:"school_id,omitempty"`
	TextValue     *string        `gorm:"type:text"                                      json:"-"`
	NumberValue   *float64       `                                                      json:"-"`
	BooleanValue  *bool          `                                                      json:"-"`
	DateValue     *time.Time     `gorm:"type:date"                                      json:"-"`
	DateTimeValue *time.Time     `                                                      json:"-"`
	JSONValue     datatypes.JSON `gorm:"type:jsonb"                                     json:"-"`
	FileURL       *string        `gorm:"type:varchar(500)"                              json:"-"`
	FileName      *string        `gorm:"type:varchar(255)"                              json:"-"`
	FileSize      *int64         `                                                      json:"-"`
	MimeType      *string        `gorm:"type:varchar(100)"                              json:"-"`
	BaseModel

	Property *InstitutionProperty `gorm:"foreignKey:PropertyID;references:PropertyID" json:"property,omitempty"`
}

func (InstitutionPropertyValue) TableName() string { return "institution_property_values" }

// PropertyValue typed property value variant
type PropertyValue interface {
	DataType() string
	store(v *InstitutionPropertyValue)
}

type (
	TextValue     string
	NumberValue   float64
	BoolValue     bool
	DateValue     time.Time
	DateTimeValue time.Time
	JSONValue     json.RawMessage
)

// FileValue an uploaded file reference
type FileValue struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

func (TextValue) DataType() string     { return DataTypeText }
func (NumberValue) DataType() string   { return DataTypeNumber }
func (BoolValue) DataType() string     { return DataTypeBoolean }
func (DateValue) DataType() string     { return DataTypeDate }
func (DateTimeValue) DataType() string { return DataTypeDateTime }
func (JSONValue) DataType() string     { return DataTypeJSON }
func (FileValue) DataType() string     { return DataTypeFile }

func (t TextValue) store(v *InstitutionPropertyValue) {
	s := string(t)
	v.TextValue = &s
}

func (n NumberValue) store(v *InstitutionPropertyValue) {
	f := float64(n)
	v.NumberValue = &f
}

func (b BoolValue) store(v *InstitutionPropertyValue) {
	x := bool(b)
	v.BooleanValue = &x
}

func (d DateValue) store(v *InstitutionPropertyValue) {
	t := time.Time(d)
	v.DateValue = &t
}

func (d DateTimeValue) store(v *InstitutionPropertyValue) {
	t := time.Time(d)
	v.DateTimeValue = &t
}

func (j JSONValue) store(v *InstitutionPropertyValue) {
	v.JSONValue = datatypes.JSON(j)
}

func (f FileValue) store(v *InstitutionPropertyValue) {
	url, name, size, mime := f.URL, f.Name, f.Size, f.MimeType
	v.FileURL = &url
	v.FileName = &name
	v.FileSize = &size
	v.MimeType = &mime
}

// SetValue clears every typed column and stores pv, so exactly one is populated
func (v *InstitutionPropertyValue) SetValue(pv PropertyValue) {
	v.TextValue = nil
	v.NumberValue = nil
	v.BooleanValue = nil
	v.DateValue = nil
	v.DateTimeValue = nil
	v.JSONValue = nil
	v.FileURL = nil
	v.FileName = nil
	v.FileSize = nil
	v.MimeType = nil
	pv.store(v)
}

// Value reads the column matching dataType
func (v *InstitutionPropertyValue) Value(dataType string) (PropertyValue, error) {
	switch dataType {
	case DataTypeText:
		if v.TextValue != nil {
			return TextValue(*v.TextValue), nil
		}
	case DataTypeNumber:
		if v.NumberValue != nil {
			return NumberValue(*v.NumberValue), nil
		}
	case DataTypeBoolean:
		if v.BooleanValue != nil {
			return BoolValue(*v.BooleanValue), nil
		}
	case DataTypeDate:
		if v.DateValue != nil {
			return DateValue(*v.DateValue), nil
		}
	case DataTypeDateTime:
		if v.DateTimeValue != nil {
			return DateTimeValue(*v.DateTimeValue), nil
		}
	case DataTypeJSON:
		if len(v.JSONValue) > 0 {
			return JSONValue(v.JSONValue), nil
		}
	case DataTypeFile:
		if v.FileURL != nil {
			f := FileValue{URL: *v.FileURL}
			if v.FileName != nil {
				f.Name = *v.FileName
			}
			if v.FileSize != nil {
				f.Size = *v.FileSize
			}
			if v.MimeType != nil {
				f.MimeType = *v.MimeType
			}
			return f, nil
		}
	default:
		return nil, fmt.Errorf("unknown property data type %q", dataType)
	}
	return nil, fmt.Errorf("property value %s has no %s column populated", v.ValueID, dataType)
}
