package dto

import "encoding/json"

// SetPropertyValueRequest set a value on exactly one of campus or school
type SetPropertyValueRequest struct {
	PropertyID string          `json:"property_id" binding:"required,uuid"`
	CampusID   *string         `json:"campus_id"   binding:"omitempty,uuid"`
	SchoolID   *string         `json:"school_id"   binding:"omitempty,uuid"`
	Value      json.RawMessage `json:"value"       binding:"required"`
}

// PropertyValueQuery scope of a listing
type PropertyValueQuery struct {
	CampusID *string `form:"campus_id" binding:"omitempty,uuid"`
	SchoolID *string `form:"school_id" binding:"omitempty,uuid"`
}

// PropertyValueResponse a typed value
type PropertyValueResponse struct {
	ID          string      `json:"id"`
	PropertyID  string      `json:"property_id"`
	Name        string      `json:"name,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
	DataType    string      `json:"data_type"`
	CampusID    *string     `json:"campus_id,omitempty"`
	SchoolID    *string     `json:"school_id,omitempty"`
	Value       interface{} `json:"value"`
}
