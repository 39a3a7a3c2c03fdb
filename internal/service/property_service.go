package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
)

var (
	ErrPropertyScope     = pkgerrors.Validation("Exactly one of campus or school must be provided")
	ErrPropertyDenied    = pkgerrors.Forbidden("User does not have permission to edit properties of this institution")
	ErrPropertyFileNoURL = pkgerrors.Validation("File value requires a url")
	ErrUnknownDataType   = pkgerrors.Business("Property has an unknown data type")
)

func propertyTypeMismatch(dataType string) error {
	return pkgerrors.Validation("Value does not match property data type " + dataType)
}

// PropertyService typed dynamic attributes of campuses and schools
type PropertyService interface {
	SetPropertyValue(ctx context.Context, req *dto.SetPropertyValueRequest, actor *access.Actor) (*dto.PropertyValueResponse, error)
	ListPropertyValues(ctx context.Context, q *dto.PropertyValueQuery) ([]dto.PropertyValueResponse, error)
}

type propertyService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPropertyService creates a PropertyService
func NewPropertyService(repo *repository.Repository, logger *zap.Logger) PropertyService {
	return &propertyService{repo: repo, logger: logger}
}

// SetPropertyValue upserts the value of a property for one campus or one school
func (s *propertyService) SetPropertyValue(ctx context.Context, req *dto.SetPropertyValueRequest, actor *access.Actor) (*dto.PropertyValueResponse, error) {
	campusID, schoolID, err := exactlyOne(req.CampusID, req.SchoolID)
	if err != nil {
		return nil, err
	}

	scope, err := s.scope(ctx, campusID, schoolID)
	if err != nil {
		return nil, err
	}
	if !access.Can(actor, scope, access.ManageContent) {
		return nil, ErrPropertyDenied
	}

	prop, err := s.repo.Property.GetActiveByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		s.logger.Error("load property failed", zap.String("id", req.PropertyID), zap.Error(err))
		return nil, err
	}

	pv, err := decodePropertyValue(prop.DataType, req.Value)
	if err != nil {
		return nil, err
	}

	row, err := s.repo.Property.FindValue(ctx, prop.PropertyID, campusID, schoolID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = &model.InstitutionPropertyValue{PropertyID: prop.PropertyID, CampusID: campusID, SchoolID: schoolID}
		row.CreatedBy = &actor.UserID
	case err != nil:
		s.logger.Error("load property value failed", zap.String("property_id", prop.PropertyID), zap.Error(err))
		return nil, err
	}
	row.SetValue(pv)
	row.UpdatedBy = &actor.UserID

	if err := s.repo.Property.SaveValue(ctx, row); err != nil {
		s.logger.Error("save property value failed", zap.String("property_id", prop.PropertyID), zap.Error(err))
		return nil, err
	}
	row.Property = prop
	return toPropertyValueResponse(row, pv), nil
}

func (s *propertyService) ListPropertyValues(ctx context.Context, q *dto.PropertyValueQuery) ([]dto.PropertyValueResponse, error) {
	campusID, schoolID, err := exactlyOne(q.CampusID, q.SchoolID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Property.ListValues(ctx, campusID, schoolID)
	if err != nil {
		s.logger.Error("list property values failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PropertyValueResponse, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.Property == nil {
			continue
		}
		pv, err := row.Value(row.Property.DataType)
		if err != nil {
			// a row whose column disagrees with its definition is skipped, not fatal
			s.logger.Warn("skip unreadable property value", zap.String("value_id", row.ValueID), zap.Error(err))
			continue
		}
		result = append(result, *toPropertyValueResponse(row, pv))
	}
	return result, nil
}

// ── helpers ──

func (s *propertyService) scope(ctx context.Context, campusID, schoolID *string) (access.Scope, error) {
	if schoolID != nil {
		school, err := s.repo.Institution.GetActiveSchool(ctx, *schoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return access.Scope{}, schoolNotFound(*schoolID)
			}
			return access.Scope{}, err
		}
		return access.SchoolScope(school), nil
	}
	campus, err := s.repo.Institution.GetActiveCampus(ctx, *campusID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return access.Scope{}, ErrCampusNotFound
		}
		return access.Scope{}, err
	}
	return access.Scope{BrandID: campus.BrandID, CampusID: campus.CampusID}, nil
}

func exactlyOne(campusID, schoolID *string) (*string, *string, error) {
	if campusID != nil && *campusID == "" {
		campusID = nil
	}
	if schoolID != nil && *schoolID == "" {
		schoolID = nil
	}
	if (campusID == nil) == (schoolID == nil) {
		return nil, nil, ErrPropertyScope
	}
	return campusID, schoolID, nil
}

// decodePropertyValue parses raw as the variant named by dataType
func decodePropertyValue(dataType string, raw json.RawMessage) (model.PropertyValue, error) {
	switch dataType {
	case model.DataTypeText:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, propertyTypeMismatch(dataType)
		}
		return model.TextValue(v), nil
	case model.DataTypeNumber:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, propertyTypeMismatch(dataType)
		}
		return model.NumberValue(v), nil
	case model.DataTypeBoolean:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, propertyTypeMismatch(dataType)
		}
		return model.BoolValue(v), nil
	case model.DataTypeDate, model.DataTypeDateTime:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, propertyTypeMismatch(dataType)
		}
		if dataType == model.DataTypeDate {
			t, err := time.Parse(time.DateOnly, v)
			if err != nil {
				return nil, propertyTypeMismatch(dataType)
			}
			return model.DateValue(t), nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, propertyTypeMismatch(dataType)
		}
		return model.DateTimeValue(t), nil
	case model.DataTypeJSON:
		if !json.Valid(raw) {
			return nil, propertyTypeMismatch(dataType)
		}
		return model.JSONValue(append(json.RawMessage(nil), raw...)), nil
	case model.DataTypeFile:
		var v model.FileValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, propertyTypeMismatch(dataType)
		}
		if v.URL == "" {
			return nil, ErrPropertyFileNoURL
		}
		return v, nil
	}
	return nil, ErrUnknownDataType
}

// renderPropertyValue JSON-friendly form of a variant
func renderPropertyValue(pv model.PropertyValue) interface{} {
	switch v := pv.(type) {
	case model.TextValue:
		return string(v)
	case model.NumberValue:
		return float64(v)
	case model.BoolValue:
		return bool(v)
	case model.DateValue:
		return time.Time(v).Format(time.DateOnly)
	case model.DateTimeValue:
		return time.Time(v).Format(time.RFC3339)
	case model.JSONValue:
		return json.RawMessage(v)
	case model.FileValue:
		return v
	}
	return nil
}

func toPropertyValueResponse(row *model.InstitutionPropertyValue, pv model.PropertyValue) *dto.PropertyValueResponse {
	resp := &dto.PropertyValueResponse{
		ID:         row.ValueID,
		PropertyID: row.PropertyID,
		DataType:   pv.DataType(),
		CampusID:   row.CampusID,
		SchoolID:   row.SchoolID,
		Value:      renderPropertyValue(pv),
	}
	if row.Property != nil {
		resp.Name = row.Property.Name
		resp.DisplayName = row.Property.DisplayName
	}
	return resp
}
