package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/access"
	pkgerrors "okulpazar/backend/pkg/errors"
	"okulpazar/backend/pkg/response"
)

// ActorKey gin context key the auth middleware stores the *access.Actor under
const ActorKey = "actor"

// Response codes
const (
	CodeValidation   = 10001
	CodeUnauthorized = 10002
	CodeForbidden    = 10003
	CodeNotFound     = 10004
	CodeConflict     = 10009
	CodeBusinessRule = 10022
)

// MustGetActor extracts the authenticated actor. Writes a 401 and returns
// false when the auth middleware did not run.
func MustGetActor(c *gin.Context) (*access.Actor, bool) {
	actor := OptionalActor(c)
	if actor == nil {
		response.Unauthorized(c, CodeUnauthorized, "Authentication required")
		return nil, false
	}
	return actor, true
}

// OptionalActor actor of an authenticated request, nil for anonymous ones
func OptionalActor(c *gin.Context) *access.Actor {
	v, exists := c.Get(ActorKey)
	if !exists {
		return nil
	}
	actor, ok := v.(*access.Actor)
	if !ok {
		return nil
	}
	return actor
}

// handleError maps service errors onto HTTP status codes
func handleError(c *gin.Context, err error) {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		response.Conflict(c, CodeConflict, err.Error())
		return
	}

	var appErr *pkgerrors.AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	switch appErr.Kind {
	case pkgerrors.KindNotFound:
		response.NotFound(c, CodeNotFound, appErr.Message)
	case pkgerrors.KindForbidden:
		response.Forbidden(c, CodeForbidden, appErr.Message)
	case pkgerrors.KindValidation:
		response.BadRequest(c, CodeValidation, appErr.Message)
	case pkgerrors.KindBusinessRule:
		response.Unprocessable(c, CodeBusinessRule, appErr.Message)
	default:
		response.Error(c, http.StatusInternalServerError, 50000, appErr.Message)
	}
}

// bindError reports a binding/validation failure
func bindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, CodeValidation, "Invalid request parameters", err.Error())
}

// bindOptionalJSON binds the JSON body when one was sent; an empty body
// leaves obj at its zero value
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		bindError(c, err)
		return false
	}
	return true
}
