package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"okulpazar/backend/internal/service"
	"okulpazar/backend/pkg/response"
)

// AuthHandler session endpoints
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Logout revokes the bearer token of the request
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetActor(c); !ok {
		return
	}
	jti := c.GetString("token_jti")
	var exp time.Time
	if v, ok := c.Get("token_exp"); ok {
		exp, _ = v.(time.Time)
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// Me returns the caller's profile and institution scope
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}
