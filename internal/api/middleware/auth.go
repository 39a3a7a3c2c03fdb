package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"okulpazar/backend/internal/access"
	"okulpazar/backend/pkg/jwt"
	"okulpazar/backend/pkg/redis"
	"okulpazar/backend/pkg/response"
)

// ActorKey context key of the resolved *access.Actor
const ActorKey = "actor"

// ActorLoader resolves a user id into an actor with its scope sets
type ActorLoader interface {
	Load(ctx context.Context, userID string) (*access.Actor, error)
}

// JWTAuth verifies the Bearer access token, rejects revoked tokens and loads
// the actor. A nil rdb skips the revocation check.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, actors ActorLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, 10002, "Missing or malformed Authorization header")
			c.Abort()
			return
		}

		if !authenticate(c, token, jwtMgr, rdb, actors, logger) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalJWTAuth behaves like JWTAuth when a token is sent and lets
// anonymous requests through otherwise
func OptionalJWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, actors ActorLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, 10002, "Missing or malformed Authorization header")
			c.Abort()
			return
		}
		if !authenticate(c, token, jwtMgr, rdb, actors, logger) {
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate writes the error response itself and returns false on failure
func authenticate(c *gin.Context, token string, jwtMgr *jwt.Manager, rdb *redis.Client, actors ActorLoader, logger *zap.Logger) bool {
	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, 10002, "Token is invalid or expired")
		return false
	}

	ctx := c.Request.Context()
	if rdb != nil {
		revoked, err := rdb.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			logger.Warn("token blacklist lookup failed", zap.Error(err))
		} else if revoked {
			response.Unauthorized(c, 10002, "Token has been revoked")
			return false
		}
	}

	actor, err := actors.Load(ctx, claims.UserID)
	if err != nil {
		response.Unauthorized(c, 10002, err.Error())
		return false
	}

	c.Set(ActorKey, actor)
	c.Set("user_id", claims.UserID)
	c.Set("role_level", claims.RoleLevel)
	c.Set("token_jti", claims.ID)
	if claims.ExpiresAt != nil {
		c.Set("token_exp", claims.ExpiresAt.Time)
	} else {
		c.Set("token_exp", time.Time{})
	}
	return true
}

// RoleLevelAuth restricts a route to the listed role levels
func RoleLevelAuth(levels ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ActorKey)
		actor, ok := v.(*access.Actor)
		if !exists || !ok {
			response.Unauthorized(c, 10002, "Authentication required")
			c.Abort()
			return
		}

		for _, l := range levels {
			if actor.RoleLevel == l {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "Access denied")
		c.Abort()
	}
}
