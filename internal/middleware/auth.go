package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/utils"
	"github.com/threepillars/storefront/pkg/response"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
)

// AuthRequired checks for a valid JWT token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c)
		if err != nil {
			response.AbortError(c, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// OptionalAuth populates the user context when a valid token is present but
// lets anonymous requests through. Storefront endpoints use this: guest
// sessions carry no token.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if claims, err := claimsFromRequest(c); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextUsername, claims.Username)
				c.Set(ContextRole, claims.Role)
			}
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context) (*utils.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, response.NewUnauthorized("authorization header required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, response.NewUnauthorized("invalid authorization header format")
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return nil, response.NewUnauthorized("invalid or expired token")
	}
	return claims, nil
}

// AdminRequired checks for the platform admin role. Must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != "admin" {
			response.AbortError(c, response.NewForbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// GetUserID gets the current user ID from context, 0 when anonymous.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetUsername gets the current username from context.
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		return username.(string)
	}
	return ""
}

// GetRole gets the current user role from context.
func GetRole(c *gin.Context) string {
	if role, exists := c.Get(ContextRole); exists {
		return role.(string)
	}
	return ""
}
