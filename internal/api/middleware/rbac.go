package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crowdqr/internal/models"
)

// RequireRole restricts access to specific roles.
// It MUST be used AFTER RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role context missing"})
			return
		}

		roleStr, _ := userRole.(string)
		for _, role := range allowedRoles {
			if roleStr == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Forbidden: You lack the required permissions.",
		})
	}
}

// CanActFor is the single capability check for identity-scoped mutations:
// a caller may act for targetUserID when it is their own id, or when they
// hold the DJ role. Handlers call this instead of re-checking roles inline.
func CanActFor(c *gin.Context, targetUserID uint) bool {
	if role, ok := c.Get("user_role"); ok && role == models.RoleDJ {
		return true
	}
	callerID, ok := c.Get("user_id")
	if !ok {
		return false
	}
	id, _ := callerID.(uint)
	return id == targetUserID
}

// SelfOrDJ wraps CanActFor for routes that carry the acted-upon user id
// as a path parameter.
func SelfOrDJ(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		if !CanActFor(c, uint(id)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: not your identity"})
			return
		}
		c.Next()
	}
}
