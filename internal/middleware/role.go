package middleware

import (
	"net/http"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated admin has one of the given roles
func RequireRole(allowed ...domain.AdminRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in session")
			c.Abort()
			return
		}

		current := domain.AdminRole(role.(string))
		for _, r := range allowed {
			if current == r {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

// SuperAdminOnly middleware requires the super_admin role
func SuperAdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleSuperAdmin)
}

// WriterOnly admits admins and super admins but not read-only viewers
func WriterOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)
}
