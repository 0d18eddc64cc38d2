package middleware

import (
	"errors"
	"net/http"
	"strings"

	"resolvedesk/internal/modules/auth"
	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_token"

// SessionAuth validates the presented session token and populates the request
// context with admin_id, session_id and role. Every protected route goes
// through here.
func SessionAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractSessionToken(c)
		if raw == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		admin, session, err := authService.ValidateSession(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session is invalid or expired")
			} else {
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to validate session")
			}
			c.Abort()
			return
		}

		c.Set("admin_id", admin.ID)
		c.Set("session_id", session.SessionID)
		c.Set("role", string(admin.Role))
		c.Next()
	}
}

func extractSessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return cookie
	}
	return ""
}
