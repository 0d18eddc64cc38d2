package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/modules/apikey"
	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth authenticates programmatic requests, enforces the key's endpoint
// scope and method permissions, and applies the per-key rate limit. Rate limit
// headers are written on every admitted or rejected request.
func APIKeyAuth(keyService *apikey.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := extractAPIKey(c)
		if presented == "" {
			response.Error(c, http.StatusUnauthorized, "API_KEY_REQUIRED", "API key required")
			c.Abort()
			return
		}

		key, err := keyService.Authenticate(c.Request.Context(), presented)
		if err != nil {
			if err == apikey.ErrKeyInvalid {
				response.Error(c, http.StatusUnauthorized, "API_KEY_INVALID", "API key is invalid, expired or revoked")
			} else {
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to authenticate API key")
			}
			c.Abort()
			return
		}

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}

		if !apikey.EndpointAllowed(key, endpoint) {
			response.Error(c, http.StatusForbidden, "SCOPE_DENIED", "This key is not allowed to call this endpoint")
			c.Abort()
			return
		}
		if !methodPermitted(key, c.Request.Method) {
			response.Error(c, http.StatusForbidden, "PERMISSION_DENIED", "This key does not have permission for this operation")
			c.Abort()
			return
		}

		rl, err := keyService.CheckRateLimit(c.Request.Context(), key, endpoint)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to check rate limit")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(rl.ResetAt, 10))

		if !rl.Allowed {
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded, retry after the window resets")
			c.Abort()
			return
		}

		c.Set("api_key_id", key.ID)
		c.Set("api_key_admin_id", key.AdminID)
		c.Next()
	}
}

func extractAPIKey(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("X-API-Key")); header != "" {
		return header
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer rk_") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func methodPermitted(key *domain.APIKey, method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return key.CanRead
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return key.CanWrite
	case http.MethodDelete:
		return key.CanDelete
	default:
		return false
	}
}
