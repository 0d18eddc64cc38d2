package password

import (
	"errors"
	"net/http"

	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for the password flows
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	pw := v1.Group("/auth/password")
	{
		pw.POST("/forgot", h.RequestReset)
		pw.POST("/verify-token", h.VerifyToken)
		pw.POST("/reset", h.ResetWithToken)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/auth/password/change", h.ChangePassword)
}

// RequestReset starts the forgot-password flow.
// The response body is identical whether or not the email is registered.
func (h *Handler) RequestReset(c *gin.Context) {
	var req RequestResetDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", result.Message)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// VerifyToken pre-validates a reset token before the reset form renders.
func (h *Handler) VerifyToken(c *gin.Context) {
	var req VerifyTokenDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	check, err := h.service.VerifyResetToken(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Failed to verify reset token")
		return
	}

	response.Success(c, http.StatusOK, check)
}

// ResetWithToken consumes a reset token and sets the new password.
func (h *Handler) ResetWithToken(c *gin.Context) {
	var req ResetWithTokenDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.ResetWithToken(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", result.Message)
		return
	}
	if !result.Success {
		response.Error(c, http.StatusBadRequest, "RESET_FAILED", result.Message)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ChangePassword is the authenticated flow; the session middleware has
// already populated admin_id and session_id.
func (h *Handler) ChangePassword(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	sessionID := c.GetString("session_id")
	if adminID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req ChangePasswordDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.ChangePassword(c.Request.Context(), adminID, req.CurrentPassword, req.NewPassword, sessionID)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", result.Message)
			return
		}
		response.Error(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", result.Message)
		return
	}
	if !result.Success {
		response.Error(c, http.StatusBadRequest, "CHANGE_FAILED", result.Message)
		return
	}

	response.Success(c, http.StatusOK, result)
}
