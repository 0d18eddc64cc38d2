package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"resolvedesk/internal/modules/password"
	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_token"

// CookieConfig mirrors the runtime cookie settings so the handler can set and
// clear the session cookie consistently.
type CookieConfig struct {
	Secure   bool
	SameSite string
	Path     string
	TTL      time.Duration
}

// Handler manages all HTTP interactions for sign-up, sign-in and the
// session security page.
type Handler struct {
	service *Service
	cookies CookieConfig
}

func NewHandler(service *Service, cookies CookieConfig) *Handler {
	return &Handler{service: service, cookies: cookies}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/signout", h.SignOut)
		authGroup.POST("/verify/request", h.RequestVerification)
		authGroup.POST("/verify/confirm", h.ConfirmVerification)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/auth/me", h.Me)
	sessions := protected.Group("/auth/sessions")
	{
		sessions.GET("", h.ListSessions)
		sessions.DELETE("/:session_id", h.RevokeSession)
		sessions.POST("/revoke-others", h.RevokeOtherSessions)
	}
}

func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	admin, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		h.writeSignUpError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"admin":   admin,
		"message": "Account created. Check your email for a verification code.",
	})
}

func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.SignIn(c.Request.Context(), req, clientContextFrom(c))
	if err != nil {
		h.writeSignInError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token)
	response.Success(c, http.StatusOK, gin.H{
		"admin":      result.Admin,
		"token":      result.Token,
		"session_id": result.Session.SessionID,
		"expires_at": result.Session.ExpiresAt,
	})
}

// SignOut revokes the presented session. Always succeeds from the client's
// point of view; the cookie is cleared either way.
func (h *Handler) SignOut(c *gin.Context) {
	raw := h.sessionToken(c)
	if raw != "" {
		if err := h.service.SignOut(c.Request.Context(), raw); err != nil {
			response.Error(c, http.StatusInternalServerError, "SIGNOUT_FAILED", "Failed to sign out")
			return
		}
	}

	h.clearSessionCookie(c)
	response.Success(c, http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *Handler) RequestVerification(c *gin.Context) {
	var req VerifyRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.RequestEmailVerification(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrResendCooldown):
			response.Error(c, http.StatusTooManyRequests, "RESEND_COOLDOWN", "Please wait before requesting another code")
		case errors.Is(err, ErrTooManyAttempts):
			response.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many verification codes requested")
		default:
			response.Error(c, http.StatusInternalServerError, "VERIFICATION_FAILED", "Failed to send verification code")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": result.Status})
}

func (h *Handler) ConfirmVerification(c *gin.Context) {
	var req VerifyConfirmDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ConfirmEmailVerification(c.Request.Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, ErrCodeInvalid):
			response.Error(c, http.StatusBadRequest, "CODE_INVALID", "Verification code is invalid")
		case errors.Is(err, ErrCodeExpired):
			response.Error(c, http.StatusBadRequest, "CODE_EXPIRED", "Verification code has expired")
		case errors.Is(err, ErrTooManyAttempts):
			response.Error(c, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Too many failed attempts, request a new code")
		default:
			response.Error(c, http.StatusInternalServerError, "VERIFICATION_FAILED", "Failed to verify email")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Email verified"})
}

func (h *Handler) Me(c *gin.Context) {
	adminID := c.GetInt64("admin_id")

	admin, err := h.service.GetCurrentAdmin(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, admin)
}

func (h *Handler) ListSessions(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	currentSessionID := c.GetString("session_id")

	views, err := h.service.ListSessions(c.Request.Context(), adminID, currentSessionID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list sessions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"sessions": views,
		"count":    len(views),
	})
}

func (h *Handler) RevokeSession(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	sessionID := strings.TrimSpace(c.Param("session_id"))
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid session id")
		return
	}

	if err := h.service.RevokeSession(c.Request.Context(), sessionID, adminID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Session not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke session")
		return
	}

	// Revoking the session in use ends this login too.
	if sessionID == c.GetString("session_id") {
		h.clearSessionCookie(c)
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Session revoked"})
}

func (h *Handler) RevokeOtherSessions(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	currentSessionID := c.GetString("session_id")

	count, err := h.service.RevokeAllOtherSessions(c.Request.Context(), adminID, currentSessionID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke sessions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Other sessions revoked",
		"revoked": count,
	})
}

func (h *Handler) writeSignUpError(c *gin.Context, err error) {
	var strength *password.StrengthError
	switch {
	case errors.As(err, &strength):
		response.Error(c, http.StatusBadRequest, "WEAK_PASSWORD", strength.Reason)
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "An account with this email already exists")
	case errors.Is(err, ErrPhoneAlreadyExists):
		response.Error(c, http.StatusConflict, "PHONE_EXISTS", "An account with this phone number already exists")
	default:
		response.Error(c, http.StatusInternalServerError, "SIGNUP_FAILED", "Failed to create account")
	}
}

func (h *Handler) writeSignInError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, ErrAccountLocked):
		response.Error(c, http.StatusTooManyRequests, "ACCOUNT_LOCKED", "Account temporarily locked after repeated failed attempts")
	case errors.Is(err, ErrAccountDisabled):
		response.Error(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is deactivated")
	case errors.Is(err, ErrEmailNotVerified):
		response.Error(c, http.StatusForbidden, "EMAIL_NOT_VERIFIED", "Verify your email address before signing in")
	default:
		response.Error(c, http.StatusInternalServerError, "SIGNIN_FAILED", "Failed to sign in")
	}
}

func (h *Handler) sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func (h *Handler) setSessionCookie(c *gin.Context, raw string) {
	c.SetSameSite(sameSiteMode(h.cookies.SameSite))
	c.SetCookie(sessionCookieName, raw, int(h.cookies.TTL.Seconds()), h.cookies.Path, "", h.cookies.Secure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cookies.SameSite))
	c.SetCookie(sessionCookieName, "", -1, h.cookies.Path, "", h.cookies.Secure, true)
}

func sameSiteMode(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

// clientContextFrom extracts device metadata for the session row. DeviceType
// is a coarse bucket derived from the user agent.
func clientContextFrom(c *gin.Context) ClientContext {
	ua := c.Request.UserAgent()
	return ClientContext{
		UserAgent:  ua,
		IPAddress:  c.ClientIP(),
		DeviceType: deviceTypeFrom(ua),
	}
}

func deviceTypeFrom(ua string) string {
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		return "tablet"
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		return "mobile"
	case lower == "":
		return "unknown"
	default:
		return "desktop"
	}
}
