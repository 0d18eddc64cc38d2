package apikey

import (
	"errors"
	"net/http"
	"strconv"

	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for API key management
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts reads for any authenticated admin and key mutations
// behind the writer role gate; viewer accounts cannot mint or alter
// credentials.
func (h *Handler) RegisterRoutes(protected, writer *gin.RouterGroup) {
	keys := protected.Group("/api-keys")
	{
		keys.GET("", h.List)
		keys.GET("/:id", h.Get)
	}

	mutating := writer.Group("/api-keys")
	{
		mutating.POST("", h.Create)
		mutating.PATCH("/:id", h.Update)
		mutating.DELETE("/:id", h.Revoke)
		mutating.POST("/:id/regenerate", h.Regenerate)
	}
}

// Create issues a new key. This is the only response (besides regenerate)
// that ever carries the plaintext secret.
func (h *Handler) Create(c *gin.Context) {
	adminID := c.GetInt64("admin_id")

	var req CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	key, raw, err := h.service.Create(c.Request.Context(), adminID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create API key")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"api_key": key,
		"key":     raw,
		"warning": "Store this key securely. It will not be shown again.",
	})
}

func (h *Handler) List(c *gin.Context) {
	adminID := c.GetInt64("admin_id")

	keys, err := h.service.List(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list API keys")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"api_keys": keys,
		"count":    len(keys),
	})
}

func (h *Handler) Get(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	keyID, ok := h.keyID(c)
	if !ok {
		return
	}

	key, err := h.service.Get(c.Request.Context(), keyID, adminID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, key)
}

func (h *Handler) Update(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	keyID, ok := h.keyID(c)
	if !ok {
		return
	}

	var patch UpdateKeyRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	key, err := h.service.Update(c.Request.Context(), keyID, adminID, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, key)
}

func (h *Handler) Revoke(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	keyID, ok := h.keyID(c)
	if !ok {
		return
	}

	if err := h.service.Revoke(c.Request.Context(), keyID, adminID); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "API key revoked"})
}

func (h *Handler) Regenerate(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	keyID, ok := h.keyID(c)
	if !ok {
		return
	}

	key, raw, err := h.service.Regenerate(c.Request.Context(), keyID, adminID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"api_key": key,
		"key":     raw,
		"warning": "Store this key securely. It will not be shown again.",
	})
}

func (h *Handler) keyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid API key id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrKeyNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "API key not found")
	case errors.Is(err, ErrKeyRevoked):
		response.Error(c, http.StatusConflict, "KEY_REVOKED", "API key has been revoked and cannot be modified")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process API key request")
	}
}
