package analytics

import (
	"errors"
	"net/http"
	"strconv"

	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for the dashboard aggregates
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	analytics := protected.Group("/analytics")
	{
		analytics.GET("/keys", h.KeyUsage)
		analytics.GET("/keys/:id/traffic", h.KeyTraffic)
		analytics.GET("/centers/by-state", h.CentersByState)
	}
}

func (h *Handler) KeyUsage(c *gin.Context) {
	adminID := c.GetInt64("admin_id")

	summaries, err := h.service.KeyUsage(c.Request.Context(), adminID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load key usage")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"keys":  summaries,
		"count": len(summaries),
	})
}

func (h *Handler) KeyTraffic(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	keyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || keyID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid API key id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	windows, svcErr := h.service.KeyTraffic(c.Request.Context(), keyID, adminID, limit)
	if svcErr != nil {
		if errors.Is(svcErr, ErrKeyNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "API key not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load key traffic")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"windows": windows,
		"count":   len(windows),
	})
}

func (h *Handler) CentersByState(c *gin.Context) {
	counts, err := h.service.CentersByState(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load center counts")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"states": counts,
		"count":  len(counts),
	})
}
