package admin

import (
	"errors"
	"net/http"
	"strconv"

	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for admin account management
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the management surface; the caller wraps the group in
// the super-admin role middleware.
func (h *Handler) RegisterRoutes(superAdmin *gin.RouterGroup) {
	admins := superAdmin.Group("/admins")
	{
		admins.GET("", h.List)
		admins.GET("/:id", h.Get)
		admins.PATCH("/:id/active", h.SetActive)
		admins.PATCH("/:id/role", h.SetRole)
		admins.GET("/:id/activity", h.Activity)
	}
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	admins, total, err := h.service.List(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list admins")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"admins": admins,
		"total":  total,
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := h.adminID(c)
	if !ok {
		return
	}

	admin, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, admin)
}

func (h *Handler) SetActive(c *gin.Context) {
	actorID := c.GetInt64("admin_id")
	id, ok := h.adminID(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	admin, err := h.service.SetActive(c.Request.Context(), id, actorID, *req.IsActive)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, admin)
}

func (h *Handler) SetRole(c *gin.Context) {
	actorID := c.GetInt64("admin_id")
	id, ok := h.adminID(c)
	if !ok {
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	admin, err := h.service.SetRole(c.Request.Context(), id, actorID, req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, admin)
}

func (h *Handler) Activity(c *gin.Context) {
	id, ok := h.adminID(c)
	if !ok {
		return
	}

	var q ActivityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	feed, err := h.service.ActivityFeed(c.Request.Context(), id, q.Limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"activity": feed,
		"count":    len(feed),
	})
}

func (h *Handler) adminID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid admin id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAdminNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Admin not found")
	case errors.Is(err, ErrInvalidRole):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Role must be admin, super_admin or viewer")
	case errors.Is(err, ErrSelfDemotion):
		response.Error(c, http.StatusBadRequest, "SELF_CHANGE_FORBIDDEN", "You cannot change your own role")
	case errors.Is(err, ErrSelfDeactivate):
		response.Error(c, http.StatusBadRequest, "SELF_CHANGE_FORBIDDEN", "You cannot deactivate your own account")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process admin request")
	}
}
