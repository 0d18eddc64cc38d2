package center

import (
	"errors"
	"net/http"
	"strconv"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for the center directory
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes splits the directory over two groups: reads for any
// authenticated admin, mutations behind the writer role gate so viewer
// accounts stay read-only.
func (h *Handler) RegisterProtectedRoutes(protected, writer *gin.RouterGroup) {
	centers := protected.Group("/centers")
	{
		centers.GET("", h.List)
		centers.GET("/:id", h.Get)
	}

	mutating := writer.Group("/centers")
	{
		mutating.POST("", h.Create)
		mutating.PATCH("/:id", h.Update)
		mutating.DELETE("/:id", h.Deactivate)
	}
}

// RegisterPublicAPIRoutes mounts the read-only directory behind the API key
// middleware.
func (h *Handler) RegisterPublicAPIRoutes(apiV1 *gin.RouterGroup) {
	centers := apiV1.Group("/centers")
	{
		centers.GET("", h.ListPublic)
		centers.GET("/:id", h.GetPublic)
	}
}

func (h *Handler) List(c *gin.Context) {
	var q ListCentersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	centers, total, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list centers")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"centers": centers,
		"total":   total,
	})
}

func (h *Handler) ListPublic(c *gin.Context) {
	var q ListCentersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	centers, total, err := h.service.ListPublic(c.Request.Context(), q)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list centers")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"centers": centers,
		"total":   total,
	})
}

func (h *Handler) Get(c *gin.Context) {
	h.getByID(c, false)
}

func (h *Handler) GetPublic(c *gin.Context) {
	h.getByID(c, true)
}

func (h *Handler) getByID(c *gin.Context, publicOnly bool) {
	id, ok := h.centerID(c)
	if !ok {
		return
	}

	center, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	// The public surface never reveals deactivated centers.
	if publicOnly && center.Status != domain.CenterActive {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Center not found")
		return
	}

	response.Success(c, http.StatusOK, center)
}

func (h *Handler) Create(c *gin.Context) {
	adminID := c.GetInt64("admin_id")

	var req CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	center, err := h.service.Create(c.Request.Context(), adminID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, center)
}

func (h *Handler) Update(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	id, ok := h.centerID(c)
	if !ok {
		return
	}

	var patch UpdateCenterRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	center, err := h.service.Update(c.Request.Context(), id, adminID, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, center)
}

func (h *Handler) Deactivate(c *gin.Context) {
	adminID := c.GetInt64("admin_id")
	id, ok := h.centerID(c)
	if !ok {
		return
	}

	center, err := h.service.Deactivate(c.Request.Context(), id, adminID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, center)
}

func (h *Handler) centerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid center id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var invalid *ValidationError
	switch {
	case errors.As(err, &invalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Center validation failed", invalid.Fields)
	case errors.Is(err, ErrCenterNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Center not found")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be active or inactive")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process center request")
	}
}
