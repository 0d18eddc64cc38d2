package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"resolvedesk/internal/database"
	"resolvedesk/internal/modules/apikey"
	"resolvedesk/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIKeyFixture(t *testing.T, req apikey.CreateKeyRequest) (*apikey.Service, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	service := apikey.NewService(
		repository.NewAPIKeyRepository(db),
		repository.NewRateLimitRepository(db),
		repository.NewActivityRepository(db),
		"key-pepper",
	)

	_, raw, err := service.Create(context.Background(), 1, req)
	require.NoError(t, err)
	return service, raw
}

func apiRouter(service *apikey.Service) *gin.Engine {
	router := gin.New()
	apis := router.Group("/apis/v1")
	apis.Use(APIKeyAuth(service))
	apis.GET("/centers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	apis.DELETE("/centers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	service, raw := newAPIKeyFixture(t, apikey.CreateKeyRequest{Name: "integration", CanRead: true})
	router := apiRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/apis/v1/centers", nil)
	req.Header.Set("X-API-Key", raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "99", w.Header().Get("X-RateLimit-Remaining"))
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	service, _ := newAPIKeyFixture(t, apikey.CreateKeyRequest{Name: "integration", CanRead: true})
	router := apiRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/apis/v1/centers", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API_KEY_REQUIRED")
}

func TestAPIKeyAuth_ScopeDenied(t *testing.T) {
	service, raw := newAPIKeyFixture(t, apikey.CreateKeyRequest{
		Name:             "narrow",
		CanRead:          true,
		AllowedEndpoints: "/apis/v1/stats",
	})
	router := apiRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/apis/v1/centers", nil)
	req.Header.Set("X-API-Key", raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "SCOPE_DENIED")
}

func TestAPIKeyAuth_MethodPermissionDenied(t *testing.T) {
	service, raw := newAPIKeyFixture(t, apikey.CreateKeyRequest{Name: "read-only", CanRead: true})
	router := apiRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/apis/v1/centers", nil)
	req.Header.Set("X-API-Key", raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PERMISSION_DENIED")
}

func TestAPIKeyAuth_RateLimited(t *testing.T) {
	service, raw := newAPIKeyFixture(t, apikey.CreateKeyRequest{
		Name:      "tiny-quota",
		CanRead:   true,
		RateLimit: 2,
	})
	router := apiRouter(service)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/apis/v1/centers", nil)
		req.Header.Set("X-API-Key", raw)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/apis/v1/centers", nil)
	req.Header.Set("X-API-Key", raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestAPIKeyAuth_RevokedKey(t *testing.T) {
	service, raw := newAPIKeyFixture(t, apikey.CreateKeyRequest{Name: "doomed", CanRead: true})

	keys, err := service.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.NoError(t, service.Revoke(context.Background(), keys[0].ID, 1))

	router := apiRouter(service)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/apis/v1/centers", nil)
	req.Header.Set("X-API-Key", raw)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API_KEY_INVALID")
}
