package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"resolvedesk/internal/config"
	"resolvedesk/internal/database"
	"resolvedesk/internal/middleware"
	adminmod "resolvedesk/internal/modules/admin"
	"resolvedesk/internal/modules/analytics"
	"resolvedesk/internal/modules/apikey"
	"resolvedesk/internal/modules/auth"
	"resolvedesk/internal/modules/center"
	"resolvedesk/internal/modules/password"
	"resolvedesk/internal/pkg/mailer"
	"resolvedesk/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}

	if isTruthy(os.Getenv("AUTO_MIGRATE")) {
		if err := repository.AutoMigrate(db); err != nil {
			log.Fatal(err)
		}
	}

	adminRepo := repository.NewAdminRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	rateLimitRepo := repository.NewRateLimitRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	centerRepo := repository.NewCenterRepository(db)

	mail := mailer.NewDevConsoleMailer(!cfg.IsProd())

	authService := auth.NewService(
		adminRepo,
		sessionRepo,
		activityRepo,
		mail,
		cfg.SessionTTL,
		cfg.SessionTokenPepper,
		cfg.VerificationCodePepper,
		cfg.VerifyCodeTTL,
		cfg.VerifyResendCooldown,
	)
	authHandler := auth.NewHandler(authService, auth.CookieConfig{
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
		Path:     cfg.CookiePath,
		TTL:      cfg.SessionTTL,
	})

	passwordService := password.NewService(
		adminRepo,
		resetRepo,
		activityRepo,
		mail,
		cfg.BaseURL,
		cfg.ResetTokenTTL,
		cfg.ResetTokenPepper,
		cfg.KeepCurrentSession,
	)
	passwordHandler := password.NewHandler(passwordService)

	apiKeyService := apikey.NewService(apiKeyRepo, rateLimitRepo, activityRepo, cfg.APIKeyPepper)
	apiKeyHandler := apikey.NewHandler(apiKeyService)

	centerService := center.NewService(centerRepo, activityRepo)
	centerHandler := center.NewHandler(centerService)

	adminService := adminmod.NewService(adminRepo, activityRepo)
	adminHandler := adminmod.NewHandler(adminService)

	analyticsService := analytics.NewService(apiKeyRepo, rateLimitRepo, centerRepo)
	analyticsHandler := analytics.NewHandler(analyticsService)

	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		passwordHandler.RegisterPublicRoutes(v1)

		// protected (session required)
		protected := v1.Group("/")
		protected.Use(middleware.SessionAuth(authService))
		{
			authHandler.RegisterProtectedRoutes(protected)
			passwordHandler.RegisterProtectedRoutes(protected)
			analyticsHandler.RegisterRoutes(protected)

			// mutations additionally require a writing role
			writer := protected.Group("/")
			writer.Use(middleware.WriterOnly())

			apiKeyHandler.RegisterRoutes(protected, writer)
			centerHandler.RegisterProtectedRoutes(protected, writer)

			superAdmin := protected.Group("/")
			superAdmin.Use(middleware.SuperAdminOnly())
			{
				adminHandler.RegisterRoutes(superAdmin)
			}
		}
	}

	// programmatic surface, API-key gated
	apis := r.Group("/apis/v1")
	apis.Use(middleware.APIKeyAuth(apiKeyService))
	{
		centerHandler.RegisterPublicAPIRoutes(apis)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
