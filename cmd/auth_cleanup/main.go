package main

import (
	"context"
	"log"
	"os"
	"time"

	"resolvedesk/internal/database"
	"resolvedesk/internal/repository"

	"github.com/joho/godotenv"
)

// Periodic credential hygiene: expired reset tokens, dead sessions, stale
// rate-limit windows and spent verification codes. Safe to run at any time;
// nothing here affects live credentials.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()
	now := time.Now()

	resets, err := repository.NewPasswordResetRepository(db).DeleteExpired(ctx)
	if err != nil {
		log.Fatalf("cleanup password_resets failed: %v", err)
	}

	sessions, err := repository.NewSessionRepository(db).DeleteExpired(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		log.Fatalf("cleanup sessions failed: %v", err)
	}

	windows, err := repository.NewRateLimitRepository(db).DeleteStale(ctx, now.Add(-24*time.Hour))
	if err != nil {
		log.Fatalf("cleanup rate limit windows failed: %v", err)
	}

	codes := db.Exec(`DELETE FROM email_verification_codes WHERE expires_at < ? OR used_at IS NOT NULL`, now)
	if codes.Error != nil {
		log.Fatalf("cleanup email_verification_codes failed: %v", codes.Error)
	}

	log.Printf("auth cleanup completed: password_resets=%d sessions=%d rate_windows=%d verification_codes=%d",
		resets, sessions, windows, codes.RowsAffected)
}
