package apikey

import (
	"context"
	"time"

	"resolvedesk/internal/domain"
)

// KeyStore — persistence for API keys.
type KeyStore interface {
	Create(ctx context.Context, k *domain.APIKey) error
	GetByID(ctx context.Context, id int64) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	ListByAdmin(ctx context.Context, adminID int64) ([]domain.APIKey, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	RecordUsage(ctx context.Context, id int64, at time.Time) error
}

// WindowStore — fixed-window counters. The conditional increment lives at the
// storage layer so concurrent requests cannot over-admit.
type WindowStore interface {
	IncrementIfBelow(ctx context.Context, keyID int64, endpoint string, windowStart, windowEnd int64, limit int) (bool, int, error)
}

// ActivityWriter appends audit rows; failures are logged, never fatal.
type ActivityWriter interface {
	Append(ctx context.Context, a *domain.AdminActivity) error
}
