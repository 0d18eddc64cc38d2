package analytics

import (
	"context"
	"errors"
	"time"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/repository"

	"gorm.io/gorm"
)

var ErrKeyNotFound = errors.New("api key not found")

// KeyReader is the slice of key persistence the analytics screens need.
type KeyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.APIKey, error)
	ListByAdmin(ctx context.Context, adminID int64) ([]domain.APIKey, error)
}

// WindowReader reads recent traffic buckets per key.
type WindowReader interface {
	RecentWindows(ctx context.Context, keyID int64, limit int) ([]domain.RateLimitWindow, error)
}

// CenterCounter aggregates the center directory.
type CenterCounter interface {
	CountByState(ctx context.Context) ([]repository.StateCount, error)
}

// Service serves the read-only dashboard aggregates. No state of its own;
// every call hits the store.
type Service struct {
	keys    KeyReader
	windows WindowReader
	centers CenterCounter
}

func NewService(keys KeyReader, windows WindowReader, centers CenterCounter) *Service {
	return &Service{keys: keys, windows: windows, centers: centers}
}

// KeyUsageSummary is one row of the "your API keys" dashboard table.
type KeyUsageSummary struct {
	KeyID      int64      `json:"key_id"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	IsActive   bool       `json:"is_active"`
	Revoked    bool       `json:"revoked"`
	UsageCount int64      `json:"usage_count"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (s *Service) KeyUsage(ctx context.Context, adminID int64) ([]KeyUsageSummary, error) {
	keys, err := s.keys.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	summaries := make([]KeyUsageSummary, 0, len(keys))
	for _, k := range keys {
		summaries = append(summaries, KeyUsageSummary{
			KeyID:      k.ID,
			Name:       k.Name,
			Prefix:     k.Prefix,
			IsActive:   k.IsActive,
			Revoked:    k.RevokedAt != nil,
			UsageCount: k.UsageCount,
			LastUsed:   k.LastUsed,
			ExpiresAt:  k.ExpiresAt,
		})
	}
	return summaries, nil
}

// KeyTraffic returns the key's recent rate-limit buckets, newest first.
// Ownership is enforced: someone else's key reads as not found.
func (s *Service) KeyTraffic(ctx context.Context, keyID, adminID int64, limit int) ([]domain.RateLimitWindow, error) {
	key, err := s.keys.GetByID(ctx, keyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	if key.AdminID != adminID {
		return nil, ErrKeyNotFound
	}

	return s.windows.RecentWindows(ctx, keyID, limit)
}

func (s *Service) CentersByState(ctx context.Context) ([]repository.StateCount, error) {
	return s.centers.CountByState(ctx)
}
