package repository

import (
	"context"
	"time"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

type rateLimitWindowModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	APIKeyID     int64     `gorm:"column:api_key_id;uniqueIndex:idx_key_endpoint_window"`
	Endpoint     string    `gorm:"column:endpoint;uniqueIndex:idx_key_endpoint_window"`
	WindowStart  int64     `gorm:"column:window_start;uniqueIndex:idx_key_endpoint_window"`
	WindowEnd    int64     `gorm:"column:window_end"`
	RequestCount int       `gorm:"column:request_count"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (rateLimitWindowModel) TableName() string { return "api_rate_limit_windows" }

// IncrementIfBelow admits one request into the (keyID, endpoint, windowStart)
// bucket. The row is created lazily; the increment is a single conditional
// UPDATE so concurrent requests can never admit more than limit per window.
// Rejected requests do not increment. Returns admitted and the count after
// the attempt.
func (r *RateLimitRepository) IncrementIfBelow(ctx context.Context, keyID int64, endpoint string, windowStart, windowEnd int64, limit int) (bool, int, error) {
	db := r.db.WithContext(ctx)

	// Lazy create; a concurrent insert for the same bucket is a no-op.
	row := rateLimitWindowModel{
		APIKeyID:    keyID,
		Endpoint:    endpoint,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return false, 0, err
	}

	res := db.Model(&rateLimitWindowModel{}).
		Where("api_key_id = ? AND endpoint = ? AND window_start = ? AND request_count < ?",
			keyID, endpoint, windowStart, limit).
		Updates(map[string]any{
			"request_count": gorm.Expr("request_count + 1"),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return false, 0, res.Error
	}

	count, err := r.Count(ctx, keyID, endpoint, windowStart)
	if err != nil {
		return false, 0, err
	}
	return res.RowsAffected > 0, count, nil
}

func (r *RateLimitRepository) Count(ctx context.Context, keyID int64, endpoint string, windowStart int64) (int, error) {
	var m rateLimitWindowModel
	tx := r.db.WithContext(ctx).
		Where("api_key_id = ? AND endpoint = ? AND window_start = ?", keyID, endpoint, windowStart).
		First(&m)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, tx.Error
	}
	return m.RequestCount, nil
}

// RecentWindows returns the key's latest buckets, newest first. Used by the
// analytics screens to chart recent traffic.
func (r *RateLimitRepository) RecentWindows(ctx context.Context, keyID int64, limit int) ([]domain.RateLimitWindow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var rows []rateLimitWindowModel
	tx := r.db.WithContext(ctx).
		Where("api_key_id = ?", keyID).
		Order("window_start DESC").
		Limit(limit).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.RateLimitWindow, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.RateLimitWindow{
			ID:           m.ID,
			APIKeyID:     m.APIKeyID,
			Endpoint:     m.Endpoint,
			RequestCount: m.RequestCount,
			WindowStart:  time.Unix(m.WindowStart, 0),
			WindowEnd:    time.Unix(m.WindowEnd, 0),
			CreatedAt:    m.CreatedAt,
			UpdatedAt:    m.UpdatedAt,
		})
	}
	return out, nil
}

// DeleteStale drops windows that ended before the cutoff. Stale windows are
// otherwise just ignored at read time.
func (r *RateLimitRepository) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("window_end < ?", before.Unix()).
		Delete(&rateLimitWindowModel{})
	return tx.RowsAffected, tx.Error
}
