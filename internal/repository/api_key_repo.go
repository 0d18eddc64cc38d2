package repository

import (
	"context"
	"time"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
)

type APIKeyRepository struct {
	db *gorm.DB
}

func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

type apiKeyModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	AdminID          int64      `gorm:"column:admin_id;index"`
	KeyHash          string     `gorm:"column:key_hash;uniqueIndex"`
	Prefix           string     `gorm:"column:prefix"`
	Name             string     `gorm:"column:name"`
	Description      *string    `gorm:"column:description"`
	CanRead          bool       `gorm:"column:can_read"`
	CanWrite         bool       `gorm:"column:can_write"`
	CanDelete        bool       `gorm:"column:can_delete"`
	CanManageKeys    bool       `gorm:"column:can_manage_keys"`
	AllowedEndpoints string     `gorm:"column:allowed_endpoints"`
	RateLimit        int        `gorm:"column:rate_limit"`
	RateLimitPeriod  int        `gorm:"column:rate_limit_period"`
	IsActive         bool       `gorm:"column:is_active"`
	UsageCount       int64      `gorm:"column:usage_count"`
	LastUsed         *time.Time `gorm:"column:last_used"`
	ExpiresAt        *time.Time `gorm:"column:expires_at"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (apiKeyModel) TableName() string { return "api_keys" }

func toDomainAPIKey(m apiKeyModel) *domain.APIKey {
	k := &domain.APIKey{
		ID:               m.ID,
		AdminID:          m.AdminID,
		KeyHash:          m.KeyHash,
		Prefix:           m.Prefix,
		Name:             m.Name,
		CanRead:          m.CanRead,
		CanWrite:         m.CanWrite,
		CanDelete:        m.CanDelete,
		CanManageKeys:    m.CanManageKeys,
		AllowedEndpoints: m.AllowedEndpoints,
		RateLimit:        m.RateLimit,
		RateLimitPeriod:  m.RateLimitPeriod,
		IsActive:         m.IsActive,
		UsageCount:       m.UsageCount,
		LastUsed:         m.LastUsed,
		ExpiresAt:        m.ExpiresAt,
		RevokedAt:        m.RevokedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Description != nil {
		k.Description = *m.Description
	}
	return k
}

func toAPIKeyModel(k *domain.APIKey) apiKeyModel {
	m := apiKeyModel{
		ID:               k.ID,
		AdminID:          k.AdminID,
		KeyHash:          k.KeyHash,
		Prefix:           k.Prefix,
		Name:             k.Name,
		CanRead:          k.CanRead,
		CanWrite:         k.CanWrite,
		CanDelete:        k.CanDelete,
		CanManageKeys:    k.CanManageKeys,
		AllowedEndpoints: k.AllowedEndpoints,
		RateLimit:        k.RateLimit,
		RateLimitPeriod:  k.RateLimitPeriod,
		IsActive:         k.IsActive,
		UsageCount:       k.UsageCount,
		LastUsed:         k.LastUsed,
		ExpiresAt:        k.ExpiresAt,
		RevokedAt:        k.RevokedAt,
		CreatedAt:        k.CreatedAt,
		UpdatedAt:        k.UpdatedAt,
	}
	if k.Description != "" {
		v := k.Description
		m.Description = &v
	}
	return m
}

func (r *APIKeyRepository) Create(ctx context.Context, k *domain.APIKey) error {
	m := toAPIKeyModel(k)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*k = *toDomainAPIKey(m)
	return nil
}

func (r *APIKeyRepository) GetByID(ctx context.Context, id int64) (*domain.APIKey, error) {
	var m apiKeyModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainAPIKey(m), nil
}

func (r *APIKeyRepository) GetByHash(ctx context.Context, hash string) (*domain.APIKey, error) {
	var m apiKeyModel
	tx := r.db.WithContext(ctx).Where("key_hash = ?", hash).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainAPIKey(m), nil
}

func (r *APIKeyRepository) ListByAdmin(ctx context.Context, adminID int64) ([]domain.APIKey, error) {
	var rows []apiKeyModel
	tx := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	keys := make([]domain.APIKey, 0, len(rows))
	for _, m := range rows {
		keys = append(keys, *toDomainAPIKey(m))
	}
	return keys, nil
}

func (r *APIKeyRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&apiKeyModel{}).Where("id = ?", id).Updates(fields).Error
}

// RecordUsage bumps the lifetime counter and last_used in a single statement.
// Distinct from the rate-limit window buckets.
func (r *APIKeyRepository) RecordUsage(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&apiKeyModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_used":   at,
		}).Error
}

func (r *APIKeyRepository) DB() *gorm.DB { return r.db }
