package domain

import "time"

// APIKey is a credential issued to a programmatic consumer, scoped to the
// admin who created it. The secret is shown once at creation or regeneration;
// only the peppered hash and the display prefix are kept.
type APIKey struct {
	ID               int64      `json:"id"`
	AdminID          int64      `json:"admin_id"`
	KeyHash          string     `json:"-"`
	Prefix           string     `json:"prefix"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	CanRead          bool       `json:"can_read"`
	CanWrite         bool       `json:"can_write"`
	CanDelete        bool       `json:"can_delete"`
	CanManageKeys    bool       `json:"can_manage_keys"`
	AllowedEndpoints string     `json:"allowed_endpoints"`
	RateLimit        int        `json:"rate_limit"`
	RateLimitPeriod  int        `json:"rate_limit_period"`
	IsActive         bool       `json:"is_active"`
	UsageCount       int64      `json:"usage_count"`
	LastUsed         *time.Time `json:"last_used,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Usable reports whether the key can authenticate requests right now.
func (k *APIKey) Usable(now time.Time) bool {
	if !k.IsActive || k.RevokedAt != nil {
		return false
	}
	if k.ExpiresAt != nil && !now.Before(*k.ExpiresAt) {
		return false
	}
	return true
}

// RateLimitWindow is a fixed-window counter bucket, uniquely identified by
// (api_key_id, endpoint, window_start). The increment is a conditional update
// at the storage layer so concurrent requests cannot over-admit.
type RateLimitWindow struct {
	ID           int64     `json:"id"`
	APIKeyID     int64     `json:"api_key_id"`
	Endpoint     string    `json:"endpoint"`
	RequestCount int       `json:"request_count"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
