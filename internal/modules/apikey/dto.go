package apikey

type CreateKeyRequest struct {
	Name             string `json:"name" binding:"required,min=2"`
	Description      string `json:"description"`
	CanRead          bool   `json:"can_read"`
	CanWrite         bool   `json:"can_write"`
	CanDelete        bool   `json:"can_delete"`
	CanManageKeys    bool   `json:"can_manage_keys"`
	AllowedEndpoints string `json:"allowed_endpoints"`
	RateLimit        int    `json:"rate_limit"`
	RateLimitPeriod  int    `json:"rate_limit_period"`
	ExpiresInDays    int    `json:"expires_in_days"`
}

// UpdateKeyRequest is a partial patch; nil fields are left untouched.
// The secret cannot be changed here, only via regenerate.
type UpdateKeyRequest struct {
	Name             *string `json:"name,omitempty"`
	Description      *string `json:"description,omitempty"`
	CanRead          *bool   `json:"can_read,omitempty"`
	CanWrite         *bool   `json:"can_write,omitempty"`
	CanDelete        *bool   `json:"can_delete,omitempty"`
	CanManageKeys    *bool   `json:"can_manage_keys,omitempty"`
	AllowedEndpoints *string `json:"allowed_endpoints,omitempty"`
	RateLimit        *int    `json:"rate_limit,omitempty"`
	RateLimitPeriod  *int    `json:"rate_limit_period,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

// RateLimitResult is returned on every admission check. Remaining counts
// requests still available in the current window.
type RateLimitResult struct {
	Allowed   bool  `json:"allowed"`
	Remaining int   `json:"remaining"`
	Limit     int   `json:"limit"`
	ResetAt   int64 `json:"reset_at"`
}
