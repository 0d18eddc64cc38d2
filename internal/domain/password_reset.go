package domain

import "time"

// PasswordReset is a one-time reset token. Stored hashed; consumed exactly once.
type PasswordReset struct {
	ID        int64      `json:"id"`
	AdminID   int64      `json:"admin_id"`
	TokenHash string     `json:"-"`
	IsUsed    bool       `json:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}
