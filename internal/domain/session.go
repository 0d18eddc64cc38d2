package domain

import "time"

// Session is a live authenticated session bound to one admin. The raw bearer
// token is returned to the client exactly once at sign-in; only its peppered
// hash is stored.
type Session struct {
	ID         int64      `json:"id"`
	AdminID    int64      `json:"admin_id"`
	SessionID  string     `json:"session_id"`
	TokenHash  string     `json:"-"`
	IsActive   bool       `json:"is_active"`
	UserAgent  string     `json:"user_agent,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	Location   string     `json:"location,omitempty"`
	DeviceType string     `json:"device_type,omitempty"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Usable reports whether the session can still authenticate requests.
// Expiry is a computed condition, not a stored flag: a row that is still
// marked active but past its expiry is already invalid.
func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
