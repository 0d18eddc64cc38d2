package auth

import "time"

type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyRequestDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyConfirmDTO struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// ClientContext carries per-request device metadata into session rows.
type ClientContext struct {
	UserAgent  string
	IPAddress  string
	Location   string
	DeviceType string
}

// SessionView is what the Security settings page renders. IsCurrent is set
// server-side from the session actually presented on this request, never
// inferred from list position.
type SessionView struct {
	SessionID  string     `json:"session_id"`
	UserAgent  string     `json:"user_agent,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	Location   string     `json:"location,omitempty"`
	DeviceType string     `json:"device_type,omitempty"`
	LastUsed   *time.Time `json:"last_used,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	IsCurrent  bool       `json:"is_current"`
}
