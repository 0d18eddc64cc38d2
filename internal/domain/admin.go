package domain

import "time"

type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super_admin"
	RoleViewer     AdminRole = "viewer"
)

type Admin struct {
	ID                  int64      `json:"id"`
	Email               string     `json:"email" validate:"required,email"`
	Phone               string     `json:"phone"`
	PasswordHash        string     `json:"-"`
	Name                string     `json:"name"`
	Role                AdminRole  `json:"role"`
	IsActive            bool       `json:"is_active"`
	IsEmailVerified     bool       `json:"is_email_verified"`
	TwoFactorEnabled    bool       `json:"two_factor_enabled"`
	TwoFactorSecret     string     `json:"-"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// AdminActivity is an append-only event attached to an admin account.
// Rows are written once by the credential services and never mutated.
type AdminActivity struct {
	ID        int64     `json:"id"`
	AdminID   int64     `json:"admin_id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity,omitempty"`
	EntityID  *int64    `json:"entity_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
