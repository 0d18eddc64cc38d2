package password

import (
	"context"

	"resolvedesk/internal/domain"
)

// AdminReader — the slice of the admin store this service needs.
type AdminReader interface {
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	UpdatePasswordAndRevokeSessions(ctx context.Context, adminID int64, newHash, keepSessionID string) error
}

// ResetStore — persistence for one-time reset tokens.
type ResetStore interface {
	Create(ctx context.Context, p *domain.PasswordReset) error
	GetByTokenHash(ctx context.Context, hash string) (*domain.PasswordReset, error)
	Delete(ctx context.Context, id int64) error
	ConsumeAndResetPassword(ctx context.Context, resetID, adminID int64, newHash string) error
}

// ActivityWriter appends audit rows; failures are logged, never fatal.
type ActivityWriter interface {
	Append(ctx context.Context, a *domain.AdminActivity) error
}

// Mailer is the slice of email dispatch the password service needs.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, resetLink string) error
	SendPasswordChanged(ctx context.Context, email string) error
}
