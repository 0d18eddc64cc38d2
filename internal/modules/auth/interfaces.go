package auth

import (
	"context"
	"time"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
)

// AdminRepositoryInterface — only the methods the auth service uses
type AdminRepositoryInterface interface {
	Create(ctx context.Context, a *domain.Admin) error
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	DB() *gorm.DB
}

// SessionRepositoryInterface — storage for admin sessions
type SessionRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error)
	ListByAdmin(ctx context.Context, adminID int64) ([]domain.Session, error)
	TouchLastUsed(ctx context.Context, id int64, at time.Time) error
	Revoke(ctx context.Context, sessionID string, adminID int64) error
	RevokeAllExcept(ctx context.Context, adminID int64, keepSessionID string) (int64, error)
}

// ActivityWriter appends audit rows; failures are logged, never fatal.
type ActivityWriter interface {
	Append(ctx context.Context, a *domain.AdminActivity) error
}
