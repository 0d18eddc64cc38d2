package admin

import (
	"context"

	"resolvedesk/internal/domain"
)

// AdminStore — account persistence for the management surface.
type AdminStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	List(ctx context.Context, page, limit int) ([]domain.Admin, int64, error)
}

// ActivityStore reads and appends the append-only audit trail.
type ActivityStore interface {
	Append(ctx context.Context, a *domain.AdminActivity) error
	ListByAdmin(ctx context.Context, adminID int64, limit int) ([]domain.AdminActivity, error)
}
