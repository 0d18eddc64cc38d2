package center

import (
	"context"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/repository"
)

// CenterStore — persistence for the center directory.
type CenterStore interface {
	Create(ctx context.Context, c *domain.Center) error
	GetByID(ctx context.Context, id int64) (*domain.Center, error)
	Update(ctx context.Context, c *domain.Center) error
	List(ctx context.Context, f repository.CenterFilter) ([]domain.Center, int64, error)
	CountByState(ctx context.Context) ([]repository.StateCount, error)
}

// ActivityWriter appends audit rows; failures are logged, never fatal.
type ActivityWriter interface {
	Append(ctx context.Context, a *domain.AdminActivity) error
}
