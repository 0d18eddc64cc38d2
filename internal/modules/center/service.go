package center

import (
	"context"
	"errors"
	"log"
	"strings"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/pkg/validator"
	"resolvedesk/internal/repository"

	"gorm.io/gorm"
)

// Service manages the dispute resolution center directory. Centers are never
// deleted, only deactivated, so historical references stay resolvable.
type Service struct {
	centers    CenterStore
	activities ActivityWriter
}

func NewService(centers CenterStore, activities ActivityWriter) *Service {
	return &Service{centers: centers, activities: activities}
}

func (s *Service) Create(ctx context.Context, createdBy int64, req CreateCenterRequest) (*domain.Center, error) {
	c := &domain.Center{
		Name:        strings.TrimSpace(req.Name),
		State:       strings.TrimSpace(req.State),
		LGA:         strings.TrimSpace(req.LGA),
		Address:     strings.TrimSpace(req.Address),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		ContactName: strings.TrimSpace(req.ContactName),
		Capacity:    req.Capacity,
		Status:      domain.CenterActive,
		Notes:       req.Notes,
		CreatedByID: &createdBy,
	}

	if fields := validator.Validate(c); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.centers.Create(ctx, c); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, createdBy, "CENTER_CREATED", c.ID)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Center, error) {
	c, err := s.centers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCenterNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id, adminID int64, patch UpdateCenterRequest) (*domain.Center, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.State != nil {
		c.State = strings.TrimSpace(*patch.State)
	}
	if patch.LGA != nil {
		c.LGA = strings.TrimSpace(*patch.LGA)
	}
	if patch.Address != nil {
		c.Address = strings.TrimSpace(*patch.Address)
	}
	if patch.Phone != nil {
		c.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Email != nil {
		c.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.ContactName != nil {
		c.ContactName = strings.TrimSpace(*patch.ContactName)
	}
	if patch.Capacity != nil {
		c.Capacity = *patch.Capacity
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}
	if patch.Status != nil {
		status := domain.CenterStatus(strings.ToLower(strings.TrimSpace(*patch.Status)))
		if status != domain.CenterActive && status != domain.CenterInactive {
			return nil, ErrInvalidStatus
		}
		c.Status = status
	}

	if fields := validator.Validate(c); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.centers.Update(ctx, c); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, adminID, "CENTER_UPDATED", c.ID)
	return c, nil
}

// Deactivate takes a center out of the public directory without deleting it.
func (s *Service) Deactivate(ctx context.Context, id, adminID int64) (*domain.Center, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CenterInactive {
		return c, nil
	}

	c.Status = domain.CenterInactive
	if err := s.centers.Update(ctx, c); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, adminID, "CENTER_DEACTIVATED", c.ID)
	return c, nil
}

func (s *Service) List(ctx context.Context, q ListCentersQuery) ([]domain.Center, int64, error) {
	return s.centers.List(ctx, repository.CenterFilter{
		State:  strings.TrimSpace(q.State),
		LGA:    strings.TrimSpace(q.LGA),
		Status: strings.ToLower(strings.TrimSpace(q.Status)),
		Query:  q.Query,
		Page:   q.Page,
		Limit:  q.Limit,
	})
}

// ListPublic is the API-key-gated directory lookup: active centers only.
func (s *Service) ListPublic(ctx context.Context, q ListCentersQuery) ([]domain.Center, int64, error) {
	q.Status = string(domain.CenterActive)
	return s.List(ctx, q)
}

func (s *Service) CountByState(ctx context.Context) ([]repository.StateCount, error) {
	return s.centers.CountByState(ctx)
}

func (s *Service) appendActivity(ctx context.Context, adminID int64, action string, centerID int64) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Append(ctx, &domain.AdminActivity{
		AdminID:  adminID,
		Action:   action,
		Entity:   "center",
		EntityID: &centerID,
	}); err != nil {
		log.Printf("activity_append_failed admin_id=%d action=%s err=%v", adminID, action, err)
	}
}
