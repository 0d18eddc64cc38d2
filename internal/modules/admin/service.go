package admin

import (
	"context"
	"errors"
	"log"
	"strings"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
)

// Service is the super-admin management surface: listing accounts, toggling
// access and changing roles. Accounts are soft-disabled, never deleted.
type Service struct {
	admins     AdminStore
	activities ActivityStore
}

func NewService(admins AdminStore, activities ActivityStore) *Service {
	return &Service{admins: admins, activities: activities}
}

func (s *Service) List(ctx context.Context, page, limit int) ([]domain.Admin, int64, error) {
	admins, total, err := s.admins.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range admins {
		admins[i].PasswordHash = ""
	}
	return admins, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	admin.PasswordHash = ""
	return admin, nil
}

// SetActive enables or soft-disables an account. Deactivation is blocked for
// the caller's own account so a super admin cannot lock everyone out.
func (s *Service) SetActive(ctx context.Context, targetID, actorID int64, active bool) (*domain.Admin, error) {
	if !active && targetID == actorID {
		return nil, ErrSelfDeactivate
	}

	admin, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if admin.IsActive == active {
		return admin, nil
	}

	if err := s.admins.UpdateFields(ctx, targetID, map[string]any{"is_active": active}); err != nil {
		return nil, err
	}
	admin.IsActive = active

	action := "ADMIN_DEACTIVATED"
	if active {
		action = "ADMIN_ACTIVATED"
	}
	s.appendActivity(ctx, actorID, action, targetID)
	return admin, nil
}

// SetRole changes the target's role. Changing your own role is blocked.
func (s *Service) SetRole(ctx context.Context, targetID, actorID int64, role string) (*domain.Admin, error) {
	if targetID == actorID {
		return nil, ErrSelfDemotion
	}

	newRole := domain.AdminRole(strings.ToLower(strings.TrimSpace(role)))
	switch newRole {
	case domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleViewer:
	default:
		return nil, ErrInvalidRole
	}

	admin, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if admin.Role == newRole {
		return admin, nil
	}

	if err := s.admins.UpdateFields(ctx, targetID, map[string]any{"role": string(newRole)}); err != nil {
		return nil, err
	}
	admin.Role = newRole

	s.appendActivity(ctx, actorID, "ADMIN_ROLE_CHANGED", targetID)
	return admin, nil
}

// ActivityFeed returns the target's recent audit rows, newest first.
func (s *Service) ActivityFeed(ctx context.Context, targetID int64, limit int) ([]domain.AdminActivity, error) {
	if _, err := s.Get(ctx, targetID); err != nil {
		return nil, err
	}
	return s.activities.ListByAdmin(ctx, targetID, limit)
}

func (s *Service) appendActivity(ctx context.Context, actorID int64, action string, targetID int64) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Append(ctx, &domain.AdminActivity{
		AdminID:  actorID,
		Action:   action,
		Entity:   "admin",
		EntityID: &targetID,
	}); err != nil {
		log.Printf("activity_append_failed admin_id=%d action=%s err=%v", actorID, action, err)
	}
}
