package repository

import (
	"context"
	"time"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

type adminActivityModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	AdminID   int64     `gorm:"column:admin_id;index"`
	Action    string    `gorm:"column:action"`
	Entity    *string   `gorm:"column:entity"`
	EntityID  *int64    `gorm:"column:entity_id"`
	Details   *string   `gorm:"column:details"`
	IPAddress *string   `gorm:"column:ip_address"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (adminActivityModel) TableName() string { return "admin_activities" }

func toDomainActivity(m adminActivityModel) domain.AdminActivity {
	a := domain.AdminActivity{
		ID:        m.ID,
		AdminID:   m.AdminID,
		Action:    m.Action,
		EntityID:  m.EntityID,
		CreatedAt: m.CreatedAt,
	}
	if m.Entity != nil {
		a.Entity = *m.Entity
	}
	if m.Details != nil {
		a.Details = *m.Details
	}
	if m.IPAddress != nil {
		a.IPAddress = *m.IPAddress
	}
	return a
}

// Append writes one activity row. Rows are write-once; there is no update path.
func (r *ActivityRepository) Append(ctx context.Context, a *domain.AdminActivity) error {
	m := adminActivityModel{
		AdminID: a.AdminID,
		Action:  a.Action,
	}
	if a.Entity != "" {
		v := a.Entity
		m.Entity = &v
	}
	if a.EntityID != nil {
		m.EntityID = a.EntityID
	}
	if a.Details != "" {
		v := a.Details
		m.Details = &v
	}
	if a.IPAddress != "" {
		v := a.IPAddress
		m.IPAddress = &v
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *ActivityRepository) ListByAdmin(ctx context.Context, adminID int64, limit int) ([]domain.AdminActivity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []adminActivityModel
	tx := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.AdminActivity, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainActivity(m))
	}
	return out, nil
}
