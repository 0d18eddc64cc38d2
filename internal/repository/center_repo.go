package repository

import (
	"context"
	"strings"
	"time"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
)

type CenterRepository struct {
	db *gorm.DB
}

func NewCenterRepository(db *gorm.DB) *CenterRepository {
	return &CenterRepository{db: db}
}

type centerModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	State       string    `gorm:"column:state;index"`
	LGA         string    `gorm:"column:lga;index"`
	Address     string    `gorm:"column:address"`
	Phone       *string   `gorm:"column:phone"`
	Email       *string   `gorm:"column:email"`
	ContactName *string   `gorm:"column:contact_name"`
	Capacity    int       `gorm:"column:capacity"`
	Status      string    `gorm:"column:status;index"`
	Notes       *string   `gorm:"column:notes"`
	CreatedByID *int64    `gorm:"column:created_by_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (centerModel) TableName() string { return "centers" }

func toDomainCenter(m centerModel) *domain.Center {
	c := &domain.Center{
		ID:          m.ID,
		Name:        m.Name,
		State:       m.State,
		LGA:         m.LGA,
		Address:     m.Address,
		Capacity:    m.Capacity,
		Status:      domain.CenterStatus(m.Status),
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Phone != nil {
		c.Phone = *m.Phone
	}
	if m.Email != nil {
		c.Email = *m.Email
	}
	if m.ContactName != nil {
		c.ContactName = *m.ContactName
	}
	if m.Notes != nil {
		c.Notes = *m.Notes
	}
	return c
}

func toCenterModel(c *domain.Center) centerModel {
	m := centerModel{
		ID:          c.ID,
		Name:        c.Name,
		State:       strings.TrimSpace(c.State),
		LGA:         strings.TrimSpace(c.LGA),
		Address:     c.Address,
		Capacity:    c.Capacity,
		Status:      string(c.Status),
		CreatedByID: c.CreatedByID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Phone != "" {
		v := c.Phone
		m.Phone = &v
	}
	if c.Email != "" {
		v := c.Email
		m.Email = &v
	}
	if c.ContactName != "" {
		v := c.ContactName
		m.ContactName = &v
	}
	if c.Notes != "" {
		v := c.Notes
		m.Notes = &v
	}
	return m
}

func (r *CenterRepository) Create(ctx context.Context, c *domain.Center) error {
	m := toCenterModel(c)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*c = *toDomainCenter(m)
	return nil
}

func (r *CenterRepository) GetByID(ctx context.Context, id int64) (*domain.Center, error) {
	var m centerModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainCenter(m), nil
}

func (r *CenterRepository) Update(ctx context.Context, c *domain.Center) error {
	m := toCenterModel(c)
	return r.db.WithContext(ctx).Save(&m).Error
}

type CenterFilter struct {
	State  string
	LGA    string
	Status string
	Query  string
	Page   int
	Limit  int
}

func (r *CenterRepository) List(ctx context.Context, f CenterFilter) ([]domain.Center, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	q := r.db.WithContext(ctx).Model(&centerModel{})
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.LGA != "" {
		q = q.Where("lga = ?", f.LGA)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(f.Query)) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []centerModel
	if err := q.Order("state, lga, name").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	centers := make([]domain.Center, 0, len(rows))
	for _, m := range rows {
		centers = append(centers, *toDomainCenter(m))
	}
	return centers, total, nil
}

type StateCount struct {
	State string `gorm:"column:state" json:"state"`
	Count int64  `gorm:"column:count" json:"count"`
}

func (r *CenterRepository) CountByState(ctx context.Context) ([]StateCount, error) {
	var out []StateCount
	err := r.db.WithContext(ctx).Model(&centerModel{}).
		Select("state, COUNT(*) as count").
		Group("state").
		Order("state").
		Scan(&out).Error
	return out, err
}

func (r *CenterRepository) DB() *gorm.DB { return r.db }
