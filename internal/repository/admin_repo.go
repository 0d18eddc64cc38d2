package repository

import (
	"context"
	"strings"
	"time"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

type adminModel struct {
	ID                  int64      `gorm:"column:id;primaryKey"`
	Email               string     `gorm:"column:email;uniqueIndex"`
	Phone               *string    `gorm:"column:phone;uniqueIndex"`
	PasswordHash        string     `gorm:"column:password_hash"`
	Name                string     `gorm:"column:name"`
	Role                string     `gorm:"column:role"`
	IsActive            bool       `gorm:"column:is_active"`
	IsEmailVerified     bool       `gorm:"column:is_email_verified"`
	TwoFactorEnabled    bool       `gorm:"column:two_factor_enabled"`
	TwoFactorSecret     *string    `gorm:"column:two_factor_secret"`
	FailedLoginAttempts int        `gorm:"column:failed_login_attempts"`
	LockedUntil         *time.Time `gorm:"column:locked_until"`
	LastLogin           *time.Time `gorm:"column:last_login"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (adminModel) TableName() string { return "admins" }

func toDomainAdmin(m adminModel) *domain.Admin {
	var phone, secret string
	if m.Phone != nil {
		phone = *m.Phone
	}
	if m.TwoFactorSecret != nil {
		secret = *m.TwoFactorSecret
	}

	return &domain.Admin{
		ID:                  m.ID,
		Email:               m.Email,
		Phone:               phone,
		PasswordHash:        m.PasswordHash,
		Name:                m.Name,
		Role:                domain.AdminRole(m.Role),
		IsActive:            m.IsActive,
		IsEmailVerified:     m.IsEmailVerified,
		TwoFactorEnabled:    m.TwoFactorEnabled,
		TwoFactorSecret:     secret,
		FailedLoginAttempts: m.FailedLoginAttempts,
		LockedUntil:         m.LockedUntil,
		LastLogin:           m.LastLogin,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func toAdminModel(a *domain.Admin) adminModel {
	email := strings.TrimSpace(strings.ToLower(a.Email))

	var phone, secret *string
	if a.Phone != "" {
		v := a.Phone
		phone = &v
	}
	if a.TwoFactorSecret != "" {
		v := a.TwoFactorSecret
		secret = &v
	}

	return adminModel{
		ID:                  a.ID,
		Email:               email,
		Phone:               phone,
		PasswordHash:        a.PasswordHash,
		Name:                a.Name,
		Role:                string(a.Role),
		IsActive:            a.IsActive,
		IsEmailVerified:     a.IsEmailVerified,
		TwoFactorEnabled:    a.TwoFactorEnabled,
		TwoFactorSecret:     secret,
		FailedLoginAttempts: a.FailedLoginAttempts,
		LockedUntil:         a.LockedUntil,
		LastLogin:           a.LastLogin,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func (r *AdminRepository) Create(ctx context.Context, a *domain.Admin) error {
	m := toAdminModel(a)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*a = *toDomainAdmin(m)
	return nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var m adminModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainAdmin(m), nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	var m adminModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainAdmin(m), nil
}

func (r *AdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&adminModel{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count)
	return count > 0, tx.Error
}

func (r *AdminRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, nil
	}
	var count int64
	tx := r.db.WithContext(ctx).Model(&adminModel{}).
		Where("phone = ?", phone).
		Count(&count)
	return count > 0, tx.Error
}

func (r *AdminRepository) Update(ctx context.Context, a *domain.Admin) error {
	m := toAdminModel(a)
	return r.db.WithContext(ctx).Save(&m).Error
}

// UpdateFields applies a partial column update without touching the rest of
// the row (failed attempt counters, lockout, last_login).
func (r *AdminRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&adminModel{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AdminRepository) List(ctx context.Context, page, limit int) ([]domain.Admin, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	if err := r.db.WithContext(ctx).Model(&adminModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []adminModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	admins := make([]domain.Admin, 0, len(rows))
	for _, m := range rows {
		admins = append(admins, *toDomainAdmin(m))
	}
	return admins, total, nil
}

// UpdatePasswordAndRevokeSessions commits a password change and the session
// fan-out in one transaction. keepSessionID may name the caller's own session
// to leave signed in; empty revokes everything.
func (r *AdminRepository) UpdatePasswordAndRevokeSessions(ctx context.Context, adminID int64, newHash, keepSessionID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&adminModel{}).Where("id = ?", adminID).
			Updates(map[string]any{"password_hash": newHash, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		q := tx.Model(&sessionModel{}).
			Where("admin_id = ? AND is_active = ?", adminID, true)
		if keepSessionID != "" {
			q = q.Where("session_id <> ?", keepSessionID)
		}
		return q.Update("is_active", false).Error
	})
}

func (r *AdminRepository) DB() *gorm.DB { return r.db }
