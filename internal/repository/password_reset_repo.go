package repository

import (
	"context"
	"time"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
)

type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

type passwordResetModel struct {
	ID        int64      `gorm:"column:id;primaryKey"`
	AdminID   int64      `gorm:"column:admin_id;index"`
	TokenHash string     `gorm:"column:token_hash;uniqueIndex"`
	IsUsed    bool       `gorm:"column:is_used"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	ExpiresAt time.Time  `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (passwordResetModel) TableName() string { return "password_resets" }

func toDomainPasswordReset(m passwordResetModel) *domain.PasswordReset {
	return &domain.PasswordReset{
		ID:        m.ID,
		AdminID:   m.AdminID,
		TokenHash: m.TokenHash,
		IsUsed:    m.IsUsed,
		UsedAt:    m.UsedAt,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

func (r *PasswordResetRepository) Create(ctx context.Context, p *domain.PasswordReset) error {
	m := passwordResetModel{
		AdminID:   p.AdminID,
		TokenHash: p.TokenHash,
		IsUsed:    p.IsUsed,
		ExpiresAt: p.ExpiresAt,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainPasswordReset(m)
	return nil
}

func (r *PasswordResetRepository) GetByTokenHash(ctx context.Context, hash string) (*domain.PasswordReset, error) {
	var m passwordResetModel
	tx := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainPasswordReset(m), nil
}

// Delete removes a token row. Used to roll back a reset request whose email
// never went out, so no orphaned-but-valid token is left behind.
func (r *PasswordResetRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&passwordResetModel{}, id).Error
}

// ConsumeAndResetPassword applies the reset commit as one transaction:
// the admin's password hash changes, the token is marked used, and every
// session of that admin is deactivated. The conditional is_used update is
// the commit marker — a replayed token affects zero rows and fails cleanly.
func (r *PasswordResetRepository) ConsumeAndResetPassword(ctx context.Context, resetID, adminID int64, newHash string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&passwordResetModel{}).
			Where("id = ? AND is_used = ?", resetID, false).
			Updates(map[string]any{"is_used": true, "used_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Model(&adminModel{}).Where("id = ?", adminID).
			Updates(map[string]any{"password_hash": newHash, "updated_at": now}).Error; err != nil {
			return err
		}

		return tx.Model(&sessionModel{}).
			Where("admin_id = ? AND is_active = ?", adminID, true).
			Update("is_active", false).Error
	})
}

func (r *PasswordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR is_used = ?", time.Now(), true).
		Delete(&passwordResetModel{})
	return tx.RowsAffected, tx.Error
}
