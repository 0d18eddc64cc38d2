package repository

import (
	"context"
	"time"

	"resolvedesk/internal/domain"

	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type sessionModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	AdminID    int64      `gorm:"column:admin_id;index"`
	SessionID  string     `gorm:"column:session_id;uniqueIndex"`
	TokenHash  string     `gorm:"column:token_hash;uniqueIndex"`
	IsActive   bool       `gorm:"column:is_active"`
	UserAgent  *string    `gorm:"column:user_agent"`
	IPAddress  *string    `gorm:"column:ip_address"`
	Location   *string    `gorm:"column:location"`
	DeviceType *string    `gorm:"column:device_type"`
	LastUsed   *time.Time `gorm:"column:last_used"`
	ExpiresAt  time.Time  `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (sessionModel) TableName() string { return "sessions" }

func toDomainSession(m sessionModel) *domain.Session {
	s := &domain.Session{
		ID:        m.ID,
		AdminID:   m.AdminID,
		SessionID: m.SessionID,
		TokenHash: m.TokenHash,
		IsActive:  m.IsActive,
		LastUsed:  m.LastUsed,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
	if m.UserAgent != nil {
		s.UserAgent = *m.UserAgent
	}
	if m.IPAddress != nil {
		s.IPAddress = *m.IPAddress
	}
	if m.Location != nil {
		s.Location = *m.Location
	}
	if m.DeviceType != nil {
		s.DeviceType = *m.DeviceType
	}
	return s
}

func toSessionModel(s *domain.Session) sessionModel {
	m := sessionModel{
		ID:        s.ID,
		AdminID:   s.AdminID,
		SessionID: s.SessionID,
		TokenHash: s.TokenHash,
		IsActive:  s.IsActive,
		LastUsed:  s.LastUsed,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
	if s.UserAgent != "" {
		v := s.UserAgent
		m.UserAgent = &v
	}
	if s.IPAddress != "" {
		v := s.IPAddress
		m.IPAddress = &v
	}
	if s.Location != "" {
		v := s.Location
		m.Location = &v
	}
	if s.DeviceType != "" {
		v := s.DeviceType
		m.DeviceType = &v
	}
	return m
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	m := toSessionModel(s)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*s = *toDomainSession(m)
	return nil
}

func (r *SessionRepository) GetByTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	var m sessionModel
	tx := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainSession(m), nil
}

func (r *SessionRepository) ListByAdmin(ctx context.Context, adminID int64) ([]domain.Session, error) {
	var rows []sessionModel
	tx := r.db.WithContext(ctx).
		Where("admin_id = ? AND is_active = ?", adminID, true).
		Order("created_at DESC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	sessions := make([]domain.Session, 0, len(rows))
	for _, m := range rows {
		sessions = append(sessions, *toDomainSession(m))
	}
	return sessions, nil
}

// TouchLastUsed refreshes sliding visibility on each validated request.
// Expiry itself does not slide.
func (r *SessionRepository) TouchLastUsed(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("id = ?", id).
		Update("last_used", at).Error
}

// Revoke deactivates one session belonging to adminID. Returns
// gorm.ErrRecordNotFound when the session does not exist or is owned by
// someone else, so callers cannot distinguish the two.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string, adminID int64) error {
	tx := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("session_id = ? AND admin_id = ? AND is_active = ?", sessionID, adminID, true).
		Update("is_active", false)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevokeAllExcept deactivates every active session for the admin except the
// one identified by keepSessionID. Pass an empty keepSessionID to revoke all.
func (r *SessionRepository) RevokeAllExcept(ctx context.Context, adminID int64, keepSessionID string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&sessionModel{}).
		Where("admin_id = ? AND is_active = ?", adminID, true)
	if keepSessionID != "" {
		q = q.Where("session_id <> ?", keepSessionID)
	}
	tx := q.Update("is_active", false)
	return tx.RowsAffected, tx.Error
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR (is_active = ? AND created_at < ?)", time.Now(), false, olderThan).
		Delete(&sessionModel{})
	return tx.RowsAffected, tx.Error
}

func (r *SessionRepository) DB() *gorm.DB { return r.db }
