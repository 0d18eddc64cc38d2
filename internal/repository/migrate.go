package repository

import (
	"time"

	"gorm.io/gorm"
)

// emailVerificationCodeModel backs the sign-up verification flow, which talks
// to this table through the auth service. Declared here so AutoMigrate owns
// the full schema.
type emailVerificationCodeModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	AdminID     int64      `gorm:"column:admin_id;index"`
	CodeHash    string     `gorm:"column:code_hash"`
	Attempts    int        `gorm:"column:attempts"`
	ResendCount int        `gorm:"column:resend_count"`
	LastSentAt  time.Time  `gorm:"column:last_sent_at"`
	ExpiresAt   time.Time  `gorm:"column:expires_at"`
	UsedAt      *time.Time `gorm:"column:used_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

func (emailVerificationCodeModel) TableName() string { return "email_verification_codes" }

// AutoMigrate creates or updates every table this repo layer owns. Used by
// cmd/seed and the test suites; production schema changes go through real
// migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&adminModel{},
		&sessionModel{},
		&passwordResetModel{},
		&apiKeyModel{},
		&rateLimitWindowModel{},
		&adminActivityModel{},
		&centerModel{},
		&emailVerificationCodeModel{},
	)
}
