package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"resolvedesk/internal/pkg/token"

	"gorm.io/gorm"
)

const (
	maxVerifyAttempts = 5
	maxResendCount    = 5
)

var codeRegex = regexp.MustCompile(`^\d{6}$`)

// Mailer is the slice of email dispatch the auth service needs.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

type verificationCodeRow struct {
	AdminID     int64      `gorm:"column:admin_id"`
	CodeHash    string     `gorm:"column:code_hash"`
	Attempts    int        `gorm:"column:attempts"`
	ResendCount int        `gorm:"column:resend_count"`
	LastSentAt  time.Time  `gorm:"column:last_sent_at"`
	ExpiresAt   time.Time  `gorm:"column:expires_at"`
	UsedAt      *time.Time `gorm:"column:used_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

func (verificationCodeRow) TableName() string { return "email_verification_codes" }

type VerifyRequestResult struct {
	Status string
}

// RequestEmailVerification issues (or re-issues) a 6-digit code for the
// account. Responds with an "ok" status even when the email is unknown so the
// endpoint cannot be used to probe for accounts.
func (s *Service) RequestEmailVerification(ctx context.Context, email string) (*VerifyRequestResult, error) {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	admin, err := s.admins.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerifyRequestResult{Status: "ok"}, nil
		}
		return nil, err
	}
	if admin.IsEmailVerified {
		return &VerifyRequestResult{Status: "already_verified"}, nil
	}

	now := time.Now()
	db := s.admins.DB().WithContext(ctx)

	var existing verificationCodeRow
	err = db.Where("admin_id = ? AND used_at IS NULL", admin.ID).
		Order("created_at DESC").
		First(&existing).Error
	if err == nil {
		if existing.ResendCount >= maxResendCount {
			return nil, ErrTooManyAttempts
		}
		if now.Sub(existing.LastSentAt) < s.verifyResendCooldown {
			return nil, ErrResendCooldown
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, err
	}

	if err := db.Where("admin_id = ? AND used_at IS NULL", admin.ID).
		Delete(&verificationCodeRow{}).Error; err != nil {
		return nil, err
	}

	row := verificationCodeRow{
		AdminID:     admin.ID,
		CodeHash:    s.hashVerificationCode(code),
		ResendCount: existing.ResendCount + 1,
		LastSentAt:  now,
		ExpiresAt:   now.Add(s.verifyCodeTTL),
	}
	if err := db.Create(&row).Error; err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(ctx, admin.Email, code); err != nil {
			// No code in the inbox means the row is useless; drop it.
			_ = db.Where("admin_id = ? AND code_hash = ?", admin.ID, row.CodeHash).
				Delete(&verificationCodeRow{}).Error
			return nil, err
		}
	}

	return &VerifyRequestResult{Status: "sent"}, nil
}

// ConfirmEmailVerification consumes a code and marks the account verified.
func (s *Service) ConfirmEmailVerification(ctx context.Context, email, code string) error {
	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return ErrCodeInvalid
	}

	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	admin, err := s.admins.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return err
	}
	if admin.IsEmailVerified {
		return nil
	}

	now := time.Now()
	db := s.admins.DB().WithContext(ctx)

	var row verificationCodeRow
	if err := db.Where("admin_id = ? AND used_at IS NULL", admin.ID).
		Order("created_at DESC").
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return err
	}

	if row.Attempts >= maxVerifyAttempts {
		return ErrTooManyAttempts
	}
	if !now.Before(row.ExpiresAt) {
		return ErrCodeExpired
	}

	if !token.ConstantTimeEqual(row.CodeHash, s.hashVerificationCode(code)) {
		if err := db.Model(&verificationCodeRow{}).
			Where("admin_id = ? AND code_hash = ?", admin.ID, row.CodeHash).
			Update("attempts", row.Attempts+1).Error; err != nil {
			return err
		}
		return ErrCodeInvalid
	}

	if err := db.Model(&verificationCodeRow{}).
		Where("admin_id = ? AND code_hash = ?", admin.ID, row.CodeHash).
		Update("used_at", now).Error; err != nil {
		return err
	}

	if err := s.admins.UpdateFields(ctx, admin.ID, map[string]any{"is_email_verified": true}); err != nil {
		return err
	}

	s.appendActivity(ctx, admin.ID, "EMAIL_VERIFIED", "")
	return nil
}

func (s *Service) hashVerificationCode(code string) string {
	sum := sha256.Sum256([]byte(code + s.verificationCodePepper))
	return hex.EncodeToString(sum[:])
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
