package password

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/pkg/mailer"
	"resolvedesk/internal/pkg/response"
	"resolvedesk/internal/pkg/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenBytes = 32

// Service orchestrates the reset-by-email-token flow and the authenticated
// change-password flow. Business-rule failures come back as structured
// results; only unexpected store/crypto errors are returned as errors.
type Service struct {
	admins           AdminReader
	resets           ResetStore
	activities       ActivityWriter
	mail             Mailer
	baseURL          string
	resetTTL         time.Duration
	resetTokenPepper string

	// keepCurrentSession leaves the caller's own session alive on an
	// authenticated password change. The reset-by-token flow always revokes
	// everything: the caller is not authenticated through a session there.
	keepCurrentSession bool
}

func NewService(
	admins AdminReader,
	resets ResetStore,
	activities ActivityWriter,
	mail Mailer,
	baseURL string,
	resetTTL time.Duration,
	resetTokenPepper string,
	keepCurrentSession bool,
) *Service {
	return &Service{
		admins:             admins,
		resets:             resets,
		activities:         activities,
		mail:               mail,
		baseURL:            baseURL,
		resetTTL:           resetTTL,
		resetTokenPepper:   resetTokenPepper,
		keepCurrentSession: keepCurrentSession,
	}
}

// RequestReset starts the reset flow. The response is byte-identical whether
// or not the email belongs to an account, so the endpoint cannot be used to
// probe which emails are registered.
func (s *Service) RequestReset(ctx context.Context, email string) (response.Result, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Ok(msgResetRequested), nil
		}
		return response.Fail(msgResetRequestFailed), err
	}
	if !admin.IsActive {
		return response.Ok(msgResetRequested), nil
	}

	raw, err := token.Generate(resetTokenBytes)
	if err != nil {
		return response.Fail(msgResetRequestFailed), err
	}

	reset := &domain.PasswordReset{
		AdminID:   admin.ID,
		TokenHash: token.HashWithPepper(raw, s.resetTokenPepper),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return response.Fail(msgResetRequestFailed), err
	}

	link := mailer.ResetLink(s.baseURL, raw, admin.ID)
	if err := s.mail.SendPasswordReset(ctx, admin.Email, link); err != nil {
		// The email is the only way the token can reach its owner. Roll the
		// row back rather than leave an orphaned-but-valid token around.
		if delErr := s.resets.Delete(ctx, reset.ID); delErr != nil {
			log.Printf("reset_rollback_failed reset_id=%d err=%v", reset.ID, delErr)
		}
		return response.Fail(msgResetRequestFailed), err
	}

	s.appendActivity(ctx, admin.ID, "REQUESTED_PASSWORD_RESET")
	return response.Ok(msgResetRequested), nil
}

// VerifyResetToken is the single source of truth for token validity. It is
// used standalone to pre-validate before the reset form renders, and inside
// ResetWithToken.
func (s *Service) VerifyResetToken(ctx context.Context, raw string) (TokenCheck, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TokenCheck{Valid: false, Message: msgTokenInvalid}, nil
	}

	hash := token.HashWithPepper(raw, s.resetTokenPepper)
	reset, err := s.resets.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenCheck{Valid: false, Message: msgTokenInvalid}, nil
		}
		return TokenCheck{}, err
	}

	if reset.IsUsed {
		return TokenCheck{Valid: false, Message: msgTokenUsed}, nil
	}
	// now == expiresAt counts as expired.
	if !time.Now().Before(reset.ExpiresAt) {
		return TokenCheck{Valid: false, Message: msgTokenExpired}, nil
	}

	admin, err := s.admins.GetByID(ctx, reset.AdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenCheck{Valid: false, Message: msgTokenInvalid}, nil
		}
		return TokenCheck{}, err
	}
	if !admin.IsActive {
		return TokenCheck{Valid: false, Message: msgAccountInactive}, nil
	}

	return TokenCheck{Valid: true, AdminID: admin.ID, ResetID: reset.ID}, nil
}

// ResetWithToken consumes a token and sets the new password. The password
// update, the token's is_used flip and the session fan-out commit as one
// transaction; the is_used flip doubles as the commit marker so a replayed
// token fails instead of double-applying.
func (s *Service) ResetWithToken(ctx context.Context, raw, newPassword string) (response.Result, error) {
	if ok, msg := ValidateStrength(newPassword); !ok {
		return response.Fail(msg), nil
	}

	check, err := s.VerifyResetToken(ctx, raw)
	if err != nil {
		return response.Fail(msgResetRequestFailed), err
	}
	if !check.Valid {
		return response.Fail(check.Message), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return response.Fail(msgResetRequestFailed), err
	}

	if err := s.resets.ConsumeAndResetPassword(ctx, check.ResetID, check.AdminID, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the race against a concurrent consume of the same token.
			return response.Fail(msgTokenUsed), nil
		}
		return response.Fail(msgResetRequestFailed), err
	}

	s.notifyPasswordChanged(ctx, check.AdminID)
	s.appendActivity(ctx, check.AdminID, "PASSWORD_RESET_SUCCESS")
	return response.Ok(msgResetDone), nil
}

// ChangePassword is the authenticated flow. currentSessionID names the
// session the caller presented; whether it survives is a config decision.
func (s *Service) ChangePassword(ctx context.Context, adminID int64, currentPassword, newPassword, currentSessionID string) (response.Result, error) {
	if ok, msg := ValidateStrength(newPassword); !ok {
		return response.Fail(msg), nil
	}

	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Fail("Admin not found"), ErrAdminNotFound
		}
		return response.Fail(msgResetRequestFailed), err
	}

	// bcrypt's comparison is constant time; never a plain string equality.
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)); err != nil {
		return response.Fail(msgWrongCurrent), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return response.Fail(msgResetRequestFailed), err
	}

	keep := ""
	if s.keepCurrentSession {
		keep = currentSessionID
	}
	if err := s.admins.UpdatePasswordAndRevokeSessions(ctx, adminID, string(hash), keep); err != nil {
		return response.Fail(msgResetRequestFailed), err
	}

	s.notifyPasswordChanged(ctx, adminID)
	s.appendActivity(ctx, adminID, "PASSWORD_CHANGED_SUCCESS")
	return response.Ok(msgChangeDone), nil
}

// notifyPasswordChanged is best-effort: the password change is already
// committed, a failed email must not roll it back.
func (s *Service) notifyPasswordChanged(ctx context.Context, adminID int64) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		log.Printf("password_changed_mail_lookup_failed admin_id=%d err=%v", adminID, err)
		return
	}
	if err := s.mail.SendPasswordChanged(ctx, admin.Email); err != nil {
		log.Printf("password_changed_mail_failed admin_id=%d err=%v", adminID, err)
	}
}

func (s *Service) appendActivity(ctx context.Context, adminID int64, action string) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Append(ctx, &domain.AdminActivity{
		AdminID: adminID,
		Action:  action,
	}); err != nil {
		log.Printf("activity_append_failed admin_id=%d action=%s err=%v", adminID, action, err)
	}
}
