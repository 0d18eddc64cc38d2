package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/modules/password"
	"resolvedesk/internal/pkg/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 15 * time.Minute
	sessionTokenBytes      = 32
)

// Service contains all business logic for admin authentication and the
// session lifecycle. Every protected route in the console goes through
// ValidateSession.
type Service struct {
	admins                 AdminRepositoryInterface
	sessions               SessionRepositoryInterface
	activities             ActivityWriter
	mailer                 Mailer
	sessionTTL             time.Duration
	sessionTokenPepper     string
	verificationCodePepper string
	verifyCodeTTL          time.Duration
	verifyResendCooldown   time.Duration
}

type SignInResult struct {
	Admin   *domain.Admin
	Session *domain.Session
	Token   string
}

func NewService(
	admins AdminRepositoryInterface,
	sessions SessionRepositoryInterface,
	activities ActivityWriter,
	mailer Mailer,
	sessionTTL time.Duration,
	sessionTokenPepper string,
	verificationCodePepper string,
	verifyCodeTTL time.Duration,
	verifyResendCooldown time.Duration,
) *Service {
	return &Service{
		admins:                 admins,
		sessions:               sessions,
		activities:             activities,
		mailer:                 mailer,
		sessionTTL:             sessionTTL,
		sessionTokenPepper:     sessionTokenPepper,
		verificationCodePepper: verificationCodePepper,
		verifyCodeTTL:          verifyCodeTTL,
		verifyResendCooldown:   verifyResendCooldown,
	}
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*domain.Admin, error) {
	if ok, msg := password.ValidateStrength(req.Password); !ok {
		return nil, &password.StrengthError{Reason: msg}
	}

	exists, err := s.admins.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	exists, err = s.admins.ExistsByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPhoneAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &domain.Admin{
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		PasswordHash:    string(hash),
		Name:            req.Name,
		Role:            domain.RoleAdmin,
		IsActive:        true,
		IsEmailVerified: false,
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}

	if _, err := s.RequestEmailVerification(ctx, admin.Email); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, admin.ID, "ADMIN_SIGNED_UP", "")

	admin.PasswordHash = ""
	return admin, nil
}

func (s *Service) SignIn(ctx context.Context, req SignInRequest, client ClientContext) (*SignInResult, error) {
	admin, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if !admin.IsActive {
		return nil, ErrAccountDisabled
	}
	if admin.LockedUntil != nil && admin.LockedUntil.After(now) {
		return nil, ErrAccountLocked
	}
	if !admin.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		failedAttempts := admin.FailedLoginAttempts + 1
		updates := map[string]any{"failed_login_attempts": failedAttempts}
		if failedAttempts >= maxFailedLoginAttempts {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
		if updateErr := s.admins.UpdateFields(ctx, admin.ID, updates); updateErr != nil {
			return nil, updateErr
		}
		if failedAttempts >= maxFailedLoginAttempts {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if admin.FailedLoginAttempts > 0 || admin.LockedUntil != nil {
		if err := s.admins.UpdateFields(ctx, admin.ID, map[string]any{
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}); err != nil {
			return nil, err
		}
	}

	session, raw, err := s.CreateSession(ctx, admin.ID, client)
	if err != nil {
		return nil, err
	}

	if err := s.admins.UpdateFields(ctx, admin.ID, map[string]any{"last_login": now}); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, admin.ID, "ADMIN_SIGNED_IN", client.IPAddress)

	admin.PasswordHash = ""
	return &SignInResult{Admin: admin, Session: session, Token: raw}, nil
}

// CreateSession issues a fresh session for the admin. The raw token is
// returned exactly once; only its peppered hash is persisted.
func (s *Service) CreateSession(ctx context.Context, adminID int64, client ClientContext) (*domain.Session, string, error) {
	raw, err := token.Generate(sessionTokenBytes)
	if err != nil {
		return nil, "", err
	}

	session := &domain.Session{
		AdminID:    adminID,
		SessionID:  uuid.NewString(),
		TokenHash:  token.HashWithPepper(raw, s.sessionTokenPepper),
		IsActive:   true,
		UserAgent:  client.UserAgent,
		IPAddress:  client.IPAddress,
		Location:   client.Location,
		DeviceType: client.DeviceType,
		ExpiresAt:  time.Now().Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}
	return session, raw, nil
}

// ValidateSession is the single authorization gate for protected routes.
// Expiry is computed against the clock, not the stored is_active flag, so an
// expired-but-not-yet-cleaned session is rejected just the same.
func (s *Service) ValidateSession(ctx context.Context, rawToken string) (*domain.Admin, *domain.Session, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, nil, ErrUnauthorized
	}

	hash := token.HashWithPepper(rawToken, s.sessionTokenPepper)
	session, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}

	now := time.Now()
	if !session.Usable(now) {
		return nil, nil, ErrUnauthorized
	}

	admin, err := s.admins.GetByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthorized
		}
		return nil, nil, err
	}
	if !admin.IsActive {
		return nil, nil, ErrUnauthorized
	}

	if err := s.sessions.TouchLastUsed(ctx, session.ID, now); err != nil {
		log.Printf("session_touch_failed session_id=%s err=%v", session.SessionID, err)
	}

	admin.PasswordHash = ""
	return admin, session, nil
}

func (s *Service) SignOut(ctx context.Context, rawToken string) error {
	hash := token.HashWithPepper(strings.TrimSpace(rawToken), s.sessionTokenPepper)
	session, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := s.sessions.Revoke(ctx, session.SessionID, session.AdminID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	s.appendActivity(ctx, session.AdminID, "ADMIN_SIGNED_OUT", "")
	return nil
}

// ListSessions returns the admin's active sessions with an explicit
// is_current flag matched against the session used for this request.
func (s *Service) ListSessions(ctx context.Context, adminID int64, currentSessionID string) ([]SessionView, error) {
	sessions, err := s.sessions.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]SessionView, 0, len(sessions))
	for _, sess := range sessions {
		if !sess.Usable(now) {
			continue
		}
		views = append(views, SessionView{
			SessionID:  sess.SessionID,
			UserAgent:  sess.UserAgent,
			IPAddress:  sess.IPAddress,
			Location:   sess.Location,
			DeviceType: sess.DeviceType,
			LastUsed:   sess.LastUsed,
			ExpiresAt:  sess.ExpiresAt,
			CreatedAt:  sess.CreatedAt,
			IsCurrent:  sess.SessionID == currentSessionID,
		})
	}
	return views, nil
}

// RevokeSession deactivates one of the admin's own sessions. A session that
// does not exist and a session owned by someone else are indistinguishable.
func (s *Service) RevokeSession(ctx context.Context, sessionID string, adminID int64) error {
	if err := s.sessions.Revoke(ctx, sessionID, adminID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	s.appendActivity(ctx, adminID, "SESSION_REVOKED", sessionID)
	return nil
}

func (s *Service) RevokeAllOtherSessions(ctx context.Context, adminID int64, currentSessionID string) (int64, error) {
	count, err := s.sessions.RevokeAllExcept(ctx, adminID, currentSessionID)
	if err != nil {
		return 0, err
	}
	s.appendActivity(ctx, adminID, "OTHER_SESSIONS_REVOKED", "")
	return count, nil
}

func (s *Service) GetCurrentAdmin(ctx context.Context, adminID int64) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	admin.PasswordHash = ""
	return admin, nil
}

func (s *Service) appendActivity(ctx context.Context, adminID int64, action, details string) {
	if s.activities == nil {
		return
	}
	if err := s.activities.Append(ctx, &domain.AdminActivity{
		AdminID: adminID,
		Action:  action,
		Details: details,
	}); err != nil {
		log.Printf("activity_append_failed admin_id=%d action=%s err=%v", adminID, action, err)
	}
}
