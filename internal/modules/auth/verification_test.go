package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"resolvedesk/internal/database"
	"resolvedesk/internal/domain"
	"resolvedesk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureMailer records the last verification code instead of sending it.
type captureMailer struct {
	lastEmail string
	lastCode  string
}

func (m *captureMailer) SendVerificationCode(_ context.Context, email, code string) error {
	m.lastEmail = email
	m.lastCode = code
	return nil
}

func newVerificationFixture(t *testing.T) (*Service, *captureMailer, *domain.Admin) {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	admins := repository.NewAdminRepository(db)
	admin := &domain.Admin{
		Email:        "ada@resolvedesk.ng",
		PasswordHash: "hash",
		Name:         "Ada",
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, admins.Create(context.Background(), admin))

	mail := &captureMailer{}
	service := NewService(
		admins,
		repository.NewSessionRepository(db),
		repository.NewActivityRepository(db),
		mail,
		24*time.Hour,
		"session-pepper",
		"code-pepper",
		5*time.Minute,
		time.Minute,
	)
	return service, mail, admin
}

func TestService_EmailVerification_FullFlow(t *testing.T) {
	service, mail, admin := newVerificationFixture(t)
	ctx := context.Background()

	result, err := service.RequestEmailVerification(ctx, admin.Email)
	require.NoError(t, err)
	assert.Equal(t, "sent", result.Status)
	assert.Equal(t, admin.Email, mail.lastEmail)
	require.Regexp(t, `^\d{6}$`, mail.lastCode)

	require.NoError(t, service.ConfirmEmailVerification(ctx, admin.Email, mail.lastCode))

	verified, err := service.GetCurrentAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)

	// Confirming again is a no-op, not an error.
	assert.NoError(t, service.ConfirmEmailVerification(ctx, admin.Email, mail.lastCode))
}

func TestService_EmailVerification_WrongCodeCountsAttempt(t *testing.T) {
	service, mail, admin := newVerificationFixture(t)
	ctx := context.Background()

	_, err := service.RequestEmailVerification(ctx, admin.Email)
	require.NoError(t, err)

	wrong := "000000"
	if mail.lastCode == wrong {
		wrong = "000001"
	}

	for i := 0; i < 5; i++ {
		err := service.ConfirmEmailVerification(ctx, admin.Email, wrong)
		assert.ErrorIs(t, err, ErrCodeInvalid)
	}

	// Attempt cap: even the right code is rejected now.
	err = service.ConfirmEmailVerification(ctx, admin.Email, mail.lastCode)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestService_EmailVerification_ResendCooldown(t *testing.T) {
	service, _, admin := newVerificationFixture(t)
	ctx := context.Background()

	_, err := service.RequestEmailVerification(ctx, admin.Email)
	require.NoError(t, err)

	_, err = service.RequestEmailVerification(ctx, admin.Email)
	assert.ErrorIs(t, err, ErrResendCooldown)
}

func TestService_EmailVerification_UnknownEmailDoesNotProbe(t *testing.T) {
	service, mail, _ := newVerificationFixture(t)

	result, err := service.RequestEmailVerification(context.Background(), "nobody@resolvedesk.ng")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
	assert.Empty(t, mail.lastCode)
}

func TestService_EmailVerification_MalformedCode(t *testing.T) {
	service, _, admin := newVerificationFixture(t)

	err := service.ConfirmEmailVerification(context.Background(), admin.Email, "abc123")
	assert.ErrorIs(t, err, ErrCodeInvalid)
}
