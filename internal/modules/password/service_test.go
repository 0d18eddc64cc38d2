package password

import (
	"context"
	"errors"
	"testing"
	"time"

	"resolvedesk/internal/domain"
	"resolvedesk/internal/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockAdminReader struct {
	mock.Mock
}

func (m *mockAdminReader) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *mockAdminReader) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *mockAdminReader) UpdatePasswordAndRevokeSessions(ctx context.Context, adminID int64, newHash, keepSessionID string) error {
	args := m.Called(ctx, adminID, newHash, keepSessionID)
	return args.Error(0)
}

type mockResetStore struct {
	mock.Mock
}

func (m *mockResetStore) Create(ctx context.Context, p *domain.PasswordReset) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockResetStore) GetByTokenHash(ctx context.Context, hash string) (*domain.PasswordReset, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordReset), args.Error(1)
}

func (m *mockResetStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockResetStore) ConsumeAndResetPassword(ctx context.Context, resetID, adminID int64, newHash string) error {
	args := m.Called(ctx, resetID, adminID, newHash)
	return args.Error(0)
}

type mockActivityWriter struct {
	mock.Mock
}

func (m *mockActivityWriter) Append(ctx context.Context, a *domain.AdminActivity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, email, resetLink string) error {
	args := m.Called(ctx, email, resetLink)
	return args.Error(0)
}

func (m *mockMailer) SendPasswordChanged(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

const testPepper = "test-pepper"

func newTestService(admins *mockAdminReader, resets *mockResetStore, activities *mockActivityWriter, mail *mockMailer, keepCurrent bool) *Service {
	return NewService(admins, resets, activities, mail, "http://localhost:3000", time.Hour, testPepper, keepCurrent)
}

func activeAdmin() *domain.Admin {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Curr3nt!pass"), bcrypt.DefaultCost)
	return &domain.Admin{
		ID:           7,
		Email:        "ada@resolvedesk.ng",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func TestService_RequestReset_UnknownEmailLooksIdentical(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	admins.On("GetByEmail", mock.Anything, "nobody@resolvedesk.ng").Return(nil, gorm.ErrRecordNotFound)
	admins.On("GetByEmail", mock.Anything, "ada@resolvedesk.ng").Return(activeAdmin(), nil)
	resets.On("Create", mock.Anything, mock.Anything).Return(nil)
	mail.On("SendPasswordReset", mock.Anything, "ada@resolvedesk.ng", mock.Anything).Return(nil)
	activities.On("Append", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(admins, resets, activities, mail, false)

	unknown, err := service.RequestReset(context.Background(), "nobody@resolvedesk.ng")
	assert.NoError(t, err)
	known, err := service.RequestReset(context.Background(), "ada@resolvedesk.ng")
	assert.NoError(t, err)

	// Anti-enumeration: both responses are byte-identical.
	assert.Equal(t, unknown, known)
	assert.True(t, unknown.Success)

	resets.AssertNumberOfCalls(t, "Create", 1)
}

func TestService_RequestReset_InactiveAccountNoToken(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	inactive := activeAdmin()
	inactive.IsActive = false
	admins.On("GetByEmail", mock.Anything, "ada@resolvedesk.ng").Return(inactive, nil)

	service := newTestService(admins, resets, activities, mail, false)

	result, err := service.RequestReset(context.Background(), "ada@resolvedesk.ng")
	assert.NoError(t, err)
	assert.True(t, result.Success)

	resets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mail.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_RequestReset_MailFailureRollsBackToken(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	admins.On("GetByEmail", mock.Anything, "ada@resolvedesk.ng").Return(activeAdmin(), nil)
	resets.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.PasswordReset).ID = 42
	}).Return(nil)
	mail.On("SendPasswordReset", mock.Anything, "ada@resolvedesk.ng", mock.Anything).Return(errors.New("smtp down"))
	resets.On("Delete", mock.Anything, int64(42)).Return(nil)

	service := newTestService(admins, resets, activities, mail, false)

	result, err := service.RequestReset(context.Background(), "ada@resolvedesk.ng")
	assert.Error(t, err)
	assert.False(t, result.Success)

	resets.AssertCalled(t, "Delete", mock.Anything, int64(42))
}

func TestService_VerifyResetToken_ExpiryBoundary(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	raw := "deadbeef"
	hash := token.HashWithPepper(raw, testPepper)
	resets.On("GetByTokenHash", mock.Anything, hash).Return(&domain.PasswordReset{
		ID:        1,
		AdminID:   7,
		TokenHash: hash,
		ExpiresAt: time.Now(), // now >= expiresAt is expired
	}, nil)

	service := newTestService(admins, resets, activities, mail, false)

	check, err := service.VerifyResetToken(context.Background(), raw)
	assert.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, "Reset token has expired", check.Message)
}

func TestService_VerifyResetToken_AlreadyUsed(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	raw := "deadbeef"
	hash := token.HashWithPepper(raw, testPepper)
	resets.On("GetByTokenHash", mock.Anything, hash).Return(&domain.PasswordReset{
		ID:        1,
		AdminID:   7,
		TokenHash: hash,
		IsUsed:    true,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	service := newTestService(admins, resets, activities, mail, false)

	check, err := service.VerifyResetToken(context.Background(), raw)
	assert.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, "Reset token has already been used", check.Message)
}

func TestService_ResetWithToken_Success(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	raw := "deadbeef"
	hash := token.HashWithPepper(raw, testPepper)
	resets.On("GetByTokenHash", mock.Anything, hash).Return(&domain.PasswordReset{
		ID:        9,
		AdminID:   7,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	admins.On("GetByID", mock.Anything, int64(7)).Return(activeAdmin(), nil)
	resets.On("ConsumeAndResetPassword", mock.Anything, int64(9), int64(7), mock.Anything).Return(nil)
	mail.On("SendPasswordChanged", mock.Anything, "ada@resolvedesk.ng").Return(nil)
	activities.On("Append", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(admins, resets, activities, mail, false)

	result, err := service.ResetWithToken(context.Background(), raw, "N3w!secret")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Password has been reset successfully", result.Message)

	resets.AssertExpectations(t)
}

func TestService_ResetWithToken_ReplayRaceReportsUsed(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	raw := "deadbeef"
	hash := token.HashWithPepper(raw, testPepper)
	resets.On("GetByTokenHash", mock.Anything, hash).Return(&domain.PasswordReset{
		ID:        9,
		AdminID:   7,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	admins.On("GetByID", mock.Anything, int64(7)).Return(activeAdmin(), nil)
	// A concurrent consume already flipped is_used; the conditional update
	// matches zero rows.
	resets.On("ConsumeAndResetPassword", mock.Anything, int64(9), int64(7), mock.Anything).Return(gorm.ErrRecordNotFound)

	service := newTestService(admins, resets, activities, mail, false)

	result, err := service.ResetWithToken(context.Background(), raw, "N3w!secret")
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Reset token has already been used", result.Message)
}

func TestService_ResetWithToken_WeakPasswordRejectedBeforeTokenCheck(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	service := newTestService(admins, resets, activities, mail, false)

	result, err := service.ResetWithToken(context.Background(), "whatever", "weak")
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Password must be at least 8 characters long", result.Message)

	resets.AssertNotCalled(t, "GetByTokenHash", mock.Anything, mock.Anything)
}

func TestService_ChangePassword_Success_RevokesAllSessions(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	admins.On("GetByID", mock.Anything, int64(7)).Return(activeAdmin(), nil)
	// Default config: the caller's own session does not survive.
	admins.On("UpdatePasswordAndRevokeSessions", mock.Anything, int64(7), mock.Anything, "").Return(nil)
	mail.On("SendPasswordChanged", mock.Anything, "ada@resolvedesk.ng").Return(nil)
	activities.On("Append", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(admins, resets, activities, mail, false)

	result, err := service.ChangePassword(context.Background(), 7, "Curr3nt!pass", "N3w!secret", "sess-1")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Password changed successfully", result.Message)

	admins.AssertCalled(t, "UpdatePasswordAndRevokeSessions", mock.Anything, int64(7), mock.Anything, "")
}

func TestService_ChangePassword_KeepCurrentSession(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	admins.On("GetByID", mock.Anything, int64(7)).Return(activeAdmin(), nil)
	admins.On("UpdatePasswordAndRevokeSessions", mock.Anything, int64(7), mock.Anything, "sess-1").Return(nil)
	mail.On("SendPasswordChanged", mock.Anything, "ada@resolvedesk.ng").Return(nil)
	activities.On("Append", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(admins, resets, activities, mail, true)

	result, err := service.ChangePassword(context.Background(), 7, "Curr3nt!pass", "N3w!secret", "sess-1")
	assert.NoError(t, err)
	assert.True(t, result.Success)

	admins.AssertCalled(t, "UpdatePasswordAndRevokeSessions", mock.Anything, int64(7), mock.Anything, "sess-1")
}

func TestService_ChangePassword_WrongCurrentNoRevocation(t *testing.T) {
	admins := new(mockAdminReader)
	resets := new(mockResetStore)
	activities := new(mockActivityWriter)
	mail := new(mockMailer)

	admins.On("GetByID", mock.Anything, int64(7)).Return(activeAdmin(), nil)

	service := newTestService(admins, resets, activities, mail, false)

	result, err := service.ChangePassword(context.Background(), 7, "wrong-guess", "N3w!secret", "sess-1")
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Current password is incorrect", result.Message)

	admins.AssertNotCalled(t, "UpdatePasswordAndRevokeSessions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mail.AssertNotCalled(t, "SendPasswordChanged", mock.Anything, mock.Anything)
}
