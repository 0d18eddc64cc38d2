package repository

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resolvedesk/internal/database"
	"resolvedesk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A file per test rather than ":memory:": the sql pool may open several
	// connections and each in-memory DSN would be its own database.
	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func seedAdmin(t *testing.T, db *gorm.DB) *domain.Admin {
	t.Helper()
	admin := &domain.Admin{
		Email:        "ada@resolvedesk.ng",
		PasswordHash: "old-hash",
		Name:         "Ada",
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, NewAdminRepository(db).Create(context.Background(), admin))
	return admin
}

func seedSession(t *testing.T, db *gorm.DB, adminID int64, sessionID string) {
	t.Helper()
	require.NoError(t, NewSessionRepository(db).Create(context.Background(), &domain.Session{
		AdminID:   adminID,
		SessionID: sessionID,
		TokenHash: "hash-" + sessionID,
		IsActive:  true,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func TestPasswordResetRepository_ConsumeIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	seedSession(t, db, admin.ID, "sess-a")
	seedSession(t, db, admin.ID, "sess-b")

	resets := NewPasswordResetRepository(db)
	reset := &domain.PasswordReset{
		AdminID:   admin.ID,
		TokenHash: "reset-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, resets.Create(ctx, reset))

	require.NoError(t, resets.ConsumeAndResetPassword(ctx, reset.ID, admin.ID, "new-hash"))

	// Password updated and every session revoked in the same commit.
	reloaded, err := NewAdminRepository(db).GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)

	active, err := NewSessionRepository(db).ListByAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	consumed, err := resets.GetByTokenHash(ctx, "reset-hash")
	require.NoError(t, err)
	assert.True(t, consumed.IsUsed)
	assert.NotNil(t, consumed.UsedAt)

	// Replaying the same token fails instead of double-applying.
	err = resets.ConsumeAndResetPassword(ctx, reset.ID, admin.ID, "another-hash")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	reloaded, err = NewAdminRepository(db).GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)
}

func TestSessionRepository_RevokeEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	seedSession(t, db, admin.ID, "sess-a")

	sessions := NewSessionRepository(db)

	// Someone else's admin id cannot revoke the session.
	err := sessions.Revoke(ctx, "sess-a", admin.ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, sessions.Revoke(ctx, "sess-a", admin.ID))

	// Revoking twice reads as not found: the row is no longer active.
	err = sessions.Revoke(ctx, "sess-a", admin.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRepository_RevokeAllExceptKeepsCurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	seedSession(t, db, admin.ID, "current")
	seedSession(t, db, admin.ID, "other-1")
	seedSession(t, db, admin.ID, "other-2")

	sessions := NewSessionRepository(db)
	count, err := sessions.RevokeAllExcept(ctx, admin.ID, "current")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	active, err := sessions.ListByAdmin(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "current", active[0].SessionID)
}

func TestAdminRepository_UpdatePasswordAndRevokeSessions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := seedAdmin(t, db)
	seedSession(t, db, admin.ID, "current")
	seedSession(t, db, admin.ID, "other")

	admins := NewAdminRepository(db)
	require.NoError(t, admins.UpdatePasswordAndRevokeSessions(ctx, admin.ID, "new-hash", "current"))

	reloaded, err := admins.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)

	active, err := NewSessionRepository(db).ListByAdmin(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "current", active[0].SessionID)
}

func TestRateLimitRepository_NoOverAdmission(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	windows := NewRateLimitRepository(db)
	windowStart := (time.Now().Unix() / 60) * 60
	windowEnd := windowStart + 60
	limit := 3

	admitted := 0
	for i := 0; i < limit+2; i++ {
		allowed, count, err := windows.IncrementIfBelow(ctx, 1, "/apis/v1/centers", windowStart, windowEnd, limit)
		require.NoError(t, err)
		if allowed {
			admitted++
		}
		assert.LessOrEqual(t, count, limit)
	}

	assert.Equal(t, limit, admitted)

	// Rejected requests did not consume quota: the stored count equals the
	// limit exactly.
	count, err := windows.Count(ctx, 1, "/apis/v1/centers", windowStart)
	require.NoError(t, err)
	assert.Equal(t, limit, count)
}

func TestRateLimitRepository_ConcurrentNoOverAdmission(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	windows := NewRateLimitRepository(db)
	windowStart := (time.Now().Unix() / 60) * 60
	windowEnd := windowStart + 60
	limit := 5

	var admitted int64
	errs := make(chan error, 20)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, err := windows.IncrementIfBelow(ctx, 1, "/apis/v1/centers", windowStart, windowEnd, limit)
			if err != nil {
				errs <- err
				return
			}
			if allowed {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// The conditional update admits exactly the limit under contention.
	assert.EqualValues(t, limit, admitted)

	count, err := windows.Count(ctx, 1, "/apis/v1/centers", windowStart)
	require.NoError(t, err)
	assert.Equal(t, limit, count)
}

func TestRateLimitRepository_SeparateWindowsPerEndpoint(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	windows := NewRateLimitRepository(db)
	windowStart := (time.Now().Unix() / 60) * 60
	windowEnd := windowStart + 60

	allowed, _, err := windows.IncrementIfBelow(ctx, 1, "/apis/v1/centers", windowStart, windowEnd, 1)
	require.NoError(t, err)
	assert.True(t, allowed)

	// The first endpoint is now full, a second endpoint has its own bucket.
	allowed, _, err = windows.IncrementIfBelow(ctx, 1, "/apis/v1/centers", windowStart, windowEnd, 1)
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _, err = windows.IncrementIfBelow(ctx, 1, "/apis/v1/stats", windowStart, windowEnd, 1)
	require.NoError(t, err)
	assert.True(t, allowed)
}
