package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/BradenHooton/sentinel/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	tdb, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { tdb.Teardown(context.Background()) })

	return tdb
}

func sampleAttempt(username, sourceIP string, success bool, at time.Time) *models.LoginAttempt {
	return &models.LoginAttempt{
		Username:            username,
		SourceIP:            sourceIP,
		UserAgent:           "test-agent",
		ClientFingerprint:   "fp-test",
		PasswordFingerprint: "pw-fp-test",
		PatternScore:        0.3,
		Success:             success,
		AttemptTime:         at,
		ExpiresAt:           at.Add(24 * time.Hour),
	}
}

func TestLoginAttemptRepository_RecordAndRecentBySource(t *testing.T) {
	tdb := setupDB(t)
	repo := repositories.NewLoginAttemptRepository(tdb.DB)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)

	// Two attempts inside the window, one outside, one from another IP.
	require.NoError(t, repo.Record(ctx, sampleAttempt("alice", "10.0.0.1", false, now.Add(-30*time.Second))))
	require.NoError(t, repo.Record(ctx, sampleAttempt("bob", "10.0.0.1", true, now.Add(-10*time.Second))))
	require.NoError(t, repo.Record(ctx, sampleAttempt("alice", "10.0.0.1", false, now.Add(-10*time.Minute))))
	require.NoError(t, repo.Record(ctx, sampleAttempt("carol", "10.0.0.2", false, now.Add(-5*time.Second))))

	attempts, err := repo.RecentBySource(ctx, "10.0.0.1", now.Add(-120*time.Second))
	require.NoError(t, err)

	require.Len(t, attempts, 2)
	// Ascending by attempt time
	assert.Equal(t, "alice", attempts[0].Username)
	assert.Equal(t, "bob", attempts[1].Username)
	assert.True(t, attempts[0].AttemptTime.Before(attempts[1].AttemptTime))
	assert.Equal(t, 0.3, attempts[0].PatternScore)
}

func TestLoginAttemptRepository_FailureReasonRoundTrip(t *testing.T) {
	tdb := setupDB(t)
	repo := repositories.NewLoginAttemptRepository(tdb.DB)
	ctx := context.Background()

	now := time.Now().UTC()
	attempt := sampleAttempt("alice", "10.0.0.1", false, now)
	reason := models.FailureBlockedHighRisk
	attempt.FailureReason = &reason

	require.NoError(t, repo.Record(ctx, attempt))

	attempts, err := repo.RecentBySource(ctx, "10.0.0.1", now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.NotNil(t, attempts[0].FailureReason)
	assert.Equal(t, models.FailureBlockedHighRisk, *attempts[0].FailureReason)
}

func TestLoginAttemptRepository_RecentAllKeepsNewestUnderLimit(t *testing.T) {
	tdb := setupDB(t)
	repo := repositories.NewLoginAttemptRepository(tdb.DB)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 10; i++ {
		username := fmt.Sprintf("user%d", i)
		require.NoError(t, repo.Record(ctx, sampleAttempt(username, "10.0.0.1", false, now.Add(-time.Duration(i)*time.Second))))
	}

	attempts, err := repo.RecentAll(ctx, now.Add(-time.Minute), 5)
	require.NoError(t, err)

	// The 5 newest rows, returned oldest first.
	require.Len(t, attempts, 5)
	assert.Equal(t, "user4", attempts[0].Username)
	assert.Equal(t, "user0", attempts[4].Username)
}

func TestLoginAttemptRepository_DeleteExpired(t *testing.T) {
	tdb := setupDB(t)
	repo := repositories.NewLoginAttemptRepository(tdb.DB)
	ctx := context.Background()

	now := time.Now().UTC()

	expired := sampleAttempt("alice", "10.0.0.1", false, now.Add(-48*time.Hour))
	expired.ExpiresAt = now.Add(-24 * time.Hour)
	require.NoError(t, repo.Record(ctx, expired))
	require.NoError(t, repo.Record(ctx, sampleAttempt("bob", "10.0.0.1", false, now)))

	deleted, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.RecentBySource(ctx, "10.0.0.1", now.Add(-72*time.Hour))
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "bob", remaining[0].Username)
}

func TestAlertRepository_InsertAndRecent(t *testing.T) {
	tdb := setupDB(t)
	repo := repositories.NewAlertRepository(tdb.DB)
	ctx := context.Background()

	first := &models.Alert{
		SignatureType: models.SignatureBruteForce,
		SourceIP:      "10.0.0.1",
		Details:       "detected 7 failed login attempts from IP 10.0.0.1",
		CreatedAt:     time.Now().UTC().Add(-time.Minute),
	}
	second := &models.Alert{
		SignatureType: models.SignatureCredentialStuffing,
		SourceIP:      "10.0.0.2",
		Details:       "credential stuffing from IP 10.0.0.2: 4 distinct accounts targeted",
		CreatedAt:     time.Now().UTC(),
	}

	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))
	assert.NotEmpty(t, first.ID)

	alerts, err := repo.Recent(ctx, 10)
	require.NoError(t, err)

	require.Len(t, alerts, 2)
	// Newest first
	assert.Equal(t, models.SignatureCredentialStuffing, alerts[0].SignatureType)
	assert.Equal(t, models.SignatureBruteForce, alerts[1].SignatureType)
}

func TestUserRepository_CreateAndConflict(t *testing.T) {
	tdb := setupDB(t)
	repo := repositories.NewUserRepository(tdb.DB)
	ctx := context.Background()

	user := &models.User{Username: "alice", PasswordHash: "hash", Role: "user"}

	created, err := repo.Create(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, &models.User{Username: "alice", PasswordHash: "hash2", Role: "user"})
	assert.ErrorIs(t, err, models.ErrConflict)

	found, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
