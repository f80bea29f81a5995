package background

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/sentinel/internal/detection"
	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAttemptStore implements detection.AttemptStore for testing
type mockAttemptStore struct {
	RecentAllFunc func(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error)
}

func (m *mockAttemptStore) RecentBySource(ctx context.Context, sourceIP string, since time.Time) ([]models.LoginAttempt, error) {
	return nil, nil
}

func (m *mockAttemptStore) RecentAll(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error) {
	if m.RecentAllFunc != nil {
		return m.RecentAllFunc(ctx, since, limit)
	}
	return nil, nil
}

// mockAlertSink implements detection.AlertSink for testing
type mockAlertSink struct {
	mu     sync.Mutex
	events []models.DetectionEvent
}

func (m *mockAlertSink) Report(ctx context.Context, event models.DetectionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockAlertSink) snapshot() []models.DetectionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.DetectionEvent(nil), m.events...)
}

func testSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:  5 * time.Second,
		Lookback:  120 * time.Second,
		ScanLimit: 1000,
	}
}

func failedAt(username, ip string, at time.Time) models.LoginAttempt {
	return models.LoginAttempt{
		Username:    username,
		SourceIP:    ip,
		Success:     false,
		AttemptTime: at,
	}
}

func newTestScheduler(store detection.AttemptStore, sink detection.AlertSink, config SchedulerConfig, clock func() time.Time) *Scheduler {
	detector := detection.NewPatternDetector(detection.PatternConfig{
		BruteWindow:    120 * time.Second,
		BruteThreshold: 5,
		StuffWindow:    60 * time.Second,
		StuffThreshold: 4,
	})
	return NewScheduler(store, detector, nil, sink, config, slog.Default(), clock)
}

func TestScheduler_PassDetectsPerSource(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	// One attacking source among quiet ones.
	attempts := []models.LoginAttempt{
		failedAt("alice", "192.0.2.7", now.Add(-30*time.Second)),
	}
	for i := 0; i < 6; i++ {
		attempts = append(attempts, failedAt("admin", "10.0.0.1", now.Add(-time.Duration(i*10)*time.Second)))
	}

	store := &mockAttemptStore{
		RecentAllFunc: func(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error) {
			assert.Equal(t, now.Add(-120*time.Second), since)
			assert.Equal(t, 1000, limit)
			return attempts, nil
		},
	}
	sink := &mockAlertSink{}

	scheduler := newTestScheduler(store, sink, testSchedulerConfig(), clock)
	scheduler.runPass(context.Background())

	events := sink.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, models.SignatureBruteForce, events[0].SignatureType)
	assert.Equal(t, "10.0.0.1", events[0].SourceIP)
	assert.Equal(t, 6.0, events[0].Metric)
}

func TestScheduler_StoreErrorSkipsPass(t *testing.T) {
	store := &mockAttemptStore{
		RecentAllFunc: func(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error) {
			return nil, errors.New("scan timeout")
		},
	}
	sink := &mockAlertSink{}

	scheduler := newTestScheduler(store, sink, testSchedulerConfig(), nil)
	scheduler.runPass(context.Background())

	assert.Empty(t, sink.snapshot())
}

func TestScheduler_SlowStoreIsCutOffByInterval(t *testing.T) {
	config := testSchedulerConfig()
	config.Interval = 20 * time.Millisecond

	store := &mockAttemptStore{
		RecentAllFunc: func(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error) {
			// Simulate a store read that outlives the pass deadline.
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	sink := &mockAlertSink{}

	scheduler := newTestScheduler(store, sink, config, nil)

	done := make(chan struct{})
	go func() {
		scheduler.runPass(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pass did not respect its deadline")
	}

	assert.Empty(t, sink.snapshot())
}

func TestScheduler_AggregateScoringRaisesHighRisk(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	config := testSchedulerConfig()
	config.AggregateScoring = true

	attempts := make([]models.LoginAttempt, 0, 10)
	for i := 0; i < 10; i++ {
		attempts = append(attempts, failedAt("admin", "10.0.0.1", now.Add(-time.Duration(i)*time.Second)))
	}
	store := &mockAttemptStore{
		RecentAllFunc: func(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error) {
			return attempts, nil
		},
	}
	sink := &mockAlertSink{}

	model, err := detection.LoadModel("", slog.Default())
	require.NoError(t, err)
	classifier := detection.NewClassifier(model, detection.ClassifierConfig{
		BaseRisk: map[models.Classification]int{
			models.ClassNormal:             0,
			models.ClassSuspicious:         60,
			models.ClassCredentialStuffing: 85,
			models.ClassBruteForce:         95,
		},
		WarnThreshold:  60,
		BlockThreshold: 90,
	}, slog.Default())

	detector := detection.NewPatternDetector(detection.PatternConfig{
		BruteWindow:    120 * time.Second,
		BruteThreshold: 5,
		StuffWindow:    60 * time.Second,
		StuffThreshold: 4,
	})
	scheduler := NewScheduler(store, detector, classifier, sink, config, slog.Default(), clock)
	scheduler.runPass(context.Background())

	events := sink.snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, models.SignatureBruteForce, events[0].SignatureType)
	assert.Equal(t, models.SignatureMLHighRisk, events[1].SignatureType)
}

func TestScheduler_StartStop(t *testing.T) {
	config := testSchedulerConfig()
	config.Interval = 10 * time.Millisecond

	var calls int
	var mu sync.Mutex
	store := &mockAttemptStore{
		RecentAllFunc: func(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return nil, nil
		},
	}

	scheduler := newTestScheduler(store, &mockAlertSink{}, config, nil)

	done := make(chan struct{})
	go func() {
		scheduler.Start(context.Background())
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	scheduler.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, calls, 2)
}
