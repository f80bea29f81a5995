// Package alerts deduplicates detection events and persists the survivors
// as operator-visible alerts.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
)

// AlertStore is the write interface of the external alert store.
type AlertStore interface {
	Insert(ctx context.Context, alert *models.Alert) error
}

type cooldownKey struct {
	sourceIP  string
	signature models.SignatureType
}

// Manager suppresses repeat detections of the same signature from the same
// source within the cooldown interval. The cooldown map is shared between
// the periodic scheduler and the request-time gate; all read-modify-write
// happens under one lock so two near-simultaneous events for a key can never
// both pass the stale check.
type Manager struct {
	store    AlertStore
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	lastAlerted map[cooldownKey]time.Time
}

// NewManager creates a Manager. A nil clock defaults to time.Now.
func NewManager(store AlertStore, cooldown time.Duration, logger *slog.Logger, clock func() time.Time) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		store:       store,
		cooldown:    cooldown,
		logger:      logger,
		now:         clock,
		lastAlerted: make(map[cooldownKey]time.Time),
	}
}

// Report persists an alert for the event unless the (source, signature) key
// alerted within the cooldown interval, in which case the event is dropped
// silently. The cooldown timestamp refreshes only after the insert succeeds,
// so a storage hiccup never swallows an attack signal.
func (m *Manager) Report(ctx context.Context, event models.DetectionEvent) error {
	key := cooldownKey{sourceIP: event.SourceIP, signature: event.SignatureType}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.lastAlerted[key]; ok && now.Sub(last) < m.cooldown {
		return nil
	}

	alert := &models.Alert{
		SignatureType: event.SignatureType,
		SourceIP:      event.SourceIP,
		Details:       describe(event),
		CreatedAt:     now,
	}

	if err := m.store.Insert(ctx, alert); err != nil {
		return fmt.Errorf("failed to persist alert: %w", err)
	}

	m.lastAlerted[key] = now
	m.pruneLocked(now)

	m.logger.Warn("security alert raised",
		slog.String("signature_type", string(event.SignatureType)),
		slog.String("source_ip", event.SourceIP),
		slog.Float64("metric", event.Metric),
	)

	return nil
}

// describe renders the operator-facing summary, embedding the triggering
// metric so dashboards can show why the alert fired.
func describe(event models.DetectionEvent) string {
	switch event.SignatureType {
	case models.SignatureBruteForce:
		return fmt.Sprintf("detected %.0f failed login attempts from IP %s", event.Metric, event.SourceIP)
	case models.SignatureCredentialStuffing:
		return fmt.Sprintf("credential stuffing from IP %s: %.0f distinct accounts targeted", event.SourceIP, event.Metric)
	case models.SignatureMLHighRisk:
		return fmt.Sprintf("risk model scored IP %s at %.0f/100", event.SourceIP, event.Metric)
	default:
		return fmt.Sprintf("detection from IP %s (metric %.0f)", event.SourceIP, event.Metric)
	}
}

// pruneLocked drops entries stale for well over a cooldown. Opportunistic;
// called with the lock held.
func (m *Manager) pruneLocked(now time.Time) {
	horizon := 2 * m.cooldown
	for key, last := range m.lastAlerted {
		if now.Sub(last) > horizon {
			delete(m.lastAlerted, key)
		}
	}
}
