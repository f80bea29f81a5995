package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
)

// AttemptReader reads recent login attempts across all sources
type AttemptReader interface {
	RecentAll(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error)
}

// AlertReader reads recently persisted alerts
type AlertReader interface {
	Recent(ctx context.Context, limit int) ([]models.Alert, error)
}

// DashboardService exposes read-only monitoring views over attempts and
// alerts.
type DashboardService struct {
	attempts AttemptReader
	alerts   AlertReader
	window   time.Duration
	logger   *slog.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(attempts AttemptReader, alerts AlertReader, window time.Duration, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		attempts: attempts,
		alerts:   alerts,
		window:   window,
		logger:   logger,
	}
}

// AttemptResponse represents a login attempt in the HTTP response. The
// password fingerprint is truncated so operators can correlate reuse across
// attempts without the full digest leaving the store.
type AttemptResponse struct {
	ID                  int64   `json:"id"`
	Username            string  `json:"username"`
	SourceIP            string  `json:"source_ip"`
	UserAgent           string  `json:"user_agent"`
	ClientFingerprint   string  `json:"client_fingerprint"`
	PasswordFingerprint string  `json:"password_fingerprint"`
	PatternScore        float64 `json:"pattern_score"`
	Success             bool    `json:"success"`
	FailureReason       *string `json:"failure_reason,omitempty"`
	AttemptTime         string  `json:"attempt_time"`
}

// fingerprintPreviewLen is how many hex characters of the password
// fingerprint the dashboard exposes.
const fingerprintPreviewLen = 10

func truncateFingerprint(fp string) string {
	if len(fp) <= fingerprintPreviewLen {
		return fp
	}
	return fp[:fingerprintPreviewLen]
}

// AlertResponse represents an alert in the HTTP response
type AlertResponse struct {
	ID            string `json:"id"`
	SignatureType string `json:"signature_type"`
	SourceIP      string `json:"source_ip"`
	Details       string `json:"details"`
	CreatedAt     string `json:"created_at"`
}

// RecentAttempts returns the newest attempts inside the detection window.
func (s *DashboardService) RecentAttempts(ctx context.Context, limit int) ([]AttemptResponse, error) {
	since := time.Now().Add(-s.window)

	attempts, err := s.attempts.RecentAll(ctx, since, limit)
	if err != nil {
		s.logger.Error("failed to load recent attempts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]AttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		responses = append(responses, AttemptResponse{
			ID:                  a.ID,
			Username:            a.Username,
			SourceIP:            a.SourceIP,
			UserAgent:           a.UserAgent,
			ClientFingerprint:   a.ClientFingerprint,
			PasswordFingerprint: truncateFingerprint(a.PasswordFingerprint),
			PatternScore:        a.PatternScore,
			Success:             a.Success,
			FailureReason:       a.FailureReason,
			AttemptTime:         a.AttemptTime.Format(time.RFC3339),
		})
	}

	return responses, nil
}

// RecentAlerts returns the newest persisted alerts.
func (s *DashboardService) RecentAlerts(ctx context.Context, limit int) ([]AlertResponse, error) {
	alerts, err := s.alerts.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("failed to load recent alerts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	responses := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		responses = append(responses, AlertResponse{
			ID:            a.ID,
			SignatureType: string(a.SignatureType),
			SourceIP:      a.SourceIP,
			Details:       a.Details,
			CreatedAt:     a.CreatedAt.Format(time.RFC3339),
		})
	}

	return responses, nil
}
