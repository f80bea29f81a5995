package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	Username      string
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
	RiskScore     int
	Action        string
}

// AuditLogger writes the operator-facing audit trail: login outcomes plus
// warn and block decisions from the risk engine. Warn decisions are never
// shown to the authenticating user; this trail is where they land.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt logs the outcome of an authentication attempt.
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.Username != "" {
		attrs = append(attrs, slog.String("username", MaskUsername(event.Username)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogRiskDecision records a warn or block decision for the audit trail.
func (al *AuditLogger) LogRiskDecision(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "risk_decision"),
		slog.String("action", event.Action),
		slog.Int("risk_score", event.RiskScore),
		slog.String("ip_address", event.IPAddress),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("username", MaskUsername(event.Username)))
	}

	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
}
