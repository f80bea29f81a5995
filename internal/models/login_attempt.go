package models

import "time"

// LoginAttempt represents a single login attempt in the system. Rows are
// append-only; the detection engine only ever reads them back in time order.
type LoginAttempt struct {
	ID                  int64
	Username            string
	SourceIP            string
	UserAgent           string
	ClientFingerprint   string
	PasswordFingerprint string
	PatternScore        float64 // 0-1 predictability signal, supplied at login time
	Success             bool
	FailureReason       *string
	AttemptTime         time.Time
	ExpiresAt           time.Time
}

// Failure reasons recorded on failed attempts
const (
	FailureInvalidCredentials = "invalid_credentials"
	FailureUnknownUser        = "unknown_user"
	FailureBlockedHighRisk    = "blocked_high_risk"
	FailureStoreError         = "store_error"
)
