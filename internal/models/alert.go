package models

import "time"

// SignatureType identifies the attack signature behind a detection.
type SignatureType string

const (
	SignatureBruteForce         SignatureType = "brute_force"
	SignatureCredentialStuffing SignatureType = "credential_stuffing"
	SignatureMLHighRisk         SignatureType = "ml_high_risk"
)

// DetectionEvent is an ephemeral candidate finding produced by a detector
// pass, prior to cooldown deduplication. It is discarded whether or not it
// becomes a persisted Alert.
type DetectionEvent struct {
	SignatureType SignatureType
	SourceIP      string
	Metric        float64 // failure count, targeted-username count, or risk score
	WindowStart   time.Time
	WindowEnd     time.Time
}

// Alert is a deduplicated, operator-visible security event. Written once,
// immutable thereafter.
type Alert struct {
	ID            string
	SignatureType SignatureType
	SourceIP      string
	Details       string
	CreatedAt     time.Time
}
