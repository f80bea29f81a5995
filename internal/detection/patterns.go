package detection

import (
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
)

// PatternConfig holds the threshold rules for the window-based detectors.
type PatternConfig struct {
	BruteWindow    time.Duration
	BruteThreshold int
	StuffWindow    time.Duration
	StuffThreshold int
}

// PatternDetector evaluates the brute-force and credential-stuffing rules
// over a window of attempts for one source IP. Stateless per call; both
// rules are evaluated independently and may fire in the same pass.
type PatternDetector struct {
	config PatternConfig
}

func NewPatternDetector(config PatternConfig) *PatternDetector {
	return &PatternDetector{config: config}
}

// Detect runs both rules against the attempts observed for sourceIP.
// Thresholds are inclusive: a window holding exactly the threshold count
// fires.
func (d *PatternDetector) Detect(now time.Time, sourceIP string, attempts []models.LoginAttempt) []models.DetectionEvent {
	events := make([]models.DetectionEvent, 0, 2)

	bruteSince := now.Add(-d.config.BruteWindow)
	failedCount := 0
	for _, a := range attempts {
		if !a.Success && !a.AttemptTime.Before(bruteSince) {
			failedCount++
		}
	}
	if failedCount >= d.config.BruteThreshold {
		events = append(events, models.DetectionEvent{
			SignatureType: models.SignatureBruteForce,
			SourceIP:      sourceIP,
			Metric:        float64(failedCount),
			WindowStart:   bruteSince,
			WindowEnd:     now,
		})
	}

	stuffSince := now.Add(-d.config.StuffWindow)
	targeted := make(map[string]struct{})
	for _, a := range attempts {
		if !a.Success && !a.AttemptTime.Before(stuffSince) {
			targeted[a.Username] = struct{}{}
		}
	}
	if len(targeted) >= d.config.StuffThreshold {
		events = append(events, models.DetectionEvent{
			SignatureType: models.SignatureCredentialStuffing,
			SourceIP:      sourceIP,
			Metric:        float64(len(targeted)),
			WindowStart:   stuffSince,
			WindowEnd:     now,
		})
	}

	return events
}
