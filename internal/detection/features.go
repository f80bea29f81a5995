package detection

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
)

// AttemptStore is the narrow read interface the engine consumes from the
// attempt log. Reads are ordered ascending by attempt time.
type AttemptStore interface {
	RecentBySource(ctx context.Context, sourceIP string, since time.Time) ([]models.LoginAttempt, error)
	RecentAll(ctx context.Context, since time.Time, limit int) ([]models.LoginAttempt, error)
}

// totalAttemptsCap bounds the raw attempt count fed to the model.
const totalAttemptsCap = 10000

// Extractor computes the behavioral feature vector for one source IP over
// the configured detection window. Read-only against the attempt store.
type Extractor struct {
	store  AttemptStore
	window time.Duration
	now    func() time.Time
}

// NewExtractor creates an Extractor. A nil clock defaults to time.Now.
func NewExtractor(store AttemptStore, window time.Duration, clock func() time.Time) *Extractor {
	if clock == nil {
		clock = time.Now
	}
	return &Extractor{store: store, window: window, now: clock}
}

// Extract fetches the window for sourceIP and computes its feature vector.
// A non-nil pending attempt is included in the window before aggregation, so
// the decision gate evaluates self-inclusively. The fetched attempts are
// returned alongside the vector for callers that run pattern rules on the
// same window.
func (e *Extractor) Extract(ctx context.Context, sourceIP string, pending *models.LoginAttempt) (models.FeatureVector, []models.LoginAttempt, error) {
	since := e.now().Add(-e.window)

	attempts, err := e.store.RecentBySource(ctx, sourceIP, since)
	if err != nil {
		return models.FeatureVector{}, nil, err
	}

	if pending != nil {
		attempts = append(attempts, *pending)
	}

	return BuildVector(attempts, e.window), attempts, nil
}

// BuildVector aggregates a window of attempts for one source into the fixed
// eight-dimension feature vector. An empty window yields the zero vector,
// which callers must treat as the short-circuit case.
func BuildVector(attempts []models.LoginAttempt, window time.Duration) models.FeatureVector {
	total := len(attempts)
	if total == 0 {
		return models.FeatureVector{}
	}

	var failures, successes int
	usernames := make(map[string]struct{})
	fingerprints := make(map[string]struct{})
	patternSum := 0.0
	times := make([]time.Time, 0, total)

	for _, a := range attempts {
		if a.Success {
			successes++
		} else {
			failures++
		}
		usernames[a.Username] = struct{}{}
		fingerprints[a.ClientFingerprint] = struct{}{}
		patternSum += a.PatternScore
		times = append(times, a.AttemptTime)
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	return models.FeatureVector{
		FailedRate:        float64(failures) / float64(total),
		UniqueUsernames:   float64(len(usernames)),
		AttemptsPerMinute: attemptsPerMinute(times),
		TimeVariance:      interArrivalSpread(times),
		UADiversity:       float64(len(fingerprints)) / float64(total),
		PatternScore:      patternSum / float64(total),
		SuccessRate:       float64(successes) / float64(total),
		TotalAttempts:     math.Min(float64(total), totalAttemptsCap),
	}
}

// attemptsPerMinute divides the count by the actual elapsed span of the
// window contents, with a 6-second floor so bursts don't divide by zero.
// A single attempt has no span and rates as 0.
func attemptsPerMinute(sorted []time.Time) float64 {
	if len(sorted) < 2 {
		return 0
	}
	span := sorted[len(sorted)-1].Sub(sorted[0]).Minutes()
	return float64(len(sorted)) / math.Max(span, 0.1)
}

// interArrivalSpread returns the standard deviation of the gaps between
// consecutive attempts, in seconds. Zero is meaningful: machine-paced bursts
// have no jitter. Fewer than two attempts yield 0 as well.
func interArrivalSpread(sorted []time.Time) float64 {
	if len(sorted) < 2 {
		return 0
	}

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Sub(sorted[i-1]).Seconds())
	}

	mean := 0.0
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))

	variance := 0.0
	for _, g := range gaps {
		variance += (g - mean) * (g - mean)
	}
	variance /= float64(len(gaps))

	return math.Sqrt(variance)
}
