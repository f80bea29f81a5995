package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/sentinel/internal/detection"
	"github.com/BradenHooton/sentinel/internal/models"
)

// SchedulerConfig tunes the periodic detection loop.
type SchedulerConfig struct {
	Interval         time.Duration
	Lookback         time.Duration // window fetched per pass
	ScanLimit        int           // bound on rows read per pass
	AggregateScoring bool          // also classify each active source per pass
}

// Scheduler periodically scans the recent attempt window, runs the pattern
// rules per active source IP, and routes findings through the alert manager.
// Passes run one at a time on a single goroutine: if a pass overruns the
// interval, the missed tick is dropped rather than run concurrently.
type Scheduler struct {
	store      detection.AttemptStore
	detector   *detection.PatternDetector
	classifier *detection.Classifier
	alerts     detection.AlertSink
	config     SchedulerConfig
	logger     *slog.Logger
	now        func() time.Time
	stopCh     chan struct{}
}

// NewScheduler creates a Scheduler. The classifier may be nil unless
// aggregate scoring is enabled. A nil clock defaults to time.Now.
func NewScheduler(
	store detection.AttemptStore,
	detector *detection.PatternDetector,
	classifier *detection.Classifier,
	alerts detection.AlertSink,
	config SchedulerConfig,
	logger *slog.Logger,
	clock func() time.Time,
) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		store:      store,
		detector:   detector,
		classifier: classifier,
		alerts:     alerts,
		config:     config,
		logger:     logger,
		now:        clock,
		stopCh:     make(chan struct{}),
	}
}

// Start runs the detection loop until Stop is called or the context is
// cancelled. Blocks; run it on its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.runPass(ctx)

	for {
		select {
		case <-ticker.C:
			s.runPass(ctx)
		case <-s.stopCh:
			s.logger.Info("detection scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("detection scheduler context cancelled")
			return
		}
	}
}

// Stop signals the scheduler to stop.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

// runPass executes one detection pass. A failing or slow store read is
// logged and the pass skipped; the next tick retries naturally, so there is
// no tight retry loop to storm a struggling store.
func (s *Scheduler) runPass(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.config.Interval)
	defer cancel()

	now := s.now()
	since := now.Add(-s.config.Lookback)

	attempts, err := s.store.RecentAll(passCtx, since, s.config.ScanLimit)
	if err != nil {
		s.logger.Error("detection pass skipped: attempt scan failed", slog.Any("error", err))
		return
	}
	if len(attempts) == 0 {
		return
	}

	bySource := make(map[string][]models.LoginAttempt)
	for _, a := range attempts {
		bySource[a.SourceIP] = append(bySource[a.SourceIP], a)
	}

	for sourceIP, sourceAttempts := range bySource {
		for _, event := range s.detector.Detect(now, sourceIP, sourceAttempts) {
			if err := s.alerts.Report(passCtx, event); err != nil {
				s.logger.Error("failed to report detection event",
					slog.String("signature_type", string(event.SignatureType)),
					slog.String("source_ip", sourceIP),
					slog.Any("error", err))
			}
		}

		if s.config.AggregateScoring && s.classifier != nil {
			s.scoreAggregate(passCtx, now, sourceIP, sourceAttempts)
		}
	}
}

// scoreAggregate classifies a source from the attempts already in hand and
// raises an ml_high_risk event when the model would block it.
func (s *Scheduler) scoreAggregate(ctx context.Context, now time.Time, sourceIP string, attempts []models.LoginAttempt) {
	vector := detection.BuildVector(attempts, s.config.Lookback)
	assessment := s.classifier.Classify(vector)
	if assessment.Action != models.ActionBlock {
		return
	}

	event := models.DetectionEvent{
		SignatureType: models.SignatureMLHighRisk,
		SourceIP:      sourceIP,
		Metric:        float64(assessment.RiskScore),
		WindowStart:   now.Add(-s.config.Lookback),
		WindowEnd:     now,
	}
	if err := s.alerts.Report(ctx, event); err != nil {
		s.logger.Error("failed to report aggregate high-risk event",
			slog.String("source_ip", sourceIP),
			slog.Any("error", err))
	}
}
