package detection

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
)

// AlertSink receives detection events for cooldown deduplication and
// persistence.
type AlertSink interface {
	Report(ctx context.Context, event models.DetectionEvent) error
}

// Gate is the synchronous decision point invoked on every login attempt
// before it is finalized.
type Gate struct {
	extractor    *Extractor
	classifier   *Classifier
	alerts       AlertSink
	storeTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

// NewGate creates a Gate. A nil clock defaults to time.Now.
func NewGate(extractor *Extractor, classifier *Classifier, alerts AlertSink, storeTimeout time.Duration, logger *slog.Logger, clock func() time.Time) *Gate {
	if clock == nil {
		clock = time.Now
	}
	return &Gate{
		extractor:    extractor,
		classifier:   classifier,
		alerts:       alerts,
		storeTimeout: storeTimeout,
		logger:       logger,
		now:          clock,
	}
}

// EvaluateLogin scores the candidate attempt against its source's recent
// window, self-inclusively, and returns the inline action. A slow or failing
// attempt-store read fails closed to allow rather than stalling or refusing
// the login. On a block decision an ml_high_risk event is raised immediately;
// the periodic rules are retrospective, but blocking cannot wait.
func (g *Gate) EvaluateLogin(ctx context.Context, candidate *models.LoginAttempt) models.RiskAssessment {
	readCtx, cancel := context.WithTimeout(ctx, g.storeTimeout)
	defer cancel()

	vector, _, err := g.extractor.Extract(readCtx, candidate.SourceIP, candidate)
	if err != nil {
		g.logger.Warn("attempt window read failed, allowing attempt",
			slog.String("source_ip", candidate.SourceIP),
			slog.Any("error", err))
		return models.RiskAssessment{
			Classification: models.ClassNormal,
			Confidence:     0,
			RiskScore:      0,
			Action:         models.ActionAllow,
		}
	}

	assessment := g.classifier.Classify(vector)

	if assessment.Action == models.ActionBlock {
		now := g.now()
		event := models.DetectionEvent{
			SignatureType: models.SignatureMLHighRisk,
			SourceIP:      candidate.SourceIP,
			Metric:        float64(assessment.RiskScore),
			WindowStart:   now.Add(-g.extractor.window),
			WindowEnd:     now,
		}
		if err := g.alerts.Report(ctx, event); err != nil {
			g.logger.Error("failed to report high-risk event",
				slog.String("source_ip", candidate.SourceIP),
				slog.Any("error", err))
		}
	}

	return assessment
}
