package detection

import (
	"log/slog"
	"math"

	"github.com/BradenHooton/sentinel/internal/models"
)

// Prediction is the raw model output consumed by the classifier.
type Prediction struct {
	Label      models.Classification
	Confidence float64
}

// Model is the opaque pretrained classifier: fixed eight-dimension numeric
// input, stable label set, confidence in [0,1]. Implementations must be
// stateless from the caller's perspective.
type Model interface {
	Predict(vector models.FeatureVector) (Prediction, error)
}

// ClassifierConfig maps classifications to base risk and risk scores to
// actions. Operators retune these without touching the logic.
type ClassifierConfig struct {
	BaseRisk       map[models.Classification]int
	WarnThreshold  int
	BlockThreshold int
}

// Classifier wraps the pretrained model and derives the numeric risk score
// and inline action from its output.
type Classifier struct {
	model  Model
	config ClassifierConfig
	logger *slog.Logger
}

func NewClassifier(model Model, config ClassifierConfig, logger *slog.Logger) *Classifier {
	return &Classifier{
		model:  model,
		config: config,
		logger: logger,
	}
}

// Classify scores a feature vector. An empty window short-circuits to the
// lowest-risk class without invoking the model. Model failures fail closed
// to normal/confidence 0 so an infrastructure fault never turns into a
// denial of service on the login path; this is the one place a dependency
// error is swallowed rather than surfaced.
func (c *Classifier) Classify(vector models.FeatureVector) models.RiskAssessment {
	if vector.IsZero() {
		return c.failClosed()
	}

	prediction, err := c.model.Predict(vector)
	if err != nil {
		c.logger.Error("risk model prediction failed", slog.Any("error", err))
		return c.failClosed()
	}

	base, ok := c.config.BaseRisk[prediction.Label]
	if !ok {
		c.logger.Error("risk model returned unknown classification",
			slog.String("classification", string(prediction.Label)))
		return c.failClosed()
	}

	confidence := clamp01(prediction.Confidence)
	score := int(math.Round(float64(base) * confidence))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return models.RiskAssessment{
		Classification: prediction.Label,
		Confidence:     confidence,
		RiskScore:      score,
		Action:         c.actionFor(score),
	}
}

func (c *Classifier) actionFor(score int) models.Action {
	switch {
	case score >= c.config.BlockThreshold:
		return models.ActionBlock
	case score >= c.config.WarnThreshold:
		return models.ActionWarn
	default:
		return models.ActionAllow
	}
}

func (c *Classifier) failClosed() models.RiskAssessment {
	return models.RiskAssessment{
		Classification: models.ClassNormal,
		Confidence:     0,
		RiskScore:      0,
		Action:         models.ActionAllow,
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
