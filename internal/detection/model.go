package detection

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/fsnotify/fsnotify"
)

//go:embed model_default.json
var defaultModelJSON []byte

// modelParams is the serialized form of the pretrained classifier: per-class
// linear weights over the scaled feature vector, softmax for confidence.
// Produced by the offline training pipeline; consumed here as a black box.
type modelParams struct {
	Scales  [models.FeatureVectorSize]float64 `json:"scales"`
	Classes []classParams                     `json:"classes"`
}

type classParams struct {
	Label   models.Classification             `json:"label"`
	Bias    float64                           `json:"bias"`
	Weights [models.FeatureVectorSize]float64 `json:"weights"`
}

// LinearModel implements Model from a weights file. The parameter set is
// swapped atomically on reload, so Predict stays safe under the watcher.
type LinearModel struct {
	mu     sync.RWMutex
	params *modelParams

	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// LoadModel reads the weights file at path, or the embedded default weights
// when path is empty.
func LoadModel(path string, logger *slog.Logger) (*LinearModel, error) {
	m := &LinearModel{path: path, logger: logger}

	raw := defaultModelJSON
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read model file: %w", err)
		}
		raw = data
	}

	params, err := parseModelParams(raw)
	if err != nil {
		return nil, err
	}
	m.params = params

	return m, nil
}

func parseModelParams(raw []byte) (*modelParams, error) {
	var params modelParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("failed to parse model weights: %w", err)
	}

	if len(params.Classes) == 0 {
		return nil, fmt.Errorf("model weights define no classes")
	}
	for _, s := range params.Scales {
		if s <= 0 {
			return nil, fmt.Errorf("model scales must be positive")
		}
	}
	for _, c := range params.Classes {
		switch c.Label {
		case models.ClassNormal, models.ClassSuspicious,
			models.ClassCredentialStuffing, models.ClassBruteForce:
		default:
			return nil, fmt.Errorf("model weights carry unknown label %q", c.Label)
		}
	}

	return &params, nil
}

// Predict scores the vector against every class and returns the winner with
// its softmax probability as confidence.
func (m *LinearModel) Predict(vector models.FeatureVector) (Prediction, error) {
	m.mu.RLock()
	params := m.params
	m.mu.RUnlock()

	if params == nil {
		return Prediction{}, fmt.Errorf("model not loaded")
	}

	values := vector.Values()
	scaled := values
	for i := range scaled {
		scaled[i] = values[i] / params.Scales[i]
	}

	scores := make([]float64, len(params.Classes))
	maxScore := math.Inf(-1)
	best := 0
	for i, c := range params.Classes {
		s := c.Bias
		for j, w := range c.Weights {
			s += w * scaled[j]
		}
		scores[i] = s
		if s > maxScore {
			maxScore = s
			best = i
		}
	}

	// Softmax, shifted by the max score for stability
	sum := 0.0
	for _, s := range scores {
		sum += math.Exp(s - maxScore)
	}
	confidence := 1.0 / sum

	return Prediction{
		Label:      params.Classes[best].Label,
		Confidence: confidence,
	}, nil
}

// Watch reloads the weights file when it changes on disk. A broken write
// leaves the previous parameters in place. No-op for the embedded default.
func (m *LinearModel) Watch() error {
	if m.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create model watcher: %w", err)
	}

	// Watch the directory: editors and atomic writers replace the file,
	// which would silently detach a watch on the file itself.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch model directory: %w", err)
	}

	m.watcher = watcher
	m.done = make(chan struct{})

	go m.watchLoop()
	return nil
}

func (m *LinearModel) watchLoop() {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			m.reload()
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("model watcher error", slog.Any("error", err))
		case <-m.done:
			return
		}
	}
}

func (m *LinearModel) reload() {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		m.logger.Error("failed to re-read model file", slog.Any("error", err))
		return
	}

	params, err := parseModelParams(raw)
	if err != nil {
		m.logger.Error("rejected updated model weights", slog.Any("error", err))
		return
	}

	m.mu.Lock()
	m.params = params
	m.mu.Unlock()

	m.logger.Info("risk model weights reloaded", slog.String("path", m.path))
}

// Close stops the watcher if one is running.
func (m *LinearModel) Close() error {
	if m.watcher == nil {
		return nil
	}
	close(m.done)
	return m.watcher.Close()
}
