// Package predictor estimates a student's placement package from academic
// and skill features with a small feed-forward regression network trained on
// historical placement records.
package predictor

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"placementpulse/internal/config"
	"placementpulse/internal/errors"
	"placementpulse/internal/types"
)

// Training defaults.
const (
	DefaultEpochs          = 100
	DefaultBatchSize       = 32
	DefaultLearningRate    = 0.01
	DefaultValidationSplit = 0.2
	DefaultSeed            = 42

	logEvery = 10
)

var hiddenLayers = []int{16, 8}

var (
	// ErrNotReady is returned by Predict until a model has been trained.
	ErrNotReady = errors.NewModelError(errors.ErrCodeModelNotReady, "Model not trained yet", nil)
	// ErrTrainingInProgress is returned by Train while another training runs.
	ErrTrainingInProgress = errors.NewModelError(errors.ErrCodeTrainingInProgress, "Model training already in progress", nil)
)

// model is an immutable trained network with its normalization ranges.
type model struct {
	net      *network
	features []valueRange
	label    valueRange
}

func (m *model) predict(profile types.StudentProfile) float64 {
	out := m.net.predict(normalizeRow(profile.Features(), m.features))
	return math.Max(0, m.label.denormalize(out))
}

// Predictor owns the trained model. It is safe for concurrent use; at most
// one training runs at a time.
type Predictor struct {
	mu     sync.RWMutex
	model  *model
	status types.ModelStatus

	cfg    config.PredictorConfig
	logger *errors.Logger
	now    func() time.Time
}

// Option configures a Predictor
type Option func(*Predictor)

// WithConfig sets the training hyperparameters. Zero values keep defaults.
func WithConfig(cfg config.PredictorConfig) Option {
	return func(p *Predictor) {
		if cfg.Epochs > 0 {
			p.cfg.Epochs = cfg.Epochs
		}
		if cfg.BatchSize > 0 {
			p.cfg.BatchSize = cfg.BatchSize
		}
		if cfg.LearningRate > 0 {
			p.cfg.LearningRate = cfg.LearningRate
		}
		if cfg.ValidationSplit > 0 && cfg.ValidationSplit < 1 {
			p.cfg.ValidationSplit = cfg.ValidationSplit
		}
		if cfg.Seed != 0 {
			p.cfg.Seed = cfg.Seed
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *errors.Logger) Option {
	return func(p *Predictor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the clock used to stamp trainings.
func WithClock(now func() time.Time) Option {
	return func(p *Predictor) { p.now = now }
}

// New creates an untrained Predictor.
func New(opts ...Option) *Predictor {
	p := &Predictor{
		status: types.ModelStatus{State: types.ModelUntrained},
		cfg: config.PredictorConfig{
			Epochs:          DefaultEpochs,
			BatchSize:       DefaultBatchSize,
			LearningRate:    DefaultLearningRate,
			ValidationSplit: DefaultValidationSplit,
			Seed:            DefaultSeed,
		},
		logger: errors.NewNopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status returns a snapshot of the model state.
func (p *Predictor) Status() types.ModelStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Ready reports whether Predict can serve requests.
func (p *Predictor) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model != nil && p.status.State != types.ModelTraining
}

// Train loads a dataset and fits a new model. Predictions are refused while
// training runs. When training fails the previous model is retained and the
// status reports the failure.
func (p *Predictor) Train(ctx context.Context, loader Loader) (types.ModelStatus, error) {
	p.mu.Lock()
	if p.status.State == types.ModelTraining {
		status := p.status
		p.mu.Unlock()
		return status, ErrTrainingInProgress
	}
	previous := p.status
	p.status.State = types.ModelTraining
	p.status.Error = ""
	p.mu.Unlock()

	m, status, err := p.train(ctx, loader)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.status = previous
		p.status.State = types.ModelFailed
		p.status.Error = err.Error()
		p.logger.LogError(err, "Package model training failed")
		return p.status, err
	}
	p.model = m
	p.status = status
	p.logger.Info("Package model trained",
		"records", status.TrainedOn,
		"source", status.DatasetSource,
		"loss", status.TrainingLoss,
		"val_loss", status.ValidationLoss)
	return p.status, nil
}

func (p *Predictor) train(ctx context.Context, loader Loader) (*model, types.ModelStatus, error) {
	ds, err := loader.Load(ctx)
	if err != nil {
		return nil, types.ModelStatus{}, errors.NewModelError(errors.ErrCodeDatasetLoadFailed,
			"Failed to load placement data", err)
	}
	if len(ds.Records) == 0 {
		return nil, types.ModelStatus{}, errors.NewModelError(errors.ErrCodeDatasetLoadFailed,
			"No placement data available for training", nil)
	}
	p.logger.Info("Training package model", "records", len(ds.Records), "source", ds.Source)

	rows := make([][]float64, len(ds.Records))
	labels := make([]float64, len(ds.Records))
	for i, r := range ds.Records {
		rows[i] = r.Features()
		labels[i] = r.PackageLPA
	}
	m := &model{
		features: columnRanges(rows),
		label:    valuesRange(labels),
	}
	xs := make([][]float64, len(rows))
	ys := make([]float64, len(labels))
	for i := range rows {
		xs[i] = normalizeRow(rows[i], m.features)
		ys[i] = m.label.normalize(labels[i])
	}

	rng := rand.New(rand.NewPCG(p.cfg.Seed, p.cfg.Seed^0x9e3779b97f4a7c15))
	m.net = newNetwork(types.FeatureCount, hiddenLayers, newAdam(p.cfg.LearningRate), rng)

	res, err := m.net.fit(ctx, xs, ys, fitConfig{
		epochs:          p.cfg.Epochs,
		batchSize:       p.cfg.BatchSize,
		validationSplit: p.cfg.ValidationSplit,
	}, rng, func(epoch int, loss, valLoss float64) {
		if epoch%logEvery == 0 {
			p.logger.Debug("Training epoch", "epoch", epoch, "loss", loss, "val_loss", valLoss)
		}
	})
	if err != nil {
		return nil, types.ModelStatus{}, fmt.Errorf("training interrupted: %w", err)
	}
	if math.IsNaN(res.loss) || math.IsInf(res.loss, 0) {
		return nil, types.ModelStatus{}, errors.NewModelError(errors.ErrCodeTrainingFailed,
			"Training diverged", nil)
	}

	return m, types.ModelStatus{
		State:          types.ModelReady,
		TrainedOn:      len(ds.Records),
		TrainedAt:      p.now(),
		TrainingLoss:   res.loss,
		ValidationLoss: res.valLoss,
		DatasetSource:  ds.Source,
	}, nil
}

// Predict estimates the package in LPA for the profile. The estimate is
// never negative.
func (p *Predictor) Predict(profile types.StudentProfile) (types.PackagePrediction, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil || p.status.State == types.ModelTraining {
		return types.PackagePrediction{}, ErrNotReady
	}
	return types.PackagePrediction{
		PackageLPA: p.model.predict(profile),
		Profile:    profile,
		Model:      p.status,
	}, nil
}
