package predictor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"placementpulse/internal/config"
	"placementpulse/internal/errors"
	"placementpulse/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trainedAt = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestPredictor(opts ...Option) *Predictor {
	return New(append([]Option{WithClock(func() time.Time { return trainedAt })}, opts...)...)
}

func TestPredictBeforeTraining(t *testing.T) {
	p := newTestPredictor()
	assert.Equal(t, types.ModelUntrained, p.Status().State)
	assert.False(t, p.Ready())

	_, err := p.Predict(types.StudentProfile{CGPA: 8})
	assert.ErrorIs(t, err, ErrNotReady)
	assert.True(t, errors.HasCode(err, errors.ErrCodeModelNotReady))
}

func TestTrainOnFallbackRecords(t *testing.T) {
	p := newTestPredictor()
	status, err := p.Train(context.Background(), FallbackLoader{})
	require.NoError(t, err)

	assert.Equal(t, types.ModelReady, status.State)
	assert.Equal(t, 5, status.TrainedOn)
	assert.Equal(t, SourceBuiltin, status.DatasetSource)
	assert.Equal(t, trainedAt, status.TrainedAt)
	assert.Empty(t, status.Error)
	assert.True(t, p.Ready())

	records := FallbackRecords()
	strong, err := p.Predict(records[1].StudentProfile)
	require.NoError(t, err)
	weak, err := p.Predict(records[4].StudentProfile)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, strong.PackageLPA, 0.0)
	assert.GreaterOrEqual(t, weak.PackageLPA, 0.0)
	assert.GreaterOrEqual(t, strong.PackageLPA, weak.PackageLPA)
	assert.Equal(t, records[1].StudentProfile, strong.Profile)
	assert.Equal(t, types.ModelReady, strong.Model.State)
}

func TestTrainingIsDeterministicForSeed(t *testing.T) {
	profile := types.StudentProfile{CGPA: 8.1, HighSchoolScore: 80, SSCScore: 85, WebDev: 3, Projects: 3}
	predict := func() float64 {
		p := newTestPredictor(WithConfig(config.PredictorConfig{Seed: 7}))
		_, err := p.Train(context.Background(), FallbackLoader{})
		require.NoError(t, err)
		out, err := p.Predict(profile)
		require.NoError(t, err)
		return out.PackageLPA
	}
	assert.Equal(t, predict(), predict())
}

func TestPredictionNeverNegative(t *testing.T) {
	p := newTestPredictor()
	_, err := p.Train(context.Background(), FallbackLoader{})
	require.NoError(t, err)

	out, err := p.Predict(types.StudentProfile{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.PackageLPA, 0.0)
}

func TestTrainFailures(t *testing.T) {
	tests := []struct {
		name   string
		loader Loader
		code   string
	}{
		{
			name:   "loader error",
			loader: LoaderFunc(func(context.Context) (Dataset, error) { return Dataset{}, fmt.Errorf("connection refused") }),
			code:   errors.ErrCodeDatasetLoadFailed,
		},
		{
			name:   "no records",
			loader: LoaderFunc(func(context.Context) (Dataset, error) { return Dataset{Source: "empty"}, nil }),
			code:   errors.ErrCodeDatasetLoadFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPredictor()
			status, err := p.Train(context.Background(), tt.loader)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code))
			assert.Equal(t, types.ModelFailed, status.State)
			assert.NotEmpty(t, status.Error)
			assert.False(t, p.Ready())
		})
	}
}

func TestFailedRetrainKeepsPreviousModel(t *testing.T) {
	p := newTestPredictor()
	_, err := p.Train(context.Background(), FallbackLoader{})
	require.NoError(t, err)

	_, err = p.Train(context.Background(), LoaderFunc(func(context.Context) (Dataset, error) {
		return Dataset{}, fmt.Errorf("boom")
	}))
	require.Error(t, err)

	status := p.Status()
	assert.Equal(t, types.ModelFailed, status.State)
	assert.Equal(t, 5, status.TrainedOn)

	_, err = p.Predict(FallbackRecords()[0].StudentProfile)
	assert.NoError(t, err)
}

func TestConcurrentTrainRejected(t *testing.T) {
	p := newTestPredictor()
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := LoaderFunc(func(ctx context.Context) (Dataset, error) {
		close(started)
		<-release
		return FallbackLoader{}.Load(ctx)
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := p.Train(context.Background(), blocking)
		assert.NoError(t, err)
	}()
	<-started

	assert.Equal(t, types.ModelTraining, p.Status().State)
	_, err := p.Train(context.Background(), FallbackLoader{})
	assert.ErrorIs(t, err, ErrTrainingInProgress)
	_, err = p.Predict(types.StudentProfile{})
	assert.ErrorIs(t, err, ErrNotReady)

	close(release)
	wg.Wait()
	assert.Equal(t, types.ModelReady, p.Status().State)
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newTestPredictor()
	status, err := p.Train(ctx, FallbackLoader{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, types.ModelFailed, status.State)
}

func TestWithConfigKeepsDefaultsForZeroValues(t *testing.T) {
	p := New(WithConfig(config.PredictorConfig{Epochs: 5}))
	assert.Equal(t, 5, p.cfg.Epochs)
	assert.Equal(t, DefaultBatchSize, p.cfg.BatchSize)
	assert.Equal(t, DefaultLearningRate, p.cfg.LearningRate)
	assert.Equal(t, uint64(DefaultSeed), p.cfg.Seed)
}

func BenchmarkTrainFallback(b *testing.B) {
	for b.Loop() {
		p := New()
		if _, err := p.Train(context.Background(), FallbackLoader{}); err != nil {
			b.Fatal(err)
		}
	}
}
