package predictor

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueRange(t *testing.T) {
	r := valueRange{Min: 5, Max: 15}
	assert.Equal(t, 0.5, r.normalize(10))
	assert.Equal(t, 10.0, r.denormalize(0.5))

	flat := valueRange{Min: 3, Max: 3}
	assert.Equal(t, 0.0, flat.normalize(3))
	assert.Equal(t, 0.0, flat.normalize(100))
}

func TestColumnRanges(t *testing.T) {
	ranges := columnRanges([][]float64{{1, 7}, {3, 7}, {2, 7}})
	assert.Equal(t, []valueRange{{Min: 1, Max: 3}, {Min: 7, Max: 7}}, ranges)
	assert.Equal(t, []float64{0.5, 0}, normalizeRow([]float64{2, 7}, ranges))
	assert.Nil(t, columnRanges(nil))
}

func TestSplitValidation(t *testing.T) {
	tests := []struct {
		rows  int
		split float64
		want  int
	}{
		{5, 0.2, 4},
		{100, 0.2, 80},
		{2, 0.2, 2},
		{1, 0.2, 1},
		{10, 0, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, splitValidation(tt.rows, tt.split), "rows=%d split=%v", tt.rows, tt.split)
	}
}

func TestNetworkLearnsLinearTarget(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var xs [][]float64
	var ys []float64
	for i := range 40 {
		x := float64(i) / 39
		xs = append(xs, []float64{x, 1 - x})
		ys = append(ys, 0.8*x+0.1)
	}

	n := newNetwork(2, []int{8}, newAdam(0.01), rng)
	before := n.loss(xs, ys)
	res, err := n.fit(context.Background(), xs, ys, fitConfig{epochs: 200, batchSize: 8}, rng, nil)
	require.NoError(t, err)

	assert.Less(t, res.loss, before)
	assert.Less(t, res.loss, 0.02)
	assert.Equal(t, 40, res.trained)
	assert.False(t, math.IsNaN(n.predict([]float64{0.5, 0.5})))
}

func TestHeUniformBounds(t *testing.T) {
	l := newDense(12, 16, true, rand.New(rand.NewPCG(3, 4)))
	limit := math.Sqrt(6.0 / 12)
	for _, row := range l.weights {
		require.Len(t, row, 12)
		for _, w := range row {
			assert.LessOrEqual(t, math.Abs(w), limit)
		}
	}
	assert.Equal(t, make([]float64, 16), l.biases)
}
