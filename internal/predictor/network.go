package predictor

import (
	"context"
	"math"
	"math/rand/v2"
)

// dense is a fully connected layer. Weights are indexed [output][input].
type dense struct {
	weights [][]float64
	biases  []float64
	relu    bool

	gradW  [][]float64
	gradB  []float64
	mW, vW [][]float64
	mB, vB []float64
}

func newDense(in, out int, relu bool, rng *rand.Rand) *dense {
	limit := math.Sqrt(6 / float64(in)) // He uniform
	l := &dense{
		weights: matrix(out, in),
		biases:  make([]float64, out),
		relu:    relu,
		gradW:   matrix(out, in),
		gradB:   make([]float64, out),
		mW:      matrix(out, in),
		vW:      matrix(out, in),
		mB:      make([]float64, out),
		vB:      make([]float64, out),
	}
	for j := range l.weights {
		for i := range l.weights[j] {
			l.weights[j][i] = (rng.Float64()*2 - 1) * limit
		}
	}
	return l
}

func matrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func (l *dense) forward(in []float64) []float64 {
	out := make([]float64, len(l.biases))
	for j := range out {
		s := l.biases[j]
		for i, v := range in {
			s += l.weights[j][i] * v
		}
		if l.relu && s < 0 {
			s = 0
		}
		out[j] = s
	}
	return out
}

// backward accumulates the gradients of one sample and returns the loss
// gradient with respect to the layer input.
func (l *dense) backward(in, out, delta []float64) []float64 {
	dIn := make([]float64, len(in))
	for j, d := range delta {
		if l.relu && out[j] <= 0 {
			continue
		}
		l.gradB[j] += d
		for i, v := range in {
			l.gradW[j][i] += d * v
			dIn[i] += d * l.weights[j][i]
		}
	}
	return dIn
}

func (l *dense) zeroGrad() {
	for j := range l.gradW {
		clear(l.gradW[j])
	}
	clear(l.gradB)
}

func (l *dense) apply(o adam, step int) {
	c1 := 1 - math.Pow(o.beta1, float64(step))
	c2 := 1 - math.Pow(o.beta2, float64(step))
	for j := range l.weights {
		for i := range l.weights[j] {
			l.weights[j][i] -= o.delta(&l.mW[j][i], &l.vW[j][i], l.gradW[j][i], c1, c2)
		}
		l.biases[j] -= o.delta(&l.mB[j], &l.vB[j], l.gradB[j], c1, c2)
	}
}

// adam holds the Adam optimizer hyperparameters.
type adam struct {
	lr      float64
	beta1   float64
	beta2   float64
	epsilon float64
}

func newAdam(lr float64) adam {
	return adam{lr: lr, beta1: 0.9, beta2: 0.999, epsilon: 1e-7}
}

func (o adam) delta(m, v *float64, g, c1, c2 float64) float64 {
	*m = o.beta1**m + (1-o.beta1)*g
	*v = o.beta2**v + (1-o.beta2)*g*g
	return o.lr * (*m / c1) / (math.Sqrt(*v/c2) + o.epsilon)
}

// network is a feed-forward regressor: ReLU hidden layers and a single
// linear output unit.
type network struct {
	layers []*dense
	opt    adam
	step   int
}

func newNetwork(inputs int, hidden []int, opt adam, rng *rand.Rand) *network {
	n := &network{opt: opt}
	in := inputs
	for _, units := range hidden {
		n.layers = append(n.layers, newDense(in, units, true, rng))
		in = units
	}
	n.layers = append(n.layers, newDense(in, 1, false, rng))
	return n
}

func (n *network) predict(x []float64) float64 {
	a := x
	for _, l := range n.layers {
		a = l.forward(a)
	}
	return a[0]
}

// trainBatch performs one optimizer step on the batch and returns the mean
// squared error measured during the forward pass.
func (n *network) trainBatch(xs [][]float64, ys []float64) float64 {
	for _, l := range n.layers {
		l.zeroGrad()
	}
	scale := 2 / float64(len(xs))
	var loss float64
	acts := make([][]float64, len(n.layers)+1)
	for k, x := range xs {
		acts[0] = x
		for i, l := range n.layers {
			acts[i+1] = l.forward(acts[i])
		}
		diff := acts[len(n.layers)][0] - ys[k]
		loss += diff * diff
		delta := []float64{scale * diff}
		for i := len(n.layers) - 1; i >= 0; i-- {
			delta = n.layers[i].backward(acts[i], acts[i+1], delta)
		}
	}
	n.step++
	for _, l := range n.layers {
		l.apply(n.opt, n.step)
	}
	return loss / float64(len(xs))
}

func (n *network) loss(xs [][]float64, ys []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for k, x := range xs {
		d := n.predict(x) - ys[k]
		sum += d * d
	}
	return sum / float64(len(xs))
}

type fitConfig struct {
	epochs          int
	batchSize       int
	validationSplit float64
}

type fitResult struct {
	loss    float64
	valLoss float64
	trained int
}

// splitValidation holds out the trailing rows for validation, keeping at
// least two rows for training.
func splitValidation(n int, split float64) int {
	if split <= 0 {
		return n
	}
	at := int(math.Floor(float64(n) * (1 - split)))
	if at < 2 || at >= n {
		return n
	}
	return at
}

// fit trains the network with mini-batches shuffled every epoch. onEpoch,
// when set, receives the epoch index and its losses.
func (n *network) fit(ctx context.Context, xs [][]float64, ys []float64, cfg fitConfig, rng *rand.Rand, onEpoch func(epoch int, loss, valLoss float64)) (fitResult, error) {
	at := splitValidation(len(xs), cfg.validationSplit)
	trainX, trainY := xs[:at], ys[:at]
	valX, valY := xs[at:], ys[at:]

	order := make([]int, len(trainX))
	for i := range order {
		order[i] = i
	}
	batchX := make([][]float64, 0, cfg.batchSize)
	batchY := make([]float64, 0, cfg.batchSize)

	var res fitResult
	res.trained = len(trainX)
	for epoch := range cfg.epochs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var sum float64
		for start := 0; start < len(order); start += cfg.batchSize {
			batchX, batchY = batchX[:0], batchY[:0]
			for _, idx := range order[start:min(start+cfg.batchSize, len(order))] {
				batchX = append(batchX, trainX[idx])
				batchY = append(batchY, trainY[idx])
			}
			sum += n.trainBatch(batchX, batchY) * float64(len(batchX))
		}
		res.loss = sum / float64(len(order))
		res.valLoss = n.loss(valX, valY)
		if onEpoch != nil {
			onEpoch(epoch, res.loss, res.valLoss)
		}
	}
	return res, nil
}
