package nn

import (
	"fmt"

	"github.com/born-ml/vision/internal/tensor"
)

// BatchNorm2D normalizes each channel of an NCHW tensor.
//
//	y = (x - mean) / sqrt(var + eps) * gamma + beta
//
// In training mode mean and var are the batch statistics over N, H and W
// (biased variance), and the running estimates are updated as
//
//	running = (1 - momentum) * running + momentum * batch_stat
//
// using the unbiased variance. In evaluation mode the running estimates are
// used instead. New layers start in training mode.
//
// Example:
//
//	bn := nn.NewBatchNorm2D(32, 1e-5, 0.1, backend)
//	y := bn.Forward(x) // [N, 32, H, W]
//	nn.Eval[Backend](bn)
type BatchNorm2D[B tensor.Backend] struct {
	numFeatures int
	eps         float32
	momentum    float32
	training    bool

	gamma *Parameter[B] // [num_features], ones
	beta  *Parameter[B] // [num_features], zeros

	runningMean *tensor.Tensor[float32, B] // [num_features], not trainable
	runningVar  *tensor.Tensor[float32, B] // [num_features], not trainable
	numBatches  int

	backend B
}

// NewBatchNorm2D creates a batch normalization layer over numFeatures channels.
func NewBatchNorm2D[B tensor.Backend](numFeatures int, eps, momentum float32, backend B) *BatchNorm2D[B] {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid num_features %d", numFeatures))
	}
	if eps <= 0 {
		panic(fmt.Sprintf("batchnorm2d: eps must be positive, got %g", eps))
	}
	if momentum < 0 || momentum > 1 {
		panic(fmt.Sprintf("batchnorm2d: momentum must be in [0, 1], got %g", momentum))
	}

	shape := tensor.Shape{numFeatures}
	return &BatchNorm2D[B]{
		numFeatures: numFeatures,
		eps:         eps,
		momentum:    momentum,
		training:    true,
		gamma:       NewParameter("batchnorm2d.weight", Ones(shape, backend)),
		beta:        NewParameter("batchnorm2d.bias", Zeros(shape, backend)),
		runningMean: Zeros(shape, backend),
		runningVar:  Ones(shape, backend),
		backend:     backend,
	}
}

// Forward normalizes input [N, C, H, W].
func (bn *BatchNorm2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != bn.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != num_features %d", shape[1], bn.numFeatures))
	}

	c := bn.numFeatures
	var normalized *tensor.Tensor[float32, B]
	if bn.training {
		count := shape[0] * shape[2] * shape[3]
		if count <= 1 {
			panic(fmt.Sprintf("batchnorm2d: expected more than 1 value per channel when training, got input shape %v", shape))
		}

		mean := channelMean(input)
		centered := input.Sub(mean)
		variance := channelMean(centered.Mul(centered))
		normalized = centered.Mul(variance.AddScalar(bn.eps).Rsqrt())

		bn.updateRunningStats(mean.Data(), variance.Data(), count)
	} else {
		mean := bn.runningMean.Reshape(1, c, 1, 1)
		invStd := bn.runningVar.Reshape(1, c, 1, 1).AddScalar(bn.eps).Rsqrt()
		normalized = input.Sub(mean).Mul(invStd)
	}

	gamma := bn.gamma.Tensor().Reshape(1, c, 1, 1)
	beta := bn.beta.Tensor().Reshape(1, c, 1, 1)
	return normalized.Mul(gamma).Add(beta)
}

// channelMean averages over N, H and W, keeping [1, C, 1, 1].
func channelMean[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.MeanDim(0, true).MeanDim(2, true).MeanDim(3, true)
}

func (bn *BatchNorm2D[B]) updateRunningStats(mean, biasedVar []float32, count int) {
	unbias := float32(count) / float32(count-1)
	m := bn.momentum
	rm := bn.runningMean.Data()
	rv := bn.runningVar.Data()
	for i := range rm {
		rm[i] = (1-m)*rm[i] + m*mean[i]
		rv[i] = (1-m)*rv[i] + m*biasedVar[i]*unbias
	}
	bn.numBatches++
}

// Parameters returns gamma and beta. Running statistics are not trainable.
func (bn *BatchNorm2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.gamma, bn.beta}
}

// SetTraining switches between batch statistics (true) and running statistics (false).
func (bn *BatchNorm2D[B]) SetTraining(training bool) {
	bn.training = training
}

// Training reports whether the layer uses batch statistics.
func (bn *BatchNorm2D[B]) Training() bool {
	return bn.training
}

// RunningMean returns the running mean estimate [num_features].
func (bn *BatchNorm2D[B]) RunningMean() *tensor.Tensor[float32, B] {
	return bn.runningMean
}

// RunningVar returns the running variance estimate [num_features].
func (bn *BatchNorm2D[B]) RunningVar() *tensor.Tensor[float32, B] {
	return bn.runningVar
}

// NumBatchesTracked returns how many training batches updated the running statistics.
func (bn *BatchNorm2D[B]) NumBatchesTracked() int {
	return bn.numBatches
}

// Momentum returns the running statistics momentum.
func (bn *BatchNorm2D[B]) Momentum() float32 {
	return bn.momentum
}

// Eps returns the numerical stability constant.
func (bn *BatchNorm2D[B]) Eps() float32 {
	return bn.eps
}

// String returns a string representation of the layer.
func (bn *BatchNorm2D[B]) String() string {
	return fmt.Sprintf("BatchNorm2D(%d, eps=%g, momentum=%g)", bn.numFeatures, bn.eps, bn.momentum)
}
