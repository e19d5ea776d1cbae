package blocks

import (
	"fmt"

	"github.com/born-ml/vision/internal/nn"
	"github.com/born-ml/vision/internal/tensor"
)

// InceptionConfig configures an InceptionBlock.
type InceptionConfig struct {
	InPlanes  int // input channels
	OutPlanes int // output channels, split evenly over four branches
	Stride    int // pooled branch stride (only 1 keeps the branches aligned)
	PoolSize  int // pooled branch window, odd
}

// DefaultInceptionConfig returns a config with stride 1 and a 3x3 pool.
func DefaultInceptionConfig(inPlanes, outPlanes int) InceptionConfig {
	return InceptionConfig{
		InPlanes:  inPlanes,
		OutPlanes: outPlanes,
		Stride:    1,
		PoolSize:  3,
	}
}

// Validate reports whether the config produces four spatially aligned branches.
func (c InceptionConfig) Validate() error {
	if c.InPlanes <= 0 || c.OutPlanes <= 0 {
		return fmt.Errorf("%w: in=%d, out=%d", ErrInvalidChannels, c.InPlanes, c.OutPlanes)
	}
	if c.OutPlanes%4 != 0 {
		return fmt.Errorf("%w: inception out planes %d by 4 branches", ErrIndivisibleChannels, c.OutPlanes)
	}
	if c.Stride != 1 {
		return fmt.Errorf("%w: inception stride %d, branches require 1", ErrInvalidStride, c.Stride)
	}
	if c.PoolSize <= 0 || c.PoolSize%2 == 0 {
		return fmt.Errorf("%w: inception pool size %d", ErrInvalidKernel, c.PoolSize)
	}
	return nil
}

// InceptionBlock runs four parallel branches and concatenates them along channels:
//
//	x1 = pw(x)
//	x2 = conv3x3(pw(x))
//	x3 = conv5x5(pw(x))
//	x4 = pw(maxpool(x))
//	y  = cat(x1, x2, x3, x4; dim=1)
//
// A single pointwise block (in -> out/4) is shared by all four branches.
//
// Example:
//
//	block := blocks.NewInceptionBlock(blocks.DefaultInceptionConfig(32, 64), backend)
//	y := block.Forward(x) // [N, 32, H, W] -> [N, 64, H, W]
type InceptionBlock[B tensor.Backend] struct {
	config InceptionConfig

	pw    *nn.Sequential[B]
	pool  *nn.MaxPool2D[B]
	conv3 *nn.Sequential[B]
	conv5 *nn.Sequential[B]
}

// NewInceptionBlock creates an InceptionBlock. It panics if cfg is invalid.
func NewInceptionBlock[B tensor.Backend](cfg InceptionConfig, backend B) *InceptionBlock[B] {
	must(cfg.Validate())

	branch := cfg.OutPlanes / 4
	return &InceptionBlock[B]{
		config: cfg,
		pw:     PointWiseBlock(cfg.InPlanes, branch, backend),
		pool:   nn.NewMaxPool2D(cfg.PoolSize, cfg.Stride, cfg.PoolSize/2, backend),
		conv3:  ConvBlock(branch, branch, 3, 1, 1, backend),
		conv5:  ConvBlock(branch, branch, 5, 1, 2, backend),
	}
}

// Forward maps [N, InPlanes, H, W] to [N, OutPlanes, H, W].
func (b *InceptionBlock[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	checkNCHW("inception", x.Shape(), b.config.InPlanes)

	// pw runs once per branch; in training mode each call updates its
	// batch norm statistics.
	x1 := b.pw.Forward(x)
	x2 := b.conv3.Forward(b.pw.Forward(x))
	x3 := b.conv5.Forward(b.pw.Forward(x))
	x4 := b.pw.Forward(b.pool.Forward(x))

	return tensor.Cat([]*tensor.Tensor[float32, B]{x1, x2, x3, x4}, 1)
}

// Parameters returns the parameters of the shared pointwise block and both conv blocks.
func (b *InceptionBlock[B]) Parameters() []*nn.Parameter[B] {
	return nn.CollectParameters[B](b.pw, b.conv3, b.conv5)
}

// SetTraining switches every batch norm in the block.
func (b *InceptionBlock[B]) SetTraining(training bool) {
	nn.SetTrainingAll[B](training, b.pw, b.conv3, b.conv5)
}

// PointWise returns the pointwise block shared by all four branches.
func (b *InceptionBlock[B]) PointWise() *nn.Sequential[B] {
	return b.pw
}

// Config returns the block configuration.
func (b *InceptionBlock[B]) Config() InceptionConfig {
	return b.config
}

// String returns a string representation of the block.
func (b *InceptionBlock[B]) String() string {
	return fmt.Sprintf("InceptionBlock(in_planes=%d, out_planes=%d, stride=%d, pool_size=%d)",
		b.config.InPlanes, b.config.OutPlanes, b.config.Stride, b.config.PoolSize)
}
