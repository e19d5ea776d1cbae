package blocks

import (
	"fmt"

	"github.com/born-ml/vision/internal/nn"
	"github.com/born-ml/vision/internal/tensor"
)

// SEConfig configures a squeeze-and-excitation layer.
type SEConfig struct {
	Channels  int
	Reduction int // bottleneck ratio, Channels/Reduction hidden units
}

// DefaultSEConfig returns a config with reduction 16.
func DefaultSEConfig(channels int) SEConfig {
	return SEConfig{Channels: channels, Reduction: 16}
}

// Validate checks that the bottleneck has a whole, positive number of units.
func (c SEConfig) Validate() error {
	if c.Channels <= 0 {
		return fmt.Errorf("%w: se channels %d", ErrInvalidChannels, c.Channels)
	}
	if c.Reduction <= 0 || c.Channels%c.Reduction != 0 {
		return fmt.Errorf("%w: se channels %d by reduction %d", ErrIndivisibleChannels, c.Channels, c.Reduction)
	}
	return nil
}

// SELayer rescales each channel by a gate computed from its global average:
//
//	y = sigmoid(fc2(relu(fc1(avgpool(x).view(N, C))))).view(N, C, 1, 1)
//	out = x * y
type SELayer[B tensor.Backend] struct {
	config SEConfig

	pool *nn.AdaptiveAvgPool2D[B]
	fc   *nn.Sequential[B] // Linear(C -> C/r), ReLU, Linear(C/r -> C), Sigmoid
}

// NewSELayer creates a squeeze-and-excitation layer. It panics if cfg is invalid.
//
// Example:
//
//	se := blocks.NewSELayer(blocks.DefaultSEConfig(64), backend)
//	y := se.Forward(x) // same shape as x
func NewSELayer[B tensor.Backend](cfg SEConfig, backend B) *SELayer[B] {
	must(cfg.Validate())

	hidden := cfg.Channels / cfg.Reduction
	return &SELayer[B]{
		config: cfg,
		pool:   nn.NewAdaptiveAvgPool2D[B](1),
		fc: nn.NewSequential[B](
			nn.NewLinear(cfg.Channels, hidden, false, backend),
			nn.NewReLU[B](),
			nn.NewLinear(hidden, cfg.Channels, false, backend),
			nn.NewSigmoid[B](),
		),
	}
}

// Gate returns the per-channel scale factors [N, C, 1, 1], each in (0, 1).
func (s *SELayer[B]) Gate(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	checkNCHW("se", shape, s.config.Channels)

	n, c := shape[0], shape[1]
	y := s.pool.Forward(x).Reshape(n, c)
	return s.fc.Forward(y).Reshape(n, c, 1, 1)
}

// Forward returns x scaled channel-wise by its gate.
func (s *SELayer[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Mul(s.Gate(x))
}

// Parameters returns the weights of both bottleneck layers.
func (s *SELayer[B]) Parameters() []*nn.Parameter[B] {
	return s.fc.Parameters()
}

// Config returns the layer configuration.
func (s *SELayer[B]) Config() SEConfig {
	return s.config
}

// String returns a string representation of the layer.
func (s *SELayer[B]) String() string {
	return fmt.Sprintf("SELayer(channels=%d, reduction=%d)", s.config.Channels, s.config.Reduction)
}
