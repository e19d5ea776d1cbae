package blocks

import (
	"fmt"

	"github.com/born-ml/vision/internal/nn"
	"github.com/born-ml/vision/internal/tensor"
)

// CBAMConfig configures a convolutional block attention module.
type CBAMConfig struct {
	Channels   int
	Ratio      int // channel attention bottleneck ratio
	KernelSize int // spatial attention kernel, odd
}

// DefaultCBAMConfig returns a config with ratio 8 and a 7x7 spatial kernel.
func DefaultCBAMConfig(channels int) CBAMConfig {
	return CBAMConfig{Channels: channels, Ratio: 8, KernelSize: 7}
}

// Validate checks both attention stages.
func (c CBAMConfig) Validate() error {
	if err := validateChannelAttention(c.Channels, c.Ratio); err != nil {
		return err
	}
	return validateSpatialKernel(c.KernelSize)
}

func validateChannelAttention(channels, ratio int) error {
	if channels <= 0 {
		return fmt.Errorf("%w: channel attention channels %d", ErrInvalidChannels, channels)
	}
	if ratio <= 0 || channels%ratio != 0 {
		return fmt.Errorf("%w: channel attention channels %d by ratio %d", ErrIndivisibleChannels, channels, ratio)
	}
	return nil
}

func validateSpatialKernel(kernel int) error {
	if kernel <= 0 || kernel%2 == 0 {
		return fmt.Errorf("%w: spatial attention kernel %d", ErrInvalidKernel, kernel)
	}
	return nil
}

// ChannelAttention gates channels with a shared MLP over the global average
// and global max of every channel:
//
//	w = sigmoid(mlp(avgpool(x)) + mlp(maxpool(x)))
//	out = x * w
type ChannelAttention[B tensor.Backend] struct {
	channels int
	ratio    int

	avgPool *nn.AdaptiveAvgPool2D[B]
	maxPool *nn.AdaptiveMaxPool2D[B]
	mlp     *nn.Sequential[B] // Linear(C -> C/ratio), ReLU, Linear(C/ratio -> C)
}

// NewChannelAttention creates a channel attention module. It panics unless
// channels is a positive multiple of ratio.
func NewChannelAttention[B tensor.Backend](channels, ratio int, backend B) *ChannelAttention[B] {
	must(validateChannelAttention(channels, ratio))

	hidden := channels / ratio
	return &ChannelAttention[B]{
		channels: channels,
		ratio:    ratio,
		avgPool:  nn.NewAdaptiveAvgPool2D[B](1),
		maxPool:  nn.NewAdaptiveMaxPool2D[B](1),
		mlp: nn.NewSequential[B](
			nn.NewLinear(channels, hidden, false, backend),
			nn.NewReLU[B](),
			nn.NewLinear(hidden, channels, false, backend),
		),
	}
}

// Gate returns the channel weights [N, C, 1, 1], each in (0, 1).
func (a *ChannelAttention[B]) Gate(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	checkNCHW("channel_attention", x.Shape(), a.channels)

	avg := a.mlp.Forward(squeezeSpatial(a.avgPool.Forward(x)))
	mx := a.mlp.Forward(squeezeSpatial(a.maxPool.Forward(x)))
	return avg.Add(mx).Sigmoid().Unsqueeze(2).Unsqueeze(3)
}

// Forward returns x scaled by its channel weights.
func (a *ChannelAttention[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Mul(a.Gate(x))
}

// Parameters returns the shared MLP weights.
func (a *ChannelAttention[B]) Parameters() []*nn.Parameter[B] {
	return a.mlp.Parameters()
}

// String returns a string representation of the module.
func (a *ChannelAttention[B]) String() string {
	return fmt.Sprintf("ChannelAttention(channels=%d, ratio=%d)", a.channels, a.ratio)
}

// squeezeSpatial turns [N, C, 1, 1] into [N, C].
func squeezeSpatial[B tensor.Backend](x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Squeeze(3).Squeeze(2)
}

// SpatialAttention gates spatial positions with a convolution over the
// channel-wise mean and max maps:
//
//	w = sigmoid(conv(cat(mean(x, dim=1), max(x, dim=1); dim=1)))
//	out = x * w
type SpatialAttention[B tensor.Backend] struct {
	conv *nn.Conv2D[B] // 2 -> 1, kernel x kernel, padding kernel/2
}

// NewSpatialAttention creates a spatial attention module. It panics unless
// kernel is positive and odd.
func NewSpatialAttention[B tensor.Backend](kernel int, backend B) *SpatialAttention[B] {
	must(validateSpatialKernel(kernel))

	return &SpatialAttention[B]{
		conv: nn.NewConv2D(2, 1, kernel, kernel, 1, kernel/2, false, backend),
	}
}

// Gate returns the spatial weights [N, 1, H, W], each in (0, 1).
func (a *SpatialAttention[B]) Gate(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(x.Shape()) != 4 {
		panic(fmt.Sprintf("spatial_attention: expected 4D input [N,C,H,W], got %dD", len(x.Shape())))
	}

	avg := x.MeanDim(1, true)
	mx := x.MaxDim(1, true)
	stats := tensor.Cat([]*tensor.Tensor[float32, B]{avg, mx}, 1)
	return a.conv.Forward(stats).Sigmoid()
}

// Forward returns x scaled by its spatial weights, broadcast over channels.
func (a *SpatialAttention[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Mul(a.Gate(x))
}

// Parameters returns the convolution kernel.
func (a *SpatialAttention[B]) Parameters() []*nn.Parameter[B] {
	return a.conv.Parameters()
}

// String returns a string representation of the module.
func (a *SpatialAttention[B]) String() string {
	return fmt.Sprintf("SpatialAttention(kernel_size=%d)", a.conv.KernelSize()[0])
}

// CBAMBlock applies channel attention followed by spatial attention.
//
// Example:
//
//	cbam := blocks.NewCBAMBlock(64, backend)
//	y := cbam.Forward(x) // same shape as x
type CBAMBlock[B tensor.Backend] struct {
	config  CBAMConfig
	channel *ChannelAttention[B]
	spatial *SpatialAttention[B]
}

// NewCBAMBlock creates a CBAM block with ratio 8 and a 7x7 spatial kernel.
func NewCBAMBlock[B tensor.Backend](channels int, backend B) *CBAMBlock[B] {
	return NewCBAMBlockWithConfig(DefaultCBAMConfig(channels), backend)
}

// NewCBAMBlockWithConfig creates a CBAM block. It panics if cfg is invalid.
func NewCBAMBlockWithConfig[B tensor.Backend](cfg CBAMConfig, backend B) *CBAMBlock[B] {
	must(cfg.Validate())

	return &CBAMBlock[B]{
		config:  cfg,
		channel: NewChannelAttention(cfg.Channels, cfg.Ratio, backend),
		spatial: NewSpatialAttention(cfg.KernelSize, backend),
	}
}

// Forward returns SpatialAttention(ChannelAttention(x)).
func (c *CBAMBlock[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return c.spatial.Forward(c.channel.Forward(x))
}

// Parameters returns the channel MLP weights followed by the spatial kernel.
func (c *CBAMBlock[B]) Parameters() []*nn.Parameter[B] {
	return nn.CollectParameters[B](c.channel, c.spatial)
}

// ChannelAttention returns the channel stage.
func (c *CBAMBlock[B]) ChannelAttention() *ChannelAttention[B] {
	return c.channel
}

// SpatialAttention returns the spatial stage.
func (c *CBAMBlock[B]) SpatialAttention() *SpatialAttention[B] {
	return c.spatial
}

// Config returns the block configuration.
func (c *CBAMBlock[B]) Config() CBAMConfig {
	return c.config
}

// String returns a string representation of the block.
func (c *CBAMBlock[B]) String() string {
	return fmt.Sprintf("CBAMBlock(channels=%d, ratio=%d, kernel_size=%d)",
		c.config.Channels, c.config.Ratio, c.config.KernelSize)
}
