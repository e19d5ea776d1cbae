package nn

import (
	"fmt"

	"github.com/born-ml/vision/internal/tensor"
)

// Conv2D convolves NCHW feature maps with a learned [out, in, kh, kw] kernel.
//
// Blocks create it without bias because a BatchNorm2D follows and its beta
// takes that role. Zero padding is applied on every side, so a k×k kernel
// with padding k/2 and stride 1 keeps H and W.
type Conv2D[B tensor.Backend] struct {
	in, out int
	kernel  [2]int
	stride  int
	padding int

	weight *Parameter[B]
	bias   *Parameter[B] // nil without bias

	backend B
}

// NewConv2D creates a convolution with Kaiming uniform weights,
// U(-1/sqrt(fanIn), 1/sqrt(fanIn)) where fanIn = in*kh*kw, and a zero bias
// when useBias is set. It panics on non-positive sizes or negative padding.
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	switch {
	case inChannels <= 0 || outChannels <= 0:
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	case kernelH <= 0 || kernelW <= 0:
		panic(fmt.Sprintf("conv2d: invalid kernel size %dx%d", kernelH, kernelW))
	case stride <= 0:
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	case padding < 0:
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	c := &Conv2D[B]{
		in:      inChannels,
		out:     outChannels,
		kernel:  [2]int{kernelH, kernelW},
		stride:  stride,
		padding: padding,
		backend: backend,
	}
	c.weight = NewParameter("conv2d.weight", KaimingUniform(
		inChannels*kernelH*kernelW,
		tensor.Shape{outChannels, inChannels, kernelH, kernelW},
		backend,
	))
	if useBias {
		c.bias = NewParameter("conv2d.bias", Zeros(tensor.Shape{outChannels}, backend))
	}
	return c
}

// Forward maps [N, in, H, W] to [N, out, HOut, WOut].
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 4 || shape[1] != c.in {
		panic(fmt.Sprintf("conv2d: expected [N, %d, H, W] input, got %v", c.in, shape))
	}

	y := tensor.New[float32, B](c.backend.Conv2D(input.Raw(), c.weight.Tensor().Raw(), c.stride, c.padding), c.backend)
	if c.bias != nil {
		y = y.Add(c.bias.Tensor().Reshape(1, c.out, 1, 1))
	}
	return y
}

// Parameters returns the kernel, followed by the bias if present.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	if c.bias == nil {
		return []*Parameter[B]{c.weight}
	}
	return []*Parameter[B]{c.weight, c.bias}
}

func (c *Conv2D[B]) String() string {
	return fmt.Sprintf("Conv2D(%d, %d, kernel_size=(%d, %d), stride=%d, padding=%d, bias=%v)",
		c.in, c.out, c.kernel[0], c.kernel[1], c.stride, c.padding, c.bias != nil)
}

// Weight returns the kernel parameter.
func (c *Conv2D[B]) Weight() *Parameter[B] { return c.weight }

// Bias returns the bias parameter, or nil.
func (c *Conv2D[B]) Bias() *Parameter[B] { return c.bias }

func (c *Conv2D[B]) InChannels() int { return c.in }

func (c *Conv2D[B]) OutChannels() int { return c.out }

func (c *Conv2D[B]) KernelSize() [2]int { return c.kernel }

func (c *Conv2D[B]) Stride() int { return c.stride }

func (c *Conv2D[B]) Padding() int { return c.padding }

// ComputeOutputSize returns [HOut, WOut] for an H×W input.
func (c *Conv2D[B]) ComputeOutputSize(h, w int) [2]int {
	return [2]int{
		(h+2*c.padding-c.kernel[0])/c.stride + 1,
		(w+2*c.padding-c.kernel[1])/c.stride + 1,
	}
}
