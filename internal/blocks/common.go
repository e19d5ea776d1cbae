// Package blocks provides reusable convolutional building blocks for vision
// backbones: conv-bn-relu blocks, an inception-style multi-branch block,
// squeeze-and-excitation and the convolutional block attention module.
//
// Every block is an nn.Module over NCHW float32 tensors. Convolutions inside
// blocks carry no bias since each is followed by batch normalization or a
// sigmoid gate.
package blocks

import (
	"fmt"

	"github.com/born-ml/vision/internal/nn"
	"github.com/born-ml/vision/internal/tensor"
)

const (
	// BNMomentum is the running-statistics momentum of every batch norm in this package.
	BNMomentum = 0.1

	// BNEpsilon is the variance epsilon of every batch norm in this package.
	BNEpsilon = 1e-5
)

// PointWiseBlock builds Conv2D(in -> out, 1x1) -> BatchNorm2D -> ReLU.
//
// Example:
//
//	pw := blocks.PointWiseBlock(64, 16, backend)
//	y := pw.Forward(x) // [N, 64, H, W] -> [N, 16, H, W]
func PointWiseBlock[B tensor.Backend](in, out int, backend B) *nn.Sequential[B] {
	return ConvBlock(in, out, 1, 1, 0, backend)
}

// ConvBlock builds Conv2D(in -> out, kernel x kernel, stride, padding) -> BatchNorm2D -> ReLU.
func ConvBlock[B tensor.Backend](in, out, kernel, stride, padding int, backend B) *nn.Sequential[B] {
	if in <= 0 || out <= 0 {
		panic(fmt.Errorf("%w: in=%d, out=%d", ErrInvalidChannels, in, out))
	}
	return nn.NewSequential[B](
		nn.NewConv2D(in, out, kernel, kernel, stride, padding, false, backend),
		nn.NewBatchNorm2D(out, BNEpsilon, BNMomentum, backend),
		nn.NewReLU[B](),
	)
}

// Conv3x3 builds a bare 3x3 convolution with padding 1 and no bias.
// With stride 1 it keeps the spatial size.
func Conv3x3[B tensor.Backend](in, out, stride int, backend B) *nn.Conv2D[B] {
	if in <= 0 || out <= 0 {
		panic(fmt.Errorf("%w: in=%d, out=%d", ErrInvalidChannels, in, out))
	}
	return nn.NewConv2D(in, out, 3, 3, stride, 1, false, backend)
}

// checkNCHW panics unless x is [N, channels, H, W].
func checkNCHW(op string, shape tensor.Shape, channels int) {
	if len(shape) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input [N,C,H,W], got %dD", op, len(shape)))
	}
	if shape[1] != channels {
		panic(fmt.Sprintf("%s: input channels %d != expected %d", op, shape[1], channels))
	}
}
