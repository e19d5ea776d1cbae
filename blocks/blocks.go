// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package blocks provides reusable convolutional building blocks for vision models.
//
// Blocks:
//   - PointWiseBlock, ConvBlock: Conv2D -> BatchNorm2D -> ReLU
//   - Conv3x3: bare 3x3 convolution with padding 1
//   - InceptionBlock: four parallel branches concatenated along channels
//   - SELayer: squeeze-and-excitation channel gating
//   - ChannelAttention, SpatialAttention, CBAMBlock: convolutional block attention
//
// Every block is an nn.Module over NCHW float32 tensors and works with any
// backend; wrap the backend with autodiff to get gradients.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	inception := blocks.NewInceptionBlock(blocks.DefaultInceptionConfig(32, 64), backend)
//	se := blocks.NewSELayer(blocks.DefaultSEConfig(64), backend)
//	cbam := blocks.NewCBAMBlock(64, backend)
//
//	y := cbam.Forward(se.Forward(inception.Forward(x))) // [N, 64, H, W]
package blocks

import (
	"github.com/born-ml/vision/internal/blocks"
	"github.com/born-ml/vision/nn"
	"github.com/born-ml/vision/tensor"
)

// Batch normalization settings shared by every block.
const (
	BNMomentum = blocks.BNMomentum
	BNEpsilon  = blocks.BNEpsilon
)

// Configuration errors returned by Validate.
var (
	ErrInvalidChannels     = blocks.ErrInvalidChannels
	ErrIndivisibleChannels = blocks.ErrIndivisibleChannels
	ErrInvalidKernel       = blocks.ErrInvalidKernel
	ErrInvalidStride       = blocks.ErrInvalidStride
)

// Configurations.
type (
	InceptionConfig = blocks.InceptionConfig
	SEConfig        = blocks.SEConfig
	CBAMConfig      = blocks.CBAMConfig
)

// Block types.
type (
	InceptionBlock[B tensor.Backend]   = blocks.InceptionBlock[B]
	SELayer[B tensor.Backend]          = blocks.SELayer[B]
	ChannelAttention[B tensor.Backend] = blocks.ChannelAttention[B]
	SpatialAttention[B tensor.Backend] = blocks.SpatialAttention[B]
	CBAMBlock[B tensor.Backend]        = blocks.CBAMBlock[B]
)

// PointWiseBlock builds Conv2D(in -> out, 1x1, no bias) -> BatchNorm2D -> ReLU.
func PointWiseBlock[B tensor.Backend](in, out int, backend B) *nn.Sequential[B] {
	return blocks.PointWiseBlock(in, out, backend)
}

// ConvBlock builds Conv2D(in -> out, kernel, stride, padding, no bias) -> BatchNorm2D -> ReLU.
func ConvBlock[B tensor.Backend](in, out, kernel, stride, padding int, backend B) *nn.Sequential[B] {
	return blocks.ConvBlock(in, out, kernel, stride, padding, backend)
}

// Conv3x3 builds a 3x3 convolution with padding 1 and no bias.
func Conv3x3[B tensor.Backend](in, out, stride int, backend B) *nn.Conv2D[B] {
	return blocks.Conv3x3(in, out, stride, backend)
}

// DefaultInceptionConfig returns a config with stride 1 and a 3x3 pool.
func DefaultInceptionConfig(inPlanes, outPlanes int) InceptionConfig {
	return blocks.DefaultInceptionConfig(inPlanes, outPlanes)
}

// NewInceptionBlock creates an inception block. It panics if cfg is invalid.
func NewInceptionBlock[B tensor.Backend](cfg InceptionConfig, backend B) *InceptionBlock[B] {
	return blocks.NewInceptionBlock(cfg, backend)
}

// DefaultSEConfig returns a config with reduction 16.
func DefaultSEConfig(channels int) SEConfig {
	return blocks.DefaultSEConfig(channels)
}

// NewSELayer creates a squeeze-and-excitation layer. It panics if cfg is invalid.
func NewSELayer[B tensor.Backend](cfg SEConfig, backend B) *SELayer[B] {
	return blocks.NewSELayer(cfg, backend)
}

// NewChannelAttention creates the channel stage of CBAM.
func NewChannelAttention[B tensor.Backend](channels, ratio int, backend B) *ChannelAttention[B] {
	return blocks.NewChannelAttention(channels, ratio, backend)
}

// NewSpatialAttention creates the spatial stage of CBAM.
func NewSpatialAttention[B tensor.Backend](kernel int, backend B) *SpatialAttention[B] {
	return blocks.NewSpatialAttention(kernel, backend)
}

// DefaultCBAMConfig returns a config with ratio 8 and a 7x7 spatial kernel.
func DefaultCBAMConfig(channels int) CBAMConfig {
	return blocks.DefaultCBAMConfig(channels)
}

// NewCBAMBlock creates a CBAM block with the default ratio and kernel.
func NewCBAMBlock[B tensor.Backend](channels int, backend B) *CBAMBlock[B] {
	return blocks.NewCBAMBlock(channels, backend)
}

// NewCBAMBlockWithConfig creates a CBAM block. It panics if cfg is invalid.
func NewCBAMBlockWithConfig[B tensor.Backend](cfg CBAMConfig, backend B) *CBAMBlock[B] {
	return blocks.NewCBAMBlockWithConfig(cfg, backend)
}
