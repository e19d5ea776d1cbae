// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network layers vision blocks are built from.
//
// Layers:
//   - Linear: fully connected layer, optional bias
//   - Conv2D: 2D convolution with stride and zero padding
//   - MaxPool2D: max pooling with padding
//   - BatchNorm2D: per-channel normalization with running statistics
//   - AdaptiveAvgPool2D, AdaptiveMaxPool2D: global pooling to 1x1
//   - ReLU, Sigmoid: activations
//   - Sequential: container chaining modules
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	block := nn.NewSequential[Backend](
//	    nn.NewConv2D(3, 16, 3, 3, 1, 1, false, backend),
//	    nn.NewBatchNorm2D(16, 1e-5, 0.1, backend),
//	    nn.NewReLU[Backend](),
//	)
//	y := block.Forward(x)
//	nn.Eval[Backend](block) // use running statistics from now on
package nn

import (
	"github.com/born-ml/vision/internal/nn"
	"github.com/born-ml/vision/tensor"
)

// Module is the base interface for all neural network components.
type Module[B tensor.Backend] = nn.Module[B]

// ModeSetter is implemented by modules that behave differently in training and evaluation.
type ModeSetter = nn.ModeSetter

// Parameter is a trainable tensor with a gradient slot.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// Layer types.
type (
	Linear[B tensor.Backend]            = nn.Linear[B]
	Conv2D[B tensor.Backend]            = nn.Conv2D[B]
	MaxPool2D[B tensor.Backend]         = nn.MaxPool2D[B]
	BatchNorm2D[B tensor.Backend]       = nn.BatchNorm2D[B]
	AdaptiveAvgPool2D[B tensor.Backend] = nn.AdaptiveAvgPool2D[B]
	AdaptiveMaxPool2D[B tensor.Backend] = nn.AdaptiveMaxPool2D[B]
	ReLU[B tensor.Backend]              = nn.ReLU[B]
	Sigmoid[B tensor.Backend]           = nn.Sigmoid[B]
	Sequential[B tensor.Backend]        = nn.Sequential[B]
)

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// NewLinear creates a fully connected layer y = x @ W.T (+ b).
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, useBias bool, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, useBias, backend)
}

// NewConv2D creates a 2D convolution layer with Kaiming uniform weights.
//
// Example:
//
//	conv := nn.NewConv2D(64, 64, 3, 3, 1, 1, false, backend) // 3x3, same size
func NewConv2D[B tensor.Backend](inChannels, outChannels, kernelH, kernelW, stride, padding int, useBias bool, backend B) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, backend)
}

// NewMaxPool2D creates a max pooling layer. padding must not exceed kernelSize/2.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride, padding int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, padding, backend)
}

// NewBatchNorm2D creates a batch normalization layer in training mode.
func NewBatchNorm2D[B tensor.Backend](numFeatures int, eps, momentum float32, backend B) *BatchNorm2D[B] {
	return nn.NewBatchNorm2D(numFeatures, eps, momentum, backend)
}

// NewAdaptiveAvgPool2D creates a global average pooling layer. outputSize must be 1.
func NewAdaptiveAvgPool2D[B tensor.Backend](outputSize int) *AdaptiveAvgPool2D[B] {
	return nn.NewAdaptiveAvgPool2D[B](outputSize)
}

// NewAdaptiveMaxPool2D creates a global max pooling layer. outputSize must be 1.
func NewAdaptiveMaxPool2D[B tensor.Backend](outputSize int) *AdaptiveMaxPool2D[B] {
	return nn.NewAdaptiveMaxPool2D[B](outputSize)
}

// NewReLU creates a ReLU activation.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// NewSequential chains modules; each output feeds the next module.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Train switches m and every nested module to training mode.
func Train[B tensor.Backend](m Module[B]) {
	nn.Train(m)
}

// Eval switches m and every nested module to evaluation mode.
func Eval[B tensor.Backend](m Module[B]) {
	nn.Eval(m)
}

// CountParameters returns the number of scalar trainable parameters of m.
func CountParameters[B tensor.Backend](m Module[B]) int {
	return nn.CountParameters(m)
}

// AssignGrads stores the gradients of a backward pass on params.
//
// Example:
//
//	grads := autodiff.Backward(y, backend)
//	nn.AssignGrads(block.Parameters(), grads)
func AssignGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.AssignGrads(params, grads)
}

// Xavier returns a tensor drawn from the Glorot uniform distribution.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// KaimingUniform returns a tensor drawn from U(-1/sqrt(fanIn), 1/sqrt(fanIn)).
func KaimingUniform[B tensor.Backend](fanIn int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.KaimingUniform(fanIn, shape, backend)
}
