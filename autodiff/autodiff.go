// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// It wraps any backend in a decorator that records every operation on a
// gradient tape; Backward then walks the tape to compute gradients.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	block := blocks.NewSELayer(blocks.DefaultSEConfig(64), backend)
//
//	backend.Tape().StartRecording()
//	y := block.Forward(x)
//	grads := autodiff.Backward(y, backend)
//	nn.AssignGrads(block.Parameters(), grads)
package autodiff

import (
	"github.com/born-ml/vision/internal/autodiff"
	"github.com/born-ml/vision/internal/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new, non-recording gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is implemented by backends that own a gradient tape.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes the gradients of sum(t) with respect to every tensor that
// contributed to t while the tape was recording.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(t, backend)
}
