// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// The backend implements:
//   - im2col + GEMM convolution with zero padding (gonum BLAS)
//   - max pooling with padding, and the backward kernels of both
//   - NumPy-compatible broadcasting for element-wise ops
//   - float32 and float64 throughout
//
// Convolution, pooling and element-wise kernels split their work across
// goroutines when the tensors are large enough; see Config.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Randn[float32](tensor.Shape{8, 3, 32, 32}, backend)
//	conv := nn.NewConv2D(3, 16, 3, 3, 1, 1, false, backend)
//	y := conv.Forward(x) // [8, 16, 32, 32]
package cpu

import (
	internalcpu "github.com/born-ml/vision/internal/backend/cpu"
	"github.com/born-ml/vision/internal/parallel"
	"github.com/born-ml/vision/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Config controls how CPU kernels are parallelized.
type Config = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend using every available core.
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
//
// Example:
//
//	backend := cpu.NewWithConfig(cpu.Config{Enabled: false}) // single goroutine
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultConfig returns the parallelism settings New uses.
func DefaultConfig() Config {
	return parallel.DefaultConfig()
}
