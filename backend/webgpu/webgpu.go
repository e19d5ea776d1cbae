// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for GPU-accelerated tensor operations.
//
// Convolution, max pooling, element-wise arithmetic, activations and matrix
// multiplication run as WGSL compute shaders; everything else falls back to
// the CPU backend. The native bindings currently ship for Windows; elsewhere
// New returns ErrUnavailable.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    backend = autodiff.New(cpu.New()) // fall back
//	} else {
//	    defer gpu.Release()
//	}
package webgpu

import (
	internalwebgpu "github.com/born-ml/vision/internal/backend/webgpu"
	"github.com/born-ml/vision/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// ErrUnavailable is returned by New when WebGPU cannot be used.
var ErrUnavailable = internalwebgpu.ErrUnavailable

// New creates a new WebGPU backend. Call Release when done to free GPU resources.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// IsAvailable checks whether a WebGPU device can be created on this system.
//
// Example:
//
//	if webgpu.IsAvailable() {
//	    gpu, _ := webgpu.New()
//	    backend = autodiff.New(gpu)
//	}
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
