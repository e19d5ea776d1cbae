// Package webgpu implements a GPU backend on WebGPU compute shaders.
//
// Convolution, max pooling, same-shape element-wise arithmetic, ReLU, Sigmoid
// and 2-D matrix multiplication run as WGSL kernels. Every other operation,
// and any call a kernel does not cover (broadcasting, float64), is delegated
// to the embedded CPU backend.
//
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings,
// which currently load wgpu-native on Windows only.
package webgpu

import "errors"

// ErrUnavailable is returned by New when no WebGPU adapter, device or native
// library can be used on this machine.
var ErrUnavailable = errors.New("webgpu: backend unavailable")
