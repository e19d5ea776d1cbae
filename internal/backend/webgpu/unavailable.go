//go:build !windows

package webgpu

import (
	"fmt"
	"runtime"

	"github.com/born-ml/vision/internal/backend/cpu"
	"github.com/born-ml/vision/internal/tensor"
)

// Backend is the WebGPU backend. On this platform it cannot be constructed.
type Backend struct {
	*cpu.CPUBackend
}

// New reports ErrUnavailable: the WebGPU bindings only ship for Windows.
func New() (*Backend, error) {
	return nil, fmt.Errorf("%w: no native library for %s", ErrUnavailable, runtime.GOOS)
}

// IsAvailable reports whether New can succeed.
func IsAvailable() bool {
	return false
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the WebGPU device type.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// Release is a no-op on this platform.
func (b *Backend) Release() {}
