package cpu

import (
	"math"

	"github.com/born-ml/vision/internal/tensor"
)

// AddScalar adds scalar to every element of x.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return unary(cpu, "add_scalar", x,
		func(v float32) float32 { return v + s32 },
		func(v float64) float64 { return v + scalar })
}

// MulScalar multiplies every element of x by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s32 := float32(scalar)
	return unary(cpu, "mul_scalar", x,
		func(v float32) float32 { return v * s32 },
		func(v float64) float64 { return v * scalar })
}

// Rsqrt computes 1/sqrt(x) element-wise.
func (cpu *CPUBackend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return unary(cpu, "rsqrt", x, rsqrt[float32], rsqrt[float64])
}

func rsqrt[T tensor.DType](v T) T {
	return T(1 / math.Sqrt(float64(v)))
}
