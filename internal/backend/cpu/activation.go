package cpu

import (
	"math"

	"github.com/born-ml/vision/internal/tensor"
)

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return unary(cpu, "relu", x, relu[float32], relu[float64])
}

// Sigmoid computes 1/(1+exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return unary(cpu, "sigmoid", x, sigmoid[float32], sigmoid[float64])
}

func relu[T tensor.DType](v T) T {
	if v > 0 {
		return v
	}
	return 0
}

// sigmoid branches on sign so exp never overflows.
func sigmoid[T tensor.DType](v T) T {
	x := float64(v)
	if x >= 0 {
		return T(1 / (1 + math.Exp(-x)))
	}
	e := math.Exp(x)
	return T(e / (1 + e))
}
