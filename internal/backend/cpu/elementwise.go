package cpu

import (
	"fmt"

	"github.com/born-ml/vision/internal/parallel"
	"github.com/born-ml/vision/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary(cpu, "add", a, b, add[float32], add[float64])
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary(cpu, "sub", a, b, sub[float32], sub[float64])
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary(cpu, "mul", a, b, mul[float32], mul[float64])
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return binary(cpu, "div", a, b, div[float32], div[float64])
}

func add[T tensor.DType](x, y T) T { return x + y }
func sub[T tensor.DType](x, y T) T { return x - y }
func mul[T tensor.DType](x, y T) T { return x * y }
func div[T tensor.DType](x, y T) T { return x / y }

// binary broadcasts a and b to a common shape and applies f element-wise.
// Inputs are never modified.
func binary(cpu *CPUBackend, op string, a, b *tensor.RawTensor,
	f32 func(x, y float32) float32, f64 func(x, y float64) float64,
) *tensor.RawTensor {
	checkSameDType(op, a, b)
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result := cpu.newResult(op, outShape, a.DType())
	switch a.DType() {
	case tensor.Float32:
		binaryKernel(result, a, b, f32, cpu.parallel)
	case tensor.Float64:
		binaryKernel(result, a, b, f64, cpu.parallel)
	default:
		panic(unsupportedDType(op, a.DType()))
	}
	return result
}

func binaryKernel[T tensor.DType](out, a, b *tensor.RawTensor, f func(x, y T) T, cfg parallel.Config) {
	dst := tensor.Values[T](out)
	av := tensor.Values[T](a)
	bv := tensor.Values[T](b)
	outShape := out.Shape()

	if a.Shape().Equal(outShape) && b.Shape().Equal(outShape) {
		parallel.ForRange(len(dst), 1, func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = f(av[i], bv[i])
			}
		}, cfg)
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStrides(a.Shape(), outShape)
	bStrides := computeBroadcastStrides(b.Shape(), outShape)
	parallel.ForRange(len(dst), len(outShape), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(av[computeFlatIndex(i, outStrides, aStrides)], bv[computeFlatIndex(i, outStrides, bStrides)])
		}
	}, cfg)
}

// unary applies f element-wise to a fresh copy of x's shape.
func unary(cpu *CPUBackend, op string, x *tensor.RawTensor,
	f32 func(v float32) float32, f64 func(v float64) float64,
) *tensor.RawTensor {
	result := cpu.newResult(op, x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		unaryKernel(result, x, f32, cpu.parallel)
	case tensor.Float64:
		unaryKernel(result, x, f64, cpu.parallel)
	default:
		panic(unsupportedDType(op, x.DType()))
	}
	return result
}

func unaryKernel[T tensor.DType](out, x *tensor.RawTensor, f func(v T) T, cfg parallel.Config) {
	dst := tensor.Values[T](out)
	src := tensor.Values[T](x)
	parallel.ForRange(len(dst), 1, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(src[i])
		}
	}, cfg)
}
