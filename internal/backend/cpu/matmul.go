package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/vision/internal/tensor"
)

// MatMul performs matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	checkSameDType("matmul", a, b)
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: requires 2D tensors, got %v and %v", aShape, bShape))
	}

	M, K := aShape[0], aShape[1]
	K2, N := bShape[0], bShape[1]
	if K != K2 {
		panic(fmt.Sprintf("matmul: shape mismatch: (%d, %d) @ (%d, %d)", M, K, K2, N))
	}

	result := cpu.newResult("matmul", tensor.Shape{M, N}, a.DType())
	switch a.DType() {
	case tensor.Float32:
		matmulKernel[float32](result, a, b, M, K, N)
	case tensor.Float64:
		matmulKernel[float64](result, a, b, M, K, N)
	default:
		panic(unsupportedDType("matmul", a.DType()))
	}
	return result
}

func matmulKernel[T tensor.DType](out, a, b *tensor.RawTensor, m, k, n int) {
	gemm(blas.NoTrans, blas.NoTrans, 1,
		matrix[T]{m, k, tensor.Values[T](a)},
		matrix[T]{k, n, tensor.Values[T](b)},
		0,
		matrix[T]{m, n, tensor.Values[T](out)})
}
