package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/vision/internal/tensor"
)

// matrix is a dense row-major matrix view over a tensor buffer.
type matrix[T tensor.DType] struct {
	rows, cols int
	data       []T
}

// gemm computes c = alpha*op(a)*op(b) + beta*c through gonum BLAS.
func gemm[T tensor.DType](transA, transB blas.Transpose, alpha T, a, b matrix[T], beta T, c matrix[T]) {
	switch cData := any(c.data).(type) {
	case []float32:
		blas32.Gemm(transA, transB, float32(alpha),
			blas32.General{Rows: a.rows, Cols: a.cols, Stride: a.cols, Data: any(a.data).([]float32)},
			blas32.General{Rows: b.rows, Cols: b.cols, Stride: b.cols, Data: any(b.data).([]float32)},
			float32(beta),
			blas32.General{Rows: c.rows, Cols: c.cols, Stride: c.cols, Data: cData})
	case []float64:
		blas64.Gemm(transA, transB, float64(alpha),
			blas64.General{Rows: a.rows, Cols: a.cols, Stride: a.cols, Data: any(a.data).([]float64)},
			blas64.General{Rows: b.rows, Cols: b.cols, Stride: b.cols, Data: any(b.data).([]float64)},
			float64(beta),
			blas64.General{Rows: c.rows, Cols: c.cols, Stride: c.cols, Data: cData})
	default:
		panic("gemm: unsupported element type")
	}
}
