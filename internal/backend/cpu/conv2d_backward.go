package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/vision/internal/parallel"
	"github.com/born-ml/vision/internal/tensor"
)

// Conv2DInputBackward computes dL/dInput for Conv2D.
//
// For every image: dCol = kernel^T @ grad, then col2im folds dCol back into
// the input layout, accumulating overlapping taps.
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	g := convGeometryOf("conv2d_input_backward", input.Shape(), kernel.Shape(), stride, padding)
	checkConvGrad("conv2d_input_backward", grad, g)

	result := cpu.newResult("conv2d_input_backward", input.Shape(), input.DType())
	switch input.DType() {
	case tensor.Float32:
		conv2dInputBackwardKernel[float32](result, kernel, grad, g, cpu.parallel)
	case tensor.Float64:
		conv2dInputBackwardKernel[float64](result, kernel, grad, g, cpu.parallel)
	default:
		panic(unsupportedDType("conv2d_input_backward", input.DType()))
	}
	return result
}

// Conv2DKernelBackward computes dL/dKernel for Conv2D.
//
// dKernel = sum over images of grad @ im2col(input)^T.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	g := convGeometryOf("conv2d_kernel_backward", input.Shape(), kernel.Shape(), stride, padding)
	checkConvGrad("conv2d_kernel_backward", grad, g)

	result := cpu.newResult("conv2d_kernel_backward", kernel.Shape(), kernel.DType())
	switch input.DType() {
	case tensor.Float32:
		conv2dKernelBackwardKernel[float32](result, input, grad, g)
	case tensor.Float64:
		conv2dKernelBackwardKernel[float64](result, input, grad, g)
	default:
		panic(unsupportedDType("conv2d_kernel_backward", input.DType()))
	}
	return result
}

func checkConvGrad(op string, grad *tensor.RawTensor, g convGeometry) {
	want := tensor.Shape{g.n, g.cOut, g.hOut, g.wOut}
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("%s: grad shape %v, expected %v", op, grad.Shape(), want))
	}
}

func conv2dInputBackwardKernel[T tensor.DType](result, kernel, grad *tensor.RawTensor, g convGeometry, cfg parallel.Config) {
	dx := tensor.Values[T](result)
	dy := tensor.Values[T](grad)
	k := matrix[T]{g.cOut, g.colRows(), tensor.Values[T](kernel)}

	imgSize := g.cIn * g.h * g.w
	outSize := g.cOut * g.colCols()
	work := g.cOut * g.colRows() * g.colCols()

	parallel.ForRange(g.n, work, func(start, end int) {
		dcol := make([]T, g.colRows()*g.colCols())
		for n := start; n < end; n++ {
			gemm(blas.Trans, blas.NoTrans, 1,
				k,
				matrix[T]{g.cOut, g.colCols(), dy[n*outSize : (n+1)*outSize]},
				0,
				matrix[T]{g.colRows(), g.colCols(), dcol})
			col2im(dx[n*imgSize:(n+1)*imgSize], dcol, g)
		}
	}, cfg)
}

// conv2dKernelBackwardKernel accumulates over the batch sequentially so the
// kernel gradient is written by a single GEMM chain.
func conv2dKernelBackwardKernel[T tensor.DType](result, input, grad *tensor.RawTensor, g convGeometry) {
	in := tensor.Values[T](input)
	dy := tensor.Values[T](grad)
	dk := matrix[T]{g.cOut, g.colRows(), tensor.Values[T](result)}

	imgSize := g.cIn * g.h * g.w
	outSize := g.cOut * g.colCols()
	col := make([]T, g.colRows()*g.colCols())

	for n := 0; n < g.n; n++ {
		im2col(col, in[n*imgSize:(n+1)*imgSize], g)
		gemm(blas.NoTrans, blas.Trans, 1,
			matrix[T]{g.cOut, g.colCols(), dy[n*outSize : (n+1)*outSize]},
			matrix[T]{g.colRows(), g.colCols(), col},
			1,
			dk)
	}
}
