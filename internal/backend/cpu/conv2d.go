package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/vision/internal/parallel"
	"github.com/born-ml/vision/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [N, C_in, H, W]
// Kernel shape: [C_out, C_in, K_h, K_w]
// Output shape: [N, C_out, H_out, W_out] with
// H_out = (H + 2*padding - K_h)/stride + 1.
//
// Each image is unfolded into a [C_in*K_h*K_w, H_out*W_out] matrix, so the
// output plane block for one image is a single GEMM with the flattened
// kernel. Images are processed in parallel.
//
// Reference: "High Performance Convolutional Neural Networks for Document Processing"
// (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	checkSameDType("conv2d", input, kernel)
	g := convGeometryOf("conv2d", input.Shape(), kernel.Shape(), stride, padding)

	output := cpu.newResult("conv2d", tensor.Shape{g.n, g.cOut, g.hOut, g.wOut}, input.DType())
	switch input.DType() {
	case tensor.Float32:
		conv2dKernel[float32](output, input, kernel, g, cpu.parallel)
	case tensor.Float64:
		conv2dKernel[float64](output, input, kernel, g, cpu.parallel)
	default:
		panic(unsupportedDType("conv2d", input.DType()))
	}
	return output
}

func conv2dKernel[T tensor.DType](output, input, kernel *tensor.RawTensor, g convGeometry, cfg parallel.Config) {
	in := tensor.Values[T](input)
	out := tensor.Values[T](output)
	k := matrix[T]{g.cOut, g.colRows(), tensor.Values[T](kernel)}

	imgSize := g.cIn * g.h * g.w
	outSize := g.cOut * g.colCols()
	work := g.cOut * g.colRows() * g.colCols()

	parallel.ForRange(g.n, work, func(start, end int) {
		col := make([]T, g.colRows()*g.colCols())
		for n := start; n < end; n++ {
			im2col(col, in[n*imgSize:(n+1)*imgSize], g)
			gemm(blas.NoTrans, blas.NoTrans, 1,
				k,
				matrix[T]{g.colRows(), g.colCols(), col},
				0,
				matrix[T]{g.cOut, g.colCols(), out[n*outSize : (n+1)*outSize]})
		}
	}, cfg)
}

// convGeometryOf validates conv2d arguments and derives output dimensions.
func convGeometryOf(op string, inputShape, kernelShape tensor.Shape, stride, padding int) convGeometry {
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("%s: input must be 4D [N,C,H,W], got %dD", op, len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("%s: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", op, len(kernelShape)))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("%s: stride must be positive, got %d", op, stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("%s: padding must be non-negative, got %d", op, padding))
	}
	if inputShape[1] != kernelShape[1] {
		panic(fmt.Sprintf("%s: input channels %d != kernel channels %d", op, inputShape[1], kernelShape[1]))
	}

	g := convGeometry{
		n: inputShape[0], cIn: inputShape[1], h: inputShape[2], w: inputShape[3],
		cOut: kernelShape[0], kh: kernelShape[2], kw: kernelShape[3],
		stride: stride, padding: padding,
	}
	g.hOut = (g.h+2*padding-g.kh)/stride + 1
	g.wOut = (g.w+2*padding-g.kw)/stride + 1
	if g.h+2*padding < g.kh || g.w+2*padding < g.kw {
		panic(fmt.Sprintf("%s: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", op, g.hOut, g.wOut))
	}
	return g
}
