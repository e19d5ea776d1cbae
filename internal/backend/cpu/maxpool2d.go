package cpu

import (
	"fmt"

	"github.com/born-ml/vision/internal/parallel"
	"github.com/born-ml/vision/internal/tensor"
)

// MaxPool2D performs 2D max pooling over NCHW input.
//
// Output size: out = (in + 2*padding - kernelSize)/stride + 1. Padded
// positions behave as -inf, so they never win the max; padding may not
// exceed kernelSize/2, which guarantees every window covers a real pixel.
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	g := poolGeometryOf(input.Shape(), kernelSize, stride, padding)

	output := cpu.newResult("maxpool2d", tensor.Shape{g.n, g.c, g.hOut, g.wOut}, input.DType())
	switch input.DType() {
	case tensor.Float32:
		maxPool2dKernel[float32](output, input, g, cpu.parallel)
	case tensor.Float64:
		maxPool2dKernel[float64](output, input, g, cpu.parallel)
	default:
		panic(unsupportedDType("maxpool2d", input.DType()))
	}
	return output
}

// MaxPool2DBackward routes each output gradient to the input element that
// produced the max. maxIndices holds one flat input offset per output element.
func (cpu *CPUBackend) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int) *tensor.RawTensor {
	if len(maxIndices) != grad.NumElements() {
		panic(fmt.Sprintf("maxpool2d_backward: %d indices for %d gradient elements", len(maxIndices), grad.NumElements()))
	}
	checkSameDType("maxpool2d_backward", input, grad)

	result := cpu.newResult("maxpool2d_backward", input.Shape(), input.DType())
	switch input.DType() {
	case tensor.Float32:
		scatterAdd(tensor.Values[float32](result), tensor.Values[float32](grad), maxIndices)
	case tensor.Float64:
		scatterAdd(tensor.Values[float64](result), tensor.Values[float64](grad), maxIndices)
	default:
		panic(unsupportedDType("maxpool2d_backward", input.DType()))
	}
	return result
}

// poolGeometry describes one MaxPool2D call over NCHW tensors.
type poolGeometry struct {
	n, c, h, w                  int
	hOut, wOut                  int
	kernelSize, stride, padding int
}

func poolGeometryOf(shape tensor.Shape, kernelSize, stride, padding int) poolGeometry {
	if len(shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: input must be 4D [N,C,H,W], got %dD", len(shape)))
	}
	if kernelSize <= 0 || stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: kernel size and stride must be positive, got %d and %d", kernelSize, stride))
	}
	if padding < 0 || padding > kernelSize/2 {
		panic(fmt.Sprintf("maxpool2d: padding %d must be in [0, %d]", padding, kernelSize/2))
	}

	g := poolGeometry{
		n: shape[0], c: shape[1], h: shape[2], w: shape[3],
		kernelSize: kernelSize, stride: stride, padding: padding,
	}
	if g.h+2*padding < kernelSize || g.w+2*padding < kernelSize {
		panic(fmt.Sprintf("maxpool2d: kernel %d larger than padded input %dx%d", kernelSize, g.h+2*padding, g.w+2*padding))
	}
	g.hOut = (g.h+2*padding-kernelSize)/stride + 1
	g.wOut = (g.w+2*padding-kernelSize)/stride + 1
	return g
}

// windowMax returns the flat offset (within plane) and value of the max of
// the pooling window at (oh, ow).
func windowMax[T tensor.DType](plane []T, g poolGeometry, oh, ow int) (int, T) {
	hStart := oh*g.stride - g.padding
	wStart := ow*g.stride - g.padding
	best := -1
	var bestVal T
	for kh := 0; kh < g.kernelSize; kh++ {
		ih := hStart + kh
		if ih < 0 || ih >= g.h {
			continue
		}
		for kw := 0; kw < g.kernelSize; kw++ {
			iw := wStart + kw
			if iw < 0 || iw >= g.w {
				continue
			}
			idx := ih*g.w + iw
			if best < 0 || plane[idx] > bestVal {
				best = idx
				bestVal = plane[idx]
			}
		}
	}
	return best, bestVal
}

func maxPool2dKernel[T tensor.DType](output, input *tensor.RawTensor, g poolGeometry, cfg parallel.Config) {
	in := tensor.Values[T](input)
	out := tensor.Values[T](output)
	planeIn := g.h * g.w
	planeOut := g.hOut * g.wOut

	parallel.ForBatch(g.n, g.c, planeOut*g.kernelSize*g.kernelSize, func(b, c int) {
		k := b*g.c + c
		plane := in[k*planeIn : (k+1)*planeIn]
		dst := out[k*planeOut : (k+1)*planeOut]
		for oh := 0; oh < g.hOut; oh++ {
			for ow := 0; ow < g.wOut; ow++ {
				_, v := windowMax(plane, g, oh, ow)
				dst[oh*g.wOut+ow] = v
			}
		}
	}, cfg)
}

// MaxPool2DIndices returns, for every element of the MaxPool2D output, the
// flat offset into input of the element that won its window. Ties keep the
// first element in row-major window order.
func MaxPool2DIndices(input *tensor.RawTensor, kernelSize, stride, padding int) []int {
	g := poolGeometryOf(input.Shape(), kernelSize, stride, padding)
	switch input.DType() {
	case tensor.Float32:
		return maxPool2dIndices(tensor.Values[float32](input), g)
	case tensor.Float64:
		return maxPool2dIndices(tensor.Values[float64](input), g)
	default:
		panic(unsupportedDType("maxpool2d", input.DType()))
	}
}

func maxPool2dIndices[T tensor.DType](in []T, g poolGeometry) []int {
	planeIn := g.h * g.w
	indices := make([]int, g.n*g.c*g.hOut*g.wOut)
	i := 0
	for k := 0; k < g.n*g.c; k++ {
		plane := in[k*planeIn : (k+1)*planeIn]
		for oh := 0; oh < g.hOut; oh++ {
			for ow := 0; ow < g.wOut; ow++ {
				idx, _ := windowMax(plane, g, oh, ow)
				indices[i] = k*planeIn + idx
				i++
			}
		}
	}
	return indices
}

// scatterAdd runs sequentially because overlapping windows may share a target.
func scatterAdd[T tensor.DType](dst, src []T, indices []int) {
	for i, idx := range indices {
		dst[idx] += src[i]
	}
}
