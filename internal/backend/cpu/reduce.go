package cpu

import (
	"github.com/born-ml/vision/internal/parallel"
	"github.com/born-ml/vision/internal/tensor"
)

// SumDim sums x along dim. With keepDim the reduced dimension stays as size 1.
//
// Example:
//
//	x: [2, 3, 4], SumDim(x, 1, true) -> [2, 1, 4]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return reduce(cpu, "sumdim", x, dim, keepDim, sumReducer[float32], sumReducer[float64])
}

// MeanDim averages x along dim.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return reduce(cpu, "meandim", x, dim, keepDim, meanReducer[float32], meanReducer[float64])
}

// MaxDim takes the maximum of x along dim.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return reduce(cpu, "maxdim", x, dim, keepDim, maxReducer[float32], maxReducer[float64])
}

// reducer folds the size elements of one reduction fiber, read at stride
// inner from src, into a single value.
type reducer[T tensor.DType] func(src []T, size, inner int) T

func sumReducer[T tensor.DType](src []T, size, inner int) T {
	var acc T
	for i := 0; i < size; i++ {
		acc += src[i*inner]
	}
	return acc
}

func meanReducer[T tensor.DType](src []T, size, inner int) T {
	return sumReducer(src, size, inner) / T(size)
}

func maxReducer[T tensor.DType](src []T, size, inner int) T {
	acc := src[0]
	for i := 1; i < size; i++ {
		if v := src[i*inner]; v > acc {
			acc = v
		}
	}
	return acc
}

// ReducedShape returns shape with dim removed, or set to 1 when keepDim.
func ReducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	return out
}

func reduce(cpu *CPUBackend, op string, x *tensor.RawTensor, dim int, keepDim bool,
	f32 reducer[float32], f64 reducer[float64],
) *tensor.RawTensor {
	dim = x.Shape().NormalizeDim(dim)
	result := cpu.newResult(op, ReducedShape(x.Shape(), dim, keepDim), x.DType())

	switch x.DType() {
	case tensor.Float32:
		reduceKernel(result, x, dim, f32, cpu.parallel)
	case tensor.Float64:
		reduceKernel(result, x, dim, f64, cpu.parallel)
	default:
		panic(unsupportedDType(op, x.DType()))
	}
	return result
}

// reduceKernel views x as [outer, size, inner] and reduces the middle axis.
func reduceKernel[T tensor.DType](out, x *tensor.RawTensor, dim int, f reducer[T], cfg parallel.Config) {
	src := tensor.Values[T](x)
	dst := tensor.Values[T](out)
	_, size, inner := x.Shape().SplitAt(dim)

	parallel.ForRange(len(dst), size, func(start, end int) {
		for i := start; i < end; i++ {
			o, in := i/inner, i%inner
			dst[i] = f(src[o*size*inner+in:], size, inner)
		}
	}, cfg)
}

// ArgMaxDim returns, per reduced output element, the flat offset into x of the
// maximum along dim. Ties keep the first occurrence.
func ArgMaxDim(x *tensor.RawTensor, dim int) []int {
	dim = x.Shape().NormalizeDim(dim)
	switch x.DType() {
	case tensor.Float32:
		return argMaxDim(tensor.Values[float32](x), x.Shape(), dim)
	case tensor.Float64:
		return argMaxDim(tensor.Values[float64](x), x.Shape(), dim)
	default:
		panic(unsupportedDType("argmaxdim", x.DType()))
	}
}

func argMaxDim[T tensor.DType](src []T, shape tensor.Shape, dim int) []int {
	outer, size, inner := shape.SplitAt(dim)
	indices := make([]int, outer*inner)
	for i := range indices {
		o, in := i/inner, i%inner
		base := o*size*inner + in
		best := base
		for j := 1; j < size; j++ {
			if idx := base + j*inner; src[idx] > src[best] {
				best = idx
			}
		}
		indices[i] = best
	}
	return indices
}
