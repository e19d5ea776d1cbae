package ops

import (
	"fmt"

	"github.com/born-ml/vision/internal/tensor"
)

// reduceBroadcast sums grad over the dimensions that broadcasting expanded so
// the result has targetShape.
//
// Example:
//
//	Forward: gate[2,8,1,1] * x[2,8,4,4] -> y[2,8,4,4]
//	Backward: grad_y[2,8,4,4] -> grad_gate[2,8,1,1] (sum over dims 2 and 3)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	for i, d := range targetShape {
		if d == 1 && result.Shape()[i] > 1 {
			result = backend.SumDim(result, i, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// expandReduced broadcasts a reduction gradient back to the input shape.
func expandReduced(grad *tensor.RawTensor, inputShape tensor.Shape, dim int, keepDim bool, backend tensor.Backend) *tensor.RawTensor {
	if !keepDim {
		grad = backend.Unsqueeze(grad, dim)
	}
	return backend.Expand(grad, inputShape)
}

// scatterAdd builds a zero tensor shaped like like and adds src[i] at flat
// offset indices[i].
func scatterAdd(like, src *tensor.RawTensor, indices []int, device tensor.Device) *tensor.RawTensor {
	if len(indices) != src.NumElements() {
		panic(fmt.Sprintf("scatter: %d indices for %d values", len(indices), src.NumElements()))
	}
	result, err := tensor.NewRaw(like.Shape(), src.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("scatter: %v", err))
	}
	switch src.DType() {
	case tensor.Float32:
		scatterAddTyped(tensor.Values[float32](result), tensor.Values[float32](src), indices)
	case tensor.Float64:
		scatterAddTyped(tensor.Values[float64](result), tensor.Values[float64](src), indices)
	default:
		panic(fmt.Sprintf("scatter: unsupported dtype %s", src.DType()))
	}
	return result
}

func scatterAddTyped[T tensor.DType](dst, src []T, indices []int) {
	for i, idx := range indices {
		dst[idx] += src[i]
	}
}

// narrow copies the slice [offset, offset+size) of t along dim.
func narrow(t *tensor.RawTensor, dim, offset, size int, device tensor.Device) *tensor.RawTensor {
	shape := t.Shape()
	outShape := shape.Clone()
	outShape[dim] = size

	result, err := tensor.NewRaw(outShape, t.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("narrow: %v", err))
	}

	es := t.DType().Size()
	outer, total, inner := shape.SplitAt(dim)
	srcRow := total * inner * es
	dstRow := size * inner * es
	start := offset * inner * es

	src, dst := t.Data(), result.Data()
	for o := 0; o < outer; o++ {
		copy(dst[o*dstRow:(o+1)*dstRow], src[o*srcRow+start:o*srcRow+start+dstRow])
	}
	return result
}
