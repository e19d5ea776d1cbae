package cpu

import (
	"fmt"

	"github.com/born-ml/vision/internal/tensor"
)

// Reshape returns a view of t with newShape. The element count must match.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}
	return t.View(newShape)
}

// Squeeze removes dimension dim, which must have size 1.
func (cpu *CPUBackend) Squeeze(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	dim = shape.NormalizeDim(dim)
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d of %v has size %d, expected 1", dim, shape, shape[dim]))
	}
	return t.View(ReducedShape(shape, dim, false))
}

// Unsqueeze inserts a size-1 dimension at dim. Negative dims count from the
// end of the resulting shape.
func (cpu *CPUBackend) Unsqueeze(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	if dim < 0 || dim > len(shape) {
		panic(fmt.Sprintf("unsqueeze: dimension %d out of range for shape %v", dim, shape))
	}
	newShape := make(tensor.Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)
	return t.View(newShape)
}

// Transpose permutes dimensions. With no axes it reverses them.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	srcStrides := shape.ComputeStrides()
	permStrides := make([]int, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
		permStrides[i] = srcStrides[ax]
	}

	result := cpu.newResult("transpose", newShape, t.DType())
	gatherStrided(result, t, permStrides)
	return result
}

// Expand broadcasts t to newShape by repeating size-1 dimensions.
func (cpu *CPUBackend) Expand(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out, _, err := tensor.BroadcastShapes(t.Shape(), newShape)
	if err != nil || !out.Equal(newShape) {
		panic(fmt.Sprintf("expand: cannot expand %v to %v", t.Shape(), newShape))
	}

	result := cpu.newResult("expand", newShape, t.DType())
	gatherStrided(result, t, computeBroadcastStrides(t.Shape(), newShape))
	return result
}

// gatherStrided fills out (contiguous) by reading src through srcStrides,
// one stride per output dimension.
func gatherStrided(out, src *tensor.RawTensor, srcStrides []int) {
	es := src.DType().Size()
	dst := out.Data()
	from := src.Data()
	outStrides := out.Shape().ComputeStrides()
	n := out.NumElements()
	for i := 0; i < n; i++ {
		j := computeFlatIndex(i, outStrides, srcStrides)
		copy(dst[i*es:(i+1)*es], from[j*es:(j+1)*es])
	}
}

// Cat concatenates tensors along dim. All other dimensions must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors to concatenate")
	}

	first := tensors[0]
	ref := first.Shape()
	dim = ref.NormalizeDim(dim)

	outShape := ref.Clone()
	outShape[dim] = 0
	for i, t := range tensors {
		s := t.Shape()
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), first.DType()))
		}
		if len(s) != len(ref) {
			panic(fmt.Sprintf("cat: tensor %d has rank %d, expected %d", i, len(s), len(ref)))
		}
		for d := range s {
			if d != dim && s[d] != ref[d] {
				panic(fmt.Sprintf("cat: tensor %d shape %v mismatches %v outside dim %d", i, s, ref, dim))
			}
		}
		outShape[dim] += s[dim]
	}

	result := cpu.newResult("cat", outShape, first.DType())
	dst := result.Data()
	es := first.DType().Size()
	outer, total, inner := outShape.SplitAt(dim)
	rowBytes := total * inner * es

	offset := 0
	for _, t := range tensors {
		chunk := t.Shape()[dim] * inner * es
		src := t.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*rowBytes+offset:o*rowBytes+offset+chunk], src[o*chunk:(o+1)*chunk])
		}
		offset += chunk
	}
	return result
}
