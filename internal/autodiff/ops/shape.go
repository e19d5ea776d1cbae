package ops

import "github.com/born-ml/vision/internal/tensor"

// ReshapeOp represents any view that only changes the shape
// (Reshape, Squeeze, Unsqueeze).
//
// Backward reshapes the gradient back to the input shape.
type ReshapeOp struct{ node }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{newNode(output, input)}
}

// Backward computes the input gradient for reshape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return grads(backend.Reshape(outputGrad, op.inputs[0].Shape()))
}

// TransposeOp represents a permutation of dimensions.
//
// Backward applies the inverse permutation.
type TransposeOp struct {
	node
	axes []int
}

// NewTransposeOp creates a new TransposeOp. Empty axes means full reversal.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	ndim := len(input.Shape())
	perm := make([]int, ndim)
	if len(axes) == 0 {
		for i := range perm {
			perm[i] = ndim - 1 - i
		}
	} else {
		copy(perm, axes)
	}
	return &TransposeOp{node: newNode(output, input), axes: perm}
}

// Backward computes the input gradient for transpose.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return grads(backend.Transpose(outputGrad, inverse...))
}

// ExpandOp represents broadcasting an input to a larger shape.
//
// Backward sums the gradient over the expanded dimensions.
type ExpandOp struct{ node }

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(input, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{newNode(output, input)}
}

// Backward computes the input gradient for expand.
func (op *ExpandOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return grads(reduceBroadcast(outputGrad, op.inputs[0].Shape(), backend))
}

// CatOp represents concatenation along one dimension.
//
// Backward splits the gradient at the original input boundaries.
type CatOp struct {
	node
	dim int
}

// NewCatOp creates a new CatOp.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{node: newNode(output, inputs...), dim: output.Shape().NormalizeDim(dim)}
}

// Backward computes one gradient slice per input.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	result := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		size := in.Shape()[op.dim]
		result[i] = narrow(outputGrad, op.dim, offset, size, backend.Device())
		offset += size
	}
	return result
}
