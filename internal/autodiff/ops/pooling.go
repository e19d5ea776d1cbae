package ops

import (
	"github.com/born-ml/vision/internal/backend/cpu"
	"github.com/born-ml/vision/internal/tensor"
)

// MaxPool2DOp represents output = maxpool2d(input, kernelSize, stride, padding).
//
// Backward routes each output gradient to the input element that won its
// window (the subgradient of max). Overlapping windows accumulate.
type MaxPool2DOp struct {
	node
	kernelSize, stride, padding int
}

// NewMaxPool2DOp creates a new MaxPool2DOp.
func NewMaxPool2DOp(input, output *tensor.RawTensor, kernelSize, stride, padding int) *MaxPool2DOp {
	return &MaxPool2DOp{
		node:       newNode(output, input),
		kernelSize: kernelSize,
		stride:     stride,
		padding:    padding,
	}
}

// Backward computes the input gradient for max pooling.
func (op *MaxPool2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input := op.inputs[0]
	maxIndices := cpu.MaxPool2DIndices(input, op.kernelSize, op.stride, op.padding)
	return grads(backend.MaxPool2DBackward(input, outputGrad, maxIndices))
}

// SumDimOp represents output = sum(x, dim).
//
// Backward broadcasts the gradient back over the reduced dimension.
type SumDimOp struct {
	node
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{node: newNode(output, x), dim: x.Shape().NormalizeDim(dim), keepDim: keepDim}
}

// Backward computes the input gradient for a sum reduction.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	return grads(expandReduced(outputGrad, x.Shape(), op.dim, op.keepDim, backend))
}

// MeanDimOp represents output = mean(x, dim).
//
// Backward broadcasts grad/size back over the reduced dimension.
type MeanDimOp struct {
	node
	dim     int
	keepDim bool
}

// NewMeanDimOp creates a new MeanDimOp.
func NewMeanDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *MeanDimOp {
	return &MeanDimOp{node: newNode(output, x), dim: x.Shape().NormalizeDim(dim), keepDim: keepDim}
}

// Backward computes the input gradient for a mean reduction.
func (op *MeanDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	size := x.Shape()[op.dim]
	scaled := backend.MulScalar(outputGrad, 1/float64(size))
	return grads(expandReduced(scaled, x.Shape(), op.dim, op.keepDim, backend))
}

// MaxDimOp represents output = max(x, dim).
//
// Backward sends each gradient to the first position holding the maximum.
type MaxDimOp struct {
	node
	dim int
}

// NewMaxDimOp creates a new MaxDimOp.
func NewMaxDimOp(x, output *tensor.RawTensor, dim int) *MaxDimOp {
	return &MaxDimOp{node: newNode(output, x), dim: x.Shape().NormalizeDim(dim)}
}

// Backward computes the input gradient for a max reduction.
func (op *MaxDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	indices := cpu.ArgMaxDim(x, op.dim)
	return grads(scatterAdd(x, outputGrad, indices, backend.Device()))
}
