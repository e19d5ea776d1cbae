// Package ops defines the differentiable operations recorded on the gradient tape.
//
// Each operation keeps references to its inputs and output from the forward
// pass and maps an output gradient to one gradient per input:
//   - arithmetic: Add, Sub, Mul, Div (with broadcast reduction), AddScalar, MulScalar
//   - linear algebra: MatMul, Conv2D
//   - pooling and reductions: MaxPool2D, SumDim, MeanDim, MaxDim
//   - activations: ReLU, Sigmoid, Rsqrt
//   - shape: Reshape (also Squeeze/Unsqueeze), Transpose, Expand, Cat
package ops

import "github.com/born-ml/vision/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns one gradient per input; a nil entry means no gradient flows.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// node stores the graph edges shared by every operation.
type node struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func newNode(output *tensor.RawTensor, inputs ...*tensor.RawTensor) node {
	return node{inputs: inputs, output: output}
}

// Inputs returns the input tensors of the operation.
func (n *node) Inputs() []*tensor.RawTensor {
	return n.inputs
}

// Output returns the output tensor of the operation.
func (n *node) Output() *tensor.RawTensor {
	return n.output
}

func grads(g ...*tensor.RawTensor) []*tensor.RawTensor {
	return g
}
