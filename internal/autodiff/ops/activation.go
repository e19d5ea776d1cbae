package ops

import (
	"fmt"

	"github.com/born-ml/vision/internal/tensor"
)

// ReLUOp represents output = max(0, x).
//
// Backward: grad where x > 0, else 0.
type ReLUOp struct{ node }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{newNode(output, input)}
}

// Backward computes the input gradient for ReLU.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	mask := positiveMask(op.inputs[0], backend.Device())
	return grads(backend.Mul(outputGrad, mask))
}

// positiveMask returns 1 where input > 0 and 0 elsewhere.
func positiveMask(input *tensor.RawTensor, device tensor.Device) *tensor.RawTensor {
	mask, err := tensor.NewRaw(input.Shape(), input.DType(), device)
	if err != nil {
		panic(fmt.Sprintf("relu: failed to create mask: %v", err))
	}
	switch input.DType() {
	case tensor.Float32:
		fillPositiveMask(tensor.Values[float32](mask), tensor.Values[float32](input))
	case tensor.Float64:
		fillPositiveMask(tensor.Values[float64](mask), tensor.Values[float64](input))
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", input.DType()))
	}
	return mask
}

func fillPositiveMask[T tensor.DType](mask, input []T) {
	for i, v := range input {
		if v > 0 {
			mask[i] = 1
		}
	}
}

// SigmoidOp represents output = 1/(1+exp(-x)).
//
// Backward: grad * output * (1 - output).
type SigmoidOp struct{ node }

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{newNode(output, input)}
}

// Backward computes the input gradient for sigmoid.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	oneMinusY := backend.AddScalar(backend.MulScalar(y, -1), 1)
	return grads(backend.Mul(outputGrad, backend.Mul(y, oneMinusY)))
}

// RsqrtOp represents output = 1/sqrt(x).
//
// Backward: grad * (-0.5) * output^3.
type RsqrtOp struct{ node }

// NewRsqrtOp creates a new RsqrtOp.
func NewRsqrtOp(input, output *tensor.RawTensor) *RsqrtOp {
	return &RsqrtOp{newNode(output, input)}
}

// Backward computes the input gradient for rsqrt.
func (op *RsqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	cube := backend.Mul(backend.Mul(y, y), y)
	return grads(backend.Mul(outputGrad, backend.MulScalar(cube, -0.5)))
}
