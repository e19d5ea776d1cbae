package nn

import (
	"github.com/born-ml/vision/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Example:
//
//	weight := nn.NewParameter("conv2d.weight", weightTensor)
//	w := weight.Tensor()
//
//	grads := autodiff.Backward(out, backend)
//	nn.AssignGrads(block.Parameters(), grads)
//	g := weight.Grad()
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before any backward pass.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// AssignGrads copies gradients from a backward pass result into params.
// Parameters that did not contribute to the output keep a nil gradient.
func AssignGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range params {
		g, ok := grads[p.tensor.Raw()]
		if !ok {
			p.grad = nil
			continue
		}
		p.grad = tensor.New[float32](g, p.tensor.Backend())
	}
}

// appendUnique appends params not already present in dst.
func appendUnique[B tensor.Backend](dst []*Parameter[B], params ...*Parameter[B]) []*Parameter[B] {
	for _, p := range params {
		seen := false
		for _, q := range dst {
			if q == p {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, p)
		}
	}
	return dst
}

// CollectParameters gathers the parameters of mods in order, listing shared
// parameters once.
func CollectParameters[B tensor.Backend](mods ...Module[B]) []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range mods {
		params = appendUnique(params, m.Parameters()...)
	}
	return params
}
