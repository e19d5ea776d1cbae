// Package optim implements parameter update rules for gradients produced by
// autodiff.Backward.
//
// This package provides:
//   - Optimizer interface: Step, ZeroGrad, LR
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation with bias correction
//
// Updates are applied in place to the parameter tensors, so a block keeps
// using the same Parameter values after a step.
//
// Example:
//
//	backend.Tape().StartRecording()
//	y := block.Forward(x)
//	grads := autodiff.Backward(y, backend)
//	backend.Tape().Clear()
//
//	opt := optim.NewSGD(block.Parameters(), optim.SGDConfig{LR: 0.01})
//	opt.Step(grads)
package optim

import (
	"github.com/born-ml/vision/internal/nn"
	"github.com/born-ml/vision/internal/tensor"
)

// Optimizer updates parameters from a gradient map.
type Optimizer interface {
	// Step applies one update. Parameters without a gradient are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradient slot of every parameter.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32
}

// gradientOf returns the float32 gradient of param, or nil if it has none.
func gradientOf[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) []float32 {
	g, ok := grads[param.Tensor().Raw()]
	if !ok || g == nil {
		return nil
	}
	return tensor.Values[float32](g)
}

func zeroGrads[B tensor.Backend](params []*nn.Parameter[B]) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
