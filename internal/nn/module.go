// Package nn implements the neural network layers vision blocks are built from.
//
// This package provides:
//   - Module interface: Forward and Parameters for every component
//   - Parameter: trainable tensors with gradient slots
//   - Layers: Linear, Conv2D, MaxPool2D, BatchNorm2D, AdaptiveAvgPool2D, AdaptiveMaxPool2D
//   - Activations: ReLU, Sigmoid
//   - Sequential: container for stacking layers
//   - Train/Eval mode switching and parameter counting
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/born-ml/vision/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	block := nn.NewSequential[Backend](
//	    nn.NewConv2D(64, 32, 1, 1, 1, 0, false, backend),
//	    nn.NewBatchNorm2D(32, 1e-5, 0.1, backend),
//	    nn.NewReLU[Backend](),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including those of nested modules. Shared sub-modules are listed once.
	Parameters() []*Parameter[B]
}

// ModeSetter is implemented by modules whose behaviour differs between
// training and evaluation, or that contain such modules.
type ModeSetter interface {
	SetTraining(training bool)
}

// Train switches m (and every nested module) to training mode.
func Train[B tensor.Backend](m Module[B]) {
	setTraining(m, true)
}

// Eval switches m (and every nested module) to evaluation mode.
func Eval[B tensor.Backend](m Module[B]) {
	setTraining(m, false)
}

func setTraining[B tensor.Backend](m Module[B], training bool) {
	if s, ok := m.(ModeSetter); ok {
		s.SetTraining(training)
	}
}

// CountParameters returns the total number of scalar trainable parameters of m.
func CountParameters[B tensor.Backend](m Module[B]) int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.Tensor().NumElements()
	}
	return n
}

// SetTrainingAll forwards the training flag to every module in mods.
// Composite modules call it from their own SetTraining.
func SetTrainingAll[B tensor.Backend](training bool, mods ...Module[B]) {
	for _, m := range mods {
		setTraining(m, training)
	}
}
