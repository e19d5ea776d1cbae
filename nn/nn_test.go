// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/vision/backend/cpu"
	"github.com/born-ml/vision/nn"
	"github.com/born-ml/vision/tensor"
)

// TestModuleInterface verifies that the public layers satisfy Module.
func TestModuleInterface(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name   string
		module nn.Module[*cpu.Backend]
		input  tensor.Shape
		want   tensor.Shape
	}{
		{"Linear", nn.NewLinear(10, 5, true, backend), tensor.Shape{2, 10}, tensor.Shape{2, 5}},
		{"Conv2D", nn.NewConv2D(3, 4, 3, 3, 1, 1, false, backend), tensor.Shape{2, 3, 6, 6}, tensor.Shape{2, 4, 6, 6}},
		{"MaxPool2D", nn.NewMaxPool2D(2, 2, 0, backend), tensor.Shape{1, 3, 6, 6}, tensor.Shape{1, 3, 3, 3}},
		{"AdaptiveAvgPool2D", nn.NewAdaptiveAvgPool2D[*cpu.Backend](1), tensor.Shape{2, 3, 4, 4}, tensor.Shape{2, 3, 1, 1}},
		{
			"Sequential",
			nn.NewSequential[*cpu.Backend](
				nn.NewConv2D(3, 4, 1, 1, 1, 0, false, backend),
				nn.NewBatchNorm2D(4, 1e-5, 0.1, backend),
				nn.NewSigmoid[*cpu.Backend](),
			),
			tensor.Shape{2, 3, 5, 5},
			tensor.Shape{2, 4, 5, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.module.Forward(tensor.Randn[float32](tt.input, backend))
			assert.Equal(t, tt.want, out.Shape())
		})
	}
}

func TestTrainEval(t *testing.T) {
	backend := cpu.New()
	bn := nn.NewBatchNorm2D(2, 1e-5, 0.1, backend)
	var m nn.Module[*cpu.Backend] = bn

	nn.Eval(m)
	assert.False(t, bn.Training())
	nn.Train(m)
	assert.True(t, bn.Training())
	assert.Equal(t, 4, nn.CountParameters(m))
}
