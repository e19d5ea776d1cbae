package nn

import (
	"fmt"

	"github.com/born-ml/vision/internal/tensor"
)

// AdaptiveAvgPool2D averages each channel over its spatial extent.
//
// Only output size 1 (global average pooling) is supported:
// [N, C, H, W] -> [N, C, 1, 1].
type AdaptiveAvgPool2D[B tensor.Backend] struct{}

// NewAdaptiveAvgPool2D creates a global average pooling module.
// outputSize must be 1.
func NewAdaptiveAvgPool2D[B tensor.Backend](outputSize int) *AdaptiveAvgPool2D[B] {
	if outputSize != 1 {
		panic(fmt.Sprintf("adaptive_avg_pool2d: only output size 1 is supported, got %d", outputSize))
	}
	return &AdaptiveAvgPool2D[B]{}
}

// Forward pools [N, C, H, W] to [N, C, 1, 1].
func (p *AdaptiveAvgPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(input.Shape()) != 4 {
		panic(fmt.Sprintf("adaptive_avg_pool2d: expected 4D input [N,C,H,W], got %dD", len(input.Shape())))
	}
	return input.MeanDim(3, true).MeanDim(2, true)
}

// Parameters returns nil.
func (p *AdaptiveAvgPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the module.
func (p *AdaptiveAvgPool2D[B]) String() string {
	return "AdaptiveAvgPool2D(output_size=1)"
}

// AdaptiveMaxPool2D takes each channel's maximum over its spatial extent.
//
// Only output size 1 (global max pooling) is supported:
// [N, C, H, W] -> [N, C, 1, 1].
type AdaptiveMaxPool2D[B tensor.Backend] struct{}

// NewAdaptiveMaxPool2D creates a global max pooling module.
// outputSize must be 1.
func NewAdaptiveMaxPool2D[B tensor.Backend](outputSize int) *AdaptiveMaxPool2D[B] {
	if outputSize != 1 {
		panic(fmt.Sprintf("adaptive_max_pool2d: only output size 1 is supported, got %d", outputSize))
	}
	return &AdaptiveMaxPool2D[B]{}
}

// Forward pools [N, C, H, W] to [N, C, 1, 1].
func (p *AdaptiveMaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(input.Shape()) != 4 {
		panic(fmt.Sprintf("adaptive_max_pool2d: expected 4D input [N,C,H,W], got %dD", len(input.Shape())))
	}
	return input.MaxDim(3, true).MaxDim(2, true)
}

// Parameters returns nil.
func (p *AdaptiveMaxPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the module.
func (p *AdaptiveMaxPool2D[B]) String() string {
	return "AdaptiveMaxPool2D(output_size=1)"
}
