package cpu

import "github.com/born-ml/vision/internal/tensor"

// computeBroadcastStrides returns strides for reading inShape as if it had
// outShape: padded and size-1 dimensions get stride 0.
func computeBroadcastStrides(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	strides := make([]int, outDim)
	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		if inIdx < 0 || inShape[inIdx] == 1 {
			continue
		}
		strides[i] = origStrides[inIdx]
	}
	return strides
}

// computeFlatIndex maps a flat output index to the flat input index given
// output strides and broadcast-adjusted input strides.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}
