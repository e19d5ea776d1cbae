package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations and panic on
// shape or argument errors, prefixing the message with the op name.
//
// Implementations:
//   - CPU: pure Go, parallel kernels, gonum GEMM for matmul and convolution
//   - WebGPU: WGSL compute shaders with CPU fallback
//   - Autodiff: decorator over any backend that records a gradient tape
type Backend interface {
	// Element-wise binary operations with NumPy broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies 2-D matrices: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Conv2D convolves an NCHW input with an [Cout, Cin, KH, KW] kernel
	// using symmetric zero padding.
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor

	// MaxPool2D pools NCHW input; padded positions never win the max.
	MaxPool2D(input *RawTensor, kernelSize, stride, padding int) *RawTensor
	// MaxPool2DBackward scatters grad into an input-shaped tensor at the flat
	// input offsets recorded in maxIndices (one per output element).
	MaxPool2DBackward(input, grad *RawTensor, maxIndices []int) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Expand(t *RawTensor, newShape Shape) *RawTensor
	Squeeze(t *RawTensor, dim int) *RawTensor
	Unsqueeze(t *RawTensor, dim int) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Scalar operations.
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math and activations.
	Rsqrt(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor

	// Reductions along one dimension.
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
