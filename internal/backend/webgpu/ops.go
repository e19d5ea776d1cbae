//go:build windows

package webgpu

import (
	"github.com/born-ml/vision/internal/tensor"
)

// Add performs element-wise addition, on GPU for same-shape float32 operands.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !sameShapeFloat32(a, other) {
		return b.CPUBackend.Add(a, other)
	}
	return b.elementwise("add", addShader, a, other)
}

// Sub performs element-wise subtraction, on GPU for same-shape float32 operands.
func (b *Backend) Sub(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !sameShapeFloat32(a, other) {
		return b.CPUBackend.Sub(a, other)
	}
	return b.elementwise("sub", subShader, a, other)
}

// Mul performs element-wise multiplication, on GPU for same-shape float32 operands.
func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !sameShapeFloat32(a, other) {
		return b.CPUBackend.Mul(a, other)
	}
	return b.elementwise("mul", mulShader, a, other)
}

// Div performs element-wise division, on GPU for same-shape float32 operands.
func (b *Backend) Div(a, other *tensor.RawTensor) *tensor.RawTensor {
	if !sameShapeFloat32(a, other) {
		return b.CPUBackend.Div(a, other)
	}
	return b.elementwise("div", divShader, a, other)
}

// ReLU computes max(0, x) on GPU for float32 input.
func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return b.CPUBackend.ReLU(x)
	}
	return b.elementwise("relu", reluShader, x)
}

// Sigmoid computes 1/(1+exp(-x)) on GPU for float32 input.
func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return b.CPUBackend.Sigmoid(x)
	}
	return b.elementwise("sigmoid", sigmoidShader, x)
}

// MatMul multiplies 2-D float32 matrices on GPU.
func (b *Backend) MatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	as, os := a.Shape(), other.Shape()
	if a.DType() != tensor.Float32 || other.DType() != tensor.Float32 ||
		len(as) != 2 || len(os) != 2 || as[1] != os[0] {
		// The CPU backend owns argument validation and float64.
		return b.CPUBackend.MatMul(a, other)
	}

	m, k, n := as[0], as[1], os[1]
	out := tensor.Shape{m, n}
	data, err := b.run(kernel{
		name:   "matmul",
		code:   matmulShader,
		inputs: [][]byte{a.Data(), other.Data()},
		output: outputBytes(out),
		params: u32(m, k, n),
		groups: [3]uint32{groupsFor(n, 16), groupsFor(m, 16), 1},
	})
	return b.result("matmul", out, data, err)
}

// Conv2D convolves an NCHW float32 input on GPU.
func (b *Backend) Conv2D(input, kernelT *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	is, ks := input.Shape(), kernelT.Shape()
	if input.DType() != tensor.Float32 || kernelT.DType() != tensor.Float32 ||
		len(is) != 4 || len(ks) != 4 || is[1] != ks[1] || stride <= 0 || padding < 0 {
		return b.CPUBackend.Conv2D(input, kernelT, stride, padding)
	}

	n, cIn, h, w := is[0], is[1], is[2], is[3]
	cOut, kh, kw := ks[0], ks[2], ks[3]
	hOut := (h+2*padding-kh)/stride + 1
	wOut := (w+2*padding-kw)/stride + 1
	if h+2*padding < kh || w+2*padding < kw {
		return b.CPUBackend.Conv2D(input, kernelT, stride, padding)
	}

	out := tensor.Shape{n, cOut, hOut, wOut}
	data, err := b.run(kernel{
		name:   "conv2d",
		code:   conv2dShader,
		inputs: [][]byte{input.Data(), kernelT.Data()},
		output: outputBytes(out),
		params: u32(n, cIn, h, w, cOut, kh, kw, stride, padding, hOut, wOut),
		//nolint:gosec // G115: batch*channels is non-negative
		groups: [3]uint32{groupsFor(wOut, spatialTile), groupsFor(hOut, spatialTile), uint32(n * cOut)},
	})
	return b.result("conv2d", out, data, err)
}

// MaxPool2D pools an NCHW float32 input on GPU.
func (b *Backend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	is := input.Shape()
	if input.DType() != tensor.Float32 || len(is) != 4 || kernelSize <= 0 || stride <= 0 ||
		padding < 0 || padding > kernelSize/2 || is[2]+2*padding < kernelSize || is[3]+2*padding < kernelSize {
		return b.CPUBackend.MaxPool2D(input, kernelSize, stride, padding)
	}

	n, c, h, w := is[0], is[1], is[2], is[3]
	hOut := (h+2*padding-kernelSize)/stride + 1
	wOut := (w+2*padding-kernelSize)/stride + 1

	out := tensor.Shape{n, c, hOut, wOut}
	data, err := b.run(kernel{
		name:   "maxpool2d",
		code:   maxPool2dShader,
		inputs: [][]byte{input.Data()},
		output: outputBytes(out),
		params: u32(n, c, h, w, kernelSize, stride, padding, hOut, wOut),
		//nolint:gosec // G115: batch*channels is non-negative
		groups: [3]uint32{groupsFor(wOut, spatialTile), groupsFor(hOut, spatialTile), uint32(n * c)},
	})
	return b.result("maxpool2d", out, data, err)
}

// elementwise runs a 1-D kernel over same-shape float32 inputs.
func (b *Backend) elementwise(name, code string, inputs ...*tensor.RawTensor) *tensor.RawTensor {
	shape := inputs[0].Shape()
	buffers := make([][]byte, len(inputs))
	for i, in := range inputs {
		buffers[i] = in.Data()
	}

	data, err := b.run(kernel{
		name:   name,
		code:   code,
		inputs: buffers,
		output: outputBytes(shape),
		params: u32(shape.NumElements()),
		groups: [3]uint32{groupsFor(shape.NumElements(), workgroupSize), 1, 1},
	})
	return b.result(name, shape, data, err)
}

// result wraps kernel output bytes into a WebGPU tensor, panicking on GPU errors.
func (b *Backend) result(op string, shape tensor.Shape, data []byte, err error) *tensor.RawTensor {
	if err != nil {
		panic("webgpu: " + op + ": " + err.Error())
	}
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.WebGPU)
	if err != nil {
		panic("webgpu: " + op + ": " + err.Error())
	}
	copy(raw.Data(), data)
	return raw
}

func sameShapeFloat32(a, b *tensor.RawTensor) bool {
	return a.DType() == tensor.Float32 && b.DType() == tensor.Float32 && a.Shape().Equal(b.Shape())
}

func outputBytes(shape tensor.Shape) uint64 {
	//nolint:gosec // G115: element counts are non-negative
	return uint64(shape.NumElements() * tensor.Float32.Size())
}
