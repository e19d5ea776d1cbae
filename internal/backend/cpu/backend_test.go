package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vision/internal/parallel"
	"github.com/born-ml/vision/internal/tensor"
)

// rawFrom builds a float32 tensor with the given shape and values.
func rawFrom(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	require.Len(t, values, shape.NumElements())
	copy(raw.AsFloat32(), values)
	return raw
}

func seq(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i + 1)
	}
	return out
}

func assertFloats(t *testing.T, expected, actual []float32, delta float64) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "element %d", i)
	}
}

func TestBackendMetadata(t *testing.T) {
	b := New()
	assert.Equal(t, "CPU", b.Name())
	assert.Equal(t, tensor.CPU, b.Device())

	seqBackend := NewWithConfig(parallel.Sequential())
	assert.False(t, seqBackend.ParallelConfig().Enabled)
}

func TestAddSameShape(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
	y := rawFrom(t, tensor.Shape{2, 2}, 10, 20, 30, 40)

	out := b.Add(x, y)
	assertFloats(t, []float32{11, 22, 33, 44}, out.AsFloat32(), 0)

	// Inputs stay untouched.
	assertFloats(t, []float32{1, 2, 3, 4}, x.AsFloat32(), 0)
}

func TestBroadcastOps(t *testing.T) {
	b := New()

	x := rawFrom(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	row := rawFrom(t, tensor.Shape{3}, 10, 20, 30)
	out := b.Add(x, row)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assertFloats(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32(), 0)

	col := rawFrom(t, tensor.Shape{2, 1}, 2, 3)
	rowT := rawFrom(t, tensor.Shape{1, 3}, 1, 2, 3)
	prod := b.Mul(col, rowT)
	assert.Equal(t, tensor.Shape{2, 3}, prod.Shape())
	assertFloats(t, []float32{2, 4, 6, 3, 6, 9}, prod.AsFloat32(), 0)

	diff := b.Sub(x, col)
	assertFloats(t, []float32{-1, 0, 1, 1, 2, 3}, diff.AsFloat32(), 0)

	quot := b.Div(x, col)
	assertFloats(t, []float32{0.5, 1, 1.5, 4.0 / 3, 5.0 / 3, 2}, quot.AsFloat32(), 1e-6)
}

func TestBroadcastChannelScale(t *testing.T) {
	// Per-channel gate [N, C, 1, 1] applied over [N, C, H, W].
	b := New()
	x := rawFrom(t, tensor.Shape{1, 2, 2, 2}, seq(8)...)
	w := rawFrom(t, tensor.Shape{1, 2, 1, 1}, 0.5, 2)

	out := b.Mul(x, w)
	assertFloats(t, []float32{0.5, 1, 1.5, 2, 10, 12, 14, 16}, out.AsFloat32(), 1e-6)
}

func TestBroadcastIncompatiblePanics(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{2, 3}, seq(6)...)
	y := rawFrom(t, tensor.Shape{2, 2}, seq(4)...)
	assert.PanicsWithValue(t,
		"add: shapes not compatible for broadcasting: [2 3] vs [2 2] (dimension 1: 3 vs 2)",
		func() { b.Add(x, y) })
}

func TestScalarAndMathOps(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{3}, 1, 4, 16)

	assertFloats(t, []float32{3, 6, 18}, b.AddScalar(x, 2).AsFloat32(), 0)
	assertFloats(t, []float32{0.5, 2, 8}, b.MulScalar(x, 0.5).AsFloat32(), 0)
	assertFloats(t, []float32{1, 0.5, 0.25}, b.Rsqrt(x).AsFloat32(), 1e-6)
}

func TestActivations(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{4}, -2, 0, 3, -1000)

	assertFloats(t, []float32{0, 0, 3, 0}, b.ReLU(x).AsFloat32(), 0)

	s := b.Sigmoid(x).AsFloat32()
	assert.InDelta(t, 0.1192029, s[0], 1e-6)
	assert.InDelta(t, 0.5, s[1], 1e-7)
	assert.InDelta(t, 0.9525741, s[2], 1e-6)
	assert.InDelta(t, 0.0, s[3], 1e-7)
}

func TestFloat64Ops(t *testing.T) {
	b := New()
	x, err := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(x.AsFloat64(), []float64{1, -2})

	out := b.ReLU(b.Add(x, x))
	assert.Equal(t, []float64{2, 0}, out.AsFloat64())
}

func TestDTypeMismatchPanics(t *testing.T) {
	b := New()
	x, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float32, tensor.CPU)
	y, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	assert.Panics(t, func() { b.Mul(x, y) })
}

func TestMatMul(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
	y := rawFrom(t, tensor.Shape{2, 2}, 5, 6, 7, 8)

	out := b.MatMul(x, y)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assertFloats(t, []float32{19, 22, 43, 50}, out.AsFloat32(), 1e-5)
}

func TestMatMulRectangular(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{1, 3}, 1, 2, 3)
	y := rawFrom(t, tensor.Shape{3, 2}, 1, 0, 0, 1, 1, 1)

	out := b.MatMul(x, y)
	assert.Equal(t, tensor.Shape{1, 2}, out.Shape())
	assertFloats(t, []float32{4, 5}, out.AsFloat32(), 1e-6)
}

func TestMatMulShapeMismatchPanics(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{2, 3}, seq(6)...)
	y := rawFrom(t, tensor.Shape{2, 3}, seq(6)...)
	assert.Panics(t, func() { b.MatMul(x, y) })
}
