package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/vision/internal/tensor"
)

func TestSumDim(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{2, 3}, seq(6)...)

	out := b.SumDim(x, 0, false)
	assert.Equal(t, tensor.Shape{3}, out.Shape())
	assertFloats(t, []float32{5, 7, 9}, out.AsFloat32(), 0)

	kept := b.SumDim(x, -1, true)
	assert.Equal(t, tensor.Shape{2, 1}, kept.Shape())
	assertFloats(t, []float32{6, 15}, kept.AsFloat32(), 0)
}

func TestSumDim_ToScalar(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{4}, 1, 2, 3, 4)

	out := b.SumDim(x, 0, false)
	assert.Empty(t, out.Shape())
	assert.InDelta(t, 10, out.AsFloat32()[0], 0)
}

func TestMeanDim_ChannelAxis(t *testing.T) {
	b := New()
	// [1, 2, 2, 2]: channel 0 = 1..4, channel 1 = 5..8.
	x := rawFrom(t, tensor.Shape{1, 2, 2, 2}, seq(8)...)

	out := b.MeanDim(x, 1, true)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assertFloats(t, []float32{3, 4, 5, 6}, out.AsFloat32(), 1e-6)
}

func TestMaxDim(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{2, 3}, 3, -1, 2, -4, -5, -6)

	out := b.MaxDim(x, 1, false)
	assert.Equal(t, tensor.Shape{2}, out.Shape())
	assertFloats(t, []float32{3, -4}, out.AsFloat32(), 0)

	cols := b.MaxDim(x, 0, true)
	assert.Equal(t, tensor.Shape{1, 3}, cols.Shape())
	assertFloats(t, []float32{3, -1, 2}, cols.AsFloat32(), 0)
}

func TestArgMaxDim(t *testing.T) {
	x := rawFrom(t, tensor.Shape{2, 3}, 1, 7, 3, 4, 5, 9)

	assert.Equal(t, []int{3, 1, 5}, ArgMaxDim(x, 0))
	assert.Equal(t, []int{1, 5}, ArgMaxDim(x, 1))

	ties := rawFrom(t, tensor.Shape{3}, 2, 2, 2)
	assert.Equal(t, []int{0}, ArgMaxDim(ties, 0))
}

func TestReducedShape(t *testing.T) {
	s := tensor.Shape{2, 3, 4}
	assert.Equal(t, tensor.Shape{2, 4}, ReducedShape(s, 1, false))
	assert.Equal(t, tensor.Shape{2, 1, 4}, ReducedShape(s, 1, true))
}

func TestReduceInvalidDimPanics(t *testing.T) {
	b := New()
	x := rawFrom(t, tensor.Shape{2, 3}, seq(6)...)
	assert.Panics(t, func() { b.SumDim(x, 2, false) })
}
