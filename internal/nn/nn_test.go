package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vision/internal/autodiff"
	"github.com/born-ml/vision/internal/backend/cpu"
	"github.com/born-ml/vision/internal/nn"
	"github.com/born-ml/vision/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newBackend() Backend {
	return autodiff.New(cpu.New())
}

func fromSlice(t *testing.T, b Backend, shape tensor.Shape, values ...float32) *tensor.Tensor[float32, Backend] {
	t.Helper()
	x, err := tensor.FromSlice(values, shape, b)
	require.NoError(t, err)
	return x
}

func TestLinear_Forward(t *testing.T) {
	b := newBackend()
	fc := nn.NewLinear(3, 2, true, b)
	copy(fc.Weight().Tensor().Data(), []float32{
		1, 0, -1,
		2, 1, 0,
	})
	copy(fc.Bias().Tensor().Data(), []float32{0.5, -0.5})

	x := fromSlice(t, b, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	y := fc.Forward(x)

	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.InDeltaSlice(t, []float32{-1.5, 3.5, -1.5, 12.5}, y.Data(), 1e-6)
	assert.Len(t, fc.Parameters(), 2)
	assert.Equal(t, "Linear(in_features=3, out_features=2, bias=true)", fc.String())
}

func TestLinear_NoBias(t *testing.T) {
	b := newBackend()
	fc := nn.NewLinear(8, 2, false, b)
	assert.Nil(t, fc.Bias())
	assert.Len(t, fc.Parameters(), 1)
	assert.Equal(t, 16, nn.CountParameters[Backend](fc))

	assert.Panics(t, func() { fc.Forward(tensor.Zeros[float32](tensor.Shape{1, 7}, b)) })
}

func TestConv2D_ShapesAndInit(t *testing.T) {
	b := newBackend()
	conv := nn.NewConv2D(3, 8, 3, 3, 1, 1, false, b)

	x := tensor.Randn[float32](tensor.Shape{2, 3, 10, 10}, b)
	y := conv.Forward(x)
	assert.Equal(t, tensor.Shape{2, 8, 10, 10}, y.Shape())
	assert.Equal(t, [2]int{10, 10}, conv.ComputeOutputSize(10, 10))

	bound := 1 / math.Sqrt(27)
	for _, w := range conv.Weight().Tensor().Data() {
		assert.LessOrEqual(t, math.Abs(float64(w)), bound+1e-6)
	}

	strided := nn.NewConv2D(3, 4, 5, 5, 2, 2, true, b)
	assert.Equal(t, tensor.Shape{2, 4, 5, 5}, strided.Forward(x).Shape())
	assert.Equal(t, 4*3*25+4, nn.CountParameters[Backend](strided))
	assert.Nil(t, conv.Bias())
	assert.Equal(t, tensor.Shape{4}, strided.Bias().Tensor().Shape())

	assert.Panics(t, func() { conv.Forward(tensor.Zeros[float32](tensor.Shape{1, 4, 5, 5}, b)) })
	assert.Panics(t, func() { nn.NewConv2D(3, 8, 3, 3, 0, 1, false, b) })
}

func TestConv2D_BiasBroadcast(t *testing.T) {
	b := newBackend()
	conv := nn.NewConv2D(1, 2, 1, 1, 1, 0, true, b)
	copy(conv.Weight().Tensor().Data(), []float32{1, 2})
	copy(conv.Parameters()[1].Tensor().Data(), []float32{10, 20})

	x := fromSlice(t, b, tensor.Shape{1, 1, 2, 2}, 1, 2, 3, 4)
	y := conv.Forward(x)
	assert.InDeltaSlice(t, []float32{11, 12, 13, 14, 22, 24, 26, 28}, y.Data(), 1e-6)
}

func TestMaxPool2D_Padding(t *testing.T) {
	b := newBackend()
	pool := nn.NewMaxPool2D(3, 1, 1, b)

	x := fromSlice(t, b, tensor.Shape{1, 1, 3, 3},
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	)
	y := pool.Forward(x)
	assert.Equal(t, tensor.Shape{1, 1, 3, 3}, y.Shape())
	assert.InDeltaSlice(t, []float32{5, 6, 6, 8, 9, 9, 8, 9, 9}, y.Data(), 1e-6)
	assert.Nil(t, pool.Parameters())

	assert.Panics(t, func() { nn.NewMaxPool2D(3, 1, 2, b) })
}

func TestAdaptivePools(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, b, tensor.Shape{1, 2, 2, 2},
		1, 2, 3, 4,
		-1, -2, -3, 8,
	)

	avg := nn.NewAdaptiveAvgPool2D[Backend](1).Forward(x)
	assert.Equal(t, tensor.Shape{1, 2, 1, 1}, avg.Shape())
	assert.InDeltaSlice(t, []float32{2.5, 0.5}, avg.Data(), 1e-6)

	mx := nn.NewAdaptiveMaxPool2D[Backend](1).Forward(x)
	assert.Equal(t, tensor.Shape{1, 2, 1, 1}, mx.Shape())
	assert.InDeltaSlice(t, []float32{4, 8}, mx.Data(), 1e-6)

	assert.Panics(t, func() { nn.NewAdaptiveAvgPool2D[Backend](2) })
}

func TestBatchNorm2D_TrainingNormalizesAndTracks(t *testing.T) {
	b := newBackend()
	bn := nn.NewBatchNorm2D(1, 1e-5, 0.1, b)
	require.True(t, bn.Training())

	x := fromSlice(t, b, tensor.Shape{2, 1, 1, 2}, 1, 2, 3, 4)
	y := bn.Forward(x)

	// mean 2.5, biased var 1.25
	inv := 1 / math.Sqrt(1.25+1e-5)
	want := []float32{float32(-1.5 * inv), float32(-0.5 * inv), float32(0.5 * inv), float32(1.5 * inv)}
	assert.InDeltaSlice(t, want, y.Data(), 1e-5)

	assert.InDelta(t, 0.25, bn.RunningMean().Data()[0], 1e-6)
	assert.InDelta(t, 0.9+0.1*5.0/3.0, bn.RunningVar().Data()[0], 1e-6)
	assert.Equal(t, 1, bn.NumBatchesTracked())
}

func TestBatchNorm2D_EvalUsesRunningStats(t *testing.T) {
	b := newBackend()
	bn := nn.NewBatchNorm2D(2, 1e-5, 0.1, b)
	nn.Eval[Backend](bn)
	require.False(t, bn.Training())

	x := fromSlice(t, b, tensor.Shape{1, 2, 1, 1}, 3, -2)
	y := bn.Forward(x)

	scale := 1 / math.Sqrt(1+1e-5)
	assert.InDeltaSlice(t, []float32{float32(3 * scale), float32(-2 * scale)}, y.Data(), 1e-6)
	assert.Equal(t, 0, bn.NumBatchesTracked())

	// A single value per channel is fine in eval mode but not in training.
	nn.Train[Backend](bn)
	assert.Panics(t, func() { bn.Forward(x) })
}

func TestBatchNorm2D_Gradients(t *testing.T) {
	b := newBackend()
	bn := nn.NewBatchNorm2D(2, 1e-5, 0.1, b)
	x := tensor.Randn[float32](tensor.Shape{3, 2, 2, 2}, b)

	b.Tape().StartRecording()
	y := bn.Forward(x)
	grads := autodiff.Backward(y, b)
	nn.AssignGrads(bn.Parameters(), grads)

	gamma, beta := bn.Parameters()[0], bn.Parameters()[1]
	require.NotNil(t, gamma.Grad())
	require.NotNil(t, beta.Grad())

	// d(sum y)/d beta counts the elements per channel; d/d gamma sums x_hat, which is ~0.
	assert.InDeltaSlice(t, []float32{12, 12}, beta.Grad().Data(), 1e-4)
	assert.InDeltaSlice(t, []float32{0, 0}, gamma.Grad().Data(), 1e-3)

	// sum(y) does not depend on x through a normalized channel.
	dx := grads[x.Raw()]
	require.NotNil(t, dx)
	for _, g := range tensor.Values[float32](dx) {
		assert.InDelta(t, 0, g, 1e-3)
	}
}

func TestSequential_ModesAndParameters(t *testing.T) {
	b := newBackend()
	bn := nn.NewBatchNorm2D(4, 1e-5, 0.1, b)
	seq := nn.NewSequential[Backend](
		nn.NewConv2D(2, 4, 3, 3, 1, 1, false, b),
		bn,
		nn.NewReLU[Backend](),
	)

	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, 4*2*9+4+4, nn.CountParameters[Backend](seq))

	nn.Eval[Backend](seq)
	assert.False(t, bn.Training())
	nn.Train[Backend](seq)
	assert.True(t, bn.Training())

	y := seq.Forward(tensor.Randn[float32](tensor.Shape{2, 2, 5, 5}, b))
	assert.Equal(t, tensor.Shape{2, 4, 5, 5}, y.Shape())
	for _, v := range y.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
	}
	assert.Contains(t, seq.String(), "BatchNorm2D(4")
}

func TestCollectParameters_SharedOnce(t *testing.T) {
	b := newBackend()
	fc := nn.NewLinear(4, 4, true, b)
	params := nn.CollectParameters[Backend](fc, fc, nn.NewReLU[Backend]())
	assert.Len(t, params, 2)
}

func TestLinear_AssignGrads(t *testing.T) {
	b := newBackend()
	fc := nn.NewLinear(2, 3, true, b)
	x := fromSlice(t, b, tensor.Shape{2, 2}, 1, 2, 3, 4)

	b.Tape().StartRecording()
	y := fc.Forward(x)
	nn.AssignGrads(fc.Parameters(), autodiff.Backward(y, b))

	// Each weight row receives the column sums of x; each bias entry the batch size.
	assert.InDeltaSlice(t, []float32{4, 6, 4, 6, 4, 6}, fc.Weight().Grad().Data(), 1e-5)
	assert.InDeltaSlice(t, []float32{2, 2, 2}, fc.Bias().Grad().Data(), 1e-5)

	fc.Weight().ZeroGrad()
	assert.Nil(t, fc.Weight().Grad())
}
