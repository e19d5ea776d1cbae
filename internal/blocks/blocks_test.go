package blocks_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vision/internal/autodiff"
	"github.com/born-ml/vision/internal/backend/cpu"
	"github.com/born-ml/vision/internal/blocks"
	"github.com/born-ml/vision/internal/nn"
	"github.com/born-ml/vision/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newBackend() Backend {
	return autodiff.New(cpu.New())
}

func randn(b Backend, shape ...int) *tensor.Tensor[float32, Backend] {
	rng := rand.New(rand.NewPCG(7, 11))
	return tensor.RandnFrom[float32](tensor.Shape(shape), rng, b)
}

// assertGradients runs a backward pass through m and checks that every
// parameter received a gradient of its own shape.
func assertGradients(t *testing.T, b Backend, m nn.Module[Backend], x *tensor.Tensor[float32, Backend]) {
	t.Helper()

	b.Tape().StartRecording()
	defer b.Tape().StopRecording()

	y := m.Forward(x)
	grads := autodiff.Backward(y, b)
	params := m.Parameters()
	nn.AssignGrads(params, grads)

	for _, p := range params {
		require.NotNil(t, p.Grad(), "missing gradient for %s", p.Name())
		assert.Equal(t, p.Tensor().Shape(), p.Grad().Shape(), p.Name())
	}
	require.Contains(t, grads, x.Raw())
	assert.Equal(t, x.Shape(), grads[x.Raw()].Shape())
}

func TestConvBlocks_Shapes(t *testing.T) {
	b := newBackend()
	x := randn(b, 2, 8, 8, 8)

	pw := blocks.PointWiseBlock(8, 4, b)
	y := pw.Forward(x)
	assert.Equal(t, tensor.Shape{2, 4, 8, 8}, y.Shape())
	assert.Equal(t, 8*4+2*4, nn.CountParameters[Backend](pw))
	for _, v := range y.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
	}

	cb := blocks.ConvBlock(8, 6, 3, 2, 1, b)
	assert.Equal(t, tensor.Shape{2, 6, 4, 4}, cb.Forward(x).Shape())

	conv := blocks.Conv3x3(8, 5, 1, b)
	assert.Equal(t, tensor.Shape{2, 5, 8, 8}, conv.Forward(x).Shape())
	assert.Len(t, conv.Parameters(), 1, "block convolutions carry no bias")
	assert.Equal(t, tensor.Shape{2, 5, 4, 4}, blocks.Conv3x3(8, 5, 2, b).Forward(x).Shape())

	assert.Panics(t, func() { blocks.ConvBlock(0, 4, 3, 1, 1, b) })
}

func TestInceptionBlock_OutputChannels(t *testing.T) {
	b := newBackend()
	block := blocks.NewInceptionBlock(blocks.DefaultInceptionConfig(8, 16), b)

	x := randn(b, 2, 8, 6, 6)
	y := block.Forward(x)
	assert.Equal(t, tensor.Shape{2, 16, 6, 6}, y.Shape())
	for _, v := range y.Data() {
		assert.GreaterOrEqual(t, v, float32(0), "every branch ends with ReLU")
	}

	// pw: 8*4 + bn 8, conv3: 4*4*9 + bn 8, conv5: 4*4*25 + bn 8. The pointwise
	// block is counted once even though four branches use it.
	assert.Equal(t, 40+152+408, nn.CountParameters[Backend](block))
	assert.Len(t, block.Parameters(), 9)
}

func TestInceptionBlock_LargerPool(t *testing.T) {
	b := newBackend()
	cfg := blocks.DefaultInceptionConfig(4, 8)
	cfg.PoolSize = 5
	block := blocks.NewInceptionBlock(cfg, b)

	y := block.Forward(randn(b, 1, 4, 7, 5))
	assert.Equal(t, tensor.Shape{1, 8, 7, 5}, y.Shape())
}

func TestInceptionBlock_EvalMode(t *testing.T) {
	b := newBackend()
	block := blocks.NewInceptionBlock(blocks.DefaultInceptionConfig(4, 8), b)
	x := randn(b, 1, 4, 1, 1)

	// One value per channel cannot be batch-normalized in training mode.
	assert.Panics(t, func() { block.Forward(x) })

	nn.Eval[Backend](block)
	assert.Equal(t, tensor.Shape{1, 8, 1, 1}, block.Forward(x).Shape())
}

func TestInceptionBlock_SharedBatchNormStatistics(t *testing.T) {
	b := newBackend()
	block := blocks.NewInceptionBlock(blocks.DefaultInceptionConfig(2, 4), b)
	x := randn(b, 2, 2, 4, 4)

	conv, ok := block.PointWise().Module(0).(*nn.Conv2D[Backend])
	require.True(t, ok)
	bn, ok := block.PointWise().Module(1).(*nn.BatchNorm2D[Backend])
	require.True(t, ok)

	channelMean := func(y *tensor.Tensor[float32, Backend]) []float32 {
		return y.MeanDim(0, true).MeanDim(2, true).MeanDim(3, true).Data()
	}
	direct := channelMean(conv.Forward(x))
	pooled := channelMean(conv.Forward(nn.NewMaxPool2D(3, 1, 1, b).Forward(x)))

	block.Forward(x)

	// Three updates from pw(x), then one from pw(maxpool(x)), momentum 0.1.
	assert.Equal(t, 4, bn.NumBatchesTracked())
	want := make([]float32, len(direct))
	for i := range want {
		var rm float32
		for range 3 {
			rm = 0.9*rm + 0.1*direct[i]
		}
		want[i] = 0.9*rm + 0.1*pooled[i]
	}
	assert.InDeltaSlice(t, want, bn.RunningMean().Data(), 1e-5)
}

func TestInceptionBlock_Gradients(t *testing.T) {
	b := newBackend()
	block := blocks.NewInceptionBlock(blocks.DefaultInceptionConfig(4, 8), b)
	assertGradients(t, b, block, randn(b, 2, 4, 5, 5))
}

func TestInceptionConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  blocks.InceptionConfig
		err  error
	}{
		{"default", blocks.DefaultInceptionConfig(3, 64), nil},
		{"zero in", blocks.DefaultInceptionConfig(0, 64), blocks.ErrInvalidChannels},
		{"out not by 4", blocks.DefaultInceptionConfig(3, 10), blocks.ErrIndivisibleChannels},
		{"stride 2", blocks.InceptionConfig{InPlanes: 3, OutPlanes: 8, Stride: 2, PoolSize: 3}, blocks.ErrInvalidStride},
		{"even pool", blocks.InceptionConfig{InPlanes: 3, OutPlanes: 8, Stride: 1, PoolSize: 2}, blocks.ErrInvalidKernel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.Panics(t, func() { blocks.NewInceptionBlock(blocks.DefaultInceptionConfig(3, 10), newBackend()) })
}

func TestSELayer_PreservesShapeAndGates(t *testing.T) {
	b := newBackend()
	se := blocks.NewSELayer(blocks.DefaultSEConfig(32), b)
	assert.Equal(t, 32*2+2*32, nn.CountParameters[Backend](se))

	x := randn(b, 2, 32, 3, 3)
	gate := se.Gate(x)
	require.Equal(t, tensor.Shape{2, 32, 1, 1}, gate.Shape())
	for _, g := range gate.Data() {
		assert.Greater(t, g, float32(0))
		assert.Less(t, g, float32(1))
	}

	y := se.Forward(x)
	require.Equal(t, x.Shape(), y.Shape())
	for n := range 2 {
		for c := range 32 {
			for h := range 3 {
				assert.InDelta(t, x.At(n, c, h, 1)*gate.At(n, c, 0, 0), y.At(n, c, h, 1), 1e-6)
			}
		}
	}
}

func TestSELayer_Validate(t *testing.T) {
	assert.NoError(t, blocks.SEConfig{Channels: 4, Reduction: 4}.Validate())
	assert.ErrorIs(t, blocks.DefaultSEConfig(24).Validate(), blocks.ErrIndivisibleChannels)
	assert.ErrorIs(t, blocks.DefaultSEConfig(8).Validate(), blocks.ErrIndivisibleChannels)
	assert.ErrorIs(t, blocks.SEConfig{Channels: 0, Reduction: 1}.Validate(), blocks.ErrInvalidChannels)
	assert.Panics(t, func() { blocks.NewSELayer(blocks.DefaultSEConfig(24), newBackend()) })
}

func TestSELayer_Gradients(t *testing.T) {
	b := newBackend()
	se := blocks.NewSELayer(blocks.SEConfig{Channels: 8, Reduction: 4}, b)
	assertGradients(t, b, se, randn(b, 2, 8, 3, 3))
}

func TestChannelAttention_Gate(t *testing.T) {
	b := newBackend()
	ca := blocks.NewChannelAttention(16, 8, b)
	x := randn(b, 2, 16, 4, 4)

	gate := ca.Gate(x)
	require.Equal(t, tensor.Shape{2, 16, 1, 1}, gate.Shape())
	for _, g := range gate.Data() {
		assert.Greater(t, g, float32(0))
		assert.Less(t, g, float32(1))
	}
	assert.Equal(t, x.Shape(), ca.Forward(x).Shape())
	assert.Panics(t, func() { blocks.NewChannelAttention(12, 8, b) })
}

func TestSpatialAttention_Gate(t *testing.T) {
	b := newBackend()
	sa := blocks.NewSpatialAttention(7, b)
	x := randn(b, 2, 5, 6, 4)

	gate := sa.Gate(x)
	require.Equal(t, tensor.Shape{2, 1, 6, 4}, gate.Shape())
	for _, g := range gate.Data() {
		assert.Greater(t, g, float32(0))
		assert.Less(t, g, float32(1))
	}

	y := sa.Forward(x)
	require.Equal(t, x.Shape(), y.Shape())
	assert.InDelta(t, x.At(1, 3, 2, 2)*gate.At(1, 0, 2, 2), y.At(1, 3, 2, 2), 1e-6)

	assert.Equal(t, 2*7*7, nn.CountParameters[Backend](sa))
	assert.Panics(t, func() { blocks.NewSpatialAttention(4, b) })
}

func TestCBAMBlock_Forward(t *testing.T) {
	b := newBackend()
	cbam := blocks.NewCBAMBlock(16, b)
	assert.Equal(t, blocks.DefaultCBAMConfig(16), cbam.Config())
	assert.Equal(t, 16*2*2+2*7*7, nn.CountParameters[Backend](cbam))

	x := randn(b, 2, 16, 5, 5)
	y := cbam.Forward(x)
	require.Equal(t, x.Shape(), y.Shape())

	want := cbam.SpatialAttention().Forward(cbam.ChannelAttention().Forward(x))
	assert.InDeltaSlice(t, want.Data(), y.Data(), 1e-6)

	// Both gates are in (0, 1), so every output shrinks toward zero.
	for i, v := range y.Data() {
		assert.LessOrEqual(t, abs(v), abs(x.Data()[i]))
	}
}

func TestCBAMConfig_Validate(t *testing.T) {
	assert.NoError(t, blocks.DefaultCBAMConfig(64).Validate())
	assert.ErrorIs(t, blocks.DefaultCBAMConfig(12).Validate(), blocks.ErrIndivisibleChannels)
	assert.ErrorIs(t, blocks.DefaultCBAMConfig(-8).Validate(), blocks.ErrInvalidChannels)
	assert.ErrorIs(t, blocks.CBAMConfig{Channels: 8, Ratio: 8, KernelSize: 6}.Validate(), blocks.ErrInvalidKernel)
	assert.Panics(t, func() { blocks.NewCBAMBlock(12, newBackend()) })
}

func TestCBAMBlock_Gradients(t *testing.T) {
	b := newBackend()
	cbam := blocks.NewCBAMBlockWithConfig(blocks.CBAMConfig{Channels: 8, Ratio: 4, KernelSize: 3}, b)
	assertGradients(t, b, cbam, randn(b, 2, 8, 4, 4))
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
