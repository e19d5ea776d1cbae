package autodiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/vision/internal/autodiff"
	"github.com/born-ml/vision/internal/backend/cpu"
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

func TestAutodiffBackend_Metadata(t *testing.T) {
	b := newBackend()
	assert.Equal(t, "Autodiff(CPU)", b.Name())
	assert.Equal(t, tensor.CPU, b.Device())
	assert.NotNil(t, b.Inner())
}

func TestTape_RecordingAndClear(t *testing.T) {
	b := newBackend()
	tape := b.Tape()
	assert.False(t, tape.IsRecording())

	x := fromSlice(t, b, tensor.Shape{2}, 1, 2)
	x.Add(x)
	assert.Equal(t, 0, tape.NumOps(), "nothing is recorded before StartRecording")

	tape.StartRecording()
	x.Add(x).Mul(x)
	assert.Equal(t, 2, tape.NumOps())

	tape.Clear()
	assert.Equal(t, 0, tape.NumOps())
	assert.True(t, tape.IsRecording())

	tape.StopRecording()
	assert.False(t, tape.IsRecording())
}

func TestBackward_PanicsWithoutOps(t *testing.T) {
	b := newBackend()
	x := fromSlice(t, b, tensor.Shape{1}, 1)
	assert.Panics(t, func() { autodiff.Backward(x, b) })
}

func TestBackward_Square(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, tensor.Shape{3}, 1, 2, 3)
	y := x.Mul(x)
	grads := autodiff.Backward(y, b)

	require.Contains(t, grads, x.Raw())
	assert.Equal(t, []float32{2, 4, 6}, grads[x.Raw()].AsFloat32())
}

func TestBackward_BroadcastGate(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, tensor.Shape{1, 2, 2, 2}, 1, 2, 3, 4, 5, 6, 7, 8)
	w := fromSlice(t, b, tensor.Shape{1, 2, 1, 1}, 0.5, 2)
	y := x.Mul(w)
	grads := autodiff.Backward(y, b)

	dw := grads[w.Raw()]
	require.NotNil(t, dw)
	assert.Equal(t, tensor.Shape{1, 2, 1, 1}, dw.Shape())
	assert.Equal(t, []float32{10, 26}, dw.AsFloat32())

	dx := grads[x.Raw()]
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5, 2, 2, 2, 2}, dx.AsFloat32())
}

func TestBackward_MatMul(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	a := fromSlice(t, b, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	w := fromSlice(t, b, tensor.Shape{3, 2}, 1, 2, 3, 4, 5, 6)
	y := a.MatMul(w)
	grads := autodiff.Backward(y, b)

	// dA[i,k] = sum_j W[k,j]; dW[k,j] = sum_i A[i,k].
	assert.InDeltaSlice(t, []float32{3, 7, 11, 3, 7, 11}, grads[a.Raw()].AsFloat32(), 1e-5)
	assert.InDeltaSlice(t, []float32{5, 5, 7, 7, 9, 9}, grads[w.Raw()].AsFloat32(), 1e-5)
}

func TestBackward_SharedInputAccumulates(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, tensor.Shape{2}, 3, -1)
	// Three branches reuse x: x*2 + relu(x) + x.
	y := x.MulScalar(2).Add(x.ReLU()).Add(x)
	grads := autodiff.Backward(y, b)

	assert.InDeltaSlice(t, []float32{4, 3}, grads[x.Raw()].AsFloat32(), 1e-6)
}

func TestBackward_CatSplitsGradient(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x1 := fromSlice(t, b, tensor.Shape{1, 1, 1, 2}, 1, 2)
	x2 := fromSlice(t, b, tensor.Shape{1, 2, 1, 2}, 3, 4, 5, 6)
	y := tensor.Cat([]*tensor.Tensor[float32, Backend]{x1, x2}, 1)
	scale := fromSlice(t, b, tensor.Shape{1, 3, 1, 1}, 1, 10, 100)
	grads := autodiff.Backward(y.Mul(scale), b)

	assert.Equal(t, []float32{1, 1}, grads[x1.Raw()].AsFloat32())
	assert.Equal(t, []float32{10, 10, 100, 100}, grads[x2.Raw()].AsFloat32())
}

func TestBackward_MaxDimRoutesToArgMax(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, tensor.Shape{1, 3, 1, 2}, 1, 9, 5, 2, 3, 4)
	y := x.MaxDim(1, true)
	assert.Equal(t, []float32{5, 9}, y.Data())

	grads := autodiff.Backward(y, b)
	assert.Equal(t, []float32{0, 1, 1, 0, 0, 0}, grads[x.Raw()].AsFloat32())
}

func TestBackward_ReLUMask(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, tensor.Shape{4}, -1, 0, 2, 5)
	grads := autodiff.Backward(x.ReLU(), b)
	assert.Equal(t, []float32{0, 0, 1, 1}, grads[x.Raw()].AsFloat32())
}

func TestBackward_DoesNotRecordGradientOps(t *testing.T) {
	b := newBackend()
	b.Tape().StartRecording()

	x := fromSlice(t, b, tensor.Shape{2}, 1, 2)
	y := x.Mul(x).Sigmoid()
	before := b.Tape().NumOps()
	autodiff.Backward(y, b)

	assert.Equal(t, before, b.Tape().NumOps())
	assert.True(t, b.Tape().IsRecording())
}
