package autodiff_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/vision/internal/autodiff"
	"github.com/born-ml/vision/internal/backend/cpu"
	"github.com/born-ml/vision/internal/tensor"
)

type Backend64 = *autodiff.AutodiffBackend[*cpu.CPUBackend]

type t64 = tensor.Tensor[float64, Backend64]

func randn64(rng *rand.Rand, b Backend64, shape tensor.Shape) *t64 {
	return tensor.RandnFrom[float64](shape, rng, b)
}

func sumAll(x *t64) float64 {
	var s float64
	for _, v := range x.Data() {
		s += v
	}
	return s
}

// checkGradients compares autodiff gradients of sum(f(inputs)) against
// central finite differences for every element of every input.
func checkGradients(t *testing.T, inputs []*t64, f func(b Backend64, in []*t64) *t64) {
	t.Helper()
	b := inputs[0].Backend()
	tape := b.Tape()

	tape.Clear()
	tape.StartRecording()
	out := f(b, inputs)
	grads := autodiff.Backward(out, b)
	tape.StopRecording()
	tape.Clear()

	const eps = 1e-6
	for n, in := range inputs {
		g := grads[in.Raw()]
		require.NotNil(t, g, "input %d received no gradient", n)
		require.Equal(t, in.Shape(), g.Shape(), "input %d gradient shape", n)
		analytic := g.AsFloat64()

		data := in.Data()
		for i := range data {
			orig := data[i]
			data[i] = orig + eps
			plus := sumAll(f(b, inputs))
			data[i] = orig - eps
			minus := sumAll(f(b, inputs))
			data[i] = orig

			numeric := (plus - minus) / (2 * eps)
			require.InDelta(t, numeric, analytic[i], 1e-4, "input %d element %d", n, i)
		}
	}
}

func TestGradientCheck(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	cases := []struct {
		name   string
		shapes []tensor.Shape
		f      func(b Backend64, in []*t64) *t64
	}{
		{
			name:   "conv2d padded",
			shapes: []tensor.Shape{{2, 2, 5, 5}, {3, 2, 3, 3}},
			f: func(b Backend64, in []*t64) *t64 {
				return tensor.New[float64](b.Conv2D(in[0].Raw(), in[1].Raw(), 1, 1), b)
			},
		},
		{
			name:   "conv2d strided 5x5",
			shapes: []tensor.Shape{{1, 2, 7, 7}, {2, 2, 5, 5}},
			f: func(b Backend64, in []*t64) *t64 {
				out := tensor.New[float64](b.Conv2D(in[0].Raw(), in[1].Raw(), 2, 2), b)
				return out.Mul(out)
			},
		},
		{
			name:   "maxpool2d padded",
			shapes: []tensor.Shape{{2, 2, 4, 4}},
			f: func(b Backend64, in []*t64) *t64 {
				out := tensor.New[float64](b.MaxPool2D(in[0].Raw(), 3, 1, 1), b)
				return out.Mul(out)
			},
		},
		{
			name:   "sigmoid and div",
			shapes: []tensor.Shape{{2, 3}, {2, 3}},
			f: func(b Backend64, in []*t64) *t64 {
				return in[0].Sigmoid().Div(in[1].Sigmoid().AddScalar(1))
			},
		},
		{
			name:   "rsqrt of variance",
			shapes: []tensor.Shape{{2, 4}},
			f: func(b Backend64, in []*t64) *t64 {
				centered := in[0].Sub(in[0].MeanDim(1, true))
				variance := centered.Mul(centered).MeanDim(1, true)
				return centered.Mul(variance.AddScalar(1e-1).Rsqrt())
			},
		},
		{
			name:   "channel mean and max",
			shapes: []tensor.Shape{{2, 3, 2, 2}},
			f: func(b Backend64, in []*t64) *t64 {
				avg := in[0].MeanDim(1, true)
				mx := in[0].MaxDim(1, true)
				return tensor.Cat([]*t64{avg, mx}, 1).Sigmoid()
			},
		},
		{
			name:   "squeeze linear unsqueeze",
			shapes: []tensor.Shape{{2, 4, 1, 1}, {3, 4}},
			f: func(b Backend64, in []*t64) *t64 {
				flat := in[0].Squeeze(3).Squeeze(2)
				y := flat.MatMul(in[1].T()).ReLU().MulScalar(0.5)
				return y.Unsqueeze(-1).Expand(tensor.Shape{2, 3, 2}).SumDim(2, false).Sigmoid()
			},
		},
		{
			name:   "reshape transpose sub",
			shapes: []tensor.Shape{{2, 3, 4}, {4}},
			f: func(b Backend64, in []*t64) *t64 {
				x := in[0].Transpose(2, 0, 1).Reshape(4, 6)
				return x.Transpose().Sub(in[1]).Sigmoid()
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := autodiff.New(cpu.New())
			inputs := make([]*t64, len(tc.shapes))
			for i, s := range tc.shapes {
				inputs[i] = randn64(rng, b, s)
			}
			checkGradients(t, inputs, tc.f)
		})
	}
}
