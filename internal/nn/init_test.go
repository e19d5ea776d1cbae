package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/born-ml/vision/internal/backend/cpu"
	"github.com/born-ml/vision/internal/tensor"
)

func TestXavier_Bounds(t *testing.T) {
	backend := cpu.New()
	w := Xavier(64, 32, tensor.Shape{32, 64}, backend)

	bound := float32(math.Sqrt(6.0 / 96.0))
	for _, v := range w.Data() {
		assert.GreaterOrEqual(t, v, -bound)
		assert.LessOrEqual(t, v, bound)
	}
}

func TestKaimingUniform_Bounds(t *testing.T) {
	backend := cpu.New()
	w := KaimingUniform(9, tensor.Shape{4, 1, 3, 3}, backend)

	bound := float32(1.0 / 3.0)
	nonZero := 0
	for _, v := range w.Data() {
		assert.GreaterOrEqual(t, v, -bound)
		assert.LessOrEqual(t, v, bound)
		if v != 0 {
			nonZero++
		}
	}
	assert.Positive(t, nonZero)
}
