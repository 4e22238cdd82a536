package p1812

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvCumNorm(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0.5, 0},
		{0.1, 1.2816},
		{0.9, -1.2816},
		{0.01, 2.3263},
		{0.001, 3.0902},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, InvCumNorm(tt.x), 2e-3, "x=%g", tt.x)
	}

	// Out-of-range arguments are clamped, not returned.
	assert.Equal(t, InvCumNorm(1e-6), InvCumNorm(0))
	assert.Equal(t, InvCumNorm(0.999999), InvCumNorm(1))
	assert.Greater(t, InvCumNorm(0), 4.0)
}

func TestBeta0(t *testing.T) {
	t.Run("continuous at 70 degrees", func(t *testing.T) {
		for _, d := range []float64{0, 5, 20, 100, 500} {
			below := Beta0(70, d, d)
			above := Beta0(math.Nextafter(70, 100), d, d)
			assert.InEpsilon(t, below, above, 0.01, "d=%g", d)
		}
	})

	t.Run("mu1 never exceeds one", func(t *testing.T) {
		for _, dtm := range []float64{0, 0.1, 1, 10, 100, 1000} {
			for _, dlm := range []float64{0, 1, 10, 100, 1000} {
				assert.LessOrEqual(t, pathMu1(dtm, dlm), 1.0)
			}
		}
	})

	t.Run("sea path at mid latitude", func(t *testing.T) {
		b0 := Beta0(45, 0, 0)
		assert.Greater(t, b0, 0.0)
		assert.Less(t, b0, 50.0)
	})
}

func TestKnifeEdge(t *testing.T) {
	assert.Equal(t, 0.0, knifeEdge(-1))
	assert.Equal(t, 0.0, knifeEdge(math.Inf(-1)))
	assert.InDelta(t, 6.0, knifeEdge(0), 0.1)
	assert.GreaterOrEqual(t, knifeEdge(-0.779), 0.0)
}
