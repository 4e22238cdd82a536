package terrain

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler_Path(t *testing.T) {
	terrain := planeGrid(t, 40, 40, 100, func(x, y float64) float64 { return 0.01 * x })
	// Clutter stored in decimetres.
	clutter := planeGrid(t, 40, 40, 100, func(x, y float64) float64 { return 150 })

	p := NewProfiler(terrain.Source(Bilinear, 1), clutter.Source(Nearest, 0.1))
	require.True(t, p.HasClutter())

	from := orb.Point{1100, 0}
	to := orb.Point{4100, 4000}
	prof := p.Path(from, to, 11)

	require.Equal(t, 11, prof.Len())
	assert.Equal(t, 0.0, prof.D[0])
	assert.InDelta(t, 5.0, prof.D[10], 1e-12)
	assert.InDelta(t, 0.5, prof.D[1], 1e-12)

	assert.InDelta(t, 11.0, prof.H[0], 1e-9)
	assert.InDelta(t, 11.0+0.01*300, prof.H[1], 1e-9)
	for _, ct := range prof.Ct {
		assert.InDelta(t, 15.0, ct, 1e-9)
	}
}

func TestProfiler_OutOfCoverage(t *testing.T) {
	terrain := planeGrid(t, 10, 10, 100, func(x, y float64) float64 { return 50 })
	p := NewProfiler(terrain.Source(Bilinear, 1), nil)
	assert.False(t, p.HasClutter())

	prof := p.Path(orb.Point{1200, -300}, orb.Point{5000, -300}, 5)
	assert.Nil(t, prof.Ct)
	assert.Equal(t, 50.0, prof.H[0])
	assert.True(t, math.IsNaN(prof.H[4]))
}

func TestClipClutter(t *testing.T) {
	assert.Equal(t, 0.0, ClipClutter(-3))
	assert.Equal(t, 1000.0, ClipClutter(4000))
	assert.Equal(t, 12.5, ClipClutter(12.5))
	assert.True(t, math.IsNaN(ClipClutter(math.NaN())))
}

func TestPointCount(t *testing.T) {
	assert.Equal(t, 100, PointCount(10000, 100))
	assert.Equal(t, 101, PointCount(10001, 100))
	assert.Equal(t, MinProfilePoints, PointCount(50, 100))
	assert.Equal(t, MinProfilePoints, PointCount(150, 100))
	assert.Equal(t, MinProfilePoints, PointCount(5000, 10000))
	assert.Equal(t, 5, PointCount(450, 100))
}
