package p1812

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoParams() Params {
	p := DefaultParams()
	p.Frequency = 0.145
	p.Percent = 50
	p.Htg = 10
	p.Hrg = 10
	p.Polarization = Vertical
	p.Zone = Inland
	p.StreetWidth = 20
	p.Lat = 52
	p.Lon = 21
	p.N0 = 300
	p.DN = 40
	return p
}

func flatProfile(n int, length, height float64) Profile {
	prof := Profile{D: make([]float64, n), H: make([]float64, n)}
	for i := range prof.D {
		prof.D[i] = length * float64(i) / float64(n-1)
		prof.H[i] = height
	}
	return prof
}

// ridgeProfile is a deterministic, irregular terrain with a hill near the middle.
func ridgeProfile(n int, length float64) Profile {
	prof := Profile{D: make([]float64, n), H: make([]float64, n), Ct: make([]float64, n)}
	for i := range prof.D {
		x := float64(i) / float64(n-1)
		prof.D[i] = length * x
		prof.H[i] = 120 + 40*math.Sin(7*x) + 180*math.Exp(-math.Pow((x-0.55)/0.08, 2))
		if i%4 == 0 {
			prof.Ct[i] = 10
		}
	}
	return prof
}

func TestCalculate_FlatDemoPath(t *testing.T) {
	p := demoParams()
	prof := flatProfile(10, 20, 75)

	res, err := Calculate(&p, prof, nil)
	require.NoError(t, err)

	assert.False(t, math.IsNaN(res.Lb))
	assert.False(t, math.IsInf(res.Lb, 0))
	assert.GreaterOrEqual(t, res.Lb, res.Lbfs)
	assert.True(t, res.Geometry.LineOfSight)

	again, err := Calculate(&p, prof, nil)
	require.NoError(t, err)
	assert.Equal(t, res.Lb, again.Lb)
}

func TestCalculate_FreeSpaceReference(t *testing.T) {
	p := demoParams()
	prof := flatProfile(10, 20, 75)

	res, err := Calculate(&p, prof, nil)
	require.NoError(t, err)

	// 92.4 + 20log10(0.145) + 20log10(20)
	assert.InDelta(t, 92.4+20*math.Log10(0.145)+20*math.Log10(20), res.Lbfs, 1e-9)
	assert.Equal(t, res.Lbfs, res.Lb0p, "no multipath correction at p=50")
}

func TestCalculate_NonIncreasingDistance(t *testing.T) {
	p := demoParams()
	prof := flatProfile(10, 20, 75)
	prof.D[4] = prof.D[3]

	res, err := Calculate(&p, prof, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameters))
	assert.Equal(t, FieldDistance, FieldOf(err))
	assert.True(t, math.IsNaN(res.Lb))

	var pe *ParamError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 4, pe.Index)
}

func TestCalculate_TranshorizonRidge(t *testing.T) {
	p := demoParams()
	p.Percent = 10
	prof := ridgeProfile(200, 60)

	res, err := Calculate(&p, prof, nil)
	require.NoError(t, err)

	assert.False(t, res.Geometry.LineOfSight)
	assert.False(t, math.IsNaN(res.Lb))
	assert.Greater(t, res.Diffraction.Ldp[Vertical], 0.0)
	assert.Greater(t, res.Lb, res.Lbfs)
}

func TestCalculate_OutOfCoverageIsNaN(t *testing.T) {
	p := demoParams()
	prof := flatProfile(10, 20, 75)
	prof.H[5] = math.NaN()

	res, err := Calculate(&p, prof, nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.Lb))
}

func TestCalculate_LocationVariability(t *testing.T) {
	p := demoParams()
	prof := ridgeProfile(60, 30)

	median, err := Calculate(&p, prof, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, median.Lloc, 0.01)

	p.LocationPercent = 90
	high, err := Calculate(&p, prof, nil)
	require.NoError(t, err)
	assert.Greater(t, high.Lloc, 0.0)

	p.Zone = Sea
	sea, err := Calculate(&p, prof, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sea.Lloc)
}

func TestCalculate_CacheMatchesScratch(t *testing.T) {
	p := demoParams()
	p.Percent = 20
	prof := ridgeProfile(120, 45)
	cache := NewCache(prof.Len())

	for n := prof.Len() - 1; n >= 3; n-- {
		sub := prof.Truncate(n)
		cached, err := Calculate(&p, sub, cache)
		require.NoError(t, err)
		scratch, err := Calculate(&p, sub, nil)
		require.NoError(t, err)
		if !assert.Equal(t, scratch.Lb, cached.Lb, "n=%d", n) {
			return
		}
	}
}

func TestCalculate_PolarizationSelectsLoss(t *testing.T) {
	p := demoParams()
	p.Percent = 1
	prof := ridgeProfile(150, 80)

	p.Polarization = Horizontal
	h, err := Calculate(&p, prof, nil)
	require.NoError(t, err)
	p.Polarization = Vertical
	v, err := Calculate(&p, prof, nil)
	require.NoError(t, err)

	assert.Equal(t, h.Diffraction.Ldp, v.Diffraction.Ldp)
	assert.Equal(t, h.Lbd, h.Lb0p+h.Diffraction.Ldp[Horizontal])
	assert.Equal(t, v.Lbd, v.Lb0p+v.Diffraction.Ldp[Vertical])
}
