package p1812

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePath_FlatIsLineOfSight(t *testing.T) {
	p := demoParams()
	for _, n := range []int{4, 10, 57} {
		prof := flatProfile(n, 20, 75)
		geo, err := AnalyzePath(&p, prof, nil)
		require.NoError(t, err)

		assert.True(t, geo.LineOfSight, "n=%d", n)
		assert.InDelta(t, geo.Dtot, geo.Dlt+geo.Dlr, 1e-12)
		assert.InDelta(t, 75, geo.Hst, 1e-9)
		assert.InDelta(t, 75, geo.Hsr, 1e-9)
		assert.InDelta(t, 10, geo.Hte, 1e-9)
		assert.InDelta(t, 10, geo.Hre, 1e-9)
	}
}

func TestAnalyzePath_TwoPoints(t *testing.T) {
	p := demoParams()
	prof := Profile{D: []float64{0, 5}, H: []float64{100, 120}}

	geo, err := AnalyzePath(&p, prof, nil)
	require.NoError(t, err)
	assert.True(t, geo.LineOfSight)
	assert.Equal(t, 5.0, geo.Dlt)
	assert.Equal(t, 0.0, geo.Dlr)
	assert.True(t, math.IsInf(geo.ThetaMax, -1))
}

func TestAnalyzePath_OffsetDistances(t *testing.T) {
	p := demoParams()
	base := ridgeProfile(40, 25)
	shifted := Profile{D: make([]float64, base.Len()), H: base.H, Ct: base.Ct}
	for i, d := range base.D {
		shifted.D[i] = d + 3
	}

	a, err := AnalyzePath(&p, base, nil)
	require.NoError(t, err)
	b, err := AnalyzePath(&p, shifted, nil)
	require.NoError(t, err)

	assert.InDelta(t, a.Dtot, b.Dtot, 1e-9)
	assert.InDelta(t, a.Hst, b.Hst, 1e-6)
	assert.InDelta(t, a.Hsr, b.Hsr, 1e-6)
	assert.InDelta(t, a.Theta, b.Theta, 1e-9)
	assert.Equal(t, a.LineOfSight, b.LineOfSight)
}

func TestAnalyzePath_CacheMatchesScratch(t *testing.T) {
	p := demoParams()
	prof := ridgeProfile(80, 40)

	tests := []struct {
		name  string
		order func(n int) []int
	}{
		{
			name: "growing prefixes",
			order: func(n int) []int {
				var out []int
				for k := 3; k <= n; k++ {
					out = append(out, k)
				}
				return out
			},
		},
		{
			name: "shrinking prefixes",
			order: func(n int) []int {
				var out []int
				for k := n; k >= 3; k-- {
					out = append(out, k)
				}
				return out
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(8) // grows on demand
			for _, k := range tt.order(prof.Len()) {
				sub := prof.Truncate(k)
				got, err := AnalyzePath(&p, sub, cache)
				require.NoError(t, err)
				want, err := AnalyzePath(&p, sub, nil)
				require.NoError(t, err)

				assert.Equal(t, want.Hst, got.Hst, "k=%d", k)
				assert.Equal(t, want.Hsr, got.Hsr, "k=%d", k)
				assert.Equal(t, want.ThetaMax, got.ThetaMax, "k=%d", k)
			}
		})
	}
}

func TestCache_ResetsOnNewPrefix(t *testing.T) {
	p := demoParams()
	a := ridgeProfile(50, 30)
	b := flatProfile(50, 30, 75)
	cache := NewCache(50)

	_, err := AnalyzePath(&p, a, cache)
	require.NoError(t, err)

	// Different transmitter ground height: stale entries must not leak.
	got, err := AnalyzePath(&p, b, cache)
	require.NoError(t, err)
	want, err := AnalyzePath(&p, b, nil)
	require.NoError(t, err)
	assert.Equal(t, want.Hst, got.Hst)
	assert.Equal(t, want.ThetaMax, got.ThetaMax)

	cache.Reset()
	for _, v := range cache.v1 {
		assert.True(t, math.IsNaN(v))
	}
}
