package terrain

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"p1812go/pkg/p1812"
)

// Profiler samples terrain and optional clutter along straight paths in the
// grid's projected coordinates (metres).
type Profiler struct {
	terrain Source
	clutter Source
}

// NewProfiler creates a profiler. clutter may be nil, in which case profiles
// carry no clutter heights.
func NewProfiler(terrain, clutter Source) *Profiler {
	return &Profiler{terrain: terrain, clutter: clutter}
}

// HasClutter reports whether profiles carry clutter heights.
func (p *Profiler) HasClutter() bool {
	return p.clutter != nil
}

// Fill samples len(h) evenly spaced points from `from` to `to` inclusive.
// When ct is non-nil and clutter is configured it receives clutter heights
// clipped to the valid range; NaN (no coverage) is kept.
func (p *Profiler) Fill(from, to orb.Point, h, ct []float64) {
	n := len(h)
	for i := range n {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		pt := orb.Point{
			from[0] + (to[0]-from[0])*t,
			from[1] + (to[1]-from[1])*t,
		}
		h[i] = p.terrain.At(pt)
		if ct != nil && p.clutter != nil {
			ct[i] = ClipClutter(p.clutter.At(pt))
		}
	}
}

// Path builds an n-point profile between two points with distances in km
// measured from `from`.
func (p *Profiler) Path(from, to orb.Point, n int) p1812.Profile {
	prof := p1812.Profile{
		D: Distances(planar.Distance(from, to), n),
		H: make([]float64, n),
	}
	if p.clutter != nil {
		prof.Ct = make([]float64, n)
	}
	p.Fill(from, to, prof.H, prof.Ct)
	return prof
}

// Distances returns n evenly spaced distances in km covering length metres.
func Distances(length float64, n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		if n > 1 {
			d[i] = length * float64(i) / (1000 * float64(n-1))
		}
	}
	return d
}

// MinProfilePoints is the shortest profile PointCount returns: both
// terminals plus at least two interior terrain samples.
const MinProfilePoints = 4

// PointCount is the number of profile samples needed to cover length metres
// at the given step, never fewer than MinProfilePoints.
func PointCount(length, step float64) int {
	n := int(math.Ceil(length / step))
	return max(n, MinProfilePoints)
}

// ClipClutter clamps a clutter height into the range accepted by the model.
func ClipClutter(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Max(p1812.MinClutter, math.Min(v, p1812.MaxClutter))
}
