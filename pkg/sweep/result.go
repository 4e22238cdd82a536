package sweep

import (
	"math"
	"time"

	"github.com/paulmach/orb"

	"p1812go/pkg/terrain"
)

// Result is the matrix of one sweep. Values[a][i] is the cell for radial a
// evaluated over the first i profile points; cells below MinCalcLength are
// zero and cells without coverage are NaN.
type Result struct {
	Center      orb.Point
	Radius      float64
	AngularStep float64
	Data        DataType

	Angles    []float64   // degrees
	Distances []float64   // km along each radial
	Values    [][]float64 // [angle][length]

	Elapsed time.Duration
}

func newResult(job Job, n int) *Result {
	angles := job.Angles()
	// One backing buffer; rows are disjoint windows into it.
	buf := make([]float64, len(angles)*n)
	rows := make([][]float64, len(angles))
	for i := range rows {
		rows[i] = buf[i*n : (i+1)*n : (i+1)*n]
	}
	return &Result{
		Center:      job.Center,
		Radius:      job.Radius,
		AngularStep: job.AngularStep,
		Data:        job.Data,
		Angles:      angles,
		Distances:   terrain.Distances(job.Radius, n),
		Values:      rows,
	}
}

// Summary condenses a result for logs and run history.
type Summary struct {
	Angles   int
	Points   int
	Cells    int
	NaNCells int
	Min      float64
	Max      float64
}

// Summary counts evaluated cells (those at or beyond MinCalcLength) and the
// range of their finite values. Min and Max are NaN when no cell is finite.
func (r *Result) Summary() Summary {
	s := Summary{
		Angles: len(r.Angles),
		Points: len(r.Distances),
		Min:    math.Inf(1),
		Max:    math.Inf(-1),
	}
	for _, row := range r.Values {
		for i := MinCalcLength; i < len(row); i++ {
			s.Cells++
			v := row[i]
			if math.IsNaN(v) {
				s.NaNCells++
				continue
			}
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
		}
	}
	if s.Cells == s.NaNCells {
		s.Min, s.Max = math.NaN(), math.NaN()
	}
	return s
}

// At returns the cell nearest to the projected point p, or NaN outside the
// swept disc. Radial and distance indices are rounded and floored
// respectively, with the distance clamped to [MinCalcLength, n-1].
func (r *Result) At(p orb.Point) float64 {
	dx, dy := p[0]-r.Center[0], p[1]-r.Center[1]
	dist := math.Hypot(dx, dy)
	if dist > r.Radius || len(r.Values) == 0 {
		return math.NaN()
	}
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	ai := int(math.Round(angle / (360 / float64(len(r.Angles)))))
	if ai >= len(r.Angles) {
		ai = 0
	}

	n := len(r.Distances)
	step := r.Radius / float64(n-1)
	ni := int(math.Floor(dist / step))
	ni = min(max(ni, MinCalcLength), n-1)
	return r.Values[ai][ni]
}
