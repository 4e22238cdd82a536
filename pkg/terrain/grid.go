// Package terrain loads rectilinear terrain and clutter grids and samples
// them along radio paths.
package terrain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// ErrInvalidGrid is returned when grid axes or values are inconsistent.
var ErrInvalidGrid = errors.New("invalid grid")

// Grid is a rectilinear grid of samples. X and Y are strictly increasing tick
// coordinates; Values is row-major with Values[j*len(X)+i] the sample at
// (X[i], Y[j]). Missing cells hold NaN.
type Grid struct {
	X      []float64
	Y      []float64
	Values []float64
}

// NewGrid validates axes and values and wraps them without copying.
func NewGrid(x, y, values []float64) (*Grid, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, fmt.Errorf("%w: empty axis (%d x %d)", ErrInvalidGrid, len(x), len(y))
	}
	if err := checkAxis("x", x); err != nil {
		return nil, err
	}
	if err := checkAxis("y", y); err != nil {
		return nil, err
	}
	if len(values) != len(x)*len(y) {
		return nil, fmt.Errorf("%w: %d values for %d x %d grid", ErrInvalidGrid, len(values), len(x), len(y))
	}
	return &Grid{X: x, Y: y, Values: values}, nil
}

func checkAxis(name string, ticks []float64) error {
	for i, v := range ticks {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s[%d] is %v", ErrInvalidGrid, name, i, v)
		}
		if i > 0 && v <= ticks[i-1] {
			return fmt.Errorf("%w: %s axis not strictly increasing at %d", ErrInvalidGrid, name, i)
		}
	}
	return nil
}

// At returns the sample at tick indices (i, j), or NaN when out of range.
func (g *Grid) At(i, j int) float64 {
	if i < 0 || j < 0 || i >= len(g.X) || j >= len(g.Y) {
		return math.NaN()
	}
	return g.Values[j*len(g.X)+i]
}

// Bound is the extent covered by the grid ticks.
func (g *Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{g.X[0], g.Y[0]},
		Max: orb.Point{g.X[len(g.X)-1], g.Y[len(g.Y)-1]},
	}
}

// Missing counts NaN cells.
func (g *Grid) Missing() int {
	n := 0
	for _, v := range g.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Scale multiplies every sample by f in place.
func (g *Grid) Scale(f float64) {
	for i := range g.Values {
		g.Values[i] *= f
	}
}

// Method selects the interpolation used by Sample.
type Method int

const (
	Nearest Method = iota
	Bilinear
	Bicubic
)

func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Bicubic:
		return "bicubic"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts the names printed by Method.String.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest":
		return Nearest, nil
	case "bilinear", "":
		return Bilinear, nil
	case "bicubic":
		return Bicubic, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

// Sample interpolates the grid at (x, y) with method m.
func (g *Grid) Sample(m Method, x, y float64) float64 {
	switch m {
	case Nearest:
		return g.Nearest(x, y)
	case Bicubic:
		return g.Bicubic(x, y)
	default:
		return g.Bilinear(x, y)
	}
}

// Source is a point sampler over projected coordinates.
type Source interface {
	At(p orb.Point) float64
}

type gridSource struct {
	grid   *Grid
	method Method
	scale  float64
}

func (s gridSource) At(p orb.Point) float64 {
	return s.grid.Sample(s.method, p[0], p[1]) * s.scale
}

// Source binds the grid to an interpolation method. Samples are multiplied
// by scale, which converts stored units to metres.
func (g *Grid) Source(m Method, scale float64) Source {
	return gridSource{grid: g, method: m, scale: scale}
}
