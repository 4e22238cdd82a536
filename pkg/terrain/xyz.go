package terrain

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ParseXYZ reads whitespace separated "x y value" lines into a grid. The
// axes are the sorted distinct x and y coordinates; cells without a line are
// NaN. Blank lines and lines starting with '#' are skipped.
func ParseXYZ(r io.Reader) (*Grid, error) {
	type sample struct{ x, y, v float64 }
	var samples []sample

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: expected x y value, got %d fields", line, len(fields))
		}
		var s sample
		for k, dst := range []*float64{&s.x, &s.y, &s.v} {
			v, err := strconv.ParseFloat(fields[k], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			*dst = v
		}
		if math.IsNaN(s.x) || math.IsNaN(s.y) || math.IsInf(s.x, 0) || math.IsInf(s.y, 0) {
			return nil, fmt.Errorf("line %d: non-finite coordinate", line)
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidGrid)
	}

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for k, s := range samples {
		xs[k], ys[k] = s.x, s.y
	}
	slices.Sort(xs)
	slices.Sort(ys)
	xs = slices.Compact(xs)
	ys = slices.Compact(ys)

	values := make([]float64, len(xs)*len(ys))
	for k := range values {
		values[k] = math.NaN()
	}
	for _, s := range samples {
		_, i := NearestTick(xs, s.x)
		_, j := NearestTick(ys, s.y)
		values[j*len(xs)+i] = s.v
	}
	return NewGrid(xs, ys, values)
}
