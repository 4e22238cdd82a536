package terrain

import "math"

// NearestTick returns the tick closest to target and its index, using an
// interpolation search over the strictly increasing ticks. Targets outside
// the axis clamp to the first or last tick. On an exact midpoint the lower
// tick wins. An empty axis or a NaN target yields (NaN, -1).
func NearestTick(ticks []float64, target float64) (float64, int) {
	n := len(ticks)
	if n == 0 || math.IsNaN(target) {
		return math.NaN(), -1
	}
	if target <= ticks[0] {
		return ticks[0], 0
	}
	if target >= ticks[n-1] {
		return ticks[n-1], n - 1
	}

	lo, hi := 0, n-1
	for lo < hi {
		frac := (target - ticks[lo]) / (ticks[hi] - ticks[lo])
		guess := lo + int(frac*float64(hi-lo))
		guess = min(max(guess, lo), hi-1)

		switch {
		case ticks[guess] == target:
			return target, guess
		case target < ticks[guess]:
			if guess > 0 && target > ticks[guess-1] {
				return nearer(ticks, guess-1, guess, target)
			}
			hi = guess
		default:
			if target < ticks[guess+1] {
				return nearer(ticks, guess, guess+1, target)
			}
			lo = guess + 1
		}
	}
	return ticks[lo], lo
}

func nearer(ticks []float64, a, b int, target float64) (float64, int) {
	if ticks[b]-target < target-ticks[a] {
		return ticks[b], b
	}
	return ticks[a], a
}

// lowerTick returns i with ticks[i] <= t < ticks[i+1].
func lowerTick(ticks []float64, t float64) (int, bool) {
	v, i := NearestTick(ticks, t)
	if i < 0 {
		return -1, false
	}
	if v > t {
		i--
	}
	if i < 0 || i+1 >= len(ticks) {
		return -1, false
	}
	return i, true
}

// Nearest returns the sample at the nearest grid node. It never reports
// out-of-coverage; queries outside the grid snap to the border.
func (g *Grid) Nearest(x, y float64) float64 {
	_, i := NearestTick(g.X, x)
	_, j := NearestTick(g.Y, y)
	return g.At(i, j)
}

// Bilinear interpolates within the cell bracketing (x, y). Points without a
// full bracket, including those on the last tick of either axis, are NaN.
func (g *Grid) Bilinear(x, y float64) float64 {
	i, ok := lowerTick(g.X, x)
	if !ok {
		return math.NaN()
	}
	j, ok := lowerTick(g.Y, y)
	if !ok {
		return math.NaN()
	}

	x1, x2 := g.X[i], g.X[i+1]
	y1, y2 := g.Y[j], g.Y[j+1]
	h11, h21 := g.At(i, j), g.At(i+1, j)
	h12, h22 := g.At(i, j+1), g.At(i+1, j+1)

	if x == x1 && y == y1 {
		return h11
	}
	tx := (x - x1) / (x2 - x1)
	ty := (y - y1) / (y2 - y1)
	lower := h11 + (h21-h11)*tx
	upper := h12 + (h22-h12)*tx
	return lower + (upper-lower)*ty
}

// Bicubic is a Catmull-Rom interpolation over the 4x4 neighbourhood of the
// cell containing (x, y). It needs one tick before and two after the query
// on each axis; otherwise the result is NaN.
func (g *Grid) Bicubic(x, y float64) float64 {
	i, ok := lowerTick(g.X, x)
	if !ok || i < 1 || i+2 >= len(g.X) {
		return math.NaN()
	}
	j, ok := lowerTick(g.Y, y)
	if !ok || j < 1 || j+2 >= len(g.Y) {
		return math.NaN()
	}

	tx := (x - g.X[i]) / (g.X[i+1] - g.X[i])
	ty := (y - g.Y[j]) / (g.Y[j+1] - g.Y[j])

	var col [4]float64
	for r := range col {
		row := j - 1 + r
		col[r] = catmullRom(g.At(i-1, row), g.At(i, row), g.At(i+1, row), g.At(i+2, row), tx)
	}
	return catmullRom(col[0], col[1], col[2], col[3], ty)
}

func catmullRom(p0, p1, p2, p3, t float64) float64 {
	if t == 0 {
		return p1
	}
	a := -p0 + 3*p1 - 3*p2 + p3
	b := 2*p0 - 5*p1 + 4*p2 - p3
	c := -p0 + p2
	return p1 + 0.5*t*(c+t*(b+t*a))
}
