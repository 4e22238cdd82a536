package p1812

import "math"

// Cache holds prefix results of the path analysis indexed by profile length:
// the least-squares integrals v1 and v2 and the running maximum of the
// transmitter-side elevation angle. Entries are NaN until computed.
//
// A Cache is valid only while the profile prefix stays the same. Callers
// sweeping one ray from its far end inward can keep it; a new ray needs
// Reset. The cache also resets itself when the transmitter height, the first
// distance sample or the effective Earth radius change between calls.
//
// A Cache is not safe for concurrent use; give each worker its own.
type Cache struct {
	v1       []float64
	v2       []float64
	thetaMax []float64

	bound bool
	key   cacheKey
}

type cacheKey struct {
	hts, d0, ae float64
	clutter     bool
}

// NewCache allocates a cache for profiles of up to n points. It grows on
// demand if a longer profile shows up.
func NewCache(n int) *Cache {
	c := &Cache{}
	c.grow(n + 3)
	return c
}

// Reset marks every entry as not yet computed.
func (c *Cache) Reset() {
	fillNaN(c.v1)
	fillNaN(c.v2)
	fillNaN(c.thetaMax)
	c.bound = false
}

func (c *Cache) grow(n int) {
	if n <= len(c.v1) {
		return
	}
	extend := func(s []float64) []float64 {
		out := make([]float64, n)
		copy(out, s)
		fillNaN(out[len(s):])
		return out
	}
	c.v1 = extend(c.v1)
	c.v2 = extend(c.v2)
	c.thetaMax = extend(c.thetaMax)
}

// bind prepares the cache for a profile of n points with the given prefix
// key, dropping stale entries.
func (c *Cache) bind(n int, key cacheKey) {
	c.grow(n + 1)
	if !c.bound || c.key != key {
		c.Reset()
		c.key = key
		c.bound = true
	}
}

func fillNaN(s []float64) {
	nan := math.NaN()
	for i := range s {
		s[i] = nan
	}
}
