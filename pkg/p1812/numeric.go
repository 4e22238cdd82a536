package p1812

import "math"

// EarthRadius is the mean Earth radius in km.
const EarthRadius = 6371.0

// InvCumNorm approximates the inverse complementary cumulative normal
// distribution I(x): the value exceeded with probability x. The argument is
// clamped to [1e-6, 0.999999].
func InvCumNorm(x float64) float64 {
	x = math.Max(1e-6, math.Min(x, 0.999999))
	if x <= 0.5 {
		return tcn(x) - ccn(x)
	}
	return -(tcn(1-x) - ccn(1-x))
}

func tcn(y float64) float64 {
	return math.Sqrt(-2 * math.Log(y))
}

func ccn(z float64) float64 {
	const (
		c0 = 2.515516698
		c1 = 0.802853
		c2 = 0.010328
		d1 = 1.432788
		d2 = 0.189269
		d3 = 0.001308
	)
	t := tcn(z)
	return ((c2*t+c1)*t + c0) / (((d3*t+d2)*t+d1)*t + 1)
}

// knifeEdge is the single knife-edge loss J(nu) for nu > -0.78, else 0.
func knifeEdge(nu float64) float64 {
	if !(nu > -0.78) {
		return 0
	}
	v := nu - 0.1
	return 6.9 + 20*math.Log10(math.Sqrt(v*v+1)+v)
}

// effectiveRadii returns the median and beta0 effective Earth radii in km.
func effectiveRadii(dn float64) (ae, ab float64) {
	return EarthRadius * 157 / (157 - dn), 3 * EarthRadius
}
