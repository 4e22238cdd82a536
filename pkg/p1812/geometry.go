package p1812

import "math"

// Geometry is the result of the path profile analysis.
type Geometry struct {
	Dtot float64 // km
	Hts  float64 // transmitter antenna height above sea level, m
	Hrs  float64 // receiver antenna height above sea level, m

	// Least-squares smooth-surface heights at each terminal.
	Hst float64
	Hsr float64
	// Smooth-surface heights used by the diffraction model.
	Hstd float64
	Hsrd float64
	// Effective heights and terrain roughness for the ducting model.
	Hte float64
	Hre float64
	Hm  float64

	ThetaMax    float64 // max transmitter-side elevation over interior points, mrad
	ThetaT      float64 // transmitter horizon elevation angle, mrad
	ThetaR      float64 // receiver horizon elevation angle, mrad
	Theta       float64 // path angular distance, mrad
	Dlt         float64 // transmitter horizon distance, km
	Dlr         float64 // receiver horizon distance, km
	LineOfSight bool
}

// AnalyzePath validates the inputs and runs the path profile analysis. It is
// the first stage of Calculate, exposed for inspection and tests.
func AnalyzePath(p *Params, prof Profile, c *Cache) (Geometry, error) {
	if err := Validate(p, prof); err != nil {
		return Geometry{}, err
	}
	ae, _ := effectiveRadii(p.DN)
	return analyzePath(p, prof, wavelength(p.Frequency), ae, c), nil
}

func wavelength(f float64) float64 {
	return 0.2998 / f
}

// dist is the distance of point i from the first profile point.
func dist(prof Profile, i int) float64 {
	return prof.D[i] - prof.D[0]
}

func analyzePath(p *Params, prof Profile, lambda, ae float64, c *Cache) Geometry {
	n := prof.Len()
	last := n - 1
	g := Geometry{
		Dtot: dist(prof, last),
		Hts:  prof.H[0] + p.Htg,
		Hrs:  prof.H[last] + p.Hrg,
	}
	dtot := g.Dtot

	if c != nil {
		c.bind(n, cacheKey{hts: g.Hts, d0: prof.D[0], ae: ae, clutter: prof.Ct != nil})
	}

	v1, v2 := smoothIntegrals(prof, c)
	g.Hst = (2*v1*dtot - v2) / (dtot * dtot)
	g.Hsr = (v2 - v1*dtot) / (dtot * dtot)

	// Obstruction above the straight line between the antennas.
	hobs, aobt, aobr := math.Inf(-1), math.Inf(-1), math.Inf(-1)
	for i := 1; i < last; i++ {
		di := dist(prof, i)
		hh := prof.g(i) - (g.Hts*(dtot-di)+g.Hrs*di)/dtot
		hobs = math.Max(hobs, hh)
		aobt = math.Max(aobt, hh/di)
		aobr = math.Max(aobr, hh/(dtot-di))
	}
	hstp, hsrp := g.Hst, g.Hsr
	if hobs > 0 {
		hstp -= hobs * aobt / (aobt + aobr)
		hsrp -= hobs * aobr / (aobt + aobr)
	}
	g.Hstd = math.Min(hstp, prof.H[0])
	g.Hsrd = math.Min(hsrp, prof.H[last])

	// Horizon angles and path classification.
	g.ThetaMax = maxElevation(prof, g.Hts, ae, c)
	thetaTD := elevation(g.Hrs-g.Hts, dtot, ae)
	g.LineOfSight = !(g.ThetaMax > thetaTD)
	if g.LineOfSight {
		g.ThetaT = thetaTD
		g.ThetaR = elevation(g.Hts-g.Hrs, dtot, ae)
	} else {
		g.ThetaT = g.ThetaMax
		g.ThetaR = math.Inf(-1)
		for i := 1; i < last; i++ {
			dr := dtot - dist(prof, i)
			g.ThetaR = math.Max(g.ThetaR, elevation(prof.g(i)-g.Hrs, dr, ae))
		}
	}

	k := maxNuIndex(prof, g.Hts, g.Hrs, dtot, lambda, ae)
	if k < 0 {
		g.Dlt = dtot
	} else {
		g.Dlt = dist(prof, k)
	}
	g.Dlr = dtot - g.Dlt

	g.Theta = 1000*dtot/ae + g.ThetaT + g.ThetaR

	// Ducting/layer-reflection terminal heights and roughness.
	hstS := math.Min(g.Hst, prof.H[0])
	hsrS := math.Min(g.Hsr, prof.H[last])
	m := (hsrS - hstS) / dtot
	g.Hte = p.Htg + prof.H[0] - hstS
	g.Hre = p.Hrg + prof.H[last] - hsrS
	if k >= 0 {
		g.Hm = math.Max(0, prof.H[k]-(hstS+m*dist(prof, k)))
	}
	return g
}

// elevation is the angle in mrad above the local horizontal of a point dh
// metres higher and d km away, accounting for Earth curvature.
func elevation(dh, d, ae float64) float64 {
	return 1000 * math.Atan(dh/(1000*d)-d/(2*ae))
}

// smoothIntegrals returns the trapezoidal path integrals of height and of
// height times distance, continuing from the longest cached prefix.
func smoothIntegrals(prof Profile, c *Cache) (v1, v2 float64) {
	n := prof.Len()
	start := 1
	if c != nil {
		k := n
		for k > 1 && math.IsNaN(c.v1[k]) {
			k--
		}
		if k > 1 {
			start, v1, v2 = k, c.v1[k], c.v2[k]
		}
	}
	for i := start; i < n; i++ {
		di, dp := dist(prof, i), dist(prof, i-1)
		hi, hp := prof.H[i], prof.H[i-1]
		v1 += (di - dp) * (hi + hp)
		v2 += (di - dp) * (hi*(2*di+dp) + hp*(di+2*dp))
		if c != nil {
			c.v1[i+1], c.v2[i+1] = v1, v2
		}
	}
	return v1, v2
}

// maxElevation returns the highest transmitter-side elevation angle over the
// interior points, continuing from the longest cached prefix.
func maxElevation(prof Profile, hts, ae float64, c *Cache) float64 {
	n := prof.Len()
	k, best := 2, math.Inf(-1)
	if c != nil {
		j := n
		for j > 2 && math.IsNaN(c.thetaMax[j]) {
			j--
		}
		if j > 2 {
			k, best = j, c.thetaMax[j]
		}
	}
	// A profile of k+1 points adds interior point k-1.
	for ; k < n; k++ {
		best = math.Max(best, elevation(prof.g(k-1)-hts, dist(prof, k-1), ae))
		if c != nil {
			c.thetaMax[k+1] = best
		}
	}
	return best
}

// maxNuIndex returns the interior point with the largest diffraction
// parameter nu for the given antenna heights, or -1 for a profile with no
// interior points.
func maxNuIndex(prof Profile, hts, hrs, dtot, lambda, ae float64) int {
	k, numax := -1, math.Inf(-1)
	for i := 1; i < prof.Len()-1; i++ {
		di := dist(prof, i)
		nu := (prof.g(i) + 500*di*(dtot-di)/ae - (hts*(dtot-di)+hrs*di)/dtot) *
			math.Sqrt(0.002*dtot/(lambda*di*(dtot-di)))
		if nu > numax {
			k, numax = i, nu
		}
	}
	return k
}
