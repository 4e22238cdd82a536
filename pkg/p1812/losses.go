package p1812

import "math"

// freeSpace returns the free-space loss and the line-of-sight losses not
// exceeded for p% and beta0% of time, including multipath/focusing
// corrections.
func freeSpace(f, p, b0 float64, geo *Geometry) (lbfs, lb0p, lb0b float64) {
	dh := (geo.Hts - geo.Hrs) / 1000
	dfs := math.Sqrt(geo.Dtot*geo.Dtot + dh*dh)
	lbfs = 92.4 + 20*math.Log10(f) + 20*math.Log10(dfs)

	corr := 2.6 * (1 - math.Exp(-0.1*(geo.Dlt+geo.Dlr)))
	lb0p = lbfs + corr*math.Log10(p/50)
	lb0b = lbfs + corr*math.Log10(b0/50)
	return lbfs, lb0p, lb0b
}

// anomalous returns the basic transmission loss during periods of ducting
// and layer reflection.
func anomalous(p *Params, geo *Geometry, ae, b0, dlm float64) float64 {
	f := p.Frequency
	dtot := geo.Dtot

	// Empirical correction for increasing attenuation with wavelength.
	var alf float64
	if f < 0.5 {
		alf = 45.375 - 137*f + 92.5*f*f
	}

	ast := siteShielding(geo.ThetaT-0.1*geo.Dlt, f, geo.Dlt)
	asr := siteShielding(geo.ThetaR-0.1*geo.Dlr, f, geo.Dlr)
	act := ductCoupling(p.Dct, geo.Dlt, p.Omega, geo.Hts)
	acr := ductCoupling(p.Dcr, geo.Dlr, p.Omega, geo.Hrs)

	af := 102.45 + 20*math.Log10(f) + 20*math.Log10(geo.Dlt+geo.Dlr) + alf + ast + asr + act + acr

	gammaD := 5e-5 * ae * math.Cbrt(f)
	theta1 := 1e3*dtot/ae + math.Min(geo.ThetaT, 0.1*geo.Dlt) + math.Min(geo.ThetaR, 0.1*geo.Dlr)

	dI := math.Min(dtot-geo.Dlt-geo.Dlr, 40)
	mu3 := 1.0
	if geo.Hm > 10 {
		mu3 = math.Exp(-4.6e-5 * (geo.Hm - 10) * (43 + 6*dI))
	}

	const epsilon = 3.5
	alpha := math.Max(-0.6-epsilon*1e-9*math.Pow(dtot, 3.1)*inlandTau(dlm), -3.4)
	mu2 := math.Pow(500*dtot*dtot/(ae*math.Pow(math.Sqrt(geo.Hte)+math.Sqrt(geo.Hre), 2)), alpha)
	mu2 = math.Min(mu2, 1)

	beta := b0 * mu2 * mu3
	lb := math.Log10(beta)
	gamma := 1.076 / math.Pow(2.0058-lb, 1.012) *
		math.Exp(-(9.51-4.8*lb+0.198*lb*lb)*1e-6*math.Pow(dtot, 1.13))
	ap := -12 + (1.2+3.7e-3*dtot)*math.Log10(p.Percent/beta) + 12*math.Pow(p.Percent/beta, gamma)

	return af + gammaD*theta1 + ap
}

// siteShielding is the diffraction loss for a terminal whose horizon angle
// exceeds 0.1*dl mrad by th.
func siteShielding(th, f, dl float64) float64 {
	if !(th > 0) {
		return 0
	}
	return 20*math.Log10(1+0.361*th*math.Sqrt(f*dl)) + 0.264*th*math.Cbrt(f)
}

// ductCoupling is the over-sea surface duct coupling correction for a
// terminal dc km from the coast.
func ductCoupling(dc, dl, omega, hs float64) float64 {
	if omega >= 0.75 && dc <= dl && dc <= 5 {
		return -3 * math.Exp(-0.25*dc*dc) * (1 + math.Tanh(0.07*(50-hs)))
	}
	return 0
}

// troposcatter returns the troposcatter basic transmission loss.
func troposcatter(f, p, n0, dtot, theta float64) float64 {
	lf := 25*math.Log10(f) - 2.5*math.Pow(math.Log10(f/2), 2)
	return 190.1 + lf + 20*math.Log10(dtot) + 0.573*theta - 0.15*n0 - 10.125*math.Pow(math.Log10(50/p), 0.7)
}
