package p1812

import "math"

// Diffraction holds the diffraction stage outputs, indexed by Polarization.
type Diffraction struct {
	Ld50 [2]float64 // median diffraction loss, dB
	Ldb  [2]float64 // diffraction loss not exceeded for beta0% time, dB
	Ldp  [2]float64 // diffraction loss not exceeded for p% time, dB

	// Components of the median evaluation.
	Lbulla float64
	Lbulls float64
	Ldsph  [2]float64
}

// bullington returns the Bullington diffraction loss for the profile with
// terminal heights hts/hrs above sea level and effective Earth radius ap.
// With flat set, all profile heights are taken as zero.
func bullington(prof Profile, flat bool, hts, hrs, dtot, lambda, ap float64) float64 {
	last := prof.Len() - 1
	height := func(i int) float64 {
		if flat {
			return 0
		}
		return prof.g(i)
	}
	bulge := func(di float64) float64 {
		return 500 * di * (dtot - di) / ap
	}

	str := (hrs - hts) / dtot
	stim := math.Inf(-1)
	for i := 1; i < last; i++ {
		di := dist(prof, i)
		stim = math.Max(stim, (height(i)+bulge(di)-hts)/di)
	}

	var luc float64
	if stim < str {
		numax := math.Inf(-1)
		for i := 1; i < last; i++ {
			di := dist(prof, i)
			nu := (height(i) + bulge(di) - (hts*(dtot-di)+hrs*di)/dtot) *
				math.Sqrt(0.002*dtot/(lambda*di*(dtot-di)))
			numax = math.Max(numax, nu)
		}
		luc = knifeEdge(numax)
	} else {
		srim := math.Inf(-1)
		for i := 1; i < last; i++ {
			di := dist(prof, i)
			srim = math.Max(srim, (height(i)+bulge(di)-hrs)/(dtot-di))
		}
		dbp := (hrs - hts + srim*dtot) / (stim + srim)
		nub := (hts + stim*dbp - (hts*(dtot-dbp)+hrs*dbp)/dtot) *
			math.Sqrt(0.002*dtot/(lambda*dbp*(dtot-dbp)))
		luc = knifeEdge(nub)
	}
	return luc + (1-math.Exp(-luc/6))*(10+0.02*dtot)
}

// deltaBullington combines the Bullington loss of the actual profile with the
// spherical-Earth loss of its smooth equivalent for radius ap.
func deltaBullington(prof Profile, geo *Geometry, f, lambda, omega, ap float64) (ld [2]float64, lbulla, lbulls float64, ldsph [2]float64) {
	lbulla = bullington(prof, false, geo.Hts, geo.Hrs, geo.Dtot, lambda, ap)

	hts1 := geo.Hts - geo.Hstd
	hrs1 := geo.Hrs - geo.Hsrd
	lbulls = bullington(prof, true, hts1, hrs1, geo.Dtot, lambda, ap)

	ldsph = sphericalLoss(geo.Dtot, hts1, hrs1, ap, f, lambda, omega)
	for pol := range ld {
		ld[pol] = lbulla + math.Max(ldsph[pol]-lbulls, 0)
	}
	return ld, lbulla, lbulls, ldsph
}

// diffractionLoss evaluates the delta-Bullington loss at the median and beta0
// effective Earth radii and interpolates to the requested time percentage.
func diffractionLoss(prof Profile, geo *Geometry, p *Params, lambda, ae, ab, b0 float64) Diffraction {
	var out Diffraction
	out.Ld50, out.Lbulla, out.Lbulls, out.Ldsph = deltaBullington(prof, geo, p.Frequency, lambda, p.Omega, ae)

	if p.Percent == 50 {
		out.Ldb = out.Ld50
		out.Ldp = out.Ld50
		return out
	}

	out.Ldb, _, _, _ = deltaBullington(prof, geo, p.Frequency, lambda, p.Omega, ab)
	fi := 1.0
	if p.Percent > b0 {
		fi = InvCumNorm(p.Percent/100) / InvCumNorm(b0/100)
	}
	for pol := range out.Ldp {
		out.Ldp[pol] = out.Ld50[pol] + fi*(out.Ldb[pol]-out.Ld50[pol])
	}
	return out
}
