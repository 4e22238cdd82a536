package p1812

import "math"

// Ground electrical constants for the first-term spherical-Earth loss.
const (
	landEpsr  = 22.0
	landSigma = 0.003
	seaEpsr   = 80.0
	seaSigma  = 5.0
)

// sphericalLoss is the spherical-Earth diffraction loss for a path of d km
// between antennas hte/hre metres above the smooth surface, per polarization.
func sphericalLoss(d, hte, hre, ap, f, lambda, omega float64) [2]float64 {
	dlos := math.Sqrt(2*ap) * (math.Sqrt(0.001*hte) + math.Sqrt(0.001*hre))
	if d >= dlos {
		return firstTerm(d, hte, hre, ap, f, omega)
	}

	// Smallest clearance between the curved-Earth path and the ray.
	c := (hte - hre) / (hte + hre)
	m := 250 * d * d / (ap * (hte + hre))
	arg := math.Max(-1, math.Min(1.5*c*math.Sqrt(3*m/math.Pow(m+1, 3)), 1))
	b := 2 * math.Sqrt((m+1)/(3*m)) * math.Cos(math.Pi/3+math.Acos(arg)/3)
	dse1 := d / 2 * (1 + b)
	dse2 := d - dse1
	hse := ((hte-500*dse1*dse1/ap)*dse2 + (hre-500*dse2*dse2/ap)*dse1) / d

	hreq := 17.456 * math.Sqrt(dse1*dse2*lambda/d)
	if hse > hreq {
		return [2]float64{}
	}

	// Effective radius giving marginal line of sight at distance d.
	aem := 500 * math.Pow(d/(math.Sqrt(hte)+math.Sqrt(hre)), 2)
	ldft := firstTerm(d, hte, hre, aem, f, omega)
	var out [2]float64
	for pol := range out {
		out[pol] = (1 - hse/hreq) * math.Max(ldft[pol], 0)
	}
	return out
}

// firstTerm blends the land and sea first-term losses by the sea fraction.
func firstTerm(d, hte, hre, adft, f, omega float64) [2]float64 {
	land := firstTermGround(d, hte, hre, adft, f, landEpsr, landSigma)
	sea := firstTermGround(d, hte, hre, adft, f, seaEpsr, seaSigma)
	var out [2]float64
	for pol := range out {
		out[pol] = omega*sea[pol] + (1-omega)*land[pol]
	}
	return out
}

// firstTermGround is the first-term spherical-Earth loss over a homogeneous
// ground with relative permittivity epsr and conductivity sigma (S/m).
func firstTermGround(d, hte, hre, adft, f, epsr, sigma float64) [2]float64 {
	var k [2]float64
	k[Horizontal] = 0.036 * math.Pow(adft*f, -1.0/3) *
		math.Pow(math.Pow(epsr-1, 2)+math.Pow(18*sigma/f, 2), -0.25)
	k[Vertical] = k[Horizontal] * math.Sqrt(epsr*epsr+math.Pow(18*sigma/f, 2))

	var out [2]float64
	for pol, kk := range k {
		k2 := kk * kk
		beta := (1 + k2*(1.6+0.67*k2)) / (1 + k2*(4.5+1.53*k2))

		x := 21.88 * beta * math.Cbrt(f/(adft*adft)) * d
		yt := 0.9575 * beta * math.Cbrt(f*f/adft) * hte
		yr := 0.9575 * beta * math.Cbrt(f*f/adft) * hre

		var fx float64
		if x >= 1.6 {
			fx = 11 + 10*math.Log10(x) - 17.6*x
		} else {
			fx = -20*math.Log10(x) - 5.6488*math.Pow(x, 1.425)
		}

		floor := 2 + 20*math.Log10(kk)
		gyt := math.Max(heightGain(beta*yt), floor)
		gyr := math.Max(heightGain(beta*yr), floor)
		out[pol] = -fx - gyt - gyr
	}
	return out
}

func heightGain(b float64) float64 {
	if b > 2 {
		return 17.6*math.Sqrt(b-1.1) - 5*math.Log10(b-1.1) - 8
	}
	return 20 * math.Log10(b+0.1*b*b*b)
}
