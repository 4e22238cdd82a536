package p1812

import "math"

// Beta0 returns the time percentage (%) for which refractive index lapse rates
// exceeding 100 N-units/km can be expected in the first 100 m of the lower
// atmosphere. lat is the path centre latitude in degrees, dtm the longest
// continuous land section and dlm the longest continuous inland section in km.
func Beta0(lat, dtm, dlm float64) float64 {
	mu1 := pathMu1(dtm, dlm)
	phi := math.Abs(lat)
	if phi <= 70 {
		mu4 := math.Pow(mu1, -0.935+0.0176*phi)
		return math.Pow(10, -0.015*phi+1.67) * mu1 * mu4
	}
	mu4 := math.Pow(mu1, 0.3)
	return 4.17 * mu1 * mu4
}

// pathMu1 depends on the land/inland composition of the path; never above 1.
func pathMu1(dtm, dlm float64) float64 {
	mu1 := math.Pow(math.Pow(10, -dtm/(16-6.6*inlandTau(dlm)))+math.Pow(10, -5*(0.496+0.354*inlandTau(dlm))), 0.2)
	return math.Min(mu1, 1)
}

func inlandTau(dlm float64) float64 {
	return 1 - math.Exp(-4.12e-4*math.Pow(dlm, 2.41))
}
