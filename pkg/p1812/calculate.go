package p1812

import "math"

// Combination constants.
const (
	thetaRef = 0.3  // mrad
	ksi      = 0.8  // Fj slope
	dsw      = 20.0 // km
	kappa    = 0.5  // Fk slope
	eta      = 2.5
)

// Result is the output of Calculate. Lb is NaN when the profile contains
// points outside terrain coverage; callers should treat that as "no result".
type Result struct {
	Lb float64 // basic transmission loss not exceeded for p% time and pL% locations, dB

	Geometry    Geometry
	Diffraction Diffraction

	Beta0 float64 // %
	Ae    float64 // median effective Earth radius, km
	Ab    float64 // beta0 effective Earth radius, km

	Lbfs  float64 // free-space loss
	Lb0p  float64 // line-of-sight loss not exceeded for p% time
	Lb0b  float64 // line-of-sight loss not exceeded for beta0% time
	Lbd50 float64 // median diffraction loss
	Lbd   float64 // diffraction loss not exceeded for p% time
	Lba   float64 // anomalous propagation loss
	Lbs   float64 // troposcatter loss
	Lbc   float64 // combined loss before location variability
	Lloc  float64 // location variability correction

	Fi float64
	Fj float64
	Fk float64
}

// calculation threads the derived quantities of one Calculate call through
// the pipeline stages. It is never shared.
type calculation struct {
	p      *Params
	prof   Profile
	cache  *Cache
	lambda float64
	dtm    float64
	dlm    float64
	res    Result
}

// Calculate returns the basic transmission loss for the profile. The only
// error is a *ParamError from validation; numeric edge cases yield NaN in
// Result.Lb instead. cache may be nil.
func Calculate(p *Params, prof Profile, cache *Cache) (Result, error) {
	if err := Validate(p, prof); err != nil {
		return Result{Lb: math.NaN()}, err
	}
	c := calculation{p: p, prof: prof, cache: cache}
	c.derive()
	c.analyze()
	c.lineOfSight()
	c.diffraction()
	c.combine()
	return c.res, nil
}

func (c *calculation) derive() {
	dtot := dist(c.prof, c.prof.Len()-1)
	c.lambda = wavelength(c.p.Frequency)
	if c.p.Zone == Inland || c.p.Zone == CoastalLand {
		c.dtm = dtot
	}
	if c.p.Zone == Inland {
		c.dlm = dtot
	}
	c.res.Beta0 = Beta0(c.p.Lat, c.dtm, c.dlm)
	c.res.Ae, c.res.Ab = effectiveRadii(c.p.DN)
}

func (c *calculation) analyze() {
	c.res.Geometry = analyzePath(c.p, c.prof, c.lambda, c.res.Ae, c.cache)
}

func (c *calculation) lineOfSight() {
	c.res.Lbfs, c.res.Lb0p, c.res.Lb0b = freeSpace(c.p.Frequency, c.p.Percent, c.res.Beta0, &c.res.Geometry)
}

func (c *calculation) diffraction() {
	c.res.Diffraction = diffractionLoss(c.prof, &c.res.Geometry, c.p, c.lambda, c.res.Ae, c.res.Ab, c.res.Beta0)
}

func (c *calculation) combine() {
	r := &c.res
	p := c.p
	pol := p.Polarization
	geo := &r.Geometry
	ldp := r.Diffraction.Ldp[pol]

	r.Lbd50 = r.Lbfs + r.Diffraction.Ld50[pol]
	r.Lbd = r.Lb0p + ldp

	// Notional minimum loss for line of sight and over-sea sub-path diffraction.
	lminb0p := r.Lb0p + (1-p.Omega)*ldp
	r.Fi = 1
	if p.Percent >= r.Beta0 {
		r.Fi = InvCumNorm(p.Percent/100) / InvCumNorm(r.Beta0/100)
		lminb0p = r.Lbd50 + (r.Lb0b+(1-p.Omega)*ldp-r.Lbd50)*r.Fi
	}

	r.Fj = 1 - 0.5*(1+math.Tanh(3*ksi*(geo.Theta-thetaRef)/thetaRef))
	r.Fk = 1 - 0.5*(1+math.Tanh(3*kappa*(geo.Dtot-dsw)/dsw))

	r.Lba = anomalous(p, geo, r.Ae, r.Beta0, c.dlm)
	lminbap := eta * math.Log(math.Exp(r.Lba/eta)+math.Exp(r.Lb0p/eta))

	lbda := r.Lbd
	if lminbap <= r.Lbd {
		lbda = lminbap + (r.Lbd-lminbap)*r.Fk
	}
	lbam := lbda + (lminb0p-lbda)*r.Fj

	r.Lbs = troposcatter(p.Frequency, p.Percent, p.N0, geo.Dtot, geo.Theta)
	r.Lbc = -5 * math.Log10(math.Pow(10, -0.2*r.Lbs)+math.Pow(10, -0.2*lbam))

	if p.Zone != Sea {
		r.Lloc = -InvCumNorm(p.LocationPercent/100) * p.LocationSigma
	}
	r.Lb = math.Max(r.Lb0p, r.Lbc+r.Lloc)
}
