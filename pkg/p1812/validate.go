package p1812

import (
	"errors"
	"fmt"
)

// Physical bounds accepted by Validate.
const (
	MinFrequency   = 0.03 // GHz
	MaxFrequency   = 6.0
	MinPercent     = 1.0
	MaxPercent     = 50.0
	MinAntenna     = 1.0 // m above ground
	MaxAntenna     = 3000.0
	MinStreetWidth = 1.0
	MaxStreetWidth = 100.0
	MinN0          = 150.0
	MaxN0          = 500.0
	MinDN          = 0.0
	MaxDN          = 150.0
	MinPoints      = 2
	MinTerrain     = -500.0
	MaxTerrain     = 9000.0
	MinClutter     = 0.0
	MaxClutter     = 1000.0
	MinCoast       = 0.0
	MaxCoast       = 1e4 // km
	MinSigmaL      = 0.0
	MaxSigmaL      = 30.0
)

// ErrInvalidParameters matches every *ParamError via errors.Is.
var ErrInvalidParameters = errors.New("invalid parameters")

// ParamField identifies the field rejected by Validate. The constants are
// declared in validation order.
type ParamField int

const (
	FieldFrequency ParamField = iota + 1
	FieldPercent
	FieldTxHeight
	FieldRxHeight
	FieldPolarization
	FieldZone
	FieldStreetWidth
	FieldLongitude
	FieldLatitude
	FieldN0
	FieldDN
	FieldPoints
	FieldDistance
	FieldTerrainHeight
	FieldClutterHeight
	FieldOmega
	FieldCoastDistance
	FieldLocationPercent
	FieldLocationSigma
)

var fieldNames = map[ParamField]string{
	FieldFrequency:       "frequency",
	FieldPercent:         "time percentage",
	FieldTxHeight:        "transmitter height",
	FieldRxHeight:        "receiver height",
	FieldPolarization:    "polarization",
	FieldZone:            "radio-climatic zone",
	FieldStreetWidth:     "street width",
	FieldLongitude:       "longitude",
	FieldLatitude:        "latitude",
	FieldN0:              "surface refractivity",
	FieldDN:              "refractivity lapse rate",
	FieldPoints:          "number of points",
	FieldDistance:        "distance from transmitter",
	FieldTerrainHeight:   "terrain height",
	FieldClutterHeight:   "clutter height",
	FieldOmega:           "sea fraction",
	FieldCoastDistance:   "distance to coast",
	FieldLocationPercent: "location percentage",
	FieldLocationSigma:   "location variability",
}

func (f ParamField) String() string {
	if s, ok := fieldNames[f]; ok {
		return s
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// ParamError reports the first parameter that failed validation.
type ParamError struct {
	Field ParamField
	Value float64
	Index int // profile index for vector fields, -1 otherwise
}

func (e *ParamError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid %s at index %d: %g", e.Field, e.Index, e.Value)
	}
	return fmt.Sprintf("invalid %s: %g", e.Field, e.Value)
}

// Is makes errors.Is(err, ErrInvalidParameters) true.
func (e *ParamError) Is(target error) bool {
	return target == ErrInvalidParameters
}

// FieldOf extracts the rejected field from err, or 0 if err is not a
// *ParamError.
func FieldOf(err error) ParamField {
	var pe *ParamError
	if errors.As(err, &pe) {
		return pe.Field
	}
	return 0
}

func scalarErr(f ParamField, v float64) error {
	return &ParamError{Field: f, Value: v, Index: -1}
}

// inRange rejects NaN.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// Validate checks params and profile in a fixed order and returns the first
// violation as a *ParamError. Terrain and clutter samples may be NaN: they
// mark points outside grid coverage and propagate into a NaN loss.
func Validate(p *Params, prof Profile) error {
	if err := validateLink(p); err != nil {
		return err
	}
	if err := validateProfile(prof); err != nil {
		return err
	}
	return validateExtended(p)
}

// ValidateParams checks only the scalar parameters. A sweep uses it to
// reject a job before building any profile.
func ValidateParams(p *Params) error {
	if err := validateLink(p); err != nil {
		return err
	}
	return validateExtended(p)
}

func validateLink(p *Params) error {
	switch {
	case !inRange(p.Frequency, MinFrequency, MaxFrequency):
		return scalarErr(FieldFrequency, p.Frequency)
	case !inRange(p.Percent, MinPercent, MaxPercent):
		return scalarErr(FieldPercent, p.Percent)
	case !inRange(p.Htg, MinAntenna, MaxAntenna):
		return scalarErr(FieldTxHeight, p.Htg)
	case !inRange(p.Hrg, MinAntenna, MaxAntenna):
		return scalarErr(FieldRxHeight, p.Hrg)
	case p.Polarization != Horizontal && p.Polarization != Vertical:
		return scalarErr(FieldPolarization, float64(p.Polarization))
	case p.Zone != CoastalLand && p.Zone != Inland && p.Zone != Sea:
		return scalarErr(FieldZone, float64(p.Zone))
	case !inRange(p.StreetWidth, MinStreetWidth, MaxStreetWidth):
		return scalarErr(FieldStreetWidth, p.StreetWidth)
	case !inRange(p.Lon, -180, 180):
		return scalarErr(FieldLongitude, p.Lon)
	case !inRange(p.Lat, -90, 90):
		return scalarErr(FieldLatitude, p.Lat)
	case !inRange(p.N0, MinN0, MaxN0):
		return scalarErr(FieldN0, p.N0)
	case !inRange(p.DN, MinDN, MaxDN):
		return scalarErr(FieldDN, p.DN)
	}
	return nil
}

func validateProfile(prof Profile) error {
	n := prof.Len()
	if n < MinPoints {
		return scalarErr(FieldPoints, float64(n))
	}
	for i, d := range prof.D {
		if !(d >= 0) || (i > 0 && !(d > prof.D[i-1])) {
			return &ParamError{Field: FieldDistance, Value: d, Index: i}
		}
	}
	if len(prof.H) != n {
		return scalarErr(FieldTerrainHeight, float64(len(prof.H)))
	}
	for i, h := range prof.H {
		if h < MinTerrain || h > MaxTerrain {
			return &ParamError{Field: FieldTerrainHeight, Value: h, Index: i}
		}
	}
	if prof.Ct == nil {
		return nil
	}
	if len(prof.Ct) != n {
		return scalarErr(FieldClutterHeight, float64(len(prof.Ct)))
	}
	for i, c := range prof.Ct {
		if c < MinClutter || c > MaxClutter {
			return &ParamError{Field: FieldClutterHeight, Value: c, Index: i}
		}
	}
	return nil
}

func validateExtended(p *Params) error {
	switch {
	case !inRange(p.Omega, 0, 1):
		return scalarErr(FieldOmega, p.Omega)
	case !inRange(p.Dct, MinCoast, MaxCoast):
		return scalarErr(FieldCoastDistance, p.Dct)
	case !inRange(p.Dcr, MinCoast, MaxCoast):
		return scalarErr(FieldCoastDistance, p.Dcr)
	case !(p.LocationPercent > 0 && p.LocationPercent < 100):
		return scalarErr(FieldLocationPercent, p.LocationPercent)
	case !inRange(p.LocationSigma, MinSigmaL, MaxSigmaL):
		return scalarErr(FieldLocationSigma, p.LocationSigma)
	}
	return nil
}
