// Package p1812 implements the ITU-R P.1812 point-to-point basic transmission
// loss model over a sampled terrain/clutter profile.
package p1812

import (
	"fmt"
	"strings"
)

// Polarization of the radiated wave.
type Polarization int

const (
	// Horizontal polarization.
	Horizontal Polarization = 0
	// Vertical polarization.
	Vertical Polarization = 1
)

func (p Polarization) String() string {
	switch p {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("polarization(%d)", int(p))
	}
}

// ParsePolarization accepts "horizontal"/"h" and "vertical"/"v".
func ParsePolarization(s string) (Polarization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return 0, fmt.Errorf("unknown polarization %q", s)
}

// Zone is the radio-climatic zone of the path.
type Zone int

const (
	// CoastalLand zone (A1).
	CoastalLand Zone = 1
	// Inland zone (A2).
	Inland Zone = 3
	// Sea zone (B).
	Sea Zone = 4
)

func (z Zone) String() string {
	switch z {
	case CoastalLand:
		return "coastal"
	case Inland:
		return "inland"
	case Sea:
		return "sea"
	default:
		return fmt.Sprintf("zone(%d)", int(z))
	}
}

// ParseZone accepts "coastal", "inland" and "sea".
func ParseZone(s string) (Zone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "coastal", "coastal-land", "coastal_land":
		return CoastalLand, nil
	case "inland":
		return Inland, nil
	case "sea":
		return Sea, nil
	}
	return 0, fmt.Errorf("unknown radio-climatic zone %q", s)
}

// Params holds the scalar link parameters.
type Params struct {
	Frequency    float64 // GHz
	Percent      float64 // time percentage p, %
	Htg          float64 // transmitter height above ground, m
	Hrg          float64 // receiver height above ground, m
	Polarization Polarization
	Zone         Zone
	StreetWidth  float64 // m
	Lon          float64 // path centre longitude, deg
	Lat          float64 // path centre latitude, deg
	N0           float64 // sea-level surface refractivity, N-units
	DN           float64 // refractivity lapse rate, N-units/km

	// Omega is the fraction of the path over sea.
	Omega float64
	// Dct and Dcr are the distances from each terminal to the coast, km.
	Dct float64
	Dcr float64
	// LocationPercent (pL) and LocationSigma control location variability.
	LocationPercent float64
	LocationSigma   float64
}

// DefaultParams returns parameters with the optional fields at their usual
// values. Frequency, heights and the climate inputs still need to be set.
func DefaultParams() Params {
	return Params{
		Percent:         50,
		Polarization:    Vertical,
		Zone:            Inland,
		StreetWidth:     27,
		N0:              325,
		DN:              45,
		Omega:           0,
		Dct:             500,
		Dcr:             500,
		LocationPercent: 50,
		LocationSigma:   5.5,
	}
}

// Profile is a terrain profile sampled from the transmitter (index 0) to the
// receiver (last index). Ct may be nil when no clutter data is available.
type Profile struct {
	D  []float64 // distance from transmitter, km
	H  []float64 // terrain height above sea level, m
	Ct []float64 // representative clutter height, m
}

// Len returns the number of profile points.
func (p Profile) Len() int {
	return len(p.D)
}

// Truncate returns the first n points of the profile without copying.
func (p Profile) Truncate(n int) Profile {
	out := Profile{D: p.D[:n], H: p.H[:n]}
	if p.Ct != nil {
		out.Ct = p.Ct[:n]
	}
	return out
}

// g returns terrain plus clutter height at i.
func (p Profile) g(i int) float64 {
	if p.Ct == nil {
		return p.H[i]
	}
	return p.H[i] + p.Ct[i]
}
