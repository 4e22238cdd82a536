// Package rf converts path loss into received power and S-meter readings.
package rf

import (
	"fmt"
	"math"
)

// WattsToDBm converts a power in watts to dBm.
func WattsToDBm(p float64) float64 {
	return 10*math.Log10(p) + 30
}

// LinkBudget is the received power in dBm for transmitter power p (W),
// antenna gains gt and gr (dBi) and path loss l (dB).
func LinkBudget(p, gt, gr, l float64) float64 {
	return WattsToDBm(p) + gt + gr - l
}

// Scale is an S-meter calibration.
type Scale struct {
	Name string
	S9   float64 // dBm
	Step float64 // dB per S-unit
}

var (
	// HF is the IARU HF calibration, S9 = -73 dBm.
	HF = Scale{Name: "hf", S9: -73, Step: 6}
	// VHF is the IARU VHF/UHF calibration, S9 = -93 dBm.
	VHF = Scale{Name: "vhf", S9: -93, Step: 6}
)

// ParseScale returns HF or VHF by name.
func ParseScale(s string) (Scale, error) {
	switch s {
	case "hf", "":
		return HF, nil
	case "vhf", "uhf":
		return VHF, nil
	}
	return Scale{}, fmt.Errorf("unknown S-meter scale %q", s)
}

// S1 is the power of an S1 reading.
func (s Scale) S1() float64 {
	return s.S9 - 8*s.Step
}

// SUnit is an S-meter reading: whole units and the remainder in dB. Above S9
// DBOver is the excess over S9; below S1 it is negative.
type SUnit struct {
	Units  int
	DBOver float64
}

func (u SUnit) String() string {
	sign := '+'
	if u.DBOver < 0 {
		sign = '-'
	}
	return fmt.Sprintf("S%d %c %.1fdB", u.Units, sign, math.Abs(u.DBOver))
}

// Value is the reading as a fractional number of S-units.
func (u SUnit) Value(s Scale) float64 {
	return float64(u.Units) + u.DBOver/s.Step
}

// ToSUnit converts a received power in dBm to an S-meter reading. NaN input
// yields a zero-unit reading with NaN remainder.
func (s Scale) ToSUnit(dbm float64) SUnit {
	if math.IsNaN(dbm) {
		return SUnit{DBOver: math.NaN()}
	}
	if dbm >= s.S9 {
		return SUnit{Units: 9, DBOver: dbm - s.S9}
	}
	units := max(1, 1+int((dbm-s.S1())/s.Step))
	return SUnit{Units: units, DBOver: dbm - s.DBm(SUnit{Units: units})}
}

// DBm is the inverse of ToSUnit.
func (s Scale) DBm(u SUnit) float64 {
	return s.S1() + float64(u.Units-1)*s.Step + u.DBOver
}
