// Package satpos reconstructs a GPS satellite's ECEF position at transmit
// time from its ephemeris, and assembles the pseudorange used by the
// navigation solver.
package satpos

import (
	"math"

	"github.com/kpelc/gogps/internal/navdata"
)

// GPS WGS-84 constants, matching the ICD values spec.md 4.5 names.
const (
	Mu           = 3.986005e14   // Earth's gravitational constant, m^3/s^2
	OmegaEDotHz  = 7.2921151467e-5
	SpeedOfLight = 299792458.0
)

// ECEF is an Earth-Centered, Earth-Fixed Cartesian position in meters.
type ECEF struct {
	X, Y, Z float64
}

// AtTransmitTime computes the satellite's ECEF position at true (clock
// corrected) transmit time given its ephemeris and clock correction,
// following spec.md 4.5 steps 1-8: clock correction, Kepler's equation via
// Newton iteration, harmonic corrections, and Sagnac-corrected longitude of
// the ascending node.
func AtTransmitTime(eph *navdata.EphemerisParams, clk *navdata.ClockCorrection, tsv float64) (pos ECEF, correctedTransmitTime float64) {
	dt := clk.Af0 + clk.Af1*(tsv-clk.Toc) + clk.Af2*(tsv-clk.Toc)*(tsv-clk.Toc) - clk.Tgd
	t := tsv - dt

	a := eph.SqrtA * eph.SqrtA
	n := math.Sqrt(Mu/(a*a*a)) + eph.DeltaN
	tk := t - eph.Toe
	m := eph.M0 + n*tk

	ek := m
	for i := 0; i < 10; i++ {
		next := ek - (ek-eph.Ecc*math.Sin(ek)-m)/(1-eph.Ecc*math.Cos(ek))
		if math.Abs(next-ek) < 1e-12 {
			ek = next
			break
		}
		ek = next
	}

	nu := math.Atan2(math.Sqrt(1-eph.Ecc*eph.Ecc)*math.Sin(ek), math.Cos(ek)-eph.Ecc)
	phi := nu + eph.Omega

	du := eph.Cus*math.Sin(2*phi) + eph.Cuc*math.Cos(2*phi)
	dr := eph.Crs*math.Sin(2*phi) + eph.Crc*math.Cos(2*phi)
	di := eph.Cis*math.Sin(2*phi) + eph.Cic*math.Cos(2*phi)

	u := phi + du
	r := a*(1-eph.Ecc*math.Cos(ek)) + dr
	i := eph.I0 + di + eph.IDOT*tk

	xPrime := r * math.Cos(u)
	yPrime := r * math.Sin(u)

	omega := eph.Omega0 + (eph.OmegaDot-OmegaEDotHz)*tk - OmegaEDotHz*eph.Toe

	pos.X = xPrime*math.Cos(omega) - yPrime*math.Cos(i)*math.Sin(omega)
	pos.Y = xPrime*math.Sin(omega) + yPrime*math.Cos(i)*math.Cos(omega)
	pos.Z = yPrime * math.Sin(i)

	return pos, t
}
