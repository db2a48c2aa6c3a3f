package satpos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpelc/gogps/internal/navdata"
)

// A circular, equatorial, zero-inclination orbit with no harmonic
// corrections and M0=0 at t=Toe reduces to the textbook special case: the
// satellite sits exactly at radius sqrt(A)^2 in the plane rotated by Omega0
// around Z. This is the same closed-form check the GPS ICD Appendix II
// worked example builds on before harmonic and Sagnac corrections are
// layered in, and it pins down the sign conventions of each step in
// AtTransmitTime independently of any single ICD constant set.
func TestAtTransmitTimeCircularEquatorialSpecialCase(t *testing.T) {
	sqrtA := 5153.8
	eph := &navdata.EphemerisParams{
		SqrtA:  sqrtA,
		Ecc:    0,
		M0:     0,
		I0:     0,
		Omega0: 0,
		Toe:    100_000,
	}
	clk := &navdata.ClockCorrection{Toc: 100_000}

	pos, correctedT := AtTransmitTime(eph, clk, 100_000)
	require.InDelta(t, 100_000.0, correctedT, 1e-9)

	r := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	require.InDelta(t, sqrtA*sqrtA, r, 1e-6)
	require.InDelta(t, 0, pos.Z, 1e-6)
}

// TestAtTransmitTimeAppliesClockCorrection checks that Af0 shifts the
// effective transmit time used in Kepler's equation, i.e. a nonzero clock
// bias changes the resulting position instead of being silently dropped.
func TestAtTransmitTimeAppliesClockCorrection(t *testing.T) {
	eph := &navdata.EphemerisParams{
		SqrtA:  5153.8,
		Ecc:    0.01,
		M0:     0.5,
		DeltaN: 1e-9,
		I0:     0.9,
		Omega0: 0.2,
		Omega:  0.1,
		Toe:    0,
	}
	clkNoBias := &navdata.ClockCorrection{Toc: 0}
	clkWithBias := &navdata.ClockCorrection{Toc: 0, Af0: 1e-3}

	posA, tA := AtTransmitTime(eph, clkNoBias, 1000)
	posB, tB := AtTransmitTime(eph, clkWithBias, 1000)

	require.NotEqual(t, tA, tB)
	require.NotEqual(t, posA, posB)
}
