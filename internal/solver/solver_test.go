package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpelc/gogps/internal/satpos"
)

func rangeBetween(a, b satpos.ECEF) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// buildMeasurements synthesizes pseudoranges for a known receiver position
// and clock bias against a satellite geometry, so Solve can be checked
// against ground truth (spec.md 8's solver idempotence property).
func buildMeasurements(receiver satpos.ECEF, clockBias float64, sats []satpos.ECEF) []satpos.Measurement {
	out := make([]satpos.Measurement, len(sats))
	for i, sv := range sats {
		geomRange := rangeBetween(receiver, sv)
		out[i] = satpos.Measurement{
			SatellitePosition: sv,
			TransmittedTime:   0,
			ReceivedTime:      geomRange/SpeedOfLight - clockBias,
		}
	}
	return out
}

func nonCoplanarConstellation() []satpos.ECEF {
	return []satpos.ECEF{
		{X: 15600000, Y: 7540000, Z: 20140000},
		{X: 18760000, Y: 2750000, Z: 18610000},
		{X: 17610000, Y: 14630000, Z: 13480000},
		{X: 19170000, Y: 610000, Z: 18390000},
	}
}

func TestSolveConvergesOnKnownGeometry(t *testing.T) {
	receiver := satpos.ECEF{X: -2694685.4, Y: -4293642.0, Z: 3857878.4}
	truth := buildMeasurements(receiver, 0.0001, nonCoplanarConstellation())

	est, err := Solve(truth)
	require.NoError(t, err)
	require.InDelta(t, receiver.X, est.X, 1.0)
	require.InDelta(t, receiver.Y, est.Y, 1.0)
	require.InDelta(t, receiver.Z, est.Z, 1.0)
	require.InDelta(t, 0.0001, est.ClockBias, 1e-6)
}

// TestSolveIsIdempotent checks that Solve is deterministic: two runs over
// the same four measurements return the same estimate.
func TestSolveIsIdempotent(t *testing.T) {
	receiver := satpos.ECEF{X: -2694685.4, Y: -4293642.0, Z: 3857878.4}
	measurements := buildMeasurements(receiver, 0, nonCoplanarConstellation())

	first, err := Solve(measurements)
	require.NoError(t, err)

	second, err := Solve(measurements)
	require.NoError(t, err)

	require.InDelta(t, first.X, second.X, 1e-6)
	require.InDelta(t, first.Y, second.Y, 1e-6)
	require.InDelta(t, first.Z, second.Z, 1e-6)
}

func TestSolveRejectsFewerThanFourMeasurements(t *testing.T) {
	sats := nonCoplanarConstellation()[:3]
	measurements := buildMeasurements(satpos.ECEF{}, 0, sats)
	_, err := Solve(measurements)
	require.ErrorIs(t, err, ErrInsufficientMeasurements)
}

// TestSolveDivergesOnCoplanarGeometry mirrors spec.md 8's end-to-end
// scenario 5: four satellites placed in the same plane as the receiver
// leave the geometry matrix singular along one axis, so Gauss-Newton
// should fail to converge within the iteration budget rather than
// return a silently wrong fix.
func TestSolveDivergesOnCoplanarGeometry(t *testing.T) {
	receiver := satpos.ECEF{X: -2694685.4, Y: -4293642.0, Z: 3857878.4}
	coplanar := []satpos.ECEF{
		{X: 20000000, Y: 0, Z: receiver.Z},
		{X: -20000000, Y: 5000000, Z: receiver.Z},
		{X: 5000000, Y: 20000000, Z: receiver.Z},
		{X: -5000000, Y: -20000000, Z: receiver.Z},
	}
	measurements := buildMeasurements(receiver, 0, coplanar)

	_, err := Solve(measurements)
	require.Error(t, err)
}

func TestToGeodeticRoundTripsEquator(t *testing.T) {
	g := ToGeodetic(wgs84SemiMajorAxis, 0, 0)
	require.InDelta(t, 0, g.LatitudeRad, 1e-9)
	require.InDelta(t, 0, g.LongitudeRad, 1e-9)
	require.InDelta(t, 0, g.HeightMeters, 1e-6)
}

func TestToGeodeticPole(t *testing.T) {
	polarRadius := wgs84SemiMajorAxis * (1 - wgs84Flattening)
	g := ToGeodetic(0, 0, polarRadius)
	require.InDelta(t, math.Pi/2, g.LatitudeRad, 1e-6)
	require.InDelta(t, 0, g.HeightMeters, 1e-3)
}
