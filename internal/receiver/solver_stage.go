package receiver

import (
	"math"

	"github.com/kpelc/gogps/internal/config"
	"github.com/kpelc/gogps/internal/satpos"
	"github.com/kpelc/gogps/internal/solver"
)

// minSatellitesForFix is the minimum pseudorange count a Gauss-Newton
// position/clock-bias solve needs, per spec.md 4.6.
const minSatellitesForFix = 4

// runSolverScheduler computes a fresh pseudorange for every EphemerisReady
// PRN this tick and, if at least minSatellitesForFix satellites share the
// current receiver-clock epoch, invokes the solver, per spec.md 2 and 5.
func (p *Pipeline) runSolverScheduler() {
	receivedTime, ok := p.receiverClockAt(p.sampleIndex)
	if !ok {
		return
	}

	var measurements []satpos.Measurement
	for _, prn := range p.order {
		st := p.registry[prn]
		if st.Status != EphemerisReady || !st.haveTOWAnchor {
			continue
		}

		elapsed := float64(p.sampleIndex-st.towAnchorSampleIndex) / config.SampleRateHz
		transmittedTime := satpos.TransmittedTimeAt(st.towAnchorTOW, elapsed)

		pos, correctedTransmitTime := satpos.AtTransmitTime(st.Ephemeris, st.ClockCorrection, transmittedTime)

		st.LastPseudorange = &PseudorangeMeasurement{
			ReceivedGPSTime:    receivedTime,
			TransmittedSVTime:  correctedTransmitTime,
			SatellitePositionX: pos.X,
			SatellitePositionY: pos.Y,
			SatellitePositionZ: pos.Z,
		}

		measurements = append(measurements, satpos.Measurement{
			SatellitePosition: pos,
			TransmittedTime:   correctedTransmitTime,
			ReceivedTime:      receivedTime,
		})
	}

	if len(measurements) < minSatellitesForFix {
		return
	}

	estimate, err := solver.Solve(measurements)
	if err != nil {
		p.logger.WarnPRN(0, "%v", &SolverDivergence{Epoch: p.sampleIndex})
		return
	}

	geodetic := solver.ToGeodetic(estimate.X, estimate.Y, estimate.Z)

	var sol Solution
	sol.ClockBiasSeconds = estimate.ClockBias
	sol.PositionECEF.X, sol.PositionECEF.Y, sol.PositionECEF.Z = estimate.X, estimate.Y, estimate.Z
	sol.PositionGeodetic.LatitudeDeg = radToDeg(geodetic.LatitudeRad)
	sol.PositionGeodetic.LongitudeDeg = radToDeg(geodetic.LongitudeRad)
	sol.PositionGeodetic.HeightMeters = geodetic.HeightMeters

	p.solutions.Push(sol)
	p.logger.Info("solution: lat=%.6f lon=%.6f height=%.1fm bias=%.6fs",
		sol.PositionGeodetic.LatitudeDeg, sol.PositionGeodetic.LongitudeDeg,
		sol.PositionGeodetic.HeightMeters, sol.ClockBiasSeconds)
}

func radToDeg(r float64) float64 { return r * 180 / math.Pi }
