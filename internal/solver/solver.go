// Package solver performs the Gauss-Newton navigation solve over a set of
// pseudoranges and converts the resulting ECEF position to geodetic
// coordinates.
package solver

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kpelc/gogps/internal/satpos"
)

// SpeedOfLight matches satpos.SpeedOfLight; re-exported so callers don't
// need to import both packages just for this constant.
const SpeedOfLight = satpos.SpeedOfLight

// ErrDidNotConverge is returned when the Gauss-Newton iteration fails to
// settle within spec.md 4.6's 20-iteration budget.
var ErrDidNotConverge = errors.New("solver: did not converge")

// ErrInsufficientMeasurements is returned when fewer than 4 pseudoranges
// share the epoch.
var ErrInsufficientMeasurements = errors.New("solver: fewer than 4 pseudoranges")

// Estimate is the solver's output: ECEF position plus receiver clock bias.
type Estimate struct {
	X, Y, Z   float64
	ClockBias float64
}

const maxIterations = 20
const convergenceTolerance = 1e-4

// Solve runs Gauss-Newton over measurements sharing a common receive
// epoch, following spec.md 4.6's residual and update equations exactly:
// r_i(b) = |sv_i - pos| - c*(t_received + clockBias - t_transmitted_i),
// beta_{k+1} = beta_k - (J^T J)^-1 J^T r(beta_k).
func Solve(measurements []satpos.Measurement) (Estimate, error) {
	if len(measurements) < 4 {
		return Estimate{}, ErrInsufficientMeasurements
	}

	// The clock bias is carried in meters (c*clockBias) while iterating so
	// all four Jacobian columns have comparable scale; with a -c column,
	// J^T J is too ill-conditioned to solve.
	beta := []float64{0, 0, 0, 0} // x, y, z, c*clockBias

	for iter := 0; iter < maxIterations; iter++ {
		n := len(measurements)
		residuals := mat.NewVecDense(n, nil)
		jacobian := mat.NewDense(n, 4, nil)

		for i, m := range measurements {
			dx := beta[0] - m.SatellitePosition.X
			dy := beta[1] - m.SatellitePosition.Y
			dz := beta[2] - m.SatellitePosition.Z
			geomRange := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if geomRange == 0 {
				geomRange = 1e-9
			}

			r := geomRange - SpeedOfLight*(m.ReceivedTime-m.TransmittedTime) - beta[3]
			residuals.SetVec(i, r)

			jacobian.Set(i, 0, dx/geomRange)
			jacobian.Set(i, 1, dy/geomRange)
			jacobian.Set(i, 2, dz/geomRange)
			jacobian.Set(i, 3, -1)
		}

		identity := mat.NewDiagDense(n, onesOf(n))
		dx, _, err := solveWeightedLS(jacobian, residuals, identity)
		if err != nil {
			return Estimate{}, ErrDidNotConverge
		}

		var step float64
		for i := 0; i < 4; i++ {
			d := dx.AtVec(i)
			beta[i] -= d
			step += d * d
		}

		if math.Sqrt(step) < convergenceTolerance {
			return Estimate{X: beta[0], Y: beta[1], Z: beta[2], ClockBias: beta[3] / SpeedOfLight}, nil
		}
	}

	return Estimate{}, ErrDidNotConverge
}

func onesOf(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// solveWeightedLS is the unweighted specialization (W = I) of
// mkhts-gortk/solvels.go's SolveLS: dx = (G^T W G)^-1 G^T W dr.
func solveWeightedLS(g mat.Matrix, dr mat.Vector, w mat.Matrix) (dx mat.Vector, cov mat.Matrix, err error) {
	var wg mat.Dense
	wg.Mul(w, g)
	var a mat.Dense
	a.Mul(g.T(), &wg)

	var gtw mat.Dense
	gtw.Mul(g.T(), w)
	var b mat.VecDense
	b.MulVec(&gtw, dr)

	var x mat.VecDense
	if err := x.SolveVec(&a, &b); err != nil {
		return nil, nil, err
	}

	var c mat.Dense
	if err := c.Inverse(&a); err != nil {
		return &x, nil, nil
	}
	return &x, &c, nil
}
