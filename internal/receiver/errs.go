package receiver

import "fmt"

// SampleSourceError wraps a failure reading from the sample source. It is
// fatal per spec.md 7: the pipeline shuts down rather than continuing with
// a broken input stream.
type SampleSourceError struct {
	Err error
}

func (e *SampleSourceError) Error() string { return fmt.Sprintf("sample source: %v", e.Err) }
func (e *SampleSourceError) Unwrap() error  { return e.Err }

// AcquisitionFailure is informational: the PRN stayed below the PSR
// threshold and remains Untracked, scheduled for retry.
type AcquisitionFailure struct {
	PRN int
	PSR float64
}

func (e *AcquisitionFailure) Error() string {
	return fmt.Sprintf("prn %d: acquisition failed, psr=%.2f", e.PRN, e.PSR)
}

// LossOfLock demotes a tracked PRN back to Untracked. Per-satellite, never
// fatal.
type LossOfLock struct {
	PRN int
}

func (e *LossOfLock) Error() string { return fmt.Sprintf("prn %d: lost lock", e.PRN) }

// ParityFailure discards one subframe candidate; the decoder resumes
// preamble hunting.
type ParityFailure struct {
	PRN int
}

func (e *ParityFailure) Error() string { return fmt.Sprintf("prn %d: subframe parity failure", e.PRN) }

// EphemerisIncomplete reports that a satellite has not yet accumulated a
// consistent subframe 1/2/3 set. Not an error condition by itself; the
// pipeline simply waits.
type EphemerisIncomplete struct {
	PRN int
}

func (e *EphemerisIncomplete) Error() string {
	return fmt.Sprintf("prn %d: ephemeris incomplete", e.PRN)
}

// SolverDivergence reports that the Gauss-Newton solve did not converge
// this epoch; no solution is emitted but the pipeline continues.
type SolverDivergence struct {
	Epoch int64
}

func (e *SolverDivergence) Error() string {
	return fmt.Sprintf("solver: did not converge at epoch %d", e.Epoch)
}
