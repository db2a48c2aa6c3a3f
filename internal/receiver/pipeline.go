package receiver

import (
	"context"
	"time"

	"github.com/kpelc/gogps/internal/config"
	"github.com/kpelc/gogps/internal/invariant"
)

// Tick advances the pipeline by exactly one millisecond of samples, in the
// strict per-tick order spec.md 5 mandates: sample ingestion, then
// acquisition, then tracking, then bit-sync/frame-decode, then the solver
// scheduler — all per PRN, with no two stages mutating the same
// SatelliteState concurrently.
func (p *Pipeline) Tick(ctx context.Context, samples []complex64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	invariant.Check(len(samples) == config.SamplesPerMillisecond,
		"receiver: tick received %d samples, want %d", len(samples), config.SamplesPerMillisecond)

	p.window.Push(samples)
	p.sampleIndex += int64(len(samples))
	now := p.wallClockAt(p.sampleIndex)

	p.runAcquisition(now)
	p.runTracking(samples, now)
	p.runBitSync()
	p.runFrameDecode()
	p.runSolverScheduler()

	return nil
}

// wallClockAt converts a sample index into an absolute wall-clock
// timestamp, used for acquisition retry scheduling and AcquiredAt/loss-of-
// lock bookkeeping (spec.md 6's status endpoint reports real timestamps).
func (p *Pipeline) wallClockAt(sampleIndex int64) time.Time {
	elapsed := time.Duration(float64(sampleIndex) / config.SampleRateHz * float64(time.Second))
	return p.firstSampleTimestamp.Add(elapsed)
}
