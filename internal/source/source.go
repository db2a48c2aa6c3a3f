// Package source implements the Sample Source boundary spec.md 6 describes:
// a pull interface yielding complex baseband I/Q samples at 2.046 MSa/s,
// either from a recorded file or from an SDR tuner.
package source

import (
	"time"
)

// Source is the pull interface every sample origin implements. NextSamples
// blocks until n samples are available (or the source is exhausted) and
// TimestampOfFirstSample reports the wall-clock time the very first sample
// was captured, used to anchor the pipeline's per-tick timestamps.
type Source interface {
	NextSamples(n int) ([]complex64, error)
	TimestampOfFirstSample() time.Time
}
