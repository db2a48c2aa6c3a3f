package receiver

import "github.com/kpelc/gogps/internal/config"

// SampleWindow holds the most recent N milliseconds of samples, feeding the
// acquisition engine's multi-millisecond integration while tracking
// consumes each millisecond as it arrives.
type SampleWindow struct {
	ms       [][]complex64
	capacity int
}

// NewSampleWindow allocates a window holding up to capacityMs milliseconds.
func NewSampleWindow(capacityMs int) *SampleWindow {
	return &SampleWindow{ms: make([][]complex64, 0, capacityMs), capacity: capacityMs}
}

// Push appends one millisecond of samples (exactly config.SamplesPerMillisecond
// long), evicting the oldest millisecond once the window is full.
func (w *SampleWindow) Push(samples []complex64) {
	if len(samples) != config.SamplesPerMillisecond {
		return
	}
	w.ms = append(w.ms, samples)
	if len(w.ms) > w.capacity {
		w.ms = w.ms[len(w.ms)-w.capacity:]
	}
}

// Len reports how many milliseconds are currently buffered.
func (w *SampleWindow) Len() int { return len(w.ms) }

// Latest returns the concatenation of the most recent n milliseconds, or
// false if fewer than n are buffered yet.
func (w *SampleWindow) Latest(n int) ([]complex64, bool) {
	if n > len(w.ms) {
		return nil, false
	}
	tail := w.ms[len(w.ms)-n:]
	out := make([]complex64, 0, n*config.SamplesPerMillisecond)
	for _, ms := range tail {
		out = append(out, ms...)
	}
	return out, true
}

// LastMs returns the most recently pushed millisecond of samples, or false
// if the window is empty.
func (w *SampleWindow) LastMs() ([]complex64, bool) {
	if len(w.ms) == 0 {
		return nil, false
	}
	return w.ms[len(w.ms)-1], true
}
