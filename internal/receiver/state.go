// Package receiver ties the acquisition, tracking, bit-sync, frame-decode,
// satellite-position, and solver stages together into one per-millisecond
// tick loop over a per-PRN Satellite Registry.
package receiver

import (
	"time"

	"github.com/kpelc/gogps/internal/bitsync"
	"github.com/kpelc/gogps/internal/navdata"
	"github.com/kpelc/gogps/internal/tracking"
)

// Status is a satellite's position in its monotone lifecycle. It only moves
// forward except for an explicit demotion on loss of lock, which resets it
// (and every field associated with a later status) back to Untracked.
type Status int

const (
	Untracked Status = iota
	Acquired
	Tracking
	BitSynced
	FrameSynced
	EphemerisReady
	Lost
)

func (s Status) String() string {
	switch s {
	case Untracked:
		return "Untracked"
	case Acquired:
		return "Acquired"
	case Tracking:
		return "Tracking"
	case BitSynced:
		return "BitSynced"
	case FrameSynced:
		return "FrameSynced"
	case EphemerisReady:
		return "EphemerisReady"
	case Lost:
		return "Lost"
	default:
		return "Unknown"
	}
}

// CanAdvanceTo reports whether a direct transition from s to next respects
// the lifecycle's monotonicity, i.e. next is exactly one step ahead, or is a
// demotion to Untracked/Lost from any state.
func (s Status) CanAdvanceTo(next Status) bool {
	if next == Untracked || next == Lost {
		return true
	}
	return next == s+1
}

// PseudorangeMeasurement is the last observation used to feed the solver.
type PseudorangeMeasurement struct {
	ReceivedGPSTime    float64 // seconds into GPS week, receiver clock
	TransmittedSVTime  float64 // seconds into GPS week, satellite clock
	SatellitePositionX float64
	SatellitePositionY float64
	SatellitePositionZ float64
}

// SatelliteState is the complete per-PRN record owned exclusively by the
// Satellite Registry. Every pointer field follows the nil-is-absent
// convention in place of the tagged-union modelling of the source design.
type SatelliteState struct {
	PRN    int
	Status Status

	AcquiredAt *time.Time

	LastCorrelations *ring[tracking.Correlation]
	PromptChipStream *ring[int8]

	BitBoundaryOffset *int  // 0..19
	BitPhase          *int8 // +1 or -1

	BitStream *ring[int8]

	Subframes []*navdata.Subframe // most recent, up to config.SubframeHistoryLen

	Ephemeris       *navdata.EphemerisParams
	ClockCorrection *navdata.ClockCorrection

	LastPseudorange *PseudorangeMeasurement

	// Tracking loop holds its own Doppler/phase/code-phase NCO state; the
	// acquisition stage creates it when a satellite reaches Acquired, and it
	// is never rebuilt in place, since loss of lock demotes SatelliteState
	// back to Untracked.
	Loop *tracking.State

	// BitSync accumulates the 20-chip sign-transition histogram used to find
	// the data-bit boundary; present from Tracking onward, consumed once
	// BitSynced is reached but kept so Feed keeps running on later chips.
	BitSync *bitsync.Synchronizer

	// FrameDecoder hunts the 8-bit TLM preamble across the bit stream and
	// assembles 300-bit subframes once bit sync resolves; present from
	// BitSynced onward.
	FrameDecoder *navdata.Decoder

	// loss-of-lock bookkeeping
	weakSignalStreak int

	lastAcquisitionAttempt time.Time

	// towAnchorSampleIndex/towAnchorTOW anchor this satellite's own
	// transmitted-time timeline: the sample index and TOW count of its most
	// recently decoded subframe boundary. Pseudorange computation projects
	// forward from this anchor by elapsed sample count.
	towAnchorSampleIndex int64
	towAnchorTOW         uint32
	haveTOWAnchor        bool

	// pendingBit carries this tick's freshly demodulated bit (if any) from
	// the bit-sync stage to the frame-decode stage within the same Tick
	// call; cleared once consumed.
	pendingBit *int8
}
