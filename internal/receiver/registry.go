package receiver

import (
	"time"

	"github.com/kpelc/gogps/internal/acquisition"
	"github.com/kpelc/gogps/internal/config"
	"github.com/kpelc/gogps/internal/prncode"
	"github.com/kpelc/gogps/internal/telemetry"
)

// Solution is one navigation fix. Created once per solver invocation and
// never mutated afterward, per spec.md 3.
type Solution struct {
	ClockBiasSeconds float64
	PositionECEF     struct{ X, Y, Z float64 }
	PositionGeodetic struct {
		LatitudeDeg, LongitudeDeg, HeightMeters float64
	}
}

// TrackedSatelliteStatus is the per-PRN snapshot the status HTTP endpoint
// reports for every satellite at Acquired or beyond, per spec.md 6.
type TrackedSatelliteStatus struct {
	SatelliteID             int
	AcquiredAt              time.Time
	BitBoundaryFound        bool
	BitPhase                int8
	RequiredSubframesReceived bool
	SubframeCount           int
	CarrierFrequencyShifts  []float64
	PRNCodePhaseShifts      []float64
	Correlations            [][3]float64
}

// UntrackedSatelliteStatus is the per-PRN snapshot for satellites still
// awaiting acquisition.
type UntrackedSatelliteStatus struct {
	SatelliteID     int
	NextAcquisition time.Time
}

// Pipeline ties the Satellite Registry and all five subsystems together
// into the per-millisecond tick loop spec.md 5 describes. One Pipeline
// owns one receiver run; it is never shared across runs.
type Pipeline struct {
	cfg    config.Config
	logger *telemetry.Logger
	table  *prncode.Table

	window    *SampleWindow
	scheduler *acquisition.Scheduler

	registry map[int]*SatelliteState
	order    []int // stable PRN iteration order for deterministic status output

	sampleIndex int64

	clockAnchorSampleIndex int64
	clockAnchorGPSSeconds  float64
	haveClockAnchor        bool

	solutions *ring[Solution]

	firstSampleTimestamp time.Time
}

// NewPipeline constructs a Pipeline tracking every PRN the prncode table
// covers (1..32), with a round-robin acquisition scheduler over the same
// set.
func NewPipeline(cfg config.Config, logger *telemetry.Logger, firstSampleTimestamp time.Time) (*Pipeline, error) {
	table, err := prncode.NewTable()
	if err != nil {
		return nil, err
	}

	prns := table.AllPRNs()
	registry := make(map[int]*SatelliteState, len(prns))
	for _, prn := range prns {
		registry[prn] = &SatelliteState{PRN: prn, Status: Untracked}
	}

	return &Pipeline{
		cfg:                  cfg,
		logger:               logger,
		table:                table,
		window:               NewSampleWindow(cfg.AcquisitionWindowMs),
		scheduler:            acquisition.NewScheduler(prns, cfg),
		registry:             registry,
		order:                prns,
		solutions:            newRing[Solution](cfg.SolutionHistoryLen),
		firstSampleTimestamp: firstSampleTimestamp,
	}, nil
}

// Solutions returns every solution emitted so far, oldest first.
func (p *Pipeline) Solutions() []Solution { return p.solutions.Values() }

// TrackedSatellites returns a status snapshot for every PRN at Acquired or
// beyond, in ascending PRN order.
func (p *Pipeline) TrackedSatellites() []TrackedSatelliteStatus {
	var out []TrackedSatelliteStatus
	for _, prn := range p.order {
		st := p.registry[prn]
		if st.Status == Untracked {
			continue
		}
		out = append(out, p.snapshotTracked(st))
	}
	return out
}

// UntrackedSatellites returns a status snapshot for every PRN still
// waiting for acquisition, in ascending PRN order.
func (p *Pipeline) UntrackedSatellites() []UntrackedSatelliteStatus {
	var out []UntrackedSatelliteStatus
	for _, prn := range p.order {
		st := p.registry[prn]
		if st.Status != Untracked {
			continue
		}
		out = append(out, UntrackedSatelliteStatus{
			SatelliteID:     prn,
			NextAcquisition: st.lastAcquisitionAttempt.Add(p.cfg.AcquisitionRetryInterval),
		})
	}
	return out
}

func (p *Pipeline) snapshotTracked(st *SatelliteState) TrackedSatelliteStatus {
	s := TrackedSatelliteStatus{
		SatelliteID:              st.PRN,
		RequiredSubframesReceived: st.Status >= EphemerisReady,
		SubframeCount:            len(st.Subframes),
	}
	if st.AcquiredAt != nil {
		s.AcquiredAt = *st.AcquiredAt
	}
	s.BitBoundaryFound = st.BitBoundaryOffset != nil
	if st.BitPhase != nil {
		s.BitPhase = *st.BitPhase
	}
	if st.LastCorrelations != nil {
		for _, c := range st.LastCorrelations.Values() {
			s.Correlations = append(s.Correlations, [3]float64{real(c.Early), real(c.Prompt), real(c.Late)})
		}
	}
	if st.Loop != nil {
		s.CarrierFrequencyShifts = append(s.CarrierFrequencyShifts, st.Loop.CarrierDopplerHz)
		s.PRNCodePhaseShifts = append(s.PRNCodePhaseShifts, st.Loop.CodePhaseSamples)
	}
	return s
}

// receiverClockAt projects the shared receiver clock (anchored at the first
// satellite's first subframe boundary) forward to sampleIndex.
func (p *Pipeline) receiverClockAt(sampleIndex int64) (float64, bool) {
	if !p.haveClockAnchor {
		return 0, false
	}
	elapsed := float64(sampleIndex-p.clockAnchorSampleIndex) / config.SampleRateHz
	return p.clockAnchorGPSSeconds + elapsed, true
}

// anchorClockIfNeeded seeds the shared receiver clock the first time any
// satellite resolves a subframe boundary.
func (p *Pipeline) anchorClockIfNeeded(sampleIndex int64, towCount uint32) {
	if p.haveClockAnchor {
		return
	}
	p.clockAnchorSampleIndex = sampleIndex
	p.clockAnchorGPSSeconds = float64(towCount) * 6.0
	p.haveClockAnchor = true
}
