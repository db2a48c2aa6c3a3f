package receiver

import (
	"time"

	"github.com/kpelc/gogps/internal/acquisition"
	"github.com/kpelc/gogps/internal/tracking"
)

// runAcquisition attempts at most one PRN's acquisition this tick, per
// spec.md 5's cost-amortization rule: an attempt is far more expensive than
// one tracking step, so the round-robin scheduler spreads candidates across
// ticks instead of searching every untracked PRN every millisecond.
func (p *Pipeline) runAcquisition(now time.Time) {
	windowMs := p.cfg.AcquisitionIncoherentMs
	if p.window.Len() < windowMs {
		return
	}

	prn, ok := p.scheduler.NextCandidate(now, func(prn int) bool {
		return p.registry[prn].Status == Untracked
	})
	if !ok {
		return
	}

	st := p.registry[prn]
	st.lastAcquisitionAttempt = now
	p.scheduler.MarkAttempted(prn, now)

	template, ok := p.table.Template(prn)
	if !ok {
		return
	}

	samples, ok := p.window.Latest(windowMs)
	if !ok {
		return
	}

	result, err := acquisition.Attempt(samples, template, p.cfg)
	if err != nil {
		p.logger.ErrorPRN(prn, "acquisition: %v", err)
		return
	}
	if !result.Visible {
		p.logger.DebugPRN(prn, "acquisition: not visible, psr=%.2f", result.PeakToSideRatio)
		return
	}

	p.logger.InfoPRN(prn, "acquired: doppler=%.1fHz code_phase=%.2f psr=%.2f",
		result.DopplerHz, result.CodePhaseSamples, result.PeakToSideRatio)

	acquiredAt := now
	st.AcquiredAt = &acquiredAt
	st.Status = Acquired
	st.Loop = tracking.NewState(result.DopplerHz, result.CodePhaseSamples, acquiredAt)
	st.LastCorrelations = newRing[tracking.Correlation](p.cfg.CorrelationHistoryLen)
	st.PromptChipStream = newRing[int8](p.cfg.ChipStreamMinLen)
}
