package receiver

import (
	"time"

	"github.com/kpelc/gogps/internal/tracking"
)

// runTracking steps every Acquired-or-better PRN's tracking loop by exactly
// one millisecond, per spec.md 4.2. A loop that reports loss of lock is
// demoted back to Untracked and returned to the acquisition pool.
func (p *Pipeline) runTracking(samples []complex64, now time.Time) {
	for _, prn := range p.order {
		st := p.registry[prn]
		if st.Status == Untracked || st.Status == Lost || st.Loop == nil {
			continue
		}

		template, ok := p.table.Template(prn)
		if !ok {
			continue
		}

		result := tracking.Step(st.Loop, samples, template, p.cfg, now)
		st.LastCorrelations.Push(result.Correlation)
		st.PromptChipStream.Push(result.Chip)

		if result.LossOfLock {
			p.logger.WarnPRN(prn, "%v", &LossOfLock{PRN: prn})
			demote(st)
			continue
		}

		if st.Status == Acquired {
			st.Status = Tracking
		}
	}
}
