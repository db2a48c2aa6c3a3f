package acquisition

import (
	"time"

	"github.com/kpelc/gogps/internal/config"
)

// Scheduler amortizes acquisition cost across ticks: at most one attempt
// runs per tick, round-robin over the PRNs currently eligible for retry
// (spec.md 5's acquisition cost amortization rule).
type Scheduler struct {
	order        []int
	nextIdx      int
	lastAttempt  map[int]time.Time
	retryInterval time.Duration
}

// NewScheduler builds a round-robin schedule over prns.
func NewScheduler(prns []int, cfg config.Config) *Scheduler {
	order := append([]int(nil), prns...)
	return &Scheduler{
		order:         order,
		lastAttempt:   make(map[int]time.Time, len(order)),
		retryInterval: cfg.AcquisitionRetryInterval,
	}
}

// NextCandidate returns the next PRN eligible for an acquisition attempt at
// time now (not currently tracked-or-better, and past its retry interval),
// advancing the round-robin cursor. It returns (0, false) if no PRN is
// currently eligible.
func (s *Scheduler) NextCandidate(now time.Time, isEligible func(prn int) bool) (int, bool) {
	if len(s.order) == 0 {
		return 0, false
	}
	for i := 0; i < len(s.order); i++ {
		idx := (s.nextIdx + i) % len(s.order)
		prn := s.order[idx]
		if !isEligible(prn) {
			continue
		}
		last, attempted := s.lastAttempt[prn]
		if attempted && now.Sub(last) < s.retryInterval {
			continue
		}
		s.nextIdx = (idx + 1) % len(s.order)
		return prn, true
	}
	return 0, false
}

// MarkAttempted records that prn was just attempted at time now.
func (s *Scheduler) MarkAttempted(prn int, now time.Time) {
	s.lastAttempt[prn] = now
}
