// Package bitsync locates the 20-millisecond navigation-bit boundary in a
// tracked satellite's prompt chip stream and demodulates bits from it.
package bitsync

// Synchronizer accumulates sign-transition histograms over the chip stream
// until a dominant modulo-20 phase emerges, then emits one bit per 20 chips
// from that point on.
type Synchronizer struct {
	histogram [20]int
	msCount   int

	prevSign int8 // sign of the previous ms's chip, 0 until first chip seen
	haveSign bool

	boundary *int // resolved bit_boundary_offset, nil until found

	pendingSum int8
	pendingLen int
}

// New returns a Synchronizer with no resolved boundary.
func New() *Synchronizer {
	return &Synchronizer{}
}

// BoundaryOffset returns the resolved 0..19 millisecond offset, or nil.
func (s *Synchronizer) BoundaryOffset() *int { return s.boundary }

// minMs and dominanceRatio mirror spec.md 4.3's defaults (>=200ms of data,
// max >= 3*second_max).
const (
	minMs          = 200
	dominanceRatio = 3.0
)

// Feed processes one millisecond's signed chip value and returns a
// demodulated bit (+1 or -1) whenever 20 chips have been accumulated since
// the resolved boundary. ok is false until a bit is actually emitted.
func (s *Synchronizer) Feed(chip int8) (bit int8, ok bool) {
	if s.boundary == nil {
		s.accumulateHistogram(chip)
		if s.msCount >= minMs {
			s.tryResolveBoundary()
		}
		if s.boundary == nil {
			return 0, false
		}
	} else {
		s.msCount++
	}

	// A bit starts on each chip whose index is congruent to the boundary
	// offset modulo 20; chips before the first such index are skipped.
	if s.pendingLen == 0 && (s.msCount-1)%20 != *s.boundary {
		return 0, false
	}

	s.pendingSum += chip
	s.pendingLen++
	if s.pendingLen < 20 {
		return 0, false
	}

	s.pendingLen = 0
	sum := s.pendingSum
	s.pendingSum = 0
	if sum >= 0 {
		return 1, true
	}
	return -1, true
}

func (s *Synchronizer) accumulateHistogram(chip int8) {
	sign := signOf(chip)
	if s.haveSign && sign != s.prevSign {
		s.histogram[s.msCount%20]++
	}
	s.prevSign = sign
	s.haveSign = true
	s.msCount++
}

func (s *Synchronizer) tryResolveBoundary() {
	maxIdx, maxVal, secondVal := 0, -1, -1
	for i, v := range s.histogram {
		if v > maxVal {
			secondVal = maxVal
			maxIdx = i
			maxVal = v
		} else if v > secondVal {
			secondVal = v
		}
	}
	if secondVal < 0 {
		secondVal = 0
	}
	if float64(maxVal) >= dominanceRatio*float64(secondVal) {
		offset := maxIdx
		s.boundary = &offset
	}
}

func signOf(v int8) int8 {
	if v < 0 {
		return -1
	}
	return 1
}
