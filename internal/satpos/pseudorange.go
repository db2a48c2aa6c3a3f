package satpos

// Measurement is one satellite's pseudorange observation tuple, as spec.md
// 4.5 defines it: the satellite's ECEF position plus the transmitted and
// received time tags the solver differences into a range.
type Measurement struct {
	SatellitePosition ECEF
	TransmittedTime   float64 // seconds into GPS week, clock-corrected
	ReceivedTime      float64 // seconds into GPS week, receiver clock
}

// TransmittedTime computes t_transmitted from a subframe's TOW count and
// how many navigation bits have elapsed since that TOW mark, per spec.md
// 4.5's pseudorange formula: TOW*6 + bits_since_TOW/50 seconds. The result
// is not clock-corrected; AtTransmitTime applies the Af0/Af1/Af2/Tgd
// correction to the time it is given.
func TransmittedTime(towCount uint32, bitsSinceTOW int) float64 {
	return float64(towCount)*6.0 + float64(bitsSinceTOW)/50.0
}

// TransmittedTimeAt generalizes TransmittedTime to a continuous elapsed
// time since the TOW mark instead of a whole bit count, using the
// receiver's own sample-index bookkeeping (sub-bit precision, the
// "fractional ms from PRN count" spec.md 4.5 calls out) instead of
// rounding to the nearest 20 ms bit boundary.
func TransmittedTimeAt(towCount uint32, elapsedSecondsSinceTOW float64) float64 {
	return float64(towCount)*6.0 + elapsedSecondsSinceTOW
}
