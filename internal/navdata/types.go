package navdata

// Subframe is a fully parity-validated 300-bit GPS navigation subframe.
type Subframe struct {
	ID         int // 1..5, from HOW bits 20-22
	TOWCount   uint32  // TOW count (of the NEXT subframe) in units of 6s, from HOW
	SampleIndex int64  // receiver sample index of the subframe's last bit

	// RawPayload carries words 3-10's 24 data bits each, concatenated, for
	// subframes whose structured fields this decoder does not interpret
	// (4 and 5: almanac, ionospheric/UTC parameters). Subframes 1-3 also
	// populate it for completeness/debugging even though their fields are
	// already broken out below.
	RawPayload [24]byte

	// dataBits is the subframe's 300 bits with each word's 24 data bits
	// already polarity-resolved by CheckWord (parity bits left raw, unused
	// past validation). Field offsets in decode.go's DecodeClockCorrection/
	// DecodeEphemerisSubframe{2,3} are relative to this array and match the
	// ICD word layout directly.
	dataBits [300]byte
}

// ClockCorrection is the subframe 1 clock polynomial.
type ClockCorrection struct {
	Af0, Af1, Af2 float64
	Tgd           float64
	Toc           float64
	IODC          uint16
	WeekNumber    int
	SVHealth      uint8
	URA           uint8
}

// EphemerisParams is the orbital parameter set from subframes 2 and 3.
type EphemerisParams struct {
	IODE uint16

	// HaveSubframe2/HaveSubframe3 record which of the two orbital subframes
	// have actually been decoded into this struct; IODE alone can't tell,
	// since both subframes write it and either one can arrive first.
	HaveSubframe2 bool
	HaveSubframe3 bool
	IODESubframe2 uint16
	IODESubframe3 uint16

	SqrtA     float64
	Ecc       float64
	M0        float64
	Omega     float64 // argument of perigee, ω
	I0        float64
	Omega0    float64
	DeltaN    float64
	OmegaDot  float64
	IDOT      float64
	Cuc, Cus  float64
	Crc, Crs  float64
	Cic, Cis  float64
	Toe       float64
}

// Complete reports whether clk and eph carry a consistent, fully-assembled
// parameter set: subframes 2 and 3 must both have been decoded (not just
// one of them, which alone leaves half of eph's fields at their zero
// value), their IODEs must agree with each other, and with IODC mod 256
// from subframe 1 — the completeness test spec.md 4.4 names for
// transitioning a satellite to EphemerisReady.
func Complete(clk *ClockCorrection, eph *EphemerisParams) bool {
	if clk == nil || eph == nil {
		return false
	}
	if !eph.HaveSubframe2 || !eph.HaveSubframe3 {
		return false
	}
	if eph.IODESubframe2 != eph.IODESubframe3 {
		return false
	}
	return eph.IODESubframe2 == clk.IODC%256
}
