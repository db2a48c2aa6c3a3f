package navdata

import "math"

// Scale factors for the ICD's fixed-point word encodings, matching the
// constant names RTKLIB-derived decoders use (2^-n and semicircle-to-radian).
const (
	p2_5  = 0.03125
	p2_19 = 1.907348632812500e-06
	p2_29 = 1.862645149230957e-09
	p2_31 = 4.656612873077393e-10
	p2_33 = 1.164153218269348e-10
	p2_43 = 1.136868377216160e-13
	p2_55 = 2.775557561562891e-17
	sc2rad = math.Pi // semicircle to radian
)

// preamble is the fixed 8-bit TLM preamble pattern, 1-indexed bits 1-8 of
// every subframe's first word.
var preamble = [8]byte{1, 0, 0, 0, 1, 0, 1, 1}

// Decoder hunts for subframe boundaries in a per-PRN bit stream and emits
// validated subframes. One Decoder is owned by exactly one SatelliteState.
type Decoder struct {
	buf      []int8 // raw received bits, 0/1, sliding window
	sampleAt []int64

	bitPhase *int8 // resolved PLL polarity, nil until the first preamble match
}

// NewDecoder returns a Decoder with no resolved bit phase.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// BitPhase returns the resolved polarity (+1 or -1), or nil if not yet
// resolved.
func (d *Decoder) BitPhase() *int8 { return d.bitPhase }

// Feed appends one demodulated bit (+1 or -1, as produced by the bit
// synchronizer) observed at sampleIndex. It returns a validated Subframe
// whenever enough buffered bits form one, consuming (sliding past) the
// subframe's bits in that case.
func (d *Decoder) Feed(bit int8, sampleIndex int64) (*Subframe, error) {
	raw := int8(0)
	if bit < 0 {
		raw = 1
	}
	d.buf = append(d.buf, raw)
	d.sampleAt = append(d.sampleAt, sampleIndex)

	const subframeBits = 300
	if len(d.buf) < subframeBits {
		return nil, nil
	}

	// Only test the most recent candidate window; older windows were
	// already tested (and failed) as they arrived.
	window := d.buf[len(d.buf)-subframeBits:]

	if d.bitPhase == nil {
		if matchesPreamble(window, false) {
			phase := int8(1)
			d.bitPhase = &phase
		} else if matchesPreamble(window, true) {
			phase := int8(-1)
			d.bitPhase = &phase
		} else {
			d.trimBuffer(subframeBits)
			return nil, nil
		}
	}

	corrected := applyPolarity(window, *d.bitPhase)
	sf, err := decodeSubframe(corrected)
	if err != nil || sf == nil {
		// Candidate window failed; un-resolve bit phase (it may have been
		// locked on a false match) so the next window hunts for the
		// preamble in either polarity afresh.
		d.bitPhase = nil
		d.trimBuffer(subframeBits)
		return nil, nil
	}
	sf.SampleIndex = d.sampleAt[len(d.sampleAt)-1]

	d.buf = nil
	d.sampleAt = nil
	return sf, nil
}

// trimBuffer slides the window forward by one bit instead of growing
// unboundedly while hunting.
func (d *Decoder) trimBuffer(maxLen int) {
	if len(d.buf) > maxLen {
		over := len(d.buf) - maxLen
		d.buf = d.buf[over:]
		d.sampleAt = d.sampleAt[over:]
	}
}

func matchesPreamble(window []int8, complement bool) bool {
	for i := 0; i < 8; i++ {
		want := int8(preamble[i])
		if complement {
			want ^= 1
		}
		if window[i] != want {
			return false
		}
	}
	return true
}

func applyPolarity(window []int8, phase int8) []byte {
	out := make([]byte, len(window))
	for i, b := range window {
		if phase == -1 {
			b ^= 1
		}
		out[i] = byte(b)
	}
	return out
}

// decodeSubframe validates parity word-by-word and dispatches on subframe
// ID. It returns (nil, nil) if any word fails parity.
func decodeSubframe(bits []byte) (*Subframe, error) {
	var prevD29, prevD30 int8 // no previous word known at subframe start

	var words [10][24]int8
	for w := 0; w < 10; w++ {
		word := bits[w*30 : w*30+30]
		data, d29, d30, ok := CheckWord(word, prevD29, prevD30)
		if !ok {
			return nil, nil
		}
		words[w] = data
		prevD29, prevD30 = d29, d30
	}

	how := wordBits(words[1])
	subframeID := int(getBitsU(how, 19, 3))
	if subframeID < 1 || subframeID > 5 {
		return nil, nil
	}
	towCount := getBitsU(how, 0, 17)

	sf := &Subframe{ID: subframeID, TOWCount: towCount}

	// Reassemble the full 300-bit subframe with each word's data already
	// polarity-resolved (parity bits copied through unused), matching the
	// layout decode_subfrmN offsets are defined against.
	for w := 0; w < 10; w++ {
		for i := 0; i < 24; i++ {
			sf.dataBits[w*30+i] = byte(words[w][i])
		}
		for i := 24; i < 30; i++ {
			sf.dataBits[w*30+i] = bits[w*30+i]
		}
	}

	// Pack words 3-10's 24 data bits each into RawPayload for subframes 4
	// and 5 (and as a debugging aid for 1-3).
	flat := make([]byte, 0, 192)
	for w := 2; w < 10; w++ {
		flat = append(flat, wordBits(words[w])...)
	}
	packBits(flat, sf.RawPayload[:])

	return sf, nil
}

func wordBits(data [24]int8) []byte {
	out := make([]byte, 24)
	for i, b := range data {
		out[i] = byte(b)
	}
	return out
}

func packBits(bits []byte, out []byte) {
	for i := range out {
		out[i] = 0
	}
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
}

// DecodeClockCorrection parses subframe 1 into its clock-correction block.
// It returns nil if sf is not subframe 1.
func DecodeClockCorrection(sf *Subframe) *ClockCorrection {
	if sf == nil || sf.ID != 1 {
		return nil
	}
	b := sf.dataBits[:]
	week := int(getBitsU(b, 60, 10)) + 1024
	iodc := uint16(getBitsU2(b, 82, 2, 210, 8))
	return &ClockCorrection{
		Af0:        float64(getBitsS(b, 270, 22)) * p2_31,
		Af1:        float64(getBitsS(b, 248, 16)) * p2_43,
		Af2:        float64(getBitsS(b, 240, 8)) * p2_55,
		Tgd:        float64(getBitsS(b, 196, 8)) * p2_31,
		Toc:        float64(getBitsU(b, 218, 16)) * 16.0,
		IODC:       iodc,
		WeekNumber: week,
		SVHealth:   uint8(getBitsU(b, 76, 6)),
		URA:        uint8(getBitsU(b, 72, 4)),
	}
}

// DecodeEphemerisSubframe2 parses subframe 2 into the orbital fields it
// carries, merging them into an existing (possibly partial) EphemerisParams.
func DecodeEphemerisSubframe2(eph *EphemerisParams, sf *Subframe) {
	b := sf.dataBits[:]
	eph.IODE = uint16(getBitsU(b, 60, 8))
	eph.HaveSubframe2 = true
	eph.IODESubframe2 = eph.IODE
	eph.Crs = float64(getBitsS(b, 68, 16)) * p2_5
	eph.DeltaN = float64(getBitsS(b, 90, 16)) * p2_43 * sc2rad
	eph.M0 = float64(getBitsS2(b, 106, 8, 120, 24)) * p2_31 * sc2rad
	eph.Cuc = float64(getBitsS(b, 150, 16)) * p2_29
	eph.Ecc = float64(getBitsU2(b, 166, 8, 180, 24)) * p2_33
	eph.Cus = float64(getBitsS(b, 210, 16)) * p2_29
	sqrtA := float64(getBitsU2(b, 226, 8, 240, 24)) * p2_19
	eph.SqrtA = sqrtA
	eph.Toe = float64(getBitsU(b, 270, 16)) * 16.0
}

// DecodeEphemerisSubframe3 parses subframe 3's remaining orbital fields.
func DecodeEphemerisSubframe3(eph *EphemerisParams, sf *Subframe) {
	b := sf.dataBits[:]
	eph.Cic = float64(getBitsS(b, 60, 16)) * p2_29
	eph.Omega0 = float64(getBitsS2(b, 76, 8, 90, 24)) * p2_31 * sc2rad
	eph.Cis = float64(getBitsS(b, 120, 16)) * p2_29
	eph.I0 = float64(getBitsS2(b, 136, 8, 150, 24)) * p2_31 * sc2rad
	eph.Crc = float64(getBitsS(b, 180, 16)) * p2_5
	eph.Omega = float64(getBitsS2(b, 196, 8, 210, 24)) * p2_31 * sc2rad
	eph.OmegaDot = float64(getBitsS(b, 240, 24)) * p2_43 * sc2rad
	iode3 := uint16(getBitsU(b, 270, 8))
	eph.IODE = iode3
	eph.HaveSubframe3 = true
	eph.IODESubframe3 = iode3
	eph.IDOT = float64(getBitsS(b, 278, 14)) * p2_43 * sc2rad
}
