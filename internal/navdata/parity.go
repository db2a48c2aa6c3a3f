package navdata

// The six GPS parity equations (IS-GPS-200, 20.3.5), spelled out per-bit
// rather than as a single flattened XOR chain so each equation can be
// checked against the ICD independently. d[1..24] are the word's data bits;
// prevD29/prevD30 are the last two bits of the previous word (D29*, D30*).
func computeParity(d [25]int8, prevD29, prevD30 int8) [7]int8 {
	x := func(bits ...int8) int8 {
		var v int8
		for _, b := range bits {
			v ^= b
		}
		return v
	}

	var p [7]int8
	p[1] = x(prevD29, d[1], d[2], d[3], d[5], d[6], d[10], d[11], d[12], d[13], d[14], d[17], d[18], d[20], d[23])
	p[2] = x(prevD30, d[2], d[3], d[4], d[6], d[7], d[11], d[12], d[13], d[14], d[15], d[18], d[19], d[21], d[24])
	p[3] = x(prevD29, d[1], d[3], d[4], d[5], d[7], d[8], d[12], d[13], d[14], d[15], d[16], d[19], d[20], d[22])
	p[4] = x(prevD30, d[2], d[4], d[5], d[6], d[8], d[9], d[13], d[14], d[15], d[16], d[17], d[20], d[21], d[23])
	p[5] = x(prevD30, d[1], d[3], d[5], d[6], d[7], d[9], d[10], d[14], d[15], d[16], d[17], d[18], d[21], d[22], d[24])
	p[6] = x(prevD29, d[3], d[5], d[6], d[8], d[9], d[10], d[11], d[13], d[15], d[19], d[22], d[23], d[24])
	return p
}

// CheckWord validates a 30-bit GPS word given the previous word's last two
// bits. bits must have length 30, each entry 0 or 1. It returns the
// corrected 24 data bits (polarity-resolved using prevD30), this word's own
// corrected D29/D30 (to pass as prevD29/prevD30 to the next word), and
// whether parity passed.
func CheckWord(bits []byte, prevD29, prevD30 int8) (data [24]int8, d29, d30 int8, ok bool) {
	if len(bits) != 30 {
		return data, 0, 0, false
	}

	invert := prevD30 == 1
	var raw [25]int8 // 1-indexed data bits
	for i := 0; i < 24; i++ {
		b := int8(bits[i])
		if invert {
			b ^= 1
		}
		// Map {0,1} to the XOR domain used by computeParity, where
		// 0 and 1 already behave correctly under Go's ^ on int8.
		raw[i+1] = b
	}

	parity := computeParity(raw, prevD29, prevD30)
	var corrected [7]int8
	for i := 0; i < 6; i++ {
		got := int8(bits[24+i])
		if invert {
			got ^= 1
		}
		corrected[i+1] = got
		if got != parity[i+1] {
			return data, 0, 0, false
		}
	}

	for i := 0; i < 24; i++ {
		data[i] = raw[i+1]
	}
	return data, corrected[5], corrected[6], true
}
