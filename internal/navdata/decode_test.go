package navdata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeSubframe builds 10 valid-parity words for subframe id with the
// given data-bit payload for words 3-10 (24 bits each), and fixed TLM/HOW
// structure, returning a flat 300-bit (0/1) stream.
func encodeSubframe(id int, tow uint32, payload [8][24]int8) []int8 {
	var words [10][24]int8
	// TLM: preamble + 16 reserved/don't-care bits, all zero here.
	for i := 0; i < 8; i++ {
		words[0][i] = int8(preamble[i])
	}
	// HOW: 17-bit TOW, alert=0, AS=0, 3-bit subframe id, 2 reserved bits.
	for i := 0; i < 17; i++ {
		words[1][i] = int8((tow >> uint(16-i)) & 1)
	}
	for i := 0; i < 3; i++ {
		words[1][19+i] = int8((id >> uint(2-i)) & 1)
	}
	for i := 0; i < 8; i++ {
		words[2+i] = payload[i]
	}

	var prevD29, prevD30 int8
	out := make([]int8, 0, 300)
	for w := 0; w < 10; w++ {
		word, d29, d30 := buildValidWord(words[w], prevD29, prevD30)
		for _, b := range word {
			out = append(out, int8(b))
		}
		prevD29, prevD30 = d29, d30
	}
	return out
}

func bitsToChips(bits []int8) []int8 {
	// Chip convention used by Decoder.Feed: +1 maps to data bit 0, -1 maps
	// to data bit 1.
	out := make([]int8, len(bits))
	for i, b := range bits {
		if b == 0 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
	return out
}

func TestSubframeRoundTrip(t *testing.T) {
	var payload [8][24]int8
	// Word 3 (subframe 2's Crs field occupies bits 68-83, i.e. word index
	// (68/30)=2 -> payload[0], offset 68-60=8) - set a distinctive pattern
	// across all payload words so any bit transposition would be caught.
	for w := range payload {
		for i := range payload[w] {
			payload[w][i] = int8((w*7 + i*3) % 2)
		}
	}

	bits := encodeSubframe(3, 12345, payload)
	chips := bitsToChips(bits)

	d := NewDecoder()
	var got *Subframe
	for i, c := range chips {
		sf, err := d.Feed(c, int64(i))
		require.NoError(t, err)
		if sf != nil {
			got = sf
			break
		}
	}
	require.NotNil(t, got, "decoder should emit a subframe once 300 valid bits are fed")
	require.Equal(t, 3, got.ID)
	require.Equal(t, uint32(12345), got.TOWCount)
	require.NotNil(t, d.BitPhase())
	require.Equal(t, int8(1), *d.BitPhase())

	for w := 0; w < 8; w++ {
		for i := 0; i < 24; i++ {
			require.Equal(t, payload[w][i], int8(got.dataBits[(2+w)*30+i]), "word %d bit %d", w+3, i)
		}
	}
}

func TestSubframeRoundTripInvertedPolarity(t *testing.T) {
	var payload [8][24]int8
	for w := range payload {
		for i := range payload[w] {
			payload[w][i] = int8((w + i) % 2)
		}
	}
	bits := encodeSubframe(1, 500, payload)
	chips := bitsToChips(bits)
	for i := range chips {
		chips[i] = -chips[i] // simulate the 180-degree PLL polarity ambiguity
	}

	d := NewDecoder()
	var got *Subframe
	for i, c := range chips {
		sf, err := d.Feed(c, int64(i))
		require.NoError(t, err)
		if sf != nil {
			got = sf
			break
		}
	}
	require.NotNil(t, got)
	require.Equal(t, 1, got.ID)
	require.Equal(t, uint32(500), got.TOWCount)
	require.NotNil(t, d.BitPhase())
	require.Equal(t, int8(-1), *d.BitPhase())
}

func TestDecodeClockCorrectionReadsSubframe1Fields(t *testing.T) {
	// Subframe 1: hand-place a recognizable IODC/week/health in the known
	// bit positions and verify DecodeClockCorrection reads them back.
	put := func(word *[24]int8, start, n int, v uint32) {
		for i := 0; i < n; i++ {
			word[start+i] = int8((v >> uint(n-1-i)) & 1)
		}
	}
	var payload [8][24]int8
	put(&payload[0], 0, 10, 515)     // word 3: week number (mod 1024)
	put(&payload[0], 16, 6, 5)       // word 3: SV health
	put(&payload[0], 22, 2, 679>>8)  // word 3: IODC high 2 bits
	put(&payload[5], 0, 8, 679&0xFF) // word 8: IODC low 8 bits
	bits := encodeSubframe(1, 1, payload)
	chips := bitsToChips(bits)
	d := NewDecoder()
	var sf *Subframe
	for i, c := range chips {
		s, err := d.Feed(c, int64(i))
		require.NoError(t, err)
		if s != nil {
			sf = s
			break
		}
	}
	require.NotNil(t, sf)
	clk := DecodeClockCorrection(sf)
	require.NotNil(t, clk)
	require.Equal(t, 1, sf.ID)
	require.Equal(t, 515+1024, clk.WeekNumber)
	require.Equal(t, uint8(5), clk.SVHealth)
	require.Equal(t, uint16(679), clk.IODC)
}
