// Package prncode generates the GPS L1 C/A Gold codes and their upsampled
// correlation templates. The generator itself — two 10-stage LFSRs combined
// with a per-satellite tap delay on the second register — is the standard
// IS-GPS-200 C/A code construction.
package prncode

import "fmt"

// ChipLength is the number of chips in one C/A code period.
const ChipLength = 1023

// ChipRateHz is the C/A chipping rate.
const ChipRateHz = 1.023e6

// caTapDelay holds, for each PRN (index p == PRN p), the G2 tap delay that
// selects that satellite's Gold code from the shared LFSR sequences.
var caTapDelay = [38]int{
	0, // unused, PRNs are 1-indexed
	5, 6, 7, 8, 17, 18, 139, 140, 141, 251,
	252, 254, 255, 256, 257, 258, 469, 470, 471, 472,
	473, 474, 509, 512, 513, 514, 515, 516, 859, 860,
	861, 862, 863, 950, 947, 948, 950,
}

// Generate returns the 1023-chip ±1 C/A code for the given PRN (1..32,
// higher IDs up to 37 are valid GPS PRN slots but 1..32 are the satellite
// IDs this receiver tracks).
func Generate(prn int) ([]int8, error) {
	if prn < 1 || prn >= len(caTapDelay) {
		return nil, fmt.Errorf("prncode: PRN %d out of range 1..%d", prn, len(caTapDelay)-1)
	}

	g1Reg := newShiftRegister()
	g2Reg := newShiftRegister()
	g1 := make([]int8, ChipLength)
	g2 := make([]int8, ChipLength)
	for i := 0; i < ChipLength; i++ {
		g1[i] = g1Reg.output()
		g2[i] = g2Reg.output()
		g1Reg.step(g1Reg.bit(2) * g1Reg.bit(9))
		g2Reg.step(g2Reg.bit(1) * g2Reg.bit(2) * g2Reg.bit(5) * g2Reg.bit(7) * g2Reg.bit(8) * g2Reg.bit(9))
	}

	delay := caTapDelay[prn]
	code := make([]int8, ChipLength)
	j := ChipLength - delay
	for i := 0; i < ChipLength; i++ {
		code[i] = -g1[i] * g2[j%ChipLength]
		j++
	}
	return code, nil
}

// shiftRegister models a 10-stage LFSR seeded to all -1s (the C/A generator
// convention where chip value +1/-1 stands in for binary 0/1).
type shiftRegister struct {
	bits [10]int8
}

func newShiftRegister() *shiftRegister {
	r := &shiftRegister{}
	for i := range r.bits {
		r.bits[i] = -1
	}
	return r
}

func (r *shiftRegister) bit(i int) int8 { return r.bits[i] }
func (r *shiftRegister) output() int8   { return r.bits[9] }

func (r *shiftRegister) step(feedback int8) {
	for i := 9; i > 0; i-- {
		r.bits[i] = r.bits[i-1]
	}
	r.bits[0] = feedback
}

// Upsample repeats each chip twice, producing the 2046-sample ±1 template
// used for correlation against one millisecond of samples at 2.046 MSa/s.
func Upsample(code []int8) []float64 {
	out := make([]float64, len(code)*2)
	for i, c := range code {
		out[2*i] = float64(c)
		out[2*i+1] = float64(c)
	}
	return out
}

// Table holds the precomputed, immutable upsampled templates for every PRN
// this receiver may track, built once at pipeline startup.
type Table struct {
	templates map[int][]float64
}

// NewTable builds upsampled correlation templates for every satellite ID
// this receiver tracks, PRNs 1..32.
func NewTable() (*Table, error) {
	t := &Table{templates: make(map[int][]float64, 32)}
	for prn := 1; prn <= 32; prn++ {
		code, err := Generate(prn)
		if err != nil {
			return nil, err
		}
		t.templates[prn] = Upsample(code)
	}
	return t, nil
}

// Template returns the 2046-sample ±1 template for prn, or false if prn is
// not tracked by this receiver.
func (t *Table) Template(prn int) ([]float64, bool) {
	tpl, ok := t.templates[prn]
	return tpl, ok
}

// AllPRNs returns every PRN this table generated a template for, in
// ascending order.
func (t *Table) AllPRNs() []int {
	prns := make([]int, 0, len(t.templates))
	for prn := 1; prn <= 32; prn++ {
		if _, ok := t.templates[prn]; ok {
			prns = append(prns, prn)
		}
	}
	return prns
}
