package source

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bemasher/rtltcp"
)

// rtlSampleRateHz is the tuner's native sample rate; 2.046 MHz matches one
// C/A chip at 2 samples/chip, same grain the rest of the pipeline assumes.
const rtlSampleRateHz = 2_046_000

// l1CenterFreqHz is the GPS L1 carrier frequency the tuner is set to.
const l1CenterFreqHz = 1_575_420_000

// rtlDCOffset centers the tuner's unsigned 8-bit I/Q samples; rtl-sdr
// dongles report samples biased around roughly 127.4, the same constant
// rtlcap's magnitude lookup table subtracts out.
const rtlDCOffset = 127.4

// RTLSDRSource streams live samples from an rtl_tcp daemon over TCP. It
// implements Source by reading raw unsigned-byte I/Q pairs off the wire and
// rescaling them to the same complex64 representation FileSource produces.
type RTLSDRSource struct {
	sdr       rtltcp.SDR
	startedAt time.Time
	readBuf   []byte
}

// NewRTLSDRSource dials an rtl_tcp instance at addr (default
// "127.0.0.1:1234" when empty) and tunes it to the GPS L1 frequency at the
// receiver's fixed sample rate.
func NewRTLSDRSource(addr string) (*RTLSDRSource, error) {
	if addr == "" {
		addr = "127.0.0.1:1234"
	}
	raddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("source: invalid rtl_tcp address %q: %w", addr, err)
	}

	var s RTLSDRSource
	if err := s.sdr.Connect(raddr); err != nil {
		return nil, fmt.Errorf("source: failed to connect to rtl_tcp at %s: %w", addr, err)
	}
	s.sdr.SetSampleRate(rtlSampleRateHz)
	s.sdr.SetCenterFreq(l1CenterFreqHz)
	s.startedAt = time.Now()
	return &s, nil
}

// TimestampOfFirstSample implements Source.
func (s *RTLSDRSource) TimestampOfFirstSample() time.Time { return s.startedAt }

// NextSamples blocks until n samples have been read off the tuner's TCP
// stream. Live mode never stops of its own accord; a read error is always
// a device/sample-source failure, never end-of-stream.
func (s *RTLSDRSource) NextSamples(n int) ([]complex64, error) {
	want := n * 2
	if cap(s.readBuf) < want {
		s.readBuf = make([]byte, want)
	}
	buf := s.readBuf[:want]

	if _, err := io.ReadFull(&s.sdr, buf); err != nil {
		return nil, fmt.Errorf("source: rtl_tcp read error: %w", err)
	}

	samples := make([]complex64, n)
	for i := range samples {
		i8 := (float32(buf[2*i]) - rtlDCOffset) / rtlDCOffset
		q8 := (float32(buf[2*i+1]) - rtlDCOffset) / rtlDCOffset
		samples[i] = complex(i8, q8)
	}
	return samples, nil
}

// Close releases the rtl_tcp connection.
func (s *RTLSDRSource) Close() error { return s.sdr.Close() }
