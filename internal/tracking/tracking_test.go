package tracking

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kpelc/gogps/internal/config"
	"github.com/kpelc/gogps/internal/prncode"
)

func syntheticMs(template []float64, dopplerHz, codePhase float64, t0 float64) []complex64 {
	n := len(template)
	out := make([]complex64, n)
	w := 2 * math.Pi * dopplerHz / config.SampleRateHz
	for i := 0; i < n; i++ {
		idx := ((i-int(math.Round(codePhase)))%n + n) % n
		carrier := complex(math.Cos(t0+w*float64(i)), math.Sin(t0+w*float64(i)))
		out[i] = complex64(complex(template[idx], 0) * carrier)
	}
	return out
}

func TestTrackingConvergesOnConstantDoppler(t *testing.T) {
	code, err := prncode.Generate(7)
	require.NoError(t, err)
	template := prncode.Upsample(code)

	cfg := config.Default()
	trueDoppler := 1234.0
	st := NewState(trueDoppler+300, 0, time.Time{}) // start 300 Hz off

	var lastSecondErrs []float64
	phase := 0.0
	for ms := 0; ms < 1000; ms++ {
		samples := syntheticMs(template, trueDoppler, 0, phase)
		phase += 2 * math.Pi * trueDoppler * float64(len(template)) / config.SampleRateHz
		res := Step(st, samples, template, cfg, time.Time{}.Add(time.Duration(ms)*time.Millisecond))
		require.False(t, res.LossOfLock)
		if ms >= 900 {
			lastSecondErrs = append(lastSecondErrs, st.CarrierDopplerHz-trueDoppler)
		}
	}

	require.Less(t, stdDev(lastSecondErrs), 5.0)
}

func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
