package acquisition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kpelc/gogps/internal/config"
	"github.com/kpelc/gogps/internal/prncode"
)

func syntheticWindow(template []float64, dopplerHz float64, codePhase int, ms int) []complex64 {
	n := len(template)
	out := make([]complex64, n*ms)
	w := 2 * math.Pi * dopplerHz / config.SampleRateHz
	for m := 0; m < ms; m++ {
		for i := 0; i < n; i++ {
			idx := ((i-codePhase)%n + n) % n
			t := float64(m*n + i)
			carrier := complex(math.Cos(w*t), math.Sin(w*t))
			out[m*n+i] = complex64(complex(template[idx], 0) * carrier)
		}
	}
	return out
}

func TestAcquisitionRoundTrip(t *testing.T) {
	code, err := prncode.Generate(12)
	require.NoError(t, err)
	template := prncode.Upsample(code)

	cfg := config.Default()
	trueDoppler := -3500.0
	truePhase := 400

	samples := syntheticWindow(template, trueDoppler, truePhase, cfg.AcquisitionIncoherentMs)

	res, err := Attempt(samples, template, cfg)
	require.NoError(t, err)
	require.True(t, res.Visible)
	require.InDelta(t, trueDoppler, res.DopplerHz, cfg.AcquisitionDopplerStepHz)
}

func TestAcquisitionRejectsMismatchedWindowLength(t *testing.T) {
	code, _ := prncode.Generate(9)
	template := prncode.Upsample(code)
	cfg := config.Default()
	_, err := Attempt(make([]complex64, 100), template, cfg)
	require.Error(t, err)
}
