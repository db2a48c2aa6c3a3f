package receiver

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kpelc/gogps/internal/config"
	"github.com/kpelc/gogps/internal/prncode"
	"github.com/kpelc/gogps/internal/telemetry"
)

// syntheticMs generates one millisecond of PRN 1's C/A template at a fixed
// Doppler shift and code phase, the same construction
// internal/acquisition's own tests use to exercise acquisition end to end.
func syntheticMs(template []float64, dopplerHz float64, codePhase, msIndex int) []complex64 {
	n := len(template)
	out := make([]complex64, n)
	w := 2 * math.Pi * dopplerHz / config.SampleRateHz
	for i := 0; i < n; i++ {
		idx := ((i-codePhase)%n + n) % n
		t := float64(msIndex*n + i)
		carrier := complex(math.Cos(w*t), math.Sin(w*t))
		out[i] = complex64(complex(template[idx], 0) * carrier)
	}
	return out
}

func TestTickRejectsWrongSampleCount(t *testing.T) {
	p, err := NewPipeline(config.Default(), telemetry.New(telemetry.LevelError), time.Unix(0, 0))
	require.NoError(t, err)

	require.Panics(t, func() {
		_ = p.Tick(context.Background(), make([]complex64, 10))
	})
}

func TestTickHonorsContextCancellation(t *testing.T) {
	p, err := NewPipeline(config.Default(), telemetry.New(telemetry.LevelError), time.Unix(0, 0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.Tick(ctx, make([]complex64, config.SamplesPerMillisecond))
	require.ErrorIs(t, err, context.Canceled)
}

func TestPipelineAcquiresAndTracksASyntheticSatellite(t *testing.T) {
	cfg := config.Default()
	cfg.AcquisitionIncoherentMs = 10
	cfg.AcquisitionRetryInterval = time.Millisecond // retry immediately if the first attempt misses

	p, err := NewPipeline(cfg, telemetry.New(telemetry.LevelError), time.Unix(0, 0))
	require.NoError(t, err)

	code, err := prncode.Generate(1)
	require.NoError(t, err)
	template := prncode.Upsample(code)

	const trueDoppler = 1200.0
	const truePhase = 250

	ctx := context.Background()
	for ms := 0; ms < 40; ms++ {
		samples := syntheticMs(template, trueDoppler, truePhase, ms)
		require.NoError(t, p.Tick(ctx, samples))
	}

	st := p.registry[1]
	require.GreaterOrEqual(t, st.Status, Acquired)
}

func TestPipelineLeavesOtherPRNsUntrackedWhenOnlyOneIsPresent(t *testing.T) {
	cfg := config.Default()
	cfg.AcquisitionIncoherentMs = 10
	cfg.AcquisitionRetryInterval = time.Millisecond

	p, err := NewPipeline(cfg, telemetry.New(telemetry.LevelError), time.Unix(0, 0))
	require.NoError(t, err)

	code, err := prncode.Generate(1)
	require.NoError(t, err)
	template := prncode.Upsample(code)

	ctx := context.Background()
	for ms := 0; ms < 15; ms++ {
		samples := syntheticMs(template, 1200.0, 250, ms)
		require.NoError(t, p.Tick(ctx, samples))
	}

	for prn, st := range p.registry {
		if prn == 1 {
			continue
		}
		require.Equal(t, Untracked, st.Status, "prn %d", prn)
	}

	untracked := p.UntrackedSatellites()
	require.Len(t, untracked, 31)
}
