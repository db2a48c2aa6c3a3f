// Package tracking implements the per-satellite code/carrier tracking loop:
// Early/Prompt/Late correlators, the code and carrier discriminators, and
// the loop filters that drive the NCOs each millisecond.
package tracking

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/kpelc/gogps/internal/config"
)

// Correlation is one millisecond's early/prompt/late correlator output.
type Correlation struct {
	Early, Prompt, Late complex128
}

// State is the tracking loop's per-PRN NCO and loop-filter state, carried
// across milliseconds. The caller (internal/receiver) owns its lifetime.
type State struct {
	CarrierDopplerHz          float64
	CarrierPhaseRad           float64
	CodePhaseSamples          float64
	CodePhaseRateSamplesPerMs float64

	dllIntegrator float64
	fllIntegrator float64
	pllIntegrator float64

	prevPrompt complex128
	havePrev   bool

	LockedAt time.Time

	recentPromptMag []float64 // ring, length cfg.LossOfLockWindowMs
	recentEarlyMag  []float64
	recentLateMag   []float64
}

// NewState seeds a tracking loop from an acquisition result.
func NewState(dopplerHz, codePhaseSamples float64, lockedAt time.Time) *State {
	return &State{
		CarrierDopplerHz:          dopplerHz,
		CodePhaseSamples:          codePhaseSamples,
		CodePhaseRateSamplesPerMs: float64(config.SamplesPerMillisecond),
		LockedAt:                  lockedAt,
	}
}

// StepResult is what one millisecond of tracking produces.
type StepResult struct {
	Chip        int8
	Correlation Correlation
	LossOfLock  bool
}

// Step consumes exactly one millisecond of samples (len ==
// config.SamplesPerMillisecond) against the upsampled PRN template and
// advances the loop's NCO and filter state by one tick.
func Step(st *State, samples []complex64, template []float64, cfg config.Config, now time.Time) StepResult {
	n := len(template)
	spacing := int(math.Round(cfg.EarlyLateSpacingChips * 2)) // half-chip = 1 sample
	if spacing < 1 {
		spacing = 1
	}

	center := int(math.Round(st.CodePhaseSamples))
	early := correlate(samples, template, center-spacing, st.CarrierDopplerHz, st.CarrierPhaseRad)
	prompt := correlate(samples, template, center, st.CarrierDopplerHz, st.CarrierPhaseRad)
	late := correlate(samples, template, center+spacing, st.CarrierDopplerHz, st.CarrierPhaseRad)

	result := StepResult{Correlation: Correlation{Early: early, Prompt: prompt, Late: late}}
	if real(prompt) >= 0 {
		result.Chip = 1
	} else {
		result.Chip = -1
	}

	// --- Code discriminator + first-order DLL ---
	eMag, lMag := cmplx.Abs(early), cmplx.Abs(late)
	var codeDiscriminator float64
	if eMag+lMag > 0 {
		codeDiscriminator = (eMag - lMag) / (eMag + lMag)
	}
	coeffs := currentCoefficients(st, cfg, now)
	st.dllIntegrator += coeffs.DLLAw * codeDiscriminator
	codeRateCorrection := coeffs.DLLW2*codeDiscriminator + st.dllIntegrator
	st.CodePhaseRateSamplesPerMs = float64(config.SamplesPerMillisecond) + codeRateCorrection

	// --- Carrier discriminators + FLL-assisted PLL ---
	var freqDiscriminator float64
	if st.havePrev {
		cross := prompt * cmplx.Conj(st.prevPrompt)
		freqDiscriminator = math.Atan2(imag(cross), real(cross)) / (2 * math.Pi * 0.001)
	}
	st.prevPrompt = prompt
	st.havePrev = true

	var phaseDiscriminator float64
	if real(prompt) != 0 {
		phaseDiscriminator = math.Atan(imag(prompt) / real(prompt))
	}

	st.fllIntegrator += coeffs.FLLW * freqDiscriminator * 0.001
	st.pllIntegrator += coeffs.PLLAw * phaseDiscriminator
	dopplerCorrection := coeffs.PLLW2*phaseDiscriminator + st.pllIntegrator + st.fllIntegrator
	st.CarrierDopplerHz += dopplerCorrection * 0.001

	// --- NCO advance ---
	st.CarrierPhaseRad = math.Mod(st.CarrierPhaseRad+2*math.Pi*st.CarrierDopplerHz*float64(n)/config.SampleRateHz, 2*math.Pi)
	priorCodePhase := st.CodePhaseSamples
	st.CodePhaseSamples = math.Mod(st.CodePhaseSamples+st.CodePhaseRateSamplesPerMs, float64(n))

	// --- Loss of lock ---
	result.LossOfLock = detectLossOfLock(st, cfg, eMag, cmplx.Abs(prompt), lMag, priorCodePhase)

	return result
}

// currentCoefficients applies the FLL pull-in/steady-state bandwidth
// schedule: wide bandwidth immediately after acquisition, narrowing once
// the loop has held lock for cfg.FLLSteadyAfter.
func currentCoefficients(st *State, cfg config.Config, now time.Time) LoopFilterCoefficients {
	fllB := cfg.FLLBandwidthPullInHz
	if !st.LockedAt.IsZero() && now.Sub(st.LockedAt) >= cfg.FLLSteadyAfter {
		fllB = cfg.FLLBandwidthSteadyHz
	}
	return DeriveCoefficients(cfg.DLLBandwidthHz, cfg.PLLBandwidthHz, fllB)
}

// correlate sums one correlator's output over one millisecond: the sample
// times the code replica (shifted by offset samples) times the conjugate
// carrier replica (wiped off at the current Doppler/phase estimate).
func correlate(samples []complex64, template []float64, offset int, dopplerHz, phase0 float64) complex128 {
	n := len(template)
	var sum complex128
	w := 2 * math.Pi * dopplerHz / config.SampleRateHz
	for i := 0; i < len(samples); i++ {
		idx := ((i - offset) % n + n) % n
		carrier := cmplx.Exp(complex(0, -(phase0 + w*float64(i))))
		sum += complex128(samples[i]) * complex(template[idx], 0) * carrier
	}
	return sum
}

func detectLossOfLock(st *State, cfg config.Config, eMag, pMag, lMag, priorCodePhase float64) bool {
	st.recentPromptMag = pushRing(st.recentPromptMag, pMag, cfg.LossOfLockWindowMs)
	st.recentEarlyMag = pushRing(st.recentEarlyMag, eMag, cfg.LossOfLockWindowMs)
	st.recentLateMag = pushRing(st.recentLateMag, lMag, cfg.LossOfLockWindowMs)

	if math.Abs(st.CodePhaseSamples-priorCodePhase) > cfg.CodePhaseJumpSamples &&
		math.Abs(st.CodePhaseSamples-priorCodePhase) < float64(config.SamplesPerMillisecond)-cfg.CodePhaseJumpSamples {
		return true
	}

	if len(st.recentPromptMag) < cfg.LossOfLockWindowMs {
		return false
	}

	meanP := mean(st.recentPromptMag)
	threshold := cfg.LossOfLockMultiplier * math.Sqrt(variance(st.recentEarlyMag)+variance(st.recentLateMag))
	return meanP < threshold
}

func pushRing(buf []float64, v float64, maxLen int) []float64 {
	buf = append(buf, v)
	if len(buf) > maxLen {
		buf = buf[len(buf)-maxLen:]
	}
	return buf
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}
