// Package acquisition implements the Doppler/code-phase search that finds
// whether a candidate PRN is visible in a window of samples.
package acquisition

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/kpelc/gogps/internal/config"
)

// fftLen is the zero-padded transform length: spec.md 9 calls 2046
// non-power-of-two and prefers zero-padding to 2048 over a mixed-radix FFT.
const fftLen = 2048

// Result is the outcome of one acquisition attempt for one PRN.
type Result struct {
	Visible          bool
	DopplerHz        float64
	CodePhaseSamples float64
	PeakToSideRatio  float64
}

// Attempt runs the Doppler/code-phase search described in spec.md 4.1 over
// cfg.AcquisitionIncoherentMs milliseconds of samples (each
// config.SamplesPerMillisecond long) against one PRN's upsampled template.
//
// samples must contain exactly cfg.AcquisitionIncoherentMs milliseconds of
// data (an FFT length mismatch, i.e. a slice not a clean multiple of
// config.SamplesPerMillisecond, is the one fatal failure mode spec.md 4.1
// names and is reported as an error rather than NotVisible).
func Attempt(samples []complex64, template []float64, cfg config.Config) (Result, error) {
	msLen := config.SamplesPerMillisecond
	if len(samples) != msLen*cfg.AcquisitionIncoherentMs {
		return Result{}, fmt.Errorf("acquisition: sample window length %d is not %d ms of %d-sample data",
			len(samples), cfg.AcquisitionIncoherentMs, msLen)
	}

	templateFFT := complexFFTOf(zeroPad(template))

	numBins := int(2*cfg.AcquisitionDopplerSpanHz/cfg.AcquisitionDopplerStepHz) + 1
	bestMag := -1.0
	bestDoppler := 0.0
	bestPhase := 0
	var bestMagnitudes []float64

	for bin := 0; bin < numBins; bin++ {
		freq := -cfg.AcquisitionDopplerSpanHz + float64(bin)*cfg.AcquisitionDopplerStepHz

		incoherentSum := make([]float64, fftLen)
		for block := 0; block < cfg.AcquisitionIncoherentMs/cfg.AcquisitionCoherentMs; block++ {
			coherent := make([]complex128, fftLen)
			for coh := 0; coh < cfg.AcquisitionCoherentMs; coh++ {
				msIdx := block*cfg.AcquisitionCoherentMs + coh
				ms := samples[msIdx*msLen : (msIdx+1)*msLen]
				wiped := wipeoffCarrier(ms, freq, msIdx*msLen)
				padded := make([]complex128, fftLen)
				copy(padded, wiped)
				corr := crossCorrelate(padded, templateFFT)
				for i := range coherent {
					coherent[i] += corr[i]
				}
			}
			for i, c := range coherent {
				incoherentSum[i] += cmplx.Abs(c)
			}
		}

		peakIdx, peakVal := argmax(incoherentSum)
		if peakVal > bestMag {
			bestMag = peakVal
			bestDoppler = freq
			bestPhase = peakIdx
			bestMagnitudes = incoherentSum
		}
	}

	psr := peakToSideRatio(bestMagnitudes, bestPhase)
	codePhase := parabolicInterpolate(bestMagnitudes, bestPhase) / 2 // halved here, doubled below: the interpolated peak bin is the code phase in samples

	result := Result{
		DopplerHz:        bestDoppler,
		CodePhaseSamples: math.Mod(codePhase*2, float64(msLen)),
		PeakToSideRatio:  psr,
	}
	result.Visible = psr >= cfg.AcquisitionPSRThreshold
	return result, nil
}

func zeroPad(template []float64) []float64 {
	out := make([]float64, fftLen)
	copy(out, template)
	return out
}

// complexFFTOf computes the full N-point complex spectrum of a real-valued
// template via fourier.NewCmplxFFT, so the cross-correlation in
// crossCorrelate multiplies against a full two-sided spectrum rather than
// a real-FFT's N/2+1 one-sided coefficients.
func complexFFTOf(real []float64) []complex128 {
	x := make([]complex128, len(real))
	for i, v := range real {
		x[i] = complex(v, 0)
	}
	fft := fourier.NewCmplxFFT(len(x))
	return fft.Coefficients(nil, x)
}

// wipeoffCarrier multiplies one millisecond of samples by exp(-j2*pi*f*t),
// with t continuing from sampleOffset so phase is continuous across
// milliseconds within this attempt.
func wipeoffCarrier(ms []complex64, freqHz float64, sampleOffset int) []complex128 {
	out := make([]complex128, len(ms))
	w := 2 * math.Pi * freqHz / config.SampleRateHz
	for i, s := range ms {
		t := float64(sampleOffset + i)
		out[i] = complex128(s) * cmplx.Exp(complex(0, -w*t))
	}
	return out
}

// crossCorrelate computes IFFT(FFT(x) * conj(FFT(prn))) to locate the code
// phase where x best matches the PRN template.
func crossCorrelate(x []complex128, templateFFT []complex128) []complex128 {
	fft := fourier.NewCmplxFFT(len(x))
	X := fft.Coefficients(nil, x)
	product := make([]complex128, len(X))
	for i := range X {
		product[i] = X[i] * cmplx.Conj(templateFFT[i])
	}
	return fft.Sequence(nil, product)
}

func argmax(xs []float64) (int, float64) {
	idx, best := 0, xs[0]
	for i, v := range xs {
		if v > best {
			best, idx = v, i
		}
	}
	return idx, best
}

// peakToSideRatio divides the peak magnitude by the mean of all bins more
// than 2 samples from the peak, per spec.md 4.1's PSR definition.
func peakToSideRatio(magnitudes []float64, peakIdx int) float64 {
	n := len(magnitudes)
	var sideSum float64
	var sideCount int
	for i, v := range magnitudes {
		d := circularDistance(i, peakIdx, n)
		if d > 2 {
			sideSum += v
			sideCount++
		}
	}
	if sideCount == 0 || sideSum == 0 {
		return 0
	}
	mean := sideSum / float64(sideCount)
	if mean == 0 {
		return 0
	}
	return magnitudes[peakIdx] / mean
}

func circularDistance(a, b, n int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > n/2 {
		d = n - d
	}
	return d
}

// parabolicInterpolate recovers a sub-bin peak position by fitting a
// parabola through the peak and its two neighbours, compensating for the
// broadened peak shape zero-padding to fftLen introduces (spec.md 9).
func parabolicInterpolate(magnitudes []float64, peakIdx int) float64 {
	n := len(magnitudes)
	prev := magnitudes[(peakIdx-1+n)%n]
	next := magnitudes[(peakIdx+1)%n]
	center := magnitudes[peakIdx]
	denom := prev - 2*center + next
	if denom == 0 {
		return float64(peakIdx)
	}
	delta := 0.5 * (prev - next) / denom
	return float64(peakIdx) + delta
}
