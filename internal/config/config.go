// Package config holds every tunable of the receiver pipeline.
package config

import "time"

// SamplesPerMillisecond is the fixed sampling grain: at Fs = 2.046 MHz,
// one millisecond of I/Q samples is exactly two samples per C/A chip.
const SamplesPerMillisecond = 2046

// SampleRateHz is the fixed sample rate the whole pipeline assumes.
const SampleRateHz = 2_046_000

// Config carries every configurable knob of the receiver. Zero-value fields
// are never used directly; construct with Default() and override selectively.
type Config struct {
	// Acquisition
	AcquisitionWindowMs        int           // N-millisecond window fed to acquisition (default 10)
	AcquisitionRetryInterval   time.Duration // minimum time between attempts for one PRN
	AcquisitionCoherentMs      int           // K_coh
	AcquisitionIncoherentMs    int           // K_incoh
	AcquisitionDopplerSpanHz   float64       // search span, +/- this many Hz
	AcquisitionDopplerStepHz   float64
	AcquisitionPSRThreshold    float64

	// Tracking
	EarlyLateSpacingChips float64 // 0.5 = half-chip, per spec's open question
	DLLBandwidthHz        float64
	FLLBandwidthPullInHz  float64
	FLLBandwidthSteadyHz  float64
	FLLSteadyAfter        time.Duration
	PLLBandwidthHz        float64
	LossOfLockWindowMs    int     // K, window (ms) of the mean |P| and var(|E|)/var(|L|) loss-of-lock test
	LossOfLockMultiplier  float64 // threshold multiplier applied to sqrt(var(E)+var(L))
	CodePhaseJumpSamples  float64 // max permissible single-ms code phase jump

	// Bit sync
	BitSyncMinMs           int // minimum ms of chips before boundary can be declared
	BitSyncDominanceRatio  float64
	StreamBitCapacity      int

	// Ring buffer sizes (SatelliteState)
	CorrelationHistoryLen int
	ChipStreamMinLen      int // multiple of 20
	BitStreamLen          int
	SubframeHistoryLen    int

	// Solver
	SolverMaxIterations int
	SolverTolerance     float64
	SolutionHistoryLen  int

	// Status server
	StatusAddr string
}

// Default returns the receiver's default configuration.
func Default() Config {
	return Config{
		AcquisitionWindowMs:      10,
		AcquisitionRetryInterval: 10 * time.Second,
		AcquisitionCoherentMs:    1,
		AcquisitionIncoherentMs:  10,
		AcquisitionDopplerSpanHz: 10_000,
		AcquisitionDopplerStepHz: 500,
		AcquisitionPSRThreshold:  2.5,

		EarlyLateSpacingChips: 0.5,
		DLLBandwidthHz:        1.0,
		FLLBandwidthPullInHz:  10.0,
		FLLBandwidthSteadyHz:  2.0,
		FLLSteadyAfter:        1 * time.Second,
		PLLBandwidthHz:        15.0,
		LossOfLockWindowMs:    50,
		LossOfLockMultiplier:  1.5,
		CodePhaseJumpSamples:  2.0,

		BitSyncMinMs:          200,
		BitSyncDominanceRatio: 3.0,
		StreamBitCapacity:     1500,

		CorrelationHistoryLen: 1000,
		ChipStreamMinLen:      20 * 20,
		BitStreamLen:          1500,
		SubframeHistoryLen:    5,

		SolverMaxIterations: 20,
		SolverTolerance:     1e-4,
		SolutionHistoryLen:  10,

		StatusAddr: "localhost:8080",
	}
}
