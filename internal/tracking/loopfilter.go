package tracking

// LoopFilterCoefficients are the natural-frequency-derived gains for a
// second-order loop of bandwidth B, using the standard transformation
// Aw = 1.414*(B/0.53), W2 = (B/0.53)^2 for PLL/DLL, FllW = B/0.25 for the
// first-order FLL-assisted term.
type LoopFilterCoefficients struct {
	DLLBandwidthHz float64
	DLLW2          float64
	DLLAw          float64

	PLLBandwidthHz float64
	PLLW2          float64
	PLLAw          float64

	FLLBandwidthHz float64
	FLLW           float64
}

// DeriveCoefficients computes loop coefficients from the requested
// bandwidths, so the tracking loop can be handed any bandwidth schedule
// instead of a fixed pull-in/steady-state pair.
func DeriveCoefficients(dllB, pllB, fllB float64) LoopFilterCoefficients {
	return LoopFilterCoefficients{
		DLLBandwidthHz: dllB,
		DLLW2:          (dllB / 0.53) * (dllB / 0.53),
		DLLAw:          1.414 * (dllB / 0.53),

		PLLBandwidthHz: pllB,
		PLLW2:          (pllB / 0.53) * (pllB / 0.53),
		PLLAw:          1.414 * (pllB / 0.53),

		FLLBandwidthHz: fllB,
		FLLW:           fllB / 0.25,
	}
}
