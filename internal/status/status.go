// Package status serves the file-mode-only JSON status endpoint spec.md 6
// describes: one GET / handler dumping the pipeline's current solutions and
// per-satellite lifecycle state.
package status

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kpelc/gogps/internal/receiver"
	"github.com/kpelc/gogps/internal/telemetry"
)

// solutionJSON is one navigation fix, shaped to spec.md 6's
// `{ clock_bias, position: { latitude, longitude, height } }`.
type solutionJSON struct {
	ClockBias float64      `json:"clock_bias"`
	Position  positionJSON `json:"position"`
}

type positionJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Height    float64 `json:"height"`
}

type trackedSatelliteJSON struct {
	SatelliteID               int       `json:"satellite_id"`
	AcquiredAt                time.Time `json:"acquired_at"`
	BitBoundaryFound          bool      `json:"bit_boundary_found"`
	BitPhase                  int8      `json:"bit_phase"`
	RequiredSubframesReceived bool      `json:"required_subframes_received"`
	SubframeCount             int       `json:"subframe_count"`
	CarrierFrequencyShifts    []float64 `json:"carrier_frequency_shifts"`
	PRNCodePhaseShifts        []float64 `json:"prn_code_phase_shifts"`
	Correlations              [][3]float64 `json:"correlations"`
}

type untrackedSatelliteJSON struct {
	SatelliteID     int       `json:"satellite_id"`
	NextAcquisition time.Time `json:"next_acquisition_at"`
}

type statusResponse struct {
	Solutions           []solutionJSON            `json:"solutions"`
	TrackedSatellites   []trackedSatelliteJSON    `json:"tracked_satellites"`
	UntrackedSatellites []untrackedSatelliteJSON  `json:"untracked_satellites"`
}

// Handler serves the pipeline's current status as JSON. It reads Pipeline
// through its exported snapshot methods only — the status server never
// touches Satellite Registry internals directly, the same boundary the tick
// loop itself respects.
type Handler struct {
	pipeline *receiver.Pipeline
	logger   *telemetry.Logger
}

// New constructs a status Handler over pipeline.
func New(pipeline *receiver.Pipeline, logger *telemetry.Logger) *Handler {
	return &Handler{pipeline: pipeline, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := statusResponse{
		Solutions:           make([]solutionJSON, 0),
		TrackedSatellites:   make([]trackedSatelliteJSON, 0),
		UntrackedSatellites: make([]untrackedSatelliteJSON, 0),
	}

	for _, sol := range h.pipeline.Solutions() {
		resp.Solutions = append(resp.Solutions, solutionJSON{
			ClockBias: sol.ClockBiasSeconds,
			Position: positionJSON{
				Latitude:  sol.PositionGeodetic.LatitudeDeg,
				Longitude: sol.PositionGeodetic.LongitudeDeg,
				Height:    sol.PositionGeodetic.HeightMeters,
			},
		})
	}

	for _, st := range h.pipeline.TrackedSatellites() {
		resp.TrackedSatellites = append(resp.TrackedSatellites, trackedSatelliteJSON{
			SatelliteID:               st.SatelliteID,
			AcquiredAt:                st.AcquiredAt,
			BitBoundaryFound:          st.BitBoundaryFound,
			BitPhase:                  st.BitPhase,
			RequiredSubframesReceived: st.RequiredSubframesReceived,
			SubframeCount:             st.SubframeCount,
			CarrierFrequencyShifts:    st.CarrierFrequencyShifts,
			PRNCodePhaseShifts:        st.PRNCodePhaseShifts,
			Correlations:              st.Correlations,
		})
	}

	for _, st := range h.pipeline.UntrackedSatellites() {
		resp.UntrackedSatellites = append(resp.UntrackedSatellites, untrackedSatelliteJSON{
			SatelliteID:     st.SatelliteID,
			NextAcquisition: st.NextAcquisition,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("status: failed to encode response: %v", err)
	}
}

// ListenAndServe starts the status HTTP server, blocking until it errors.
// Per spec.md 6, this is only ever invoked in file-replay mode.
func ListenAndServe(addr string, pipeline *receiver.Pipeline, logger *telemetry.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/", New(pipeline, logger))
	return http.ListenAndServe(addr, mux)
}
