package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kpelc/gogps/internal/config"
	"github.com/kpelc/gogps/internal/receiver"
	"github.com/kpelc/gogps/internal/telemetry"
)

func newTestPipeline(t *testing.T) *receiver.Pipeline {
	t.Helper()
	p, err := receiver.NewPipeline(config.Default(), telemetry.New(telemetry.LevelError), time.Unix(0, 0))
	require.NoError(t, err)
	return p
}

func TestHandlerServesEmptyStatusShape(t *testing.T) {
	p := newTestPipeline(t)
	h := New(p, telemetry.New(telemetry.LevelError))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "solutions")
	require.Contains(t, body, "tracked_satellites")
	require.Contains(t, body, "untracked_satellites")

	require.Len(t, body["solutions"], 0)
	require.Len(t, body["tracked_satellites"], 0)

	untracked, ok := body["untracked_satellites"].([]any)
	require.True(t, ok)
	require.Len(t, untracked, 32)
}

func TestHandlerRejectsNonGet(t *testing.T) {
	p := newTestPipeline(t)
	h := New(p, telemetry.New(telemetry.LevelError))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
