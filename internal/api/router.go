package api

import (
	"net/http"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"

	"github.com/Bucanero06/nautilus-clock/internal/manifest"
	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

// NewRouter builds the full HTTP mux for clockd: health checks plus
// every embedded-scripting-binding operation mirrored over JSON.
func NewRouter(c clock.Clock, clockKind string, tracer trace.Tracer) *http.ServeMux {
	h := NewClockHandlers(c, clockKind, tracer)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /ready", handleReady)

	mux.HandleFunc("POST /api/timers", h.SetTimer)
	mux.HandleFunc("DELETE /api/timers", h.CancelTimers)
	mux.HandleFunc("GET /api/timers/names", h.TimerNames)
	mux.HandleFunc("GET /api/timers/count", h.TimerCount)
	mux.HandleFunc("POST /api/timers/alert", h.SetTimeAlert)
	mux.HandleFunc("POST /api/timers/default-handler", h.RegisterDefaultHandler)
	mux.HandleFunc("GET /api/timers/{name}/next", h.NextTime)
	mux.HandleFunc("DELETE /api/timers/{name}", h.CancelTimer)

	mux.HandleFunc("GET /api/time", h.Timestamp)
	mux.HandleFunc("GET /api/time/utc", h.UtcNow)

	return mux
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// InstallManifest loads and installs the startup timer manifest, if
// manifestPath is non-empty, returning the install results for logging.
func InstallManifest(c clock.Clock, fs afero.Fs, manifestPath string) (manifest.InstallResults, error) {
	m, err := manifest.Load(fs, manifestPath)
	if err != nil {
		return manifest.InstallResults{}, err
	}
	return manifest.Install(c, m), nil
}
