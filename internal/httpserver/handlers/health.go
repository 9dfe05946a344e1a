package handlers

import (
	"net/http"
	"time"

	"github.com/iotdash/bridge/internal/httpserver/deps"
)

type healthResponse struct {
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
}

// Health is the gateway's own liveness endpoint. It never probes
// upstreams; /api/status does that.
func Health(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthResponse{
			Status:        "ok",
			Timestamp:     d.Now().UTC().Format(time.RFC3339),
			UptimeSeconds: time.Since(start).Seconds(),
			Version:       d.Version,
		})
	}
}
