package handlers

import (
	"net/http"

	"github.com/iotdash/bridge/internal/httpserver/deps"
	"github.com/iotdash/bridge/internal/metrics"
)

// Data relays the latest telemetry feed batch exactly as the provider
// returned it. All-or-nothing: on failure the caller gets an envelope,
// never partial data.
func Data(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := d.Telemetry.FetchLatest(r.Context())
		metrics.ObserveUpstream("thingspeak", err)
		if err != nil {
			writeUpstreamError(w, d.Logger, "telemetry fetch", err)
			return
		}
		writeRaw(w, http.StatusOK, payload)
	}
}
