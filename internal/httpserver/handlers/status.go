package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/iotdash/bridge/internal/domain"
	"github.com/iotdash/bridge/internal/httpserver/deps"
	"github.com/iotdash/bridge/internal/logger"
	"github.com/iotdash/bridge/internal/metrics"
)

var errUnavailable = errors.New("upstream unavailable")

type statusResponse struct {
	Backend    string `json:"backend"`
	ThingSpeak string `json:"thingspeak"`
	MLService  string `json:"mlService"`
}

// Status probes both upstreams concurrently and reports per-upstream
// reachability. Degradation is an expected steady state, so the route
// always answers 200; a failing probe only flips its own field.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		resp := statusResponse{
			Backend:    domain.StatusConnected,
			ThingSpeak: domain.StatusUnknown,
			MLService:  domain.StatusUnknown,
		}

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			err := d.Telemetry.Probe(ctx)
			metrics.ObserveUpstream("thingspeak", err)
			if err != nil {
				d.Logger.Warn("telemetry probe failed", logger.Error(err))
				resp.ThingSpeak = domain.StatusUnavailable
				return
			}
			resp.ThingSpeak = domain.StatusConnected
		}()

		go func() {
			defer wg.Done()
			ok, _ := d.Analytics.Health(ctx)
			if !ok {
				metrics.ObserveUpstream("ml_service", errUnavailable)
				resp.MLService = domain.StatusUnavailable
				return
			}
			metrics.ObserveUpstream("ml_service", nil)
			resp.MLService = domain.StatusConnected
		}()

		wg.Wait()
		writeJSON(w, http.StatusOK, resp)
	}
}
