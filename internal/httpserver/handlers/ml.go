package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/iotdash/bridge/internal/domain"
	"github.com/iotdash/bridge/internal/httpserver/deps"
	"github.com/iotdash/bridge/internal/logger"
	"github.com/iotdash/bridge/internal/metrics"
)

// Request bodies are small numeric series; anything bigger is abuse.
const maxBodyBytes = 1 << 20

// MLHealth reports analytics service reachability. Unavailability is a
// normal answer here: the route returns 200 either way, so the dashboard
// can render a degraded badge instead of an error.
func MLHealth(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, payload := d.Analytics.Health(r.Context())

		merged := map[string]any{}
		if ok && payload != nil {
			// Best effort: a health payload that fails to decode is
			// dropped, not fatal.
			_ = json.Unmarshal(payload, &merged)
		}
		merged["mlServiceAvailable"] = ok

		if !ok {
			metrics.ObserveUpstream("ml_service", errUnavailable)
		} else {
			metrics.ObserveUpstream("ml_service", nil)
		}
		writeJSON(w, http.StatusOK, merged)
	}
}

type detectRequest struct {
	Field1Data []float64 `json:"field1_data"`
	Field2Data []float64 `json:"field2_data"`
}

// DetectAnomalies validates the request shape, forwards the original
// bytes to the analytics service and relays its response unchanged. A
// successful detection is handed to the notifier after the response is
// prepared; alerting can never fail the request.
func DetectAnomalies(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "could not read request body")
			return
		}

		var req detectRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "body must be JSON with numeric field1_data and field2_data arrays")
			return
		}
		if len(req.Field1Data) == 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "field1_data must not be empty")
			return
		}

		payload, err := d.Analytics.DetectAnomalies(r.Context(), body)
		metrics.ObserveUpstream("ml_service", err)
		if err != nil {
			writeUpstreamError(w, d.Logger, "anomaly detection", err)
			return
		}
		writeRaw(w, http.StatusOK, payload)

		if d.Notifier != nil {
			var result domain.DetectionResult
			if err := json.Unmarshal(payload, &result); err != nil {
				d.Logger.Debug("detection payload not alertable", logger.Error(err))
				return
			}
			d.Notifier.Enqueue(result)
		}
	}
}

// TrainModel forwards an opaque retraining payload and relays the result.
func TrainModel(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "could not read request body")
			return
		}
		if !json.Valid(body) {
			writeError(w, http.StatusBadRequest, "invalid_request", "body must be valid JSON")
			return
		}

		payload, err := d.Analytics.TrainModel(r.Context(), body)
		metrics.ObserveUpstream("ml_service", err)
		if err != nil {
			writeUpstreamError(w, d.Logger, "model training", err)
			return
		}
		writeRaw(w, http.StatusOK, payload)
	}
}
