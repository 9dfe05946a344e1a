package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/iotdash/bridge/internal/logger"
	"github.com/iotdash/bridge/internal/upstream"
)

// errorEnvelope is the uniform failure shape for every route.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRaw relays an upstream JSON payload byte-for-byte.
func writeRaw(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: code, Message: message})
}

// writeUpstreamError converts a classified upstream failure into a 500
// envelope. The envelope carries the sanitized message; the full error,
// which may name upstream hosts, goes to the log only.
func writeUpstreamError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	ue := upstream.AsError(op, err)
	log.Error("upstream call failed",
		logger.String("op", op),
		logger.Error(err))
	writeError(w, http.StatusInternalServerError, ue.Kind.String(), ue.Message())
}
