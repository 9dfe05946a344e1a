package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iotdash/bridge/internal/httpserver/deps"
)

func init() { Register(registerMetrics) }

func registerMetrics(r chi.Router, _ deps.Deps) {
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}
