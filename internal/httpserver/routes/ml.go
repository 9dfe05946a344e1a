package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/iotdash/bridge/internal/httpserver/deps"
	"github.com/iotdash/bridge/internal/httpserver/handlers"
)

func init() { Register(registerML) }

func registerML(r chi.Router, d deps.Deps) {
	r.Get("/api/ml/health", handlers.MLHealth(d))
	r.Post("/api/ml/detect-anomalies", handlers.DetectAnomalies(d))
	r.Post("/api/ml/train-model", handlers.TrainModel(d))
}
