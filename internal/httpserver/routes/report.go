package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/iotdash/bridge/internal/httpserver/deps"
	"github.com/iotdash/bridge/internal/httpserver/handlers"
)

func init() { Register(registerReport) }

func registerReport(r chi.Router, d deps.Deps) {
	r.Get("/api/report", handlers.Report(d))
	r.Get("/api/download-report", handlers.DownloadReport(d))
}
