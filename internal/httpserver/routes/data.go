package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/iotdash/bridge/internal/httpserver/deps"
	"github.com/iotdash/bridge/internal/httpserver/handlers"
)

func init() { Register(registerData) }

func registerData(r chi.Router, d deps.Deps) {
	r.Get("/api/data", handlers.Data(d))
}
