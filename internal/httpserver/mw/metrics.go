package mw

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iotdash/bridge/internal/metrics"
)

// Metrics records a request counter and latency histogram per route.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(ww, r)

			path := r.URL.Path
			// Prefer the route pattern so unknown paths don't explode
			// label cardinality.
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			status := ww.status
			if status == 0 {
				status = http.StatusOK
			}
			metrics.ObserveRequest(path, status, time.Since(start))
		})
	}
}
