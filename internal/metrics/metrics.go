package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels upstream calls that returned a payload.
	OutcomeSuccess = "success"
	// OutcomeError labels upstream calls that failed for any reason.
	OutcomeError = "error"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "http_requests_total",
			Help:      "Total inbound HTTP requests, partitioned by path and status class.",
		},
		[]string{"path", "status"},
	)

	requestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bridge",
			Name:      "http_request_seconds",
			Help:      "Inbound request latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"path"},
	)

	upstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bridge",
			Name:      "upstream_calls_total",
			Help:      "Outbound upstream calls, partitioned by target and outcome.",
		},
		[]string{"target", "outcome"},
	)
)

// Register attaches bridge collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		requestsTotal,
		requestDurationSeconds,
		upstreamCallsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRequest records one served request.
func ObserveRequest(path string, status int, duration time.Duration) {
	requestsTotal.WithLabelValues(path, statusClass(status)).Inc()
	if duration < 0 {
		duration = 0
	}
	requestDurationSeconds.WithLabelValues(path).Observe(duration.Seconds())
}

// ObserveUpstream records one outbound call against the named target
// ("thingspeak" or "ml_service").
func ObserveUpstream(target string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	upstreamCallsTotal.WithLabelValues(target, outcome).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
