package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "airsense_console"

// Call outcomes recorded per gateway operation.
const (
	outcomeOK              = "ok"
	outcomeHTTPError       = "http_error"
	outcomeTransportError  = "transport_error"
	outcomeUnauthenticated = "unauthenticated"
)

// Metrics counts gateway calls and their latency.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics builds the gateway collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Backend calls issued by the console, by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Round-trip time of backend calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	if outcome != outcomeUnauthenticated {
		m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
}
