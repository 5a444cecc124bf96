package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "confstore_client"

// Outcome labels for RecordRequest.
const (
	OutcomeOK             = "ok"
	OutcomeNotFound       = "not_found"
	OutcomeRemote         = "remote_error"
	OutcomeTimeout        = "timeout"
	OutcomeTransport      = "transport_error"
	OutcomeResolution     = "resolution_error"
	OutcomeSchemaMismatch = "schema_mismatch"
	OutcomeInvalid        = "invalid_argument"
	OutcomeError          = "error"
)

// Registry holds the client metrics and the registry they are registered in.
type Registry struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all client metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Config store requests by command and outcome.",
		}, []string{"command", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from encoding a request to decoding its response.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		}, []string{"command"}),
	}

	r.registry.MustRegister(r.RequestsTotal, r.RequestDuration)
	return r
}

// RecordRequest counts one finished request.
func (r *Registry) RecordRequest(command, outcome string) {
	r.RequestsTotal.WithLabelValues(command, outcome).Inc()
}

// ObserveRequestDuration records the duration of one request.
func (r *Registry) ObserveRequestDuration(command string, d time.Duration) {
	r.RequestDuration.WithLabelValues(command).Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
