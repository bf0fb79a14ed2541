// Package metrics exposes the store's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ValidationFailures *prometheus.CounterVec
	RentalsCreated     prometheus.Counter
	RentalsReturned    prometheus.Counter
	EventsPublished    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the counters, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the counters on reg, which is also what
// Handler serves.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vidly_validation_failures_total",
			Help: "Total number of rejected fields, by record and field",
		}, []string{"record", "field"}),
		RentalsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "vidly_rentals_created_total",
			Help: "Total number of rental rows created",
		}),
		RentalsReturned: f.NewCounter(prometheus.CounterOpts{
			Name: "vidly_rentals_returned_total",
			Help: "Total number of rentals returned",
		}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vidly_events_published_total",
			Help: "Total number of broker publish attempts, by result",
		}, []string{"result"}),
		gatherer: reg,
	}
}

func (m *Metrics) IncrementValidationFailure(record, field string) {
	m.ValidationFailures.WithLabelValues(record, field).Inc()
}

func (m *Metrics) AddRentalsCreated(n int) {
	m.RentalsCreated.Add(float64(n))
}

func (m *Metrics) IncrementRentalsReturned() {
	m.RentalsReturned.Inc()
}

func (m *Metrics) IncrementEventsPublished(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.EventsPublished.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
