package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EventMetrics counts domain events crossing the broker boundary. Methods are
// nil-safe so components can run without metrics in tests.
type EventMetrics struct {
	published       *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	consumed        *prometheus.CounterVec
}

// NewEventMetrics registers the event counters on the default registry.
// Call once per process.
func NewEventMetrics() *EventMetrics {
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_service",
		Name:      "events_published_total",
		Help:      "Total number of domain events handed to the broker.",
	}, []string{"topic"})
	publishFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_service",
		Name:      "event_publish_failures_total",
		Help:      "Total number of publish attempts the broker rejected.",
	}, []string{"topic"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_service",
		Name:      "events_consumed_total",
		Help:      "Total number of inbound events by handling result.",
	}, []string{"topic", "result"})

	prometheus.MustRegister(published, publishFailures, consumed)
	return &EventMetrics{
		published:       published,
		publishFailures: publishFailures,
		consumed:        consumed,
	}
}

// Published counts a successful publish to topic.
func (m *EventMetrics) Published(topic string) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(topic).Inc()
}

// PublishFailed counts a rejected publish to topic.
func (m *EventMetrics) PublishFailed(topic string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(topic).Inc()
}

// Consumed counts an inbound event with its handling result
// (ok, decode_error, handler_error).
func (m *EventMetrics) Consumed(topic, result string) {
	if m == nil {
		return
	}
	m.consumed.WithLabelValues(topic, result).Inc()
}

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
