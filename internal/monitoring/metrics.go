package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the booking notification service
type Metrics struct {
	registry *prometheus.Registry

	Dispatches             *prometheus.CounterVec
	NotificationsSent      *prometheus.CounterVec
	NotificationsFailed    *prometheus.CounterVec
	DispatchDuration       *prometheus.HistogramVec
	OperationDuration      *prometheus.HistogramVec
	DuplicateConfirmations *prometheus.CounterVec
	EventsPublished        *prometheus.CounterVec
	ActiveConnections      prometheus.Gauge
}

// NewMetrics creates the metrics on a dedicated registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	metrics := &Metrics{
		registry: registry,
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_dispatches_total",
				Help: "Total number of booking confirmation dispatches",
			},
			[]string{"variant", "result"},
		),
		NotificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_notifications_sent_total",
				Help: "Total number of successfully delivered booking notifications",
			},
			[]string{"channel", "role"},
		),
		NotificationsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_notifications_failed_total",
				Help: "Total number of failed booking notifications",
			},
			[]string{"channel", "role"},
		),
		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "booking_dispatch_duration_seconds",
				Help:    "Time taken to dispatch all notifications for a booking",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"variant"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "booking_operation_duration_seconds",
				Help:    "Time taken by API handlers and workers per operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DuplicateConfirmations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_duplicate_confirmations_total",
				Help: "Total number of confirmation events skipped because they were already dispatched",
			},
			[]string{"variant"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_events_published_total",
				Help: "Total number of booking-confirmed events accepted by the API",
			},
			[]string{"variant", "status"},
		),
		ActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "booking_active_connections",
				Help: "Number of active connections to the service",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.Dispatches,
		metrics.NotificationsSent,
		metrics.NotificationsFailed,
		metrics.DispatchDuration,
		metrics.OperationDuration,
		metrics.DuplicateConfirmations,
		metrics.EventsPublished,
		metrics.ActiveConnections,
	)

	return metrics
}

// RecordDispatch records a finished dispatch
func (m *Metrics) RecordDispatch(variant, result string, duration float64) {
	m.Dispatches.WithLabelValues(variant, result).Inc()
	m.DispatchDuration.WithLabelValues(variant).Observe(duration)
}

// RecordNotificationSent records a delivered notification
func (m *Metrics) RecordNotificationSent(channel, role string) {
	m.NotificationsSent.WithLabelValues(channel, role).Inc()
}

// RecordNotificationFailed records a failed notification
func (m *Metrics) RecordNotificationFailed(channel, role string) {
	m.NotificationsFailed.WithLabelValues(channel, role).Inc()
}

// RecordDuration records the duration of an operation
func (m *Metrics) RecordDuration(operation string, duration float64) {
	m.OperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordDuplicate records a skipped duplicate confirmation
func (m *Metrics) RecordDuplicate(variant string) {
	m.DuplicateConfirmations.WithLabelValues(variant).Inc()
}

// RecordEventPublished records an event accepted or rejected by the API
func (m *Metrics) RecordEventPublished(variant, status string) {
	m.EventsPublished.WithLabelValues(variant, status).Inc()
}

// IncrementActiveConnections increments active connections
func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

// DecrementActiveConnections decrements active connections
func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
