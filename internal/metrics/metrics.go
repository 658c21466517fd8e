package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry
// so the /metrics endpoint only exposes what this service registers.
type Metrics struct {
	registry *prometheus.Registry

	uploadsTotal      *prometheus.CounterVec
	processTotal      *prometheus.CounterVec
	processDuration   *prometheus.HistogramVec
	processInFlight   prometheus.Gauge
	statusEventsTotal *prometheus.CounterVec
	wsConnections     prometheus.Gauge
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintel",
			Subsystem: "http",
			Name:      "uploads_total",
			Help:      "Total document uploads by outcome.",
		},
		[]string{"service", "outcome"},
	)
	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintel",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docintel",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docintel",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	statusEventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docintel",
			Subsystem: "status",
			Name:      "events_total",
			Help:      "Total status events pushed to subscribers by status.",
		},
		[]string{"service", "status"},
	)
	wsConnections := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docintel",
			Subsystem: "status",
			Name:      "ws_connections",
			Help:      "Number of open websocket subscriber connections.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		uploadsTotal,
		processTotal,
		processDuration,
		processInFlight,
		statusEventsTotal,
		wsConnections,
	)

	return &Metrics{
		registry:          registry,
		uploadsTotal:      uploadsTotal,
		processTotal:      processTotal,
		processDuration:   processDuration,
		processInFlight:   processInFlight,
		statusEventsTotal: statusEventsTotal,
		wsConnections:     wsConnections,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordUpload(service, outcome string) {
	m.uploadsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *Metrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *Metrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *Metrics) RecordStatusEvent(service, status string) {
	m.statusEventsTotal.WithLabelValues(service, status).Inc()
}

func (m *Metrics) WsConnected() {
	m.wsConnections.Inc()
}

func (m *Metrics) WsDisconnected() {
	m.wsConnections.Dec()
}
