// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "topmarketingjobs"

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeStale = "stale"
)

// Metrics owns a private registry. All methods are safe on a nil receiver so
// components can run without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	searchRequests    *prometheus.CounterVec
	searchDuration    *prometheus.HistogramVec
	webhookDeliveries *prometheus.CounterVec
	alertsSent        prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by entity and outcome.",
		}, []string{"entity", "outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time spent answering a search, query and formatting included.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity"}),
		webhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Zapier webhook deliveries by outcome.",
		}, []string{"outcome"}),
		alertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_alerts_sent_total",
			Help:      "Jobs sent to Telegram users by the alert scheduler.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.searchRequests,
		m.searchDuration,
		m.webhookDeliveries,
		m.alertsSent,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSearch(entity, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(entity, outcome).Inc()
	m.searchDuration.WithLabelValues(entity).Observe(took.Seconds())
}

func (m *Metrics) WebhookDelivered(outcome string) {
	if m == nil {
		return
	}
	m.webhookDeliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AlertsSent(n int) {
	if m == nil {
		return
	}
	m.alertsSent.Add(float64(n))
}
