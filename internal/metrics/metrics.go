package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interntrack"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	actions       *prometheus.CounterVec
	cacheFetches  *prometheus.CounterVec
	invalidations prometheus.Counter
	intake        *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New creates and registers the collectors, plus Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Internship actions by action and outcome.",
		}, []string{"action", "outcome"}),
		cacheFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_fetches_total",
			Help:      "Listing cache fetches from the store by reason.",
		}, []string{"reason"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Listing cache invalidations.",
		}),
		intake: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_postings_total",
			Help:      "Scraped postings received by result.",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Telegram notifications by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.actions,
		m.cacheFetches,
		m.invalidations,
		m.intake,
		m.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CacheFetched counts a listing fetch.
func (m *Metrics) CacheFetched(reason string) {
	m.cacheFetches.WithLabelValues(reason).Inc()
}

// CacheInvalidated counts a listing invalidation.
func (m *Metrics) CacheInvalidated() {
	m.invalidations.Inc()
}

// ActionCompleted counts an orchestrator action.
func (m *Metrics) ActionCompleted(action, outcome string) {
	m.actions.WithLabelValues(action, outcome).Inc()
}

// PostingsReceived counts intake results.
func (m *Metrics) PostingsReceived(created, duplicates int) {
	m.intake.WithLabelValues("created").Add(float64(created))
	m.intake.WithLabelValues("duplicate").Add(float64(duplicates))
}

// NotificationSent counts a notification attempt.
func (m *Metrics) NotificationSent(err error) {
	if err != nil {
		m.notifications.WithLabelValues("failed").Inc()
		return
	}
	m.notifications.WithLabelValues("sent").Inc()
}
