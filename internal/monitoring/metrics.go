package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the admin service.
type Metrics struct {
	SiteMutationsTotal *prometheus.CounterVec
	SelectorTestsTotal *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		SiteMutationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "parser_admin_site_mutations_total",
			Help: "The total number of site config mutations",
		}, []string{"operation"}), // 'create', 'update', 'delete', 'toggle', 'import'
		SelectorTestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "parser_admin_selector_tests_total",
			Help: "The total number of selector test runs",
		}, []string{"outcome"}), // 'ok', 'fetch_failed'
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "parser_admin_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g., 'validation', 'db'
	}
}

func (m *Metrics) IncSiteMutations(operation string) {
	m.SiteMutationsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncSelectorTests(outcome string) {
	m.SelectorTestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
