package admin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// gaugePair holds the two domain-specific gauges refreshed on every
// /status call, alongside the toolkit's generic HTTP request metrics.
type gaugePair struct {
	defined *prometheus.GaugeVec
	applied *prometheus.GaugeVec
}

// newGaugePair registers the pair against reg rather than the global
// DefaultRegisterer, so that constructing more than one Service in the
// same process (as every test in this package does) never panics on
// duplicate collector registration.
func newGaugePair(reg prometheus.Registerer) *gaugePair {
	factory := promauto.With(reg)
	return &gaugePair{
		defined: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "surreal_migrate_defined_migrations",
			Help: "Number of migration scripts found on disk.",
		}, []string{"kind"}),
		applied: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "surreal_migrate_applied_migrations",
			Help: "Number of migration executions recorded in the ledger.",
		}, []string{}),
	}
}

func (g *gaugePair) setDefined(kind string, n int) {
	g.defined.WithLabelValues(kind).Set(float64(n))
}

func (g *gaugePair) setApplied(n int) {
	g.applied.WithLabelValues().Set(float64(n))
}
