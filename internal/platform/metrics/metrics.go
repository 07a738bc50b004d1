// Package metrics expone métricas Prometheus del motor de pedigree/genética.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa los collectors del servicio. Un *Metrics nil es válido:
// todos los métodos son no-op, así dominio y tests no dependen de un registry.
type Metrics struct {
	AnalysesTotal          *prometheus.CounterVec
	EstimatesTotal         prometheus.Counter
	IntegrityWarningsTotal prometheus.Counter
	CacheLookupsTotal      *prometheus.CounterVec
	COIPercentage          prometheus.Histogram
	AnalysisDuration       prometheus.Histogram
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breeding_analyses_total",
			Help: "Total number of breeding analyses computed, by kind and risk level",
		}, []string{"kind", "risk_level"}),
		EstimatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "breeding_analyses_estimated_total",
			Help: "Total number of analyses flagged as estimates because of incomplete data",
		}),
		IntegrityWarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pedigree_integrity_warnings_total",
			Help: "Total number of pedigree data-integrity warnings (cycles, dangling parent links)",
		}),
		CacheLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "breeding_coi_cache_lookups_total",
			Help: "COI report cache lookups by result",
		}, []string{"result"}),
		COIPercentage: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "breeding_coi_percentage",
			Help:    "Distribution of computed COI percentages",
			Buckets: []float64{0.5, 1, 2.5, 5, 7.5, 10, 12.5, 15, 20, 25, 35, 50},
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "breeding_analysis_duration_seconds",
			Help:    "Latency of breeding analyses in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}

	collectors := []prometheus.Collector{
		m.AnalysesTotal,
		m.EstimatesTotal,
		m.IntegrityWarningsTotal,
		m.CacheLookupsTotal,
		m.COIPercentage,
		m.AnalysisDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register breeding metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) ObserveAnalysis(kind, riskLevel string, coiPercentage float64, estimate bool, took time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(kind, riskLevel).Inc()
	m.COIPercentage.Observe(coiPercentage)
	m.AnalysisDuration.Observe(took.Seconds())
	if estimate {
		m.EstimatesTotal.Inc()
	}
}

func (m *Metrics) IntegrityWarnings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.IntegrityWarningsTotal.Add(float64(n))
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookupsTotal.WithLabelValues("miss").Inc()
}
