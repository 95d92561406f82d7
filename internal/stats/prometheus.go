package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromSink публикует локальные оптимумы как метрики Prometheus.
type PromSink struct {
	optima prometheus.Counter
	values prometheus.Histogram
}

// NewPromSink регистрирует метрики в reg. reg == nil — регистрация не выполняется.
func NewPromSink(reg prometheus.Registerer) *PromSink {
	factory := promauto.With(reg)
	return &PromSink{
		optima: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowshop_local_optima_total",
			Help: "Total stagnation points reported by robust detectors",
		}),
		values: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowshop_local_optimum_value",
			Help:    "Makespan values of reported local optima",
			Buckets: prometheus.ExponentialBuckets(100, 2, 12),
		}),
	}
}

func (p *PromSink) RecordLocalOptimumCount() {
	p.optima.Inc()
}

func (p *PromSink) RecordLocalOptimumValue(value float64) {
	p.values.Observe(value)
}
