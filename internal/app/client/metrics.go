package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const metricsNamespace = "equiploan"

// Metrics счетчики синхронизации и отправок
type Metrics struct {
	registry     *prometheus.Registry
	syncs        *prometheus.CounterVec
	syncDuration prometheus.Histogram
	fetches      *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	activeLoans  prometheus.Gauge
	pending      prometheus.Gauge
}

// NewMetrics регистрирует метрики в собственном реестре (без глобального состояния).
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "syncs_total",
			Help:      "Циклы синхронизации по результату.",
		}, []string{"result"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sync_duration_seconds",
			Help:      "Длительность цикла синхронизации.",
			Buckets:   prometheus.DefBuckets,
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetch_attempts_total",
			Help:      "Попытки загрузки источников.",
		}, []string{"source", "result"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "submissions_total",
			Help:      "Отправки событий по типу и результату.",
		}, []string{"type", "result"}),
		activeLoans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_loans",
			Help:      "Единицы оборудования на руках.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pending_events",
			Help:      "Локальные события, еще не подтвержденные таблицей.",
		}),
	}

	m.registry.MustRegister(
		m.syncs,
		m.syncDuration,
		m.fetches,
		m.submissions,
		m.activeLoans,
		m.pending,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry реестр для экспорта через promhttp
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) observeSync(result string, seconds float64) {
	m.syncs.WithLabelValues(result).Inc()
	if seconds > 0 {
		m.syncDuration.Observe(seconds)
	}
}

func (m *Metrics) observeFetch(source string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.fetches.WithLabelValues(source, result).Inc()
}

func (m *Metrics) observeSubmission(typ, result string) {
	m.submissions.WithLabelValues(typ, result).Inc()
}

func (m *Metrics) setGauges(activeLoans, pending int) {
	m.activeLoans.Set(float64(activeLoans))
	m.pending.Set(float64(pending))
}
