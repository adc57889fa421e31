package metrics

import (
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics считает запросы и время ответа по операциям API
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New регистрирует метрики в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equiploan",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by operation and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "equiploan",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)

		operation := "unknown"
		if op := ctx.Operation(); op != nil {
			operation = op.OperationID
		}
		m.requests.WithLabelValues(operation, strconv.Itoa(ctx.Status())).Inc()
		m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
