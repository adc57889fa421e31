package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.requests.WithLabelValues("equipment-list", "200").Inc()
	m.requests.WithLabelValues("equipment-list", "200").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() == "equiploan_http_requests_total" {
			for _, metric := range f.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), total)
	assert.Panics(t, func() { New(reg) })
}
