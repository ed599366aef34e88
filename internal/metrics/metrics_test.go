package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQueryRecordsSuccessAndFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQuery("MATCH", 0.01, 3, nil)
	m.ObserveQuery("CREATE", 0.02, 0, errors.New("boom"))

	okCount := counterValue(t, m.QueriesTotal.WithLabelValues("ok"))
	errCount := counterValue(t, m.QueriesTotal.WithLabelValues("error"))
	assert.Equal(t, float64(1), okCount)
	assert.Equal(t, float64(1), errCount)
}

func TestObserveQuerySkipsRowsHistogramOnError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQuery("MATCH", 0.01, 5, nil)
	m.ObserveQuery("MATCH", 0.01, 0, errors.New("boom"))

	var metric dto.Metric
	require.NoError(t, m.RowsReturned.Write(&metric))
	assert.Equal(t, uint64(1), metric.GetHistogram().GetSampleCount())
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, c.Write(&metric))
	return metric.GetCounter().GetValue()
}
