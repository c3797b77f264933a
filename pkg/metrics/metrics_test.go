package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersWithNonNilRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.True(t, m.registered)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestNewToleratesNilRegistry(t *testing.T) {
	m := New(nil)
	require.False(t, m.registered)
	m.ObserveRequest("ls", true, 0.01)
}

func TestObserveRequestIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("create", true, 0.02)
	m.ObserveRequest("create", false, 0.05)

	require.Equal(t, float64(1), counterValue(t, m.requestTotal.WithLabelValues("create", OutcomeSuccess)))
	require.Equal(t, float64(1), counterValue(t, m.requestTotal.WithLabelValues("create", OutcomeError)))
}

func TestSetLaneQueueDepth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetLaneQueueDepth("serialization", 3)

	g := &dto.Metric{}
	require.NoError(t, m.laneQueueDepth.WithLabelValues("serialization").Write(g))
	require.Equal(t, float64(3), g.GetGauge().GetValue())
}

func TestObserveReconcileTick(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveReconcileTick(true)
	m.ObserveReconcileTick(false)
	m.ObserveReconcileTick(false)

	require.Equal(t, float64(1), counterValue(t, m.reconcileTotal.WithLabelValues(OutcomeSuccess)))
	require.Equal(t, float64(2), counterValue(t, m.reconcileTotal.WithLabelValues(OutcomeError)))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}
