package tablemetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestTableRegisteredUnregisteredTracksLiveCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TableRegistered()
	m.TableRegistered()
	require.Equal(t, float64(2), gaugeValue(t, m.tablesLive))

	m.TableUnregistered()
	require.Equal(t, float64(1), gaugeValue(t, m.tablesLive))
}

func TestGrowDeniedTotalIsLabeledByReason(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.GrowDenied("quota")
	m.GrowDenied("quota")
	m.GrowDenied("limit")

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() != "wasm_table_grow_denied_total" {
			continue
		}
		found = true
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "reason" && l.GetValue() == "quota" {
					require.Equal(t, float64(2), metric.GetCounter().GetValue())
				}
			}
		}
	}
	require.True(t, found, "wasm_table_grow_denied_total not registered")
}
