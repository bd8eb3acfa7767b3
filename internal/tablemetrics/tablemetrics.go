// Package tablemetrics implements internal/table.Metrics on top of
// prometheus client_golang (spec.md §4.10), grounded on the
// registry/collector style used throughout cilium/cilium's pkg/metrics.
package tablemetrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the prometheus-backed Metrics sink for one registry of
// tables. The zero value is not usable; construct with New.
type Metrics struct {
	tablesLive          prometheus.Gauge
	elementsCommitted   *prometheus.GaugeVec
	growDeniedTotal     *prometheus.CounterVec
}

// New registers and returns a Metrics bound to reg. Passing
// prometheus.DefaultRegisterer reproduces the common single-process case.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tablesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wasm_tables_live",
			Help: "Number of tables currently registered in the global registry.",
		}),
		elementsCommitted: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wasm_table_elements_committed",
			Help: "Committed element count of each live table, by table id.",
		}, []string{"table_id"}),
		growDeniedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wasm_table_grow_denied_total",
			Help: "Count of table.grow calls that failed, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.tablesLive, m.elementsCommitted, m.growDeniedTotal)
	return m
}

// TableRegistered implements table.Metrics.
func (m *Metrics) TableRegistered() { m.tablesLive.Inc() }

// TableUnregistered implements table.Metrics.
func (m *Metrics) TableUnregistered() { m.tablesLive.Dec() }

// ElementsCommitted implements table.Metrics.
func (m *Metrics) ElementsCommitted(tableID uint64, elements uint64) {
	m.elementsCommitted.WithLabelValues(strconv.FormatUint(tableID, 10)).Set(float64(elements))
}

// GrowDenied implements table.Metrics.
func (m *Metrics) GrowDenied(reason string) {
	m.growDeniedTotal.WithLabelValues(reason).Inc()
}
