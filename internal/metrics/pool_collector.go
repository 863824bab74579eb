package metrics

import (
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolCollector struct {
	pool *pgxpool.Pool

	connsDesc        *prometheus.Desc
	acquireCountDesc *prometheus.Desc
	emptyAcquireDesc *prometheus.Desc
}

func newPoolCollector(pool *pgxpool.Pool) *poolCollector {
	return &poolCollector{
		pool: pool,
		connsDesc: prometheus.NewDesc(
			"oil_db_pool_connections",
			"Current database pool connections by state.",
			[]string{"state"},
			nil,
		),
		acquireCountDesc: prometheus.NewDesc(
			"oil_db_pool_acquires_total",
			"Cumulative number of successful connection acquires from the pool.",
			nil,
			nil,
		),
		emptyAcquireDesc: prometheus.NewDesc(
			"oil_db_pool_empty_acquires_total",
			"Cumulative number of acquires that waited for a free connection.",
			nil,
			nil,
		),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.connsDesc
	ch <- c.acquireCountDesc
	ch <- c.emptyAcquireDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()

	emitGauge(ch, c.connsDesc, float64(stat.AcquiredConns()), "acquired")
	emitGauge(ch, c.connsDesc, float64(stat.IdleConns()), "idle")
	emitGauge(ch, c.connsDesc, float64(stat.ConstructingConns()), "constructing")
	emitGauge(ch, c.connsDesc, float64(stat.MaxConns()), "max")

	if m, err := prometheus.NewConstMetric(c.acquireCountDesc, prometheus.CounterValue, float64(stat.AcquireCount())); err == nil {
		ch <- m
	}
	if m, err := prometheus.NewConstMetric(c.emptyAcquireDesc, prometheus.CounterValue, float64(stat.EmptyAcquireCount())); err == nil {
		ch <- m
	}
}

func emitGauge(ch chan<- prometheus.Metric, desc *prometheus.Desc, v float64, labelValues ...string) {
	m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, v, labelValues...)
	if err != nil {
		return
	}
	ch <- m
}

var registerPoolCollectorOnce sync.Once

// RegisterPoolCollector exposes pool statistics on the default registry.
// Safe to call more than once; only the first pool wins.
func RegisterPoolCollector(pool *pgxpool.Pool) {
	registerPoolCollectorOnce.Do(func() {
		prometheus.MustRegister(newPoolCollector(pool))
	})
}
