package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
)

type collector struct {
	ledger *Ledger
	desc   *prometheus.Desc
}

// Collector exposes the ledger as the Prometheus counter
// pipesim_link_bytes_total, labeled by link.
func (l *Ledger) Collector() prometheus.Collector {
	return &collector{
		ledger: l,
		desc: prometheus.NewDesc(
			"pipesim_link_bytes_total",
			"Bytes released through a tracked link.",
			[]string{"link"},
			nil,
		),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, e := range c.ledger.Snapshot() {
		ch <- prometheus.MustNewConstMetric(
			c.desc, prometheus.CounterValue, float64(e.Bytes), e.Link)
	}
}
