package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LenFunc reports the current number of entries in a store.
type LenFunc func(ctx context.Context) (int, error)

// Collector reports the revocation store size at scrape time.
type Collector struct {
	backend string
	length  LenFunc
	timeout time.Duration
	desc    *prometheus.Desc
	errs    prometheus.Counter
}

// NewCollector creates a collector for a revocation backend.
func NewCollector(backend string, length LenFunc) *Collector {
	return &Collector{
		backend: backend,
		length:  length,
		timeout: 2 * time.Second,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "revocation", "entries"),
			"Unexpired revocation entries.",
			[]string{"backend"}, nil,
		),
		errs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revocation",
			Name:      "scrape_errors_total",
			Help:      "Failed attempts to read the revocation store size.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
	c.errs.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if n, err := c.length(ctx); err != nil {
		c.errs.Inc()
	} else {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), c.backend)
	}
	c.errs.Collect(ch)
}
