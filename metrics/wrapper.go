package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Sizer is anything that can report how many entries it holds.
type Sizer interface {
	Len() int
}

// SignatureCacheCollector exposes the size of the selector cache at scrape
// time. The cache is never evicted, so this only ever grows within a process.
type SignatureCacheCollector struct {
	cache Sizer

	entries *prometheus.Desc
}

func NewSignatureCacheCollector(cache Sizer) *SignatureCacheCollector {
	return &SignatureCacheCollector{
		cache: cache,
		entries: prometheus.NewDesc(
			prometheus.BuildFQName(txdNamespace, "signature_cache", "entries"),
			"The number of selectors resolved and cached by this process",
			nil, nil,
		),
	}
}

func (c *SignatureCacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
}

func (c *SignatureCacheCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(c.cache.Len()))
}
