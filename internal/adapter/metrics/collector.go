// Package metrics exposes transfer scheduling outcomes to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric names.
const (
	MetricTransfersScheduledTotal = "schedbank_transfers_scheduled_total"
	MetricTransfersFailedTotal    = "schedbank_transfers_failed_total"
	MetricFeeCalculationSeconds   = "schedbank_fee_calculation_duration_seconds"
)

// feeBuckets covers a pure in-memory computation, from 1µs to 10ms.
var feeBuckets = []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.01}

// Collector records scheduling outcomes on its own registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Collector struct {
	registry *prometheus.Registry

	scheduled      prometheus.Counter
	failed         *prometheus.CounterVec
	feeCalculation prometheus.Histogram
}

// NewCollector creates a collector with a fresh registry that also carries the
// Go runtime and process collectors.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		scheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricTransfersScheduledTotal,
			Help: "Total number of transfers scheduled successfully.",
		}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricTransfersFailedTotal,
			Help: "Total number of transfer scheduling attempts that failed, by reason.",
		}, []string{"reason"}),
		feeCalculation: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricFeeCalculationSeconds,
			Help:    "Time spent computing transfer fees.",
			Buckets: feeBuckets,
		}),
	}

	registry.MustRegister(
		c.scheduled,
		c.failed,
		c.feeCalculation,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// TransferScheduled counts a successfully scheduled transfer
func (c *Collector) TransferScheduled() {
	c.scheduled.Inc()
}

// TransferFailed counts a failed scheduling attempt
func (c *Collector) TransferFailed(reason string) {
	c.failed.WithLabelValues(reason).Inc()
}

// ObserveFeeCalculation records how long a fee computation took
func (c *Collector) ObserveFeeCalculation(elapsed time.Duration) {
	c.feeCalculation.Observe(elapsed.Seconds())
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
