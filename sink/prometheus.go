// Package sink exports completed benchmark results to monitoring
// backends for continuous-benchmarking setups.
package sink

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"microprobe/probe"
)

// Prometheus records TimeResults as gauges keyed by benchmark name.
type Prometheus struct {
	registry *prometheus.Registry

	nsPerOp    *prometheus.GaugeVec
	operations *prometheus.GaugeVec
	elapsedMs  *prometheus.GaugeVec
	runs       *prometheus.CounterVec
}

// NewPrometheus creates a sink with its own registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{registry: prometheus.NewRegistry()}

	p.nsPerOp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "microprobe_ns_per_op",
			Help: "Calibrated nanoseconds per operation of the last run",
		},
		[]string{"benchmark"},
	)

	p.operations = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "microprobe_operations",
			Help: "Logical operations timed in the last run",
		},
		[]string{"benchmark"},
	)

	p.elapsedMs = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "microprobe_elapsed_milliseconds",
			Help: "Calibrated elapsed milliseconds of the last run",
		},
		[]string{"benchmark"},
	)

	p.runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microprobe_runs_total",
			Help: "Completed benchmark runs",
		},
		[]string{"benchmark"},
	)

	p.registry.MustRegister(p.nsPerOp, p.operations, p.elapsedMs, p.runs)
	return p
}

// Record publishes one completed result.
func (p *Prometheus) Record(r probe.TimeResult) {
	name := r.Name()
	if name == "" {
		name = "unnamed"
	}
	p.nsPerOp.WithLabelValues(name).Set(r.NanosecondsPerOp())
	p.operations.WithLabelValues(name).Set(float64(r.Operations()))
	p.elapsedMs.WithLabelValues(name).Set(r.ElapsedMilliseconds())
	p.runs.WithLabelValues(name).Inc()
}

// Handler returns the scrape endpoint for this sink's registry.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }
