package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Probe outcomes recorded by ObserveProbe.
const (
	ProbeFound   = "found"
	ProbeMissing = "missing"
	ProbeError   = "error"
)

// Reports collects report-generation and schema-probing metrics.
// A nil *Reports is valid and records nothing.
type Reports struct {
	generated *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	probes    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Reports {
	r := &Reports{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gestobra",
			Name:      "reports_generated_total",
			Help:      "Reports generated, by kind, format and outcome.",
		}, []string{"kind", "format", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gestobra",
			Name:      "report_generation_seconds",
			Help:      "Time spent aggregating and rendering a report.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "format"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gestobra",
			Name:      "table_probes_total",
			Help:      "Table-existence probe round-trips, by table and outcome.",
		}, []string{"table", "outcome"}),
	}

	reg.MustRegister(r.generated, r.duration, r.probes)

	return r
}

func (r *Reports) ObserveReport(kind, format string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	r.generated.WithLabelValues(kind, format, outcome).Inc()
	r.duration.WithLabelValues(kind, format).Observe(elapsed.Seconds())
}

func (r *Reports) ObserveProbe(table, outcome string) {
	if r == nil {
		return
	}

	r.probes.WithLabelValues(table, outcome).Inc()
}
