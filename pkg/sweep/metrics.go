package sweep

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments sweep progress for the optional /metrics
// endpoint.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	RunFailuresTotal *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	PlannedRuns      prometheus.Gauge
}

// NewMetrics registers sweep metrics on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gpsweep_runs_total",
			Help: "Completed GP runs.",
		}, []string{"problem"}),
		RunFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gpsweep_run_failures_total",
			Help: "GP runs that failed or produced unparseable output.",
		}, []string{"problem"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gpsweep_run_duration_seconds",
			Help:    "Wall-clock duration of one GP run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		PlannedRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gpsweep_planned_runs",
			Help: "Total runs the sweep will perform.",
		}),
	}
	reg.MustRegister(m.RunsTotal, m.RunFailuresTotal, m.RunDuration, m.PlannedRuns)
	return m
}
