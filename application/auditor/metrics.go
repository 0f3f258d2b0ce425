package auditor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are the Prometheus collectors of one Auditor. They live in
// a private registry so that several Auditors can coexist in a process.
type metrics struct {
	registry *prometheus.Registry

	buildDuration  *prometheus.HistogramVec
	buildRecords   *prometheus.GaugeVec
	buildPeakBytes *prometheus.GaugeVec
	published      *prometheus.CounterVec
	checks         *prometheus.CounterVec
	integrity      *prometheus.GaugeVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		buildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recordseal",
			Name:      "build_duration_seconds",
			Help:      "Duration of hash tree builds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"dataset"}),
		buildRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "recordseal",
			Name:      "build_records",
			Help:      "Number of records in the last built tree.",
		}, []string{"dataset"}),
		buildPeakBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "recordseal",
			Name:      "build_peak_bytes",
			Help:      "Estimated peak working set of the last build.",
		}, []string{"dataset"}),
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recordseal",
			Name:      "snapshots_published_total",
			Help:      "Number of apex snapshots published.",
		}, []string{"dataset"}),
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recordseal",
			Name:      "integrity_checks_total",
			Help:      "Number of integrity checks by result.",
		}, []string{"dataset", "result"}),
		integrity: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "recordseal",
			Name:      "integrity_match",
			Help:      "1 if the last check matched the stored apex, 0 otherwise.",
		}, []string{"dataset"}),
	}
}

// Gatherer returns the registry holding the metrics of a.
func (a *Auditor) Gatherer() prometheus.Gatherer {
	return a.metrics.registry
}

// WriteMetrics writes the metrics of a to path in the Prometheus text
// format, for collection by a node exporter textfile collector.
func (a *Auditor) WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, a.metrics.registry)
}
