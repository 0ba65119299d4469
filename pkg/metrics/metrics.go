package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Pipeline metrics
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolecfg_pipeline_runs_total",
			Help: "Total number of configuration runs by role and result",
		},
		[]string{"role", "result"},
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rolecfg_pipeline_duration_seconds",
			Help:    "Configuration run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"role"},
	)

	EntriesRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolecfg_entries_rendered_total",
			Help: "Total number of configuration entries handed to the renderer",
		},
		[]string{"role"},
	)

	// Strategy metrics
	StrategyRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolecfg_strategy_runs_total",
			Help: "Total number of role commands by role and result",
		},
		[]string{"role", "result"},
	)

	KeytabDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rolecfg_keytab_downloads_total",
			Help: "Total number of keytab downloads by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(EntriesRendered)
	prometheus.MustRegister(StrategyRunsTotal)
	prometheus.MustRegister(KeytabDownloadsTotal)
}

// ResultLabel maps a success flag to the "result" label value
func ResultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// WriteTextfile dumps the default registry for the node exporter textfile
// collector. One-shot CLI runs use this instead of serving /metrics.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
