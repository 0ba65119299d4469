/*
Package metrics exposes Prometheus metrics for configuration runs.

All collectors are registered with the default registry in init().

# Architecture

	┌──────────────────── METRICS ──────────────────────────┐
	│                                                         │
	│  configure.Pipeline ──► pipeline runs / duration        │
	│                         entries rendered                │
	│  strategy.Dispatcher ─► strategy runs                   │
	│  RangerAdminStrategy ─► keytab downloads                │
	│                │                                        │
	│                ▼                                        │
	│       prometheus.DefaultRegisterer                      │
	│                │                                        │
	│                ▼                                        │
	│  WriteTextfile ──► node exporter textfile collector     │
	└─────────────────────────────────────────────────────────┘

# Metrics

Pipeline:
  - rolecfg_pipeline_runs_total{role,result}
  - rolecfg_pipeline_duration_seconds{role}
  - rolecfg_entries_rendered_total{role}

Strategies:
  - rolecfg_strategy_runs_total{role,result}
  - rolecfg_keytab_downloads_total{result}

# Usage

	timer := metrics.NewTimer()
	result := p.Configure(ctx, req)
	timer.ObserveDurationVec(metrics.PipelineDuration, req.ServiceRoleName)
	metrics.PipelineRunsTotal.WithLabelValues(
		req.ServiceRoleName, metrics.ResultLabel(result.Success)).Inc()

The agent CLI exits after one command, so instead of serving /metrics it
can write the registry to a node exporter textfile:

	rolecfg configure -f request.yaml --metrics-textfile /var/lib/node_exporter/rolecfg.prom

# Labels

  - role: the service role name of the command (ZkServer, RangerAdmin...)
  - result: "success" or "failure", from ResultLabel

# Monitoring

Useful queries:

	# failed configuration runs per role
	sum by (role) (rolecfg_pipeline_runs_total{result="failure"})

	# slowest roles to configure
	histogram_quantile(0.95, sum by (role, le) (rate(rolecfg_pipeline_duration_seconds_bucket[1h])))

	# keytab fetch problems
	rolecfg_keytab_downloads_total{result="failure"}

# Troubleshooting

Metrics file is missing:
  - The textfile is written after the command succeeds; a failed command
    returns before PersistentPostRunE runs
  - The directory must exist and be writable by the agent

# See Also

  - pkg/configure and pkg/strategy for where each metric is recorded
*/
package metrics
