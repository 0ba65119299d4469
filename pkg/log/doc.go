/*
Package log provides structured logging for rolecfg using zerolog.

The package wraps a single global zerolog.Logger. Components derive child
loggers from it instead of constructing their own, so every line written
during a configuration run carries the same context fields.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Context Loggers                   │          │
	│  │  - WithComponent("render")                  │          │
	│  │  - WithRole("ZOOKEEPER", "ZkServer")        │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │  JSON:    {"level":"info","service":...}    │          │
	│  │  Console: 10:30AM INF configure success     │          │
	│  └────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Usage

Initializing the logger:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Role loggers:

	logger := log.WithRole(req.ServiceName, req.ServiceRoleName)
	logger.Info().Str("file", group.Filename).Msg("rendering")
	logger.Error().Err(err).Msg("load app config template error")

Every pipeline run and role strategy logs through a WithRole logger, so the
service and role fields are present on each line without per-handler
logger names.

# Log Levels

  - Debug: per-entry transforms and skipped side effects
  - Info: directories created, files rendered, scripts run
  - Warn: best-effort steps that failed (symlinks, globals script)
  - Error: the error that turned a run into a failed result

# Log Output Examples

JSON Format:

	{"level":"info","service":"ZOOKEEPER","role":"ZkServer","time":"2024-10-13T10:30:00Z","message":"start to configure service role"}
	{"level":"info","component":"paths","path":"/data/zk","time":"2024-10-13T10:30:00Z","message":"create file path"}
	{"level":"error","service":"RANGER","role":"RangerAdmin","error":"ranger admin setup failed: process error: setup.sh exited with code 1","time":"2024-10-13T10:30:05Z","message":"ranger admin setup failed"}

Console Format:

	10:30AM INF start to configure service role role=ZkServer service=ZOOKEEPER
	10:30AM INF create file path component=paths path=/data/zk

# Integration Points

  - pkg/configure: WithRole logger per run, per-file child loggers
  - pkg/strategy: WithRole logger per command
  - pkg/paths, pkg/render: WithComponent loggers
  - pkg/shell: script output mirrored line by line
  - cmd/rolecfg: Init from --log-level / --log-json and the config file

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance
  - Initialized once by the CLI before any command runs
  - Usable before Init (JSON to stdout) so tests need no setup

Context Logger Pattern:
  - WithRole / WithComponent create child loggers with fixed fields
  - Child loggers are passed down instead of re-adding fields per call

# Best Practices

  - Use .Err(err) for errors rather than formatting them into the message
  - Keep messages stable and put variable data in fields
  - Log a failure once, where it becomes a failed Result

# See Also

  - github.com/rs/zerolog
*/
package log
