/*
Package shell runs the scripts and one-off commands a service role needs
on the node: start and status runners, setup scripts, and ad hoc shell
lines.

# Architecture

	┌─────────────────────── SHELL EXECUTOR ───────────────────────┐
	│                                                                │
	│  Exec(ctx, "line")            ExecWithStatus(ctx, dir, argv,   │
	│    /bin/sh -c "line"                         timeout, logger)  │
	│          │                              │                      │
	│          └──────────────┬───────────────┘                      │
	│                         ▼                                      │
	│               exec.CommandContext                              │
	│               - deadline from timeout                          │
	│               - WaitDelay for stuck pipes                      │
	│               - stdout/stderr captured                         │
	│               - lines mirrored to logger (optional)            │
	│                         │                                      │
	│                         ▼                                      │
	│   Result{Success, Stdout, Stderr, ExitCode, Duration, Err}     │
	└────────────────────────────────────────────────────────────────┘

# Result Semantics

Calls never panic and never return a bare error. A failed run yields
Success=false and an Err wrapping types.ErrProcess:

  - Non-zero exit: ExitCode carries the status
  - Timeout: the process is killed and Err says "timed out"
  - Start failure (missing binary, bad workDir): ExitCode is -1

# Usage

	exec := shell.NewLocalExecutor()

	res := exec.ExecWithStatus(ctx, pkgDir,
		[]string{filepath.Join(pkgDir, "setup.sh")},
		300*time.Second, &logger)
	if !res.Success {
		logger.Error().Err(res.Err).Int("exit_code", res.ExitCode).Msg("setup failed")
	}

Passing a logger streams each output line at info level while the script
runs, which is how long setup scripts stay visible in the agent log.

# Integration Points

  - pkg/configure: Ranger Admin setup.sh and set_globals.sh
  - pkg/strategy: start and status runners

# Troubleshooting

Script reports success but the role is down:
  - The status runner decides liveness after a start; check its exit code
    by hand from the package directory

Command hangs past its timeout:
  - Children that keep stdout open are cut off one second after the kill
    (WaitDelay); the Result is still a timeout failure

# See Also

  - pkg/strategy for how runners are resolved under the package directory
*/
package shell
