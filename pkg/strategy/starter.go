package strategy

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cuemby/rolecfg/pkg/shell"
	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultRunnerTimeout applies to runners that set no timeout
	DefaultRunnerTimeout = 60 * time.Second

	// DefaultStatusAttempts is how many status checks follow a start
	DefaultStatusAttempts = 10

	// DefaultStatusInterval is the pause before each status check
	DefaultStatusInterval = 3 * time.Second
)

// Starter brings a configured role up
type Starter interface {
	Start(ctx context.Context, cmd *types.ServiceRoleCommand, logger zerolog.Logger) types.Result
}

// ShellStarter starts roles with the start and status scripts shipped in
// their package directory
type ShellStarter struct {
	exec        shell.Executor
	installRoot string
	attempts    int
	interval    time.Duration
}

// NewShellStarter creates a starter resolving runners under installRoot
func NewShellStarter(exec shell.Executor, installRoot string) *ShellStarter {
	return &ShellStarter{
		exec:        exec,
		installRoot: installRoot,
		attempts:    DefaultStatusAttempts,
		interval:    DefaultStatusInterval,
	}
}

// WithPolling overrides the status polling after a start. Zero attempts
// trusts the start runner's exit status.
func (s *ShellStarter) WithPolling(attempts int, interval time.Duration) *ShellStarter {
	s.attempts = attempts
	s.interval = interval
	return s
}

// Start checks the status runner first and only runs the start runner when
// the role is not already up. After a start the status runner is polled
// until it succeeds or the attempts run out.
func (s *ShellStarter) Start(ctx context.Context, cmd *types.ServiceRoleCommand, logger zerolog.Logger) types.Result {
	pkgDir := filepath.Join(s.installRoot, cmd.DecompressPackageName)
	hasStatus := cmd.StatusRunner.Program != ""

	if hasStatus {
		status := s.run(ctx, pkgDir, cmd.StatusRunner, cmd.RunAs, nil)
		if status.Success {
			logger.Info().Msg("service role is already running")
			return types.Result{Success: true, Output: status.Stdout}
		}
	}

	if cmd.StartRunner.Program == "" {
		return types.Failure(fmt.Errorf("%w: no start runner for role %s", types.ErrProcess, cmd.ServiceRoleName))
	}

	logger.Info().Str("program", cmd.StartRunner.Program).Msg("start service role")
	start := s.run(ctx, pkgDir, cmd.StartRunner, cmd.RunAs, &logger)
	if !start.Success {
		return failed(start, "start")
	}
	// zero attempts turns post-start polling off
	if !hasStatus || s.attempts <= 0 {
		return types.Result{Success: true, Output: start.Stdout}
	}

	for i := 0; i < s.attempts; i++ {
		select {
		case <-ctx.Done():
			return types.Failure(fmt.Errorf("%w: %v", types.ErrProcess, ctx.Err()))
		case <-time.After(s.interval):
		}

		status := s.run(ctx, pkgDir, cmd.StatusRunner, cmd.RunAs, nil)
		if status.Success {
			logger.Info().Int("checks", i+1).Msg("service role is running")
			return types.Result{Success: true, Output: start.Stdout}
		}
		logger.Debug().Int("check", i+1).Msg("service role not running yet")
	}

	return types.Result{
		Success: false,
		Output:  start.Stdout,
		Error:   fmt.Sprintf("%v: service role did not report running after %d status checks", types.ErrProcess, s.attempts),
	}
}

func (s *ShellStarter) run(ctx context.Context, pkgDir string, r types.Runner, runAs *types.RunAs, logger *zerolog.Logger) shell.Result {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultRunnerTimeout
	}
	return s.exec.ExecWithStatus(ctx, pkgDir, runnerArgv(pkgDir, r, runAs), timeout, logger)
}

// runnerArgv resolves a relative program under pkgDir and switches user
// through sudo when runAs names one
func runnerArgv(pkgDir string, r types.Runner, runAs *types.RunAs) []string {
	program := r.Program
	if !filepath.IsAbs(program) {
		program = filepath.Join(pkgDir, program)
	}

	var argv []string
	if runAs != nil && runAs.User != "" {
		argv = append(argv, "sudo", "-u", runAs.User)
	}
	argv = append(argv, program)
	return append(argv, r.Args...)
}

func failed(res shell.Result, step string) types.Result {
	err := res.Err
	if err == nil {
		err = fmt.Errorf("%w: exit code %d", types.ErrProcess, res.ExitCode)
	}
	return types.Result{
		Success: false,
		Output:  res.Stdout,
		Error:   fmt.Sprintf("%s failed: %v", step, err),
	}
}
