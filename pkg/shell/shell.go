package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/rs/zerolog"
)

// Result is the outcome of one command
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration

	// Err wraps types.ErrProcess when Success is false
	Err error
}

// Executor runs commands on the node
type Executor interface {
	// Exec runs a shell command line through /bin/sh -c
	Exec(ctx context.Context, command string) Result

	// ExecWithStatus runs argv in workDir, killing it after timeout. Output
	// lines are mirrored to logger when it is non-nil.
	ExecWithStatus(ctx context.Context, workDir string, argv []string, timeout time.Duration, logger *zerolog.Logger) Result
}

// LocalExecutor runs commands as child processes of the agent
type LocalExecutor struct {
	// Shell is the interpreter for Exec (default: /bin/sh)
	Shell string
}

// NewLocalExecutor creates a new local executor
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{Shell: "/bin/sh"}
}

// Exec runs command through the configured shell
func (e *LocalExecutor) Exec(ctx context.Context, command string) Result {
	sh := e.Shell
	if sh == "" {
		sh = "/bin/sh"
	}
	return run(ctx, exec.CommandContext(ctx, sh, "-c", command), nil)
}

// ExecWithStatus runs argv in workDir with a deadline
func (e *LocalExecutor) ExecWithStatus(ctx context.Context, workDir string, argv []string, timeout time.Duration, logger *zerolog.Logger) Result {
	if len(argv) == 0 {
		return Result{
			Success:  false,
			ExitCode: -1,
			Err:      fmt.Errorf("%w: no command specified", types.ErrProcess),
		}
	}

	execCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(execCtx, argv[0], argv[1:]...)
	cmd.Dir = workDir
	cmd.WaitDelay = time.Second
	return run(execCtx, cmd, logger)
}

func run(ctx context.Context, cmd *exec.Cmd, logger *zerolog.Logger) Result {
	start := time.Now()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	var outLog, errLog *lineWriter
	if logger != nil {
		outLog = &lineWriter{event: func(line string) { logger.Info().Str("stream", "stdout").Msg(line) }}
		errLog = &lineWriter{event: func(line string) { logger.Warn().Str("stream", "stderr").Msg(line) }}
		cmd.Stdout = &teeWriter{buf: &stdout, lines: outLog}
		cmd.Stderr = &teeWriter{buf: &stderr, lines: errLog}
	}

	err := cmd.Run()

	if outLog != nil {
		outLog.flush()
		errLog.flush()
	}

	result := Result{
		Success:  err == nil,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		return result
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.Err = fmt.Errorf("%w: %v timed out after %s", types.ErrProcess, cmd.Args, result.Duration.Round(time.Millisecond))
	case result.Stderr != "":
		result.Err = fmt.Errorf("%w: %v: %v: %s", types.ErrProcess, cmd.Args, err, strings.TrimSpace(result.Stderr))
	default:
		result.Err = fmt.Errorf("%w: %v: %v", types.ErrProcess, cmd.Args, err)
	}
	return result
}

// teeWriter captures output and mirrors it line by line to a logger
type teeWriter struct {
	buf   *bytes.Buffer
	lines *lineWriter
}

func (t *teeWriter) Write(p []byte) (int, error) {
	t.buf.Write(p)
	return t.lines.Write(p)
}

type lineWriter struct {
	pending []byte
	event   func(line string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.event(string(w.pending[:i]))
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if len(w.pending) > 0 {
		w.event(string(w.pending))
		w.pending = nil
	}
}
