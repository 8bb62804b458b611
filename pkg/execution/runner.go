// Package execution runs external commands with bounded wall-clock time,
// capturing their merged stdout/stderr stream line-by-line.
package execution

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"armada/pkg/logger"
	"armada/pkg/logsink"
)

// ErrEmptyCommand is returned when the command splits to zero tokens.
var ErrEmptyCommand = errors.New("empty command")

// Runner executes commands. The sink is only required when a RunConfig asks
// for per-line log forwarding.
type Runner struct {
	Sink *logsink.Sink
}

// NewRunner returns a Runner forwarding log lines through sink. sink may be
// nil for callers that never set RunConfig.Log.
func NewRunner(sink *logsink.Sink) *Runner {
	return &Runner{Sink: sink}
}

// Run executes cfg.Command and returns its exit code plus the captured
// merged output. Normal completion, timeout kills and spawn failures all
// resolve into the Result; the error return is reserved for invalid input
// (bad log component/level, unparseable command), which fails before any
// process is spawned.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (Result, error) {
	opts, err := r.validateLogConfig(cfg)
	if err != nil {
		return Result{}, err
	}

	argv, err := shellwords.Parse(cfg.Command)
	if err != nil {
		return Result{}, fmt.Errorf("failed to split command %q: %w", cfg.Command, err)
	}
	if len(argv) == 0 {
		return Result{}, ErrEmptyCommand
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if cfg.Env != nil {
		env := make([]string, 0, len(cfg.Env))
		for k, v := range cfg.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	// One pipe shared by both channels: the child's stdout and stderr
	// interleave in the order the OS delivers them.
	pr, pw, err := os.Pipe()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return r.spawnFailure(ctx, cfg, opts, err), nil
	}
	// The child holds the write end now; closing ours lets the read loop see
	// EOF when the child exits.
	pw.Close()

	watchdog := NewWatchdog()
	if cfg.TimeoutSeconds > 0 {
		if err := watchdog.Arm(time.Duration(cfg.TimeoutSeconds)*time.Second, cmd.Process); err != nil {
			// Unreachable for a fresh watchdog; surfaced for completeness.
			logger.Error("failed to arm watchdog", zap.Error(err))
		}
	}

	var output []string
	reader := bufio.NewReader(pr)
	for {
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			// Log emission happens-before buffering so both observe the
			// same content in the same order.
			if cfg.Log != nil {
				if logErr := r.Sink.Log(ctx, cfg.Log.ServiceName, cfg.Log.Component, line, opts); logErr != nil {
					logger.Warn("failed to forward output line",
						zap.String("component", cfg.Log.Component), zap.Error(logErr))
				}
			}
			output = append(output, line)
		}
		if readErr != nil {
			break
		}
	}
	pr.Close()

	exitCode := 0
	if waitErr := cmd.Wait(); waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitCodeOf(exitErr)
		} else {
			exitCode = 1
		}
	}

	watchdog.Cancel()

	timedOut := watchdog.Fired() && exitCode == KillSentinel
	if exitCode == KillSentinel && cfg.TimeoutSeconds > 0 {
		output = append(output, fmt.Sprintf("Command '%s' timed out (longer than %ds)",
			cfg.Command, cfg.TimeoutSeconds))
	}

	return Result{
		ExitCode: exitCode,
		Output:   strings.Join(output, "\n"),
		TimedOut: timedOut,
	}, nil
}

// validateLogConfig fails fast on unknown components or levels, before any
// process work begins, and returns the resolved sink options.
func (r *Runner) validateLogConfig(cfg RunConfig) (logsink.Options, error) {
	if cfg.Log == nil {
		return logsink.Options{}, nil
	}
	if r.Sink == nil {
		return logsink.Options{}, errors.New("log forwarding requested but runner has no sink")
	}
	if err := logsink.ValidateComponent(cfg.Log.Component); err != nil {
		return logsink.Options{}, err
	}
	level := cfg.Log.Level
	if level == "" {
		level = logsink.DefaultLevel
	}
	if err := logsink.ValidateLevel(level); err != nil {
		return logsink.Options{}, err
	}
	return logsink.Options{
		Level:    level,
		Cluster:  cfg.Log.Cluster,
		Instance: cfg.Log.Instance,
	}, nil
}

// spawnFailure maps an unstartable process (missing executable, permission
// denied, ...) into the uniform Result shape: exit code = OS errno, output =
// the error description, forwarded through the sink when logging was on.
func (r *Runner) spawnFailure(ctx context.Context, cfg RunConfig, opts logsink.Options, err error) Result {
	code, desc := spawnErrno(err)
	if cfg.Log != nil {
		if logErr := r.Sink.Log(ctx, cfg.Log.ServiceName, cfg.Log.Component, desc, opts); logErr != nil {
			logger.Warn("failed to forward spawn failure", zap.Error(logErr))
		}
	}
	return Result{ExitCode: code, Output: desc}
}

// spawnErrno extracts the OS error number and description from a spawn
// failure. PATH lookup misses map to ENOENT.
func spawnErrno(err error) (int, string) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno), errno.Error()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return int(syscall.ENOENT), syscall.ENOENT.Error()
	}
	return 1, err.Error()
}

// exitCodeOf translates a wait status: signal-terminated processes report
// the negated signal number (SIGKILL -> -9), matching the kill sentinel.
func exitCodeOf(err *exec.ExitError) int {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return -int(ws.Signal())
		}
		return ws.ExitStatus()
	}
	return err.ExitCode()
}
