// Package shell provides the command runner adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/sema/internal/core/domain"
	"go.trai.ch/sema/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner implements ports.CommandRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new command runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run spawns the declared command through the shell and waits for it.
// Stdout and stderr are captured into the result and streamed line by line
// to the logger. A timeout of zero means no deadline beyond ctx's own.
//
// The returned error is non-nil only when the process could not be spawned;
// a non-zero exit or an enforced timeout is reported through the result.
func (r *Runner) Run(ctx context.Context, cmd domain.Command, workdir string, timeout time.Duration) (domain.CommandResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	proc := exec.CommandContext(ctx, "sh", "-c", cmd.Run) //nolint:gosec // declared command, spawned on explicit request

	proc.Dir = workdir
	if cmd.Dir != "" {
		proc.Dir = filepath.Join(workdir, cmd.Dir)
	}
	proc.Env = resolveEnvironment(os.Environ(), cmd.Env)

	var stdout, stderr bytes.Buffer
	proc.Stdout = io.MultiWriter(&stdout, &logWriter{logger: r.logger, level: "info"})
	proc.Stderr = io.MultiWriter(&stderr, &logWriter{logger: r.logger, level: "error"})

	start := time.Now()
	err := proc.Run()
	result := domain.CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		case ctx.Err() != nil:
			// Killed by the deadline (or an outer cancellation) before the
			// shell could even report an exit status.
			result.ExitCode = -1
		default:
			spawnErr := zerr.Wrap(err, "failed to spawn command")
			return result, zerr.With(spawnErr, "command", cmd.Name)
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
	}

	return result, nil
}

type logWriter struct {
	logger ports.Logger
	level  string
}

func (w *logWriter) Write(p []byte) (int, error) {
	lines := strings.Split(strings.TrimSuffix(string(p), "\n"), "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if w.level == "info" {
			w.logger.Info(line)
		} else {
			w.logger.Error(zerr.New(line))
		}
	}
	return len(p), nil
}

// resolveEnvironment applies the declared overrides on top of the inherited
// environment.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}
