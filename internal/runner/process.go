// Package runner runs periodic cycles: on every timer wake-up it spawns one
// child process, waits for it to exit, and reports timing.
//
// Example usage:
//
//	spawner, err := runner.NewSelfRunner(os.Stdout, logger)
//	loop := runner.NewLoop(timer.NewSystemTrigger(), spawner, runner.NewReporter(os.Stdout), cfg)
//	if err := loop.Run(ctx); err != nil {
//		os.Exit(errors.ExitCode(err))
//	}
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bebsworthy/periodic/internal/errors"
	"github.com/bebsworthy/periodic/internal/logging"
)

const (
	// ChildCommand is the hidden subcommand a spawned child runs.
	ChildCommand = "child"
	// ChildEnvVar is set to "1" in the environment of every spawned child.
	ChildEnvVar = "PERIODIC_CHILD"
)

// Spawner creates one child process and blocks until it has exited.
type Spawner interface {
	Spawn(ctx context.Context) (ChildResult, error)
}

// ChildResult describes a reaped child
type ChildResult struct {
	PID       int
	ExitCode  int
	StartedAt time.Time
	ExitedAt  time.Time
}

// ProcessRunner spawns a command and waits for that exact process to exit
type ProcessRunner struct {
	command     string
	args        []string
	workingDir  string
	environment map[string]string
	stdout      io.Writer
	stderr      io.Writer
	logger      *logging.Logger
}

// ProcessRunnerConfig contains configuration options for the process runner
type ProcessRunnerConfig struct {
	WorkingDir  string
	Environment map[string]string
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *logging.Logger
}

// DefaultProcessRunnerConfig returns default configuration for the process runner
func DefaultProcessRunnerConfig() ProcessRunnerConfig {
	return ProcessRunnerConfig{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// NewProcessRunnerWithConfig creates a new process runner with custom configuration
func NewProcessRunnerWithConfig(command string, args []string, config ProcessRunnerConfig) *ProcessRunner {
	workingDir := config.WorkingDir
	if workingDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workingDir = wd
		}
	}

	stdout := config.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := config.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &ProcessRunner{
		command:     command,
		args:        args,
		workingDir:  workingDir,
		environment: config.Environment,
		stdout:      stdout,
		stderr:      stderr,
		logger:      logger.Component("runner"),
	}
}

// NewSelfRunner creates a runner that re-executes the current binary with
// the hidden child subcommand. The child prints its own start time to stdout.
func NewSelfRunner(stdout io.Writer, logger *logging.Logger) (*ProcessRunner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.InternalError(errors.CodeSelfLookup, "Failed to locate own executable", err)
	}

	config := DefaultProcessRunnerConfig()
	config.Stdout = stdout
	config.Logger = logger
	config.Environment = map[string]string{ChildEnvVar: "1"}

	return NewProcessRunnerWithConfig(exe, []string{ChildCommand}, config), nil
}

// Spawn starts the process and waits for it to exit. Only a failure to start
// is an error; the exit status is recorded but not judged.
func (pr *ProcessRunner) Spawn(ctx context.Context) (ChildResult, error) {
	cmd := exec.Command(pr.command, pr.args...)
	cmd.Dir = pr.workingDir
	cmd.Stdout = pr.stdout
	cmd.Stderr = pr.stderr

	cmd.Env = os.Environ()
	for key, value := range pr.environment {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	if err := cmd.Start(); err != nil {
		return ChildResult{}, errors.SpawnError(errors.CodeSpawnFailed, "Failed to create child process", err).
			WithDetails("command", pr.getCommandString())
	}

	result := ChildResult{
		PID:       cmd.Process.Pid,
		StartedAt: time.Now(),
	}

	pr.logger.DebugContext(ctx, "Child started",
		slog.Int("pid", result.PID),
		slog.String("command", pr.getCommandString()))

	err := cmd.Wait()
	result.ExitedAt = time.Now()

	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitError.ExitCode()
		} else {
			// the child was reaped but copying its output failed
			pr.logger.LogError(ctx, "Child output copy failed", err, slog.Int("pid", result.PID))
		}
	}

	pr.logger.LogTiming(ctx, "child", result.StartedAt,
		slog.Int("pid", result.PID),
		slog.Int("exit_code", result.ExitCode))

	return result, nil
}

// getCommandString returns the full command string for logging
func (pr *ProcessRunner) getCommandString() string {
	if len(pr.args) == 0 {
		return pr.command
	}
	return pr.command + " " + strings.Join(pr.args, " ")
}
