package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebsworthy/periodic/internal/config"
	"github.com/bebsworthy/periodic/internal/errors"
	"github.com/bebsworthy/periodic/internal/logging"
)

func newTestRunner(command string, args []string, out *bytes.Buffer) *ProcessRunner {
	return NewProcessRunnerWithConfig(command, args, ProcessRunnerConfig{
		Stdout: out,
		Stderr: out,
		Logger: logging.Discard(),
	})
}

// TestProcessRunner_Defaults tests process runner creation with default config
func TestProcessRunner_Defaults(t *testing.T) {
	runner := NewProcessRunnerWithConfig("echo", []string{"hello"}, DefaultProcessRunnerConfig())

	require.NotNil(t, runner)
	assert.Equal(t, "echo", runner.command)
	assert.Equal(t, []string{"hello"}, runner.args)
	assert.Equal(t, os.Stdout, runner.stdout)
	assert.Equal(t, os.Stderr, runner.stderr)
	assert.NotEmpty(t, runner.workingDir)
	assert.Equal(t, "echo hello", runner.getCommandString())
}

// TestProcessRunner_NewSelfRunner tests that the self runner re-executes the binary
func TestProcessRunner_NewSelfRunner(t *testing.T) {
	var out bytes.Buffer
	runner, err := NewSelfRunner(&out, logging.Discard())
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)

	assert.Equal(t, exe, runner.command)
	assert.Equal(t, []string{ChildCommand}, runner.args)
	assert.Same(t, &out, runner.stdout)
	assert.Equal(t, map[string]string{ChildEnvVar: "1"}, runner.environment)
}

// TestProcessRunner_Spawn_Success tests spawning and reaping a child
func TestProcessRunner_Spawn_Success(t *testing.T) {
	var out bytes.Buffer
	runner := newTestRunner("sh", []string{"-c", "echo child says hi"}, &out)

	result, err := runner.Spawn(context.Background())
	require.NoError(t, err)

	assert.Positive(t, result.PID)
	assert.NotEqual(t, os.Getpid(), result.PID)
	assert.Equal(t, 0, result.ExitCode)
	assert.False(t, result.ExitedAt.Before(result.StartedAt))
	assert.Equal(t, "child says hi\n", out.String())
}

// TestProcessRunner_Spawn_NonZeroExit tests that exit status is recorded, not judged
func TestProcessRunner_Spawn_NonZeroExit(t *testing.T) {
	var out bytes.Buffer
	var logs bytes.Buffer
	logger, err := logging.NewLoggerWithWriter(config.LoggingConfig{Level: "debug", Format: "text"}, &logs)
	require.NoError(t, err)

	runner := NewProcessRunnerWithConfig("sh", []string{"-c", "exit 3"}, ProcessRunnerConfig{
		Stdout: &out,
		Stderr: &out,
		Logger: logger,
	})

	result, err := runner.Spawn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)

	assert.Contains(t, logs.String(), "operation=child")
	assert.Contains(t, logs.String(), "exit_code=3")
	assert.Contains(t, logs.String(), "component=runner")
}

// TestProcessRunner_Spawn_InvalidCommand tests spawn failure classification
func TestProcessRunner_Spawn_InvalidCommand(t *testing.T) {
	var out bytes.Buffer
	runner := newTestRunner("/nonexistent/command", nil, &out)

	_, err := runner.Spawn(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsType(err, errors.ErrorTypeSpawn))
	assert.ErrorIs(t, err, errors.ErrSpawnFailed)
	assert.Equal(t, 1, errors.ExitCode(err))
}

// TestProcessRunner_Spawn_EnvironmentAndDir tests environment and working directory
func TestProcessRunner_Spawn_EnvironmentAndDir(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	runner := NewProcessRunnerWithConfig("sh", []string{"-c", `echo "$PERIODIC_TEST_VALUE"; pwd`}, ProcessRunnerConfig{
		WorkingDir:  dir,
		Environment: map[string]string{"PERIODIC_TEST_VALUE": "value"},
		Stdout:      &out,
		Logger:      logging.Discard(),
	})

	_, err := runner.Spawn(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "value", lines[0])

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, lines[1])
}
