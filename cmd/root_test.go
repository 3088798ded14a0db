package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebsworthy/periodic/internal/errors"
	"github.com/bebsworthy/periodic/internal/runner"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		if f := rootCmd.Flags().Lookup("version"); f != nil {
			f.Value.Set("false")
			f.Changed = false
		}
		configFile, envFile, verbose, appConfig = "", "", false, nil
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRoot_WrongArgumentCount(t *testing.T) {
	for _, args := range [][]string{{}, {"2"}, {"2", "3", "4"}, {"version"}, {"child"}} {
		out, err := execute(t, args...)

		require.Error(t, err, "args %v", args)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		assert.Equal(t, errors.CodeUsage, errors.GetCode(err))
		assert.Equal(t, 1, errors.ExitCode(err))
		assert.Contains(t, err.Error(), "<period_seconds> <iteration_count>")
		assert.NotContains(t, out, "Child process")
	}
}

func TestChildCommand_Announces(t *testing.T) {
	t.Setenv(runner.ChildEnvVar, "1")

	out, err := execute(t, "child")
	require.NoError(t, err)

	assert.Contains(t, out, "Child process (PID: ")
	assert.Contains(t, out, "Start time: ")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestConfigCommand_PrintsYAML(t *testing.T) {
	out, err := execute(t, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "initial_delay: 3s")
	assert.Contains(t, out, "block_terminal_stop: true")
	assert.Contains(t, out, "level: warn")
	assert.Contains(t, out, "# config file search paths:")
	assert.Contains(t, out, "PERIODIC_TIMER_INITIAL_DELAY -> timer.initial_delay")
	assert.Contains(t, out, "PERIODIC_SIGNALS_BLOCK_TERMINAL_STOP -> signals.block_terminal_stop")
}

func TestConfigCommand_UsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "periodic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timer:\n  initial_delay: 1s\n"), 0644))

	out, err := execute(t, "--config", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "initial_delay: 1s")
}

func TestConfigCommand_UsesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PERIODIC_LOGGING_LEVEL=debug\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PERIODIC_LOGGING_LEVEL") })

	out, err := execute(t, "--env-file", path, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "level: debug")
}

func TestConfigCommand_MissingConfigFile(t *testing.T) {
	_, err := execute(t, "--config", "/nonexistent/periodic.yaml", "config")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigLoad, errors.GetCode(err))
	assert.Equal(t, 1, errors.ExitCode(err))
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, "Go version:")
}
