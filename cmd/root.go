package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bebsworthy/periodic/internal/config"
	"github.com/bebsworthy/periodic/internal/errors"
	"github.com/bebsworthy/periodic/internal/logging"
	"github.com/bebsworthy/periodic/internal/metrics"
	"github.com/bebsworthy/periodic/internal/runner"
	"github.com/bebsworthy/periodic/internal/timer"
)

var (
	// Global flags
	configFile string
	envFile    string
	verbose    bool

	// Global configuration
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "periodic <period_seconds> <iteration_count>",
	Short: "Spawn and reap a child process on a fixed interval",
	Long: `periodic arms a real-time interval timer that first fires after a short
initial delay (3 seconds by default) and then every <period_seconds>.

On every expiry it spawns one child process, waits for that child to exit and
prints when the child started and when it was reaped. After <iteration_count>
cycles it prints a final timestamp and exits.

Ctrl+Z is ignored while the program runs, unless signals.block_terminal_stop
is set to false.`,
	Example: `  # Three cycles, two seconds apart, the first after three seconds
  periodic 2 3

  # JSON logs on stderr
  PERIODIC_LOGGING_FORMAT=json PERIODIC_LOGGING_LEVEL=info periodic 1 5`,
	Args:              validateArgs,
	PersistentPreRunE: loadConfig,
	RunE:              runPeriodic,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $PERIODIC_CONFIG or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with PERIODIC_* variables to load before the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// validateArgs only checks the argument count; the values are parsed leniently.
func validateArgs(cmd *cobra.Command, args []string) error {
	if _, err := config.ParseSchedule(args); err != nil {
		return errors.ConfigError(errors.CodeUsage,
			fmt.Sprintf("Invalid number of arguments (got %d). Usage: %s", len(args), cmd.UseLine()), nil)
	}
	return nil
}

// loadConfig reads the env file, config file and environment variables.
func loadConfig(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return errors.ConfigError(errors.CodeConfigLoad, "Failed to load env file", err)
		}
	}

	configPath := configFile
	if configPath == "" {
		configPath = os.Getenv("PERIODIC_CONFIG")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return errors.ConfigError(errors.CodeConfigLoad, "Error loading configuration", err)
	}

	if verbose {
		cfg.Logging.Verbose = true
	}

	appConfig = cfg
	return nil
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

func runPeriodic(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	schedule, _ := config.ParseSchedule(args)

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return errors.ConfigError(errors.CodeConfigLoad, "Failed to set up logging", err)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	if cfg.Signals.BlockTerminalStop {
		timer.IgnoreTerminalStop()
	}
	logger.Debug("Signal dispositions", slog.Bool("terminal_stop_ignored", timer.TerminalStopIgnored()))

	monitor := metrics.NewMonitor()
	monitor.SetLogger(logger.Logger)

	out := cmd.OutOrStdout()
	spawner, err := runner.NewSelfRunner(out, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := runner.NewLoop(timer.NewSystemTrigger(), spawner, runner.NewReporter(out), runner.LoopConfig{
		Schedule:     schedule,
		InitialDelay: cfg.Timer.InitialDelay,
		Logger:       logger,
		Monitor:      monitor,
	})

	err = loop.Run(ctx)

	if cfg.Metrics.Enabled {
		monitor.LogMetricsSummary(context.Background())
	}

	var pe *errors.PeriodicError
	if stderrors.As(err, &pe) {
		// main prints the message itself; the record only adds detail
		logger.LogAttrs(context.Background(), slog.LevelDebug, "Run failed", pe.LogAttrs()...)
	}

	return err
}
