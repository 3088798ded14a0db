// Package config provides configuration management for periodic.
//
// This package handles loading configuration from multiple sources:
// - Configuration files (YAML, JSON, TOML)
// - Environment variables
// - Default values
//
// Configuration is loaded in order of precedence (highest to lowest):
// 1. Environment variables
// 2. Configuration file
// 3. Default values
//
// The schedule itself (period and iteration count) never comes from here; it
// is read from the two positional arguments, see ParseSchedule.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete periodic configuration
type Config struct {
	Timer   TimerConfig   `mapstructure:"timer" yaml:"timer"`
	Signals SignalsConfig `mapstructure:"signals" yaml:"signals"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// TimerConfig contains interval timer configuration
type TimerConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
}

// SignalsConfig contains signal disposition options
type SignalsConfig struct {
	BlockTerminalStop bool `mapstructure:"block_terminal_stop" yaml:"block_terminal_stop"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	OutputFile string `mapstructure:"output_file" yaml:"output_file"`
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose"`
}

// MetricsConfig controls cycle timing collection
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultInitialDelay is the time between arming the timer and the first cycle.
const DefaultInitialDelay = 3 * time.Second

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Timer: TimerConfig{
			InitialDelay: DefaultInitialDelay,
		},
		Signals: SignalsConfig{
			BlockTerminalStop: true,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "text",
			OutputFile: "",
			Verbose:    false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// LoadConfig loads configuration from various sources
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PERIODIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.periodic")
		v.AddConfigPath("/etc/periodic")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if configFile != "" {
				return nil, fmt.Errorf("config file not found: %s", configFile)
			}
		} else if os.IsNotExist(err) {
			// SetConfigFile reports a missing file as a plain fs error
			return nil, fmt.Errorf("config file not found: %s", configFile)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("timer.initial_delay", defaults.Timer.InitialDelay)

	v.SetDefault("signals.block_terminal_stop", defaults.Signals.BlockTerminalStop)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.output_file", defaults.Logging.OutputFile)
	v.SetDefault("logging.verbose", defaults.Logging.Verbose)

	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Timer.InitialDelay <= 0 {
		return fmt.Errorf("timer.initial_delay must be positive, got %v", config.Timer.InitialDelay)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[config.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %s", config.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[config.Logging.Format] {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %s", config.Logging.Format)
	}

	return nil
}

// GetConfigPaths returns the paths where config files are searched
func GetConfigPaths() []string {
	paths := []string{
		"./config.yaml",
		"./config.yml",
		"./config.json",
		"./config.toml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".periodic", "config.yaml"),
			filepath.Join(home, ".periodic", "config.yml"),
		)
	}

	paths = append(paths,
		"/etc/periodic/config.yaml",
		"/etc/periodic/config.yml",
	)

	return paths
}

// Keys returns every configuration key, sorted
func Keys() []string {
	v := viper.New()
	setDefaults(v)

	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// GetEnvVarName returns the environment variable name for a config key
func GetEnvVarName(key string) string {
	return "PERIODIC_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
