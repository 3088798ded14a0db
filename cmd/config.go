package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bebsworthy/periodic/internal/config"
)

// configCmd prints the effective configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration periodic would run with, after merging defaults,
the config file and PERIODIC_* environment variables.

The output starts with comment lines listing the config file search paths and
the environment variable for every key, so it stays valid YAML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := yaml.Marshal(GetConfig())
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}

		out := cmd.OutOrStdout()
		writeSources(out)
		_, err = out.Write(body)
		return err
	},
}

func writeSources(w io.Writer) {
	fmt.Fprintln(w, "# config file search paths:")
	for _, path := range config.GetConfigPaths() {
		fmt.Fprintf(w, "#   %s\n", path)
	}
	fmt.Fprintln(w, "# environment variables:")
	for _, key := range config.Keys() {
		fmt.Fprintf(w, "#   %s -> %s\n", config.GetEnvVarName(key), key)
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
}
