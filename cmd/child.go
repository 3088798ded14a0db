package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/periodic/internal/errors"
	"github.com/bebsworthy/periodic/internal/runner"
)

// childCmd is what every spawned child runs: announce and exit.
var childCmd = &cobra.Command{
	Use:    runner.ChildCommand,
	Short:  "Print the child start announcement and exit",
	Hidden: true,
	Args:   cobra.NoArgs,
	// the child needs no configuration
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		// without the marker this is a plain one-argument invocation
		if os.Getenv(runner.ChildEnvVar) != "1" {
			return errors.ConfigError(errors.CodeUsage,
				fmt.Sprintf("Invalid number of arguments (got 1). Usage: %s", cmd.Root().UseLine()), nil)
		}

		runner.NewReporter(cmd.OutOrStdout()).ChildStarted(os.Getpid(), time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(childCmd)
}
