package main

import (
	"fmt"
	"os"

	"github.com/bebsworthy/periodic/cmd"
	"github.com/bebsworthy/periodic/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
}
