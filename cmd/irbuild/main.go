// Command irbuild builds tensor IR modules from program files and queries the
// backend limitation table.
//
// Usage:
//
//	irbuild build [flags] <program.yaml|program.toml>
//	irbuild limits [flags] [group]
//	irbuild version
//
// Examples:
//
//	irbuild build model.yaml                 # Print the module
//	irbuild build -o model.mlir model.toml   # Write the module to a file
//	irbuild build --locations -v model.yaml  # Print locations, log construction
//	irbuild limits cholesky --dtype c64      # Limitations for one group
package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
)

const irbuildVersion = "0.1.0-dev"

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var verbosity int

	root := &cobra.Command{
		Use:           "irbuild",
		Short:         "irbuild builds tensor IR modules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log construction events to stderr (repeat for more)")

	logger := func(cmd *cobra.Command) logr.Logger {
		return newLogger(cmd, verbosity)
	}
	root.AddCommand(
		buildCommand(logger),
		limitsCommand(),
		versionCommand(),
	)
	return root
}

// newLogger writes to the command's stderr. Nothing is logged without -v.
func newLogger(cmd *cobra.Command, verbosity int) logr.Logger {
	if verbosity == 0 {
		return logr.Discard()
	}
	w := cmd.ErrOrStderr()
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the irbuild version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "irbuild version %s\n", irbuildVersion)
		},
	}
}
