package main

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/gogpu/tensorir"
)

func buildCommand(logger func(*cobra.Command) logr.Logger) *cobra.Command {
	var (
		output    string
		noVerify  bool
		locations bool
		name      string
	)

	cmd := &cobra.Command{
		Use:   "build <program>",
		Short: "build a program file into IR text",
		Long: `build reads a program file (YAML or TOML, chosen by extension), builds the
module it describes and prints it. Function result types are taken from the
values each function returns unless the function sets keep_signature.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tensorir.DefaultOptions()
			opts.Verify = !noVerify
			opts.Locations = locations
			opts.ModuleName = name
			opts.Logger = logger(cmd)

			text, err := tensorir.CompileFile(args[0], opts)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Successfully built %s to %s (%d bytes)\n", args[0], output, len(text))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "the file to write the module to or - for stdout")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "skip the verifier")
	cmd.Flags().BoolVar(&locations, "locations", false, "print loc(...) on functions and operations")
	cmd.Flags().StringVar(&name, "module-name", "", "override the module name from the program")

	return cmd
}
