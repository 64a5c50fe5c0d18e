package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/gogpu/tensorir/dtypes"
	"github.com/gogpu/tensorir/limitations"
)

func limitsCommand() *cobra.Command {
	var (
		dtype   string
		device  string
		mode    string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "limits [group]",
		Short: "list backend limitations",
		Long: `limits prints the known limitations of a harness group, filtered by dtype,
device and mode. Without a group it lists every group that has limitations.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				pterm.DisableColor()
			}
			reg, err := limitations.Default()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				for _, g := range reg.Groups() {
					fmt.Fprintln(out, g)
				}
				return nil
			}

			var q limitations.Query
			if device != "" {
				if q.Device, err = limitations.ParseDevice(device); err != nil {
					return err
				}
			}
			if mode != "" {
				if q.Mode, err = limitations.ParseMode(mode); err != nil {
					return err
				}
			}
			if dtype != "" {
				if q.DType, err = dtypes.Parse(dtype); err != nil {
					return err
				}
			}

			lims, err := reg.Applicable(args[0], q)
			if err != nil {
				return err
			}
			if len(lims) == 0 {
				fmt.Fprintf(out, "%s: no limitations\n", args[0])
				return nil
			}

			table, err := renderLimitations(lims)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, table)

			if max, ok := limitations.MaxTolerance(lims); ok {
				fmt.Fprintf(out, "max tolerance: %g\n", max.Tolerance)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dtype, "dtype", "", "only limitations for this dtype (e.g. f32, complex64)")
	cmd.Flags().StringVar(&device, "device", "", "only limitations for this device (cpu, gpu, tpu)")
	cmd.Flags().StringVar(&mode, "mode", "", "only limitations for this mode (eager, graph, compiled)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	return cmd
}

func renderLimitations(lims []limitations.Limitation) (string, error) {
	data := pterm.TableData{
		{"Description", "Devices", "DTypes", "Modes", "Error", "Tolerance", "Assert"},
	}
	for _, l := range lims {
		tol := "-"
		if l.HasTolerance() {
			tol = strconv.FormatFloat(l.Tolerance, 'g', -1, 64)
		}
		dts := "all"
		if len(l.DTypes) > 0 {
			names := make([]string, len(l.DTypes))
			for i, dt := range l.DTypes {
				names[i] = dt.String()
			}
			dts = strings.Join(names, ",")
		}
		data = append(data, []string{
			l.Description,
			join(l.Devices),
			dts,
			join(l.Modes),
			strconv.FormatBool(l.ExpectError),
			tol,
			l.CustomAssert,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func join[T ~string](items []T) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
