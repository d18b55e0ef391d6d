package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/fincast/internal/compare"
)

func compareCmd(a *app) *cobra.Command {
	var (
		format string
		specs  []string
	)

	cmd := &cobra.Command{
		Use:   "compare [config-file]",
		Short: "Compare the projection with and without its transitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.loadConfiguration(args[0], specs)
			if err != nil {
				return err
			}
			a.printWarnings(cmd, file)

			compSet, err := compare.NewCompareEngine(a.engine(file)).Compare(cmd.Context(), &file.SimulationConfiguration)
			if err != nil {
				return err
			}
			compSet.ConfigPath = args[0]

			out, err := formatComparison(compSet, format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, compact, csv, json)")
	cmd.Flags().StringArrayVarP(&specs, "transition", "t", nil, "Extra transition as name:key=value,... (repeatable)")
	return cmd
}

func formatComparison(compSet *compare.ComparisonSet, format string) (string, error) {
	switch format {
	case "table":
		return (&compare.TableFormatter{}).Format(compSet), nil
	case "compact":
		return (&compare.TableFormatter{}).FormatCompact(compSet) + "\n", nil
	case "csv":
		return (&compare.CSVFormatter{}).Format(compSet)
	case "json":
		out, err := (&compare.JSONFormatter{Pretty: true}).Format(compSet)
		return out + "\n", err
	default:
		return "", fmt.Errorf("unsupported format: %s (available: table, compact, csv, json)", format)
	}
}
