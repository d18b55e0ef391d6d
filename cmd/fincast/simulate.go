package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/fincast/internal/config"
	"github.com/rgehrsitz/fincast/internal/domain"
	"github.com/rgehrsitz/fincast/internal/output"
	"github.com/rgehrsitz/fincast/pkg/dateutil"
)

func simulateCmd(a *app) *cobra.Command {
	var (
		format        string
		outputPath    string
		interval      string
		specs         []string
		noTransitions bool
		save          bool
	)

	cmd := &cobra.Command{
		Use:   "simulate [config-file]",
		Short: "Project a configuration over its horizon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.GetFormatterByName(format)
			if err != nil {
				return err
			}
			file, err := a.loadConfiguration(args[0], specs)
			if err != nil {
				return err
			}
			if interval != "" {
				parsed, ok := dateutil.ParseInterval(interval)
				if !ok {
					return fmt.Errorf("unknown interval %q", interval)
				}
				file.Engine.Interval = parsed
			}
			a.printWarnings(cmd, file)

			result, err := a.run(cmd.Context(), file, noTransitions)
			if err != nil {
				return err
			}

			data, err := formatter.Format(result)
			if err != nil {
				return err
			}
			if outputPath != "" {
				if err := os.WriteFile(outputPath, data, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", outputPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outputPath)
			} else {
				cmd.OutOrStdout().Write(data)
			}

			if save {
				return a.saveSimulation(cmd, file, result)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", "console", "Output format (chart, console, csv, json, summary, table)")
	flags.StringVarP(&outputPath, "output", "o", "", "Write output to this file instead of stdout")
	flags.StringVar(&interval, "interval", "", "Override the period length (week, fortnight, month, year)")
	flags.StringArrayVarP(&specs, "transition", "t", nil, "Extra transition as name:key=value,... (repeatable)")
	flags.BoolVar(&noTransitions, "no-transitions", false, "Ignore transitions and project the base parameters only")
	flags.BoolVar(&save, "save", false, "Store the configuration and result in the database")
	return cmd
}

// run projects file, with or without its transitions
func (a *app) run(ctx context.Context, file *config.File, baseOnly bool) (*domain.EnhancedSimulationResult, error) {
	engine := a.engine(file)
	if baseOnly {
		result, err := engine.RunSimulation(ctx, file.BaseParameters)
		if err != nil {
			return nil, err
		}
		return output.Enhance(result), nil
	}
	return engine.RunSimulationWithTransitions(ctx, &file.SimulationConfiguration)
}

func (a *app) saveSimulation(cmd *cobra.Command, file *config.File, result *domain.EnhancedSimulationResult) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	configID, err := st.SaveConfiguration(cmd.Context(), file)
	if err != nil {
		return err
	}
	runID, err := st.SaveSimulationRun(cmd.Context(), configID, result)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "saved configuration %s, run %s\n", configID, runID)
	return nil
}
