package main

import (
	"fmt"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/fincast/internal/compare"
	"github.com/rgehrsitz/fincast/internal/output"
	"github.com/rgehrsitz/fincast/internal/store"
)

func storeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved configurations and runs",
	}
	cmd.AddCommand(
		storeSaveCmd(a),
		storeListCmd(a),
		storeShowCmd(a),
		storeRunsCmd(a),
		storeRunCmd(a),
		storeDeleteCmd(a),
	)
	return cmd
}

// withStore opens the database for the duration of fn
func (a *app) withStore(fn func(st *store.Store) error) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func storeSaveCmd(a *app) *cobra.Command {
	var specs []string
	cmd := &cobra.Command{
		Use:   "save [config-file]",
		Short: "Validate and save a configuration, printing its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.loadConfiguration(args[0], specs)
			if err != nil {
				return err
			}
			return a.withStore(func(st *store.Store) error {
				id, err := st.SaveConfiguration(cmd.Context(), file)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&specs, "transition", "t", nil, "Extra transition as name:key=value,... (repeatable)")
	return cmd
}

func storeListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				records, err := st.ListConfigurations(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCREATED")
				for _, rec := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\n", rec.ID, rec.Name, rec.CreatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			})
		},
	}
}

func storeShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Print a saved configuration as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				rec, err := st.GetConfiguration(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(rec, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func storeRunsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "runs [configuration-id]",
		Short: "List the runs of a saved configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				runs, err := st.ListRuns(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tKIND\tBYTES\tCREATED")
				for _, run := range runs {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", run.ID, run.Kind, run.Size, run.CreatedAt.Format("2006-01-02 15:04"))
				}
				return w.Flush()
			})
		},
	}
}

func storeRunCmd(a *app) *cobra.Command {
	var (
		format     string
		comparison bool
	)
	cmd := &cobra.Command{
		Use:   "run [configuration-id]",
		Short: "Run a saved configuration and store the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				rec, err := st.GetConfiguration(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if comparison {
					compSet, err := compare.NewCompareEngine(a.engine(rec.File)).Compare(cmd.Context(), &rec.File.SimulationConfiguration)
					if err != nil {
						return err
					}
					if _, err := st.SaveComparisonRun(cmd.Context(), rec.ID, compSet.Result); err != nil {
						return err
					}
					if format == "console" {
						format = "table"
					}
					out, err := formatComparison(compSet, format)
					if err != nil {
						return err
					}
					fmt.Fprint(cmd.OutOrStdout(), out)
					return nil
				}

				formatter, err := output.GetFormatterByName(format)
				if err != nil {
					return err
				}
				result, err := a.run(cmd.Context(), rec.File, false)
				if err != nil {
					return err
				}
				if _, err := st.SaveSimulationRun(cmd.Context(), rec.ID, result); err != nil {
					return err
				}
				data, err := formatter.Format(result)
				if err != nil {
					return err
				}
				cmd.OutOrStdout().Write(data)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "console", "Output format")
	cmd.Flags().BoolVar(&comparison, "compare", false, "Run a with/without transitions comparison instead")
	return cmd
}

func storeDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [configuration-id]",
		Short: "Delete a saved configuration and its runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				if err := st.DeleteConfiguration(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
}
