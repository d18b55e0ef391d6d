package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/fincast/internal/calculation"
	"github.com/rgehrsitz/fincast/internal/config"
	"github.com/rgehrsitz/fincast/internal/store"
	"github.com/rgehrsitz/fincast/internal/transform"
	"github.com/rgehrsitz/fincast/pkg/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app carries state shared by every command
type app struct {
	log      zerolog.Logger
	settings *config.Settings

	logLevel  string
	logPretty bool
	dbPath    string
	debug     bool
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "fincast",
		Short: "Household financial projection CLI",
		Long: "Projects a household's cash, investments, retirement savings and debt " +
			"period by period, with scheduled life changes and what-if comparisons.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error, off); overrides FINCAST_LOG_LEVEL")
	flags.BoolVar(&a.logPretty, "log-pretty", false, "Human-readable log output; overrides FINCAST_LOG_PRETTY")
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path; overrides FINCAST_DB_PATH")
	flags.BoolVar(&a.debug, "debug", false, "Log each projection step decision")

	root.AddCommand(
		simulateCmd(a),
		compareCmd(a),
		validateCmd(a),
		transitionTypesCmd(),
		serveCmd(a),
		storeCmd(a),
		versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		settings.LogLevel = a.logLevel
	}
	if flags.Changed("log-pretty") {
		settings.LogPretty = a.logPretty
	}
	if flags.Changed("db") {
		settings.DatabasePath = a.dbPath
	}
	if a.debug {
		settings.LogLevel = "debug"
	}
	a.settings = settings

	a.log = logger.New(logger.Config{Level: settings.LogLevel, Pretty: settings.LogPretty})
	logger.SetGlobalLogger(a.log)
	return nil
}

// engine builds a projection engine for file and attaches the logger
func (a *app) engine(file *config.File) *calculation.Engine {
	engine := file.Engine.BuildEngine()
	engine.SetLogger(logger.NewEngineLogger(a.log))
	return engine
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.settings.DatabasePath, a.log)
}

// loadConfiguration reads a configuration file and appends transitions given
// as name:key=value specs on the command line
func (a *app) loadConfiguration(path string, specs []string) (*config.File, error) {
	parser := config.NewInputParser()
	file, err := parser.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return file, nil
	}

	registry := transform.NewTransitionRegistry()
	for _, spec := range specs {
		t, err := registry.ParseTransitionSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("transition %q: %w", spec, err)
		}
		file.Transitions = append(file.Transitions, t)
	}
	if err := parser.ValidateConfiguration(&file.SimulationConfiguration); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return file, nil
}

func (a *app) printWarnings(cmd *cobra.Command, file *config.File) {
	for _, w := range config.Warnings(&file.SimulationConfiguration) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}

func validateCmd(a *app) *cobra.Command {
	var specs []string
	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.loadConfiguration(args[0], specs)
			if err != nil {
				return err
			}
			a.printWarnings(cmd, file)
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file %s is valid (%d transitions)\n", args[0], len(file.Transitions))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&specs, "transition", "t", nil, "Extra transition as name:key=value,... (repeatable)")
	return cmd
}

func transitionTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transition-types",
		Short: "List the transition names accepted by --transition",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range transform.NewTransitionRegistry().List() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fincast %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
