package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/seafaring-go/internal/infrastructure/config"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	activeLogger *logging.ZerologLogger
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seafaring",
		Short: "Seafaring - maritime cargo scheduler",
		Long: `Seafaring plans pickups and deliveries for a fleet of cargo ships.

The simulate command drives a scenario file through the scheduler tick by
tick. Snapshots and scheduling events can be persisted and inspected later.

Examples:
  seafaring simulate --scenario harbour.yaml --ticks 600
  seafaring simulate --scenario harbour.yaml --persist --fleet north-sea
  seafaring snapshot list --fleet north-sea
  seafaring snapshot show --fleet north-sea
  seafaring events --fleet north-sea --name stranded_cargo
  seafaring config show`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			activeLogger = logger
			ctx := logging.WithLogger(cmd.Context(), logger.With("cli"))
			ctx = withConfig(ctx, cfg)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if activeLogger != nil {
				_ = activeLogger.Close()
			}
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: config.yaml in ., ./configs, /etc/seafaring)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewSnapshotCommand())
	rootCmd.AddCommand(NewEventsCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
