package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/seafaring-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage Seafaring configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (SEA_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default fleet and scenario) are stored in ~/.seafaring/config.json

Examples:
  seafaring config show
  seafaring config set-fleet north-sea
  seafaring config set-scenario ./scenarios/harbour.yaml
  seafaring config clear`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetFleetCommand())
	cmd.AddCommand(newConfigSetScenarioCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			out := cmd.OutOrStdout()

			userConfigHandler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			fmt.Fprintln(out, "Seafaring Configuration")
			fmt.Fprintln(out, "=======================")

			fmt.Fprintln(out, "User Preferences:")
			fmt.Fprintf(out, "  Config file:          %s\n", userConfigHandler.GetConfigPath())
			fmt.Fprintf(out, "  Default fleet:        %s\n", orUnset(userCfg.DefaultFleet))
			fmt.Fprintf(out, "  Default scenario:     %s\n", orUnset(userCfg.DefaultScenario))

			fmt.Fprintln(out, "\nDatabase:")
			fmt.Fprintf(out, "  Type:                 %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Fprintf(out, "  URL:                  %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Fprintf(out, "  Path:                 %s\n", cfg.Database.Path)
			default:
				fmt.Fprintf(out, "  Host:                 %s:%d\n", cfg.Database.Host, cfg.Database.Port)
				fmt.Fprintf(out, "  Database:             %s\n", cfg.Database.Name)
				fmt.Fprintf(out, "  User:                 %s\n", cfg.Database.User)
			}

			fmt.Fprintln(out, "\nRouting:")
			fmt.Fprintf(out, "  Address:              %s\n", orUnset(cfg.Routing.Address))
			fmt.Fprintf(out, "  Call timeout:         %s\n", cfg.Routing.CallTimeout)
			fmt.Fprintf(out, "  Rate limit:           %.0f req/s (burst: %d)\n", cfg.Routing.RequestsPerSecond, cfg.Routing.Burst)
			fmt.Fprintf(out, "  Circuit breaker:      %d failures, %s cooldown\n", cfg.Routing.BreakerFailures, cfg.Routing.BreakerCooldown)

			fmt.Fprintln(out, "\nScheduler:")
			fmt.Fprintf(out, "  ETA refresh interval: %s\n", cfg.Scheduler.ETARefreshInterval)
			fmt.Fprintf(out, "  Score scale:          %d\n", cfg.Scheduler.ScoreScale)
			fmt.Fprintf(out, "  Min ETA:              %s\n", cfg.Scheduler.MinETA)
			fmt.Fprintf(out, "  Horribly long:        %s\n", cfg.Scheduler.HorriblyLong)
			fmt.Fprintf(out, "  Accept threshold:     %d\n", cfg.Scheduler.AcceptThreshold)
			fmt.Fprintf(out, "  Detour radius:        %s\n", cfg.Scheduler.DetourRadius)
			fmt.Fprintf(out, "  Nearby radius:        %s\n", cfg.Scheduler.NearbyRadius)
			fmt.Fprintf(out, "  Verify invariants:    %t\n", cfg.Scheduler.VerifyInvariants)

			fmt.Fprintln(out, "\nMetrics:")
			fmt.Fprintf(out, "  Enabled:              %t\n", cfg.Metrics.Enabled)
			if cfg.Metrics.Enabled {
				fmt.Fprintf(out, "  Endpoint:             %s\n", cfg.Metrics.Endpoint())
			}

			fmt.Fprintln(out, "\nLogging:")
			fmt.Fprintf(out, "  Level:                %s\n", cfg.Logging.Level)
			fmt.Fprintf(out, "  Format:               %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "  Output:               %s\n", cfg.Logging.Output)

			return nil
		},
	}
}

func newConfigSetFleetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-fleet <name>",
		Short: "Set the default fleet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultFleet(args[0]); err != nil {
				return fmt.Errorf("failed to set default fleet: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default fleet set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigSetScenarioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-scenario <path>",
		Short: "Set the default scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.SetDefaultScenario(args[0]); err != nil {
				return fmt.Errorf("failed to set default scenario: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default scenario set to %s\n", args[0])
			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear stored preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := config.NewUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := handler.ClearDefaults(); err != nil {
				return fmt.Errorf("failed to clear preferences: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Preferences cleared")
			return nil
		},
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
