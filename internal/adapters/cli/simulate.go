package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/seafaring-go/internal/adapters/memory"
	"github.com/andrescamacho/seafaring-go/internal/adapters/metrics"
	"github.com/andrescamacho/seafaring-go/internal/adapters/persistence"
	"github.com/andrescamacho/seafaring-go/internal/adapters/routing"
	"github.com/andrescamacho/seafaring-go/internal/application/mediator"
	"github.com/andrescamacho/seafaring-go/internal/application/simulation/commands"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/config"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/database"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/logging"
)

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var (
		scenarioPath  string
		fleet         string
		ticks         int
		tick          time.Duration
		oracleAddress string
		persist       bool
		snapshotEvery int
		resume        bool
		showPlans     bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scenario through the scheduler",
		Long: `Run a scenario file through the scheduler in lockstep ticks.

Each tick applies due scenario events, moves ships toward their destination
(reporting arrivals to the scheduler) and runs one scheduler update.

Costs come from the Euclidean oracle unless --oracle-address (or
routing.address in the config) points at a routing-service.

Examples:
  seafaring simulate --scenario harbour.yaml --ticks 600
  seafaring simulate --scenario harbour.yaml --tick 500ms --plans
  seafaring simulate --scenario harbour.yaml --persist --fleet north-sea --snapshot-every 100
  seafaring simulate --scenario harbour.yaml --fleet north-sea --resume`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			logger := logging.FromContext(ctx)

			if scenarioPath == "" {
				path, err := defaultScenario()
				if err != nil {
					return err
				}
				scenarioPath = path
			}
			scenario, err := memory.LoadScenario(scenarioPath)
			if err != nil {
				return err
			}
			if fleet == "" {
				fleet = scenario.Name
			}
			if oracleAddress == "" {
				oracleAddress = cfg.Routing.Address
			}

			var snapshots shipping.ScheduleRepository
			var events shipping.ScheduleEventRepository
			if persist || resume {
				db, err := openDatabase(cfg)
				if err != nil {
					return err
				}
				defer database.Close(db)
				snapshots = persistence.NewGormScheduleRepository(db)
				events = persistence.NewGormScheduleEventRepository(db)
			}

			recorder, err := startMetrics(ctx, cfg, logger)
			if err != nil {
				return err
			}

			handler := commands.NewRunSimulationHandler(
				oracleFactory(cfg, oracleAddress, logger),
				cfg.Scheduler.Tuning(),
				snapshots,
				events,
				recorder,
				logger,
			)
			m := mediator.NewMediator()
			m.Use(mediator.LoggingMiddleware(logger))
			if err := mediator.RegisterHandler[*commands.RunSimulationCommand](m, handler); err != nil {
				return err
			}

			resp, err := m.Send(ctx, &commands.RunSimulationCommand{
				Scenario:      scenario,
				Fleet:         fleet,
				Ticks:         ticks,
				Tick:          tick,
				SnapshotEvery: snapshotEvery,
				Persist:       persist,
				Resume:        resume,
			})
			if err != nil {
				return err
			}

			result := resp.(*commands.RunSimulationResponse)
			out := cmd.OutOrStdout()
			renderRunSummary(out, result)
			if showPlans {
				fmt.Fprintln(out)
				renderPlans(out, result.Plans)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file (default: stored preference)")
	cmd.Flags().StringVar(&fleet, "fleet", "", "Fleet name for persisted data (default: scenario name)")
	cmd.Flags().IntVar(&ticks, "ticks", 600, "Number of ticks to simulate")
	cmd.Flags().DurationVar(&tick, "tick", time.Second, "Simulated time per tick")
	cmd.Flags().StringVar(&oracleAddress, "oracle-address", "", "routing-service address (host:port)")
	cmd.Flags().BoolVar(&persist, "persist", false, "Store snapshots and the event log")
	cmd.Flags().IntVar(&snapshotEvery, "snapshot-every", 0, "Store a snapshot every N ticks (with --persist)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Restore the fleet's latest snapshot before the first tick")
	cmd.Flags().BoolVar(&showPlans, "plans", false, "Print the final plan table")

	return cmd
}

// oracleFactory returns the Euclidean oracle, wrapped by the gRPC client when
// an address is configured
func oracleFactory(cfg *config.Config, address string, logger logging.Logger) commands.OracleFactory {
	return func(world *memory.World) (shipping.CostOracle, io.Closer, error) {
		local := routing.NewEuclideanOracle(world, world.Speed())
		if address == "" {
			return local, nil, nil
		}
		remote, err := routing.NewGRPCCostOracle(address, world, local, routing.GRPCOptions{
			CallTimeout:       cfg.Routing.CallTimeout,
			RequestsPerSecond: cfg.Routing.RequestsPerSecond,
			Burst:             cfg.Routing.Burst,
			BreakerFailures:   cfg.Routing.BreakerFailures,
			BreakerCooldown:   cfg.Routing.BreakerCooldown,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return remote, remote, nil
	}
}

// startMetrics registers the scheduler collector and serves it when metrics
// are enabled. The server stops with ctx.
func startMetrics(ctx context.Context, cfg *config.Config, logger logging.Logger) (shipping.MetricsRecorder, error) {
	if !cfg.Metrics.Enabled {
		return nil, nil
	}
	metrics.InitRegistry()
	collector := metrics.NewSchedulerMetricsCollector()
	if err := collector.Register(nil); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	addr := cfg.Metrics.Address()
	go func() {
		if err := metrics.Serve(ctx, addr, cfg.Metrics.Path, metrics.GetRegistry(), logger); err != nil {
			logger.Log("ERROR", "[Metrics] Server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
	return collector, nil
}

func defaultScenario() (string, error) {
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return "", err
	}
	userCfg, err := handler.Load()
	if err != nil {
		return "", err
	}
	if userCfg.DefaultScenario == "" {
		return "", fmt.Errorf("--scenario is required (or set a default with 'seafaring config set-scenario')")
	}
	return userCfg.DefaultScenario, nil
}
