package cli

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/seafaring-go/internal/adapters/persistence"
	"github.com/andrescamacho/seafaring-go/internal/application/mediator"
	"github.com/andrescamacho/seafaring-go/internal/application/schedule/queries"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/config"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/database"
	"github.com/andrescamacho/seafaring-go/internal/infrastructure/logging"
)

type contextKey int

const (
	configKey contextKey = iota
)

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext returns the configuration loaded by the root command, or
// the defaults when a subcommand runs standalone
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.LoadConfigOrDefault("")
}

// openDatabase connects and migrates the schedule tables
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// withQueryMediator opens the database, registers the read-side handlers and
// runs fn
func withQueryMediator(ctx context.Context, fn func(context.Context, mediator.Mediator) error) error {
	cfg := configFromContext(ctx)
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	snapshots := persistence.NewGormScheduleRepository(db)
	events := persistence.NewGormScheduleEventRepository(db)

	m := mediator.NewMediator()
	m.Use(mediator.LoggingMiddleware(logging.FromContext(ctx)))
	if err := mediator.RegisterHandler[*queries.ListSnapshotsQuery](m, queries.NewListSnapshotsHandler(snapshots)); err != nil {
		return err
	}
	if err := mediator.RegisterHandler[*queries.GetSnapshotQuery](m, queries.NewGetSnapshotHandler(snapshots)); err != nil {
		return err
	}
	if err := mediator.RegisterHandler[*queries.ListEventsQuery](m, queries.NewListEventsHandler(events)); err != nil {
		return err
	}
	return fn(ctx, m)
}

// defaultFleet resolves the fleet flag against the stored user preference
func defaultFleet(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return "", err
	}
	userCfg, err := handler.Load()
	if err != nil {
		return "", err
	}
	if userCfg.DefaultFleet == "" {
		return "", fmt.Errorf("--fleet is required (or set a default with 'seafaring config set-fleet')")
	}
	return userCfg.DefaultFleet, nil
}
