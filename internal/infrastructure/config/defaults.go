package config

import (
	"time"

	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" && cfg.Database.Type == "sqlite" {
		cfg.Database.Path = "seafaring.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "seafaring"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "seafaring"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Routing defaults
	if cfg.Routing.CallTimeout == 0 {
		cfg.Routing.CallTimeout = 2 * time.Second
	}
	if cfg.Routing.RequestsPerSecond == 0 {
		cfg.Routing.RequestsPerSecond = 500
	}
	if cfg.Routing.Burst == 0 {
		cfg.Routing.Burst = 50
	}
	if cfg.Routing.BreakerFailures == 0 {
		cfg.Routing.BreakerFailures = 5
	}
	if cfg.Routing.BreakerCooldown == 0 {
		cfg.Routing.BreakerCooldown = 10 * time.Second
	}

	// Scheduler defaults
	d := shipping.DefaultTuning()
	if cfg.Scheduler.ETARefreshInterval == 0 {
		cfg.Scheduler.ETARefreshInterval = d.ETARefreshInterval.Std()
	}
	if cfg.Scheduler.ScoreScale == 0 {
		cfg.Scheduler.ScoreScale = d.ScoreScale
	}
	if cfg.Scheduler.MinETA == 0 {
		cfg.Scheduler.MinETA = d.MinETA.Std()
	}
	if cfg.Scheduler.HorriblyLong == 0 {
		cfg.Scheduler.HorriblyLong = d.HorriblyLong.Std()
	}
	if cfg.Scheduler.AcceptThreshold == 0 {
		cfg.Scheduler.AcceptThreshold = d.AcceptThreshold
	}
	if cfg.Scheduler.DetourRadius == 0 {
		cfg.Scheduler.DetourRadius = d.DetourRadius.Std()
	}
	if cfg.Scheduler.NearbyRadius == 0 {
		cfg.Scheduler.NearbyRadius = d.NearbyRadius.Std()
	}
	if cfg.Scheduler.PriorityScale == 0 {
		cfg.Scheduler.PriorityScale = d.PriorityScale
	}
}
