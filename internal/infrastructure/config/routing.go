package config

import "time"

// RoutingConfig holds the remote cost oracle configuration. An empty address
// selects the in-process Euclidean oracle.
type RoutingConfig struct {
	// gRPC service address (host:port)
	Address string `mapstructure:"address"`

	// Deadline for a single cost query
	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"required"`

	// Client-side rate limit for cost queries
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst" validate:"min=1"`

	// Consecutive failures before the client stops calling the service, and
	// how long it waits before probing again
	BreakerFailures int           `mapstructure:"breaker_failures" validate:"min=1"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown" validate:"required"`
}
