package config

import (
	"net"
	"strconv"
)

// MetricsConfig controls the Prometheus endpoint the simulate command serves
// while a run is in progress
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	Port int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Host string `mapstructure:"host"`

	// Path the scheduler collector is exposed on, /metrics by default
	Path string `mapstructure:"path"`
}

// Address is the host:port the metrics server listens on
func (c MetricsConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Endpoint is the full scrape target, for display
func (c MetricsConfig) Endpoint() string {
	return "http://" + c.Address() + c.Path
}
