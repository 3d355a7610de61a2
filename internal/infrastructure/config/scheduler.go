package config

import (
	"time"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// SchedulerConfig holds the scheduler's heuristic constants
type SchedulerConfig struct {
	// Interval between exact head-stop ETA refreshes
	ETARefreshInterval time.Duration `mapstructure:"eta_refresh_interval" validate:"gte=1ms"`

	// En-route score: free capacity * ScoreScale / max(eta, MinETA)
	ScoreScale int64         `mapstructure:"score_scale" validate:"min=1"`
	MinETA     time.Duration `mapstructure:"min_eta" validate:"gte=1ms"`

	// Candidates further than this score zero
	HorriblyLong time.Duration `mapstructure:"horribly_long" validate:"gtfield=MinETA"`

	// First-round acceptance: score >= AcceptThreshold * quantity
	AcceptThreshold int64 `mapstructure:"accept_threshold" validate:"min=1"`

	// Proximity radius for detour insertion
	DetourRadius time.Duration `mapstructure:"detour_radius" validate:"gte=0"`

	// Idle ships this close to a port count toward it
	NearbyRadius time.Duration `mapstructure:"nearby_radius" validate:"gte=0"`

	PriorityScale int64 `mapstructure:"priority_scale" validate:"min=1"`

	// Run the invariant checks after every update
	VerifyInvariants bool `mapstructure:"verify_invariants"`
}

// Tuning converts the section into the scheduler's tuning constants
func (c SchedulerConfig) Tuning() shipping.Tuning {
	return shipping.Tuning{
		ETARefreshInterval: shared.FromStd(c.ETARefreshInterval),
		ScoreScale:         c.ScoreScale,
		MinETA:             shared.FromStd(c.MinETA),
		HorriblyLong:       shared.FromStd(c.HorriblyLong),
		AcceptThreshold:    c.AcceptThreshold,
		DetourRadius:       shared.FromStd(c.DetourRadius),
		NearbyRadius:       shared.FromStd(c.NearbyRadius),
		PriorityScale:      c.PriorityScale,
		VerifyInvariants:   c.VerifyInvariants,
	}
}
