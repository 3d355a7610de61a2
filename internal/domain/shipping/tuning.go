package shipping

import "github.com/andrescamacho/seafaring-go/internal/domain/shared"

// Tuning holds the scheduler's heuristic constants
type Tuning struct {
	// ETARefreshInterval is how often head-stop durations are recomputed
	// exactly instead of decayed
	ETARefreshInterval shared.Duration
	// ScoreScale and MinETA shape the en-route score
	// capacity * ScoreScale / max(eta, MinETA)
	ScoreScale int64
	MinETA     shared.Duration
	// HorriblyLong zeroes the score of candidates further away than this
	HorriblyLong shared.Duration
	// AcceptThreshold: a candidate is accepted in the first round when
	// score >= AcceptThreshold * quantity taken
	AcceptThreshold int64
	// DetourRadius bounds the proximity groups used for detour insertion
	DetourRadius shared.Duration
	// NearbyRadius: an idle ship this close to a port counts toward it
	NearbyRadius shared.Duration
	// PriorityScale keeps integer priorities precise
	PriorityScale int64
	// VerifyInvariants makes Update check the scheduling invariants and fail fast
	VerifyInvariants bool
}

// DefaultTuning returns the reference constants
func DefaultTuning() Tuning {
	return Tuning{
		ETARefreshInterval: shared.Seconds(20),
		ScoreScale:         600000,
		MinETA:             shared.Seconds(1),
		HorriblyLong:       shared.Seconds(3600),
		AcceptThreshold:    1,
		DetourRadius:       shared.Seconds(30),
		NearbyRadius:       shared.Seconds(20),
		PriorityScale:      1024,
	}
}

// withDefaults fills zero fields from DefaultTuning
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.ETARefreshInterval <= 0 {
		t.ETARefreshInterval = d.ETARefreshInterval
	}
	if t.ScoreScale <= 0 {
		t.ScoreScale = d.ScoreScale
	}
	if t.MinETA <= 0 {
		t.MinETA = d.MinETA
	}
	if t.HorriblyLong <= 0 {
		t.HorriblyLong = d.HorriblyLong
	}
	if t.AcceptThreshold <= 0 {
		t.AcceptThreshold = d.AcceptThreshold
	}
	if t.DetourRadius <= 0 {
		t.DetourRadius = d.DetourRadius
	}
	if t.NearbyRadius <= 0 {
		t.NearbyRadius = d.NearbyRadius
	}
	if t.PriorityScale <= 0 {
		t.PriorityScale = d.PriorityScale
	}
	return t
}
