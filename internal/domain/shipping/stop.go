package shipping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// StopKind distinguishes ordinary cargo visits from expedition hand-overs
type StopKind uint8

const (
	CargoStop StopKind = iota
	ExpeditionStop
)

func (k StopKind) String() string {
	if k == ExpeditionStop {
		return "expedition"
	}
	return "cargo"
}

// Load is a pickup instruction: at the owning stop, take on Quantity items
// addressed to Destination
type Load struct {
	Destination shared.PortID
	Quantity    int
}

// Stop is one planned port visit
type Stop struct {
	Port shared.PortID
	// DurationFromPrevious is the estimated travel time from the previous stop,
	// or from the ship's live position for the head stop
	DurationFromPrevious shared.Duration
	Kind                 StopKind
	// Loads is ordered by destination id and always empty for expeditions
	Loads []Load
}

// NewCargoStop creates a visit without any pickup instructions
func NewCargoStop(port shared.PortID, duration shared.Duration) Stop {
	return Stop{Port: port, DurationFromPrevious: duration, Kind: CargoStop}
}

// NewExpeditionStop creates an expedition hand-over visit
func NewExpeditionStop(port shared.PortID, duration shared.Duration) Stop {
	return Stop{Port: port, DurationFromPrevious: duration, Kind: ExpeditionStop}
}

func (s Stop) IsExpedition() bool {
	return s.Kind == ExpeditionStop
}

// HasLoads reports whether any pickup is still planned here
func (s Stop) HasLoads() bool {
	return len(s.Loads) > 0
}

// LoadFor returns the quantity planned for pickup to dest
func (s Stop) LoadFor(dest shared.PortID) int {
	for _, l := range s.Loads {
		if l.Destination == dest {
			return l.Quantity
		}
	}
	return 0
}

// TotalLoad sums all planned pickups
func (s Stop) TotalLoad() int {
	total := 0
	for _, l := range s.Loads {
		total += l.Quantity
	}
	return total
}

// AddLoad merges qty into the entry for dest, keeping entries ordered
func (s *Stop) AddLoad(dest shared.PortID, qty int) {
	if qty <= 0 || s.IsExpedition() {
		return
	}
	i := sort.Search(len(s.Loads), func(i int) bool { return s.Loads[i].Destination >= dest })
	if i < len(s.Loads) && s.Loads[i].Destination == dest {
		s.Loads[i].Quantity += qty
		return
	}
	s.Loads = append(s.Loads, Load{})
	copy(s.Loads[i+1:], s.Loads[i:])
	s.Loads[i] = Load{Destination: dest, Quantity: qty}
}

// ReduceLoad removes up to qty from the entry for dest, dropping the entry
// when it reaches zero. It returns the amount actually removed.
func (s *Stop) ReduceLoad(dest shared.PortID, qty int) int {
	for i, l := range s.Loads {
		if l.Destination != dest {
			continue
		}
		if qty >= l.Quantity {
			s.Loads = append(s.Loads[:i], s.Loads[i+1:]...)
			return l.Quantity
		}
		s.Loads[i].Quantity -= qty
		return qty
	}
	return 0
}

// RemoveLoad drops the entry for dest entirely
func (s *Stop) RemoveLoad(dest shared.PortID) int {
	return s.ReduceLoad(dest, s.LoadFor(dest))
}

// Clone returns a deep copy
func (s Stop) Clone() Stop {
	out := s
	if s.Loads != nil {
		out.Loads = append([]Load(nil), s.Loads...)
	}
	return out
}

func (s Stop) String() string {
	if s.IsExpedition() {
		return fmt.Sprintf("Stop(%s, expedition, +%s)", s.Port, s.DurationFromPrevious)
	}
	parts := make([]string, 0, len(s.Loads))
	for _, l := range s.Loads {
		parts = append(parts, fmt.Sprintf("%d:%d", uint32(l.Destination), l.Quantity))
	}
	return fmt.Sprintf("Stop(%s, load[%s], +%s)", s.Port, strings.Join(parts, " "), s.DurationFromPrevious)
}
