package shipping

import (
	"strings"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// Plan is the ordered list of a single ship's future stops. An idle ship has
// an empty plan.
type Plan []Stop

// Clone returns a deep copy
func (p Plan) Clone() Plan {
	if p == nil {
		return nil
	}
	out := make(Plan, len(p))
	for i, stop := range p {
		out[i] = stop.Clone()
	}
	return out
}

func (p Plan) IsEmpty() bool {
	return len(p) == 0
}

// Head returns the port of the first stop, or NoPort for an idle ship
func (p Plan) Head() shared.PortID {
	if len(p) == 0 {
		return shared.NoPort
	}
	return p[0].Port
}

// IndexOf returns the first stop visiting port, or -1
func (p Plan) IndexOf(port shared.PortID) int {
	for i, stop := range p {
		if stop.Port == port {
			return i
		}
	}
	return -1
}

// Visits reports whether any stop targets port
func (p Plan) Visits(port shared.PortID) bool {
	return p.IndexOf(port) >= 0
}

// HasLoads reports whether any stop carries pickup instructions
func (p Plan) HasLoads() bool {
	for _, stop := range p {
		if stop.HasLoads() {
			return true
		}
	}
	return false
}

func (p Plan) HasExpedition() bool {
	for _, stop := range p {
		if stop.IsExpedition() {
			return true
		}
	}
	return false
}

// ETAAt is the running sum of durations up to and including stop i
func (p Plan) ETAAt(i int) shared.Duration {
	var eta shared.Duration
	for k := 0; k <= i && k < len(p); k++ {
		eta += p[k].DurationFromPrevious
	}
	return eta
}

func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, stop := range p {
		parts[i] = stop.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// freeCapacity simulates the plan's unload/load sequence against the hold and
// returns how many more items addressed to dest the ship can take on at stop
// at. Such items stay aboard until the first later visit of dest, or to the
// end of the plan.
func (p Plan) freeCapacity(hold []shared.CargoItem, capacity int, at int, dest shared.PortID) int {
	onboard := shared.CountByDestination(hold)
	total := len(hold)

	end := len(p)
	for k := at + 1; k < len(p); k++ {
		if p[k].Port == dest {
			end = k
			break
		}
	}

	peak := 0
	for k := 0; k < end; k++ {
		stop := p[k]
		total -= onboard[stop.Port]
		onboard[stop.Port] = 0
		for _, l := range stop.Loads {
			onboard[l.Destination] += l.Quantity
			total += l.Quantity
		}
		if k >= at && total > peak {
			peak = total
		}
	}

	if free := capacity - peak; free > 0 {
		return free
	}
	return 0
}

// neededStops marks the stops that still serve a purpose: expeditions,
// pickups, deliveries of cargo in the hold and deliveries of cargo picked up
// earlier in the same plan
func (p Plan) neededStops(hold []shared.CargoItem) []bool {
	delivering := make(map[shared.PortID]bool)
	for _, item := range hold {
		delivering[item.Destination] = true
	}
	needed := make([]bool, len(p))
	for i, stop := range p {
		needed[i] = stop.IsExpedition() || stop.HasLoads() || delivering[stop.Port]
		for _, l := range stop.Loads {
			delivering[l.Destination] = true
		}
	}
	return needed
}
