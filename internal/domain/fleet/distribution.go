package fleet

import (
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// Tally counts how many ships are committed to each port
type Tally struct {
	ports  []shared.PortID
	counts map[shared.PortID]int
}

// NewTally creates a tally over ports with every count at zero
func NewTally(ports []shared.PortID) *Tally {
	sorted := shared.SortPortIDs(append([]shared.PortID(nil), ports...))
	counts := make(map[shared.PortID]int, len(sorted))
	for _, p := range sorted {
		counts[p] = 0
	}
	return &Tally{ports: sorted, counts: counts}
}

// Add counts one more ship toward port. Ports outside the tally are ignored.
func (t *Tally) Add(port shared.PortID) {
	if _, ok := t.counts[port]; ok {
		t.counts[port]++
	}
}

// Remove undoes one Add
func (t *Tally) Remove(port shared.PortID) {
	if t.counts[port] > 0 {
		t.counts[port]--
	}
}

func (t *Tally) Count(port shared.PortID) int {
	return t.counts[port]
}

func (t *Tally) Ports() []shared.PortID {
	return t.ports
}

// Assignment represents a ship-to-port assignment
type Assignment struct {
	Ship shared.ShipID
	Port shared.PortID
	Cost shared.Duration
	// Stay is set when the ship is already near the chosen port
	Stay bool
}

// DistributionService spreads idle ships over the ports
type DistributionService struct {
	cost   CostFunc
	nearby shared.Duration
}

// NewDistributionService creates a new distribution service. A ship within
// nearby of a port counts toward that port's tally.
func NewDistributionService(cost CostFunc, nearby shared.Duration) *DistributionService {
	return &DistributionService{cost: cost, nearby: nearby}
}

// NearbyPorts returns the ports the ship is close enough to count toward
func (ds *DistributionService) NearbyPorts(ship shared.ShipID, ports []shared.PortID) []shared.PortID {
	var near []shared.PortID
	for _, p := range ports {
		if ds.cost(ship, p) <= ds.nearby {
			near = append(near, p)
		}
	}
	return near
}

// AssignIdleShips distributes idle ships across the tally's ports.
//
// Business Rules:
//   - Idle ships near a port already count toward it
//   - Each ship goes to the port with the fewest committed ships, ties broken
//     by travel cost and then port id
//   - A ship already near its chosen port stays where it is
//   - The tally is updated after every assignment so ships spread out
//
// ships must be in ascending id order; the tally is modified in place.
func (ds *DistributionService) AssignIdleShips(tally *Tally, ships []shared.ShipID) []Assignment {
	if len(ships) == 0 || len(tally.ports) == 0 {
		return nil
	}

	nearby := make(map[shared.ShipID][]shared.PortID, len(ships))
	for _, ship := range ships {
		nearby[ship] = ds.NearbyPorts(ship, tally.ports)
		for _, p := range nearby[ship] {
			tally.Add(p)
		}
	}

	assignments := make([]Assignment, 0, len(ships))
	for _, ship := range ships {
		for _, p := range nearby[ship] {
			tally.Remove(p)
		}

		best := tally.ports[0]
		bestCost := ds.cost(ship, best)
		for _, p := range tally.ports[1:] {
			cost := ds.cost(ship, p)
			if tally.Count(p) < tally.Count(best) ||
				(tally.Count(p) == tally.Count(best) && cost < bestCost) {
				best = p
				bestCost = cost
			}
		}

		if bestCost <= ds.nearby {
			for _, p := range nearby[ship] {
				tally.Add(p)
			}
			assignments = append(assignments, Assignment{Ship: ship, Port: best, Cost: bestCost, Stay: true})
			continue
		}

		tally.Add(best)
		assignments = append(assignments, Assignment{Ship: ship, Port: best, Cost: bestCost})
	}
	return assignments
}
