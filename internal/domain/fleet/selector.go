package fleet

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// CostFunc returns the travel cost from a ship's live position to a port
type CostFunc func(ship shared.ShipID, port shared.PortID) shared.Duration

// SelectionResult contains the result of ship selection
type SelectionResult struct {
	Ship   shared.ShipID
	Cost   shared.Duration
	Reason string
}

// Pairing is one port matched with one ship
type Pairing struct {
	Port shared.PortID
	Ship shared.ShipID
	Cost shared.Duration
}

// Selector implements fleet ship selection business logic
type Selector struct {
	cost CostFunc
}

// NewSelector creates a new fleet selector
func NewSelector(cost CostFunc) *Selector {
	return &Selector{cost: cost}
}

// SelectClosestShip selects the ship with the least travel cost to port.
//
// Business Rules:
//   - Least cost wins
//   - Equal costs fall back to the lower ship id so every replica picks the same ship
//
// Returns an error if ships is empty.
func (s *Selector) SelectClosestShip(ships []shared.ShipID, port shared.PortID) (*SelectionResult, error) {
	if len(ships) == 0 {
		return nil, fmt.Errorf("no ships available for selection")
	}

	best := ships[0]
	bestCost := s.cost(best, port)
	for _, ship := range ships[1:] {
		cost := s.cost(ship, port)
		if cost < bestCost || (cost == bestCost && ship < best) {
			best = ship
			bestCost = cost
		}
	}

	return &SelectionResult{
		Ship:   best,
		Cost:   bestCost,
		Reason: "closest by travel time",
	}, nil
}

// PairClosest greedily pairs ports with ships: the globally closest
// (port, ship) combination is taken first, both sides leave the pool, and
// the next closest remaining combination follows until one side is exhausted.
//
// Ties are broken by port id, then ship id.
func (s *Selector) PairClosest(ports []shared.PortID, ships []shared.ShipID) []Pairing {
	if len(ports) == 0 || len(ships) == 0 {
		return nil
	}

	candidates := make([]Pairing, 0, len(ports)*len(ships))
	for _, port := range ports {
		for _, ship := range ships {
			candidates = append(candidates, Pairing{Port: port, Ship: ship, Cost: s.cost(ship, port)})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		if a.Port != b.Port {
			return a.Port < b.Port
		}
		return a.Ship < b.Ship
	})

	usedPorts := make(map[shared.PortID]bool)
	usedShips := make(map[shared.ShipID]bool)
	var pairings []Pairing
	for _, c := range candidates {
		if usedPorts[c.Port] || usedShips[c.Ship] {
			continue
		}
		usedPorts[c.Port] = true
		usedShips[c.Ship] = true
		pairings = append(pairings, c)
		if len(pairings) == len(ports) || len(pairings) == len(ships) {
			break
		}
	}
	return pairings
}
