package memory

import (
	"fmt"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// DefaultSpeed is the distance a ship covers per simulated second
const DefaultSpeed = 1.0

// ArrivalHandler is told when a ship reaches its destination
type ArrivalHandler interface {
	OnShipArrived(ship shared.ShipID, port shared.PortID) error
}

// World is the in-memory surrounding simulation of one fleet: ports with
// waiting cargo and ships that sail toward the destination the scheduler
// writes. It implements shipping.Fleet and shipping.Liveness.
type World struct {
	speed    float64
	ports    map[shared.PortID]*Port
	ships    map[shared.ShipID]*Ship
	nextItem shared.ItemID
}

func NewWorld(speed float64) *World {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &World{
		speed: speed,
		ports: make(map[shared.PortID]*Port),
		ships: make(map[shared.ShipID]*Ship),
	}
}

func (w *World) Speed() float64 {
	return w.speed
}

// AddPort creates a port, replacing any previous one with the same id
func (w *World) AddPort(id shared.PortID, position shared.Position) *Port {
	p := NewPort(id, position)
	w.ports[id] = p
	return p
}

func (w *World) RemovePort(id shared.PortID) {
	delete(w.ports, id)
}

func (w *World) AddShip(id shared.ShipID, capacity int, position shared.Position) *Ship {
	s := NewShip(id, capacity, position)
	w.ships[id] = s
	return s
}

func (w *World) RemoveShip(id shared.ShipID) {
	delete(w.ships, id)
}

// Ports returns the port ids, ascending
func (w *World) Ports() []shared.PortID {
	ids := make([]shared.PortID, 0, len(w.ports))
	for id := range w.ports {
		ids = append(ids, id)
	}
	return shared.SortPortIDs(ids)
}

// Ships returns the ids of ships still in the fleet, ascending. Ships away
// on an expedition are not part of it.
func (w *World) Ships() []shared.ShipID {
	ids := make([]shared.ShipID, 0, len(w.ships))
	for id, s := range w.ships {
		if !s.onExpedition {
			ids = append(ids, id)
		}
	}
	return shared.SortShipIDs(ids)
}

func (w *World) Port(id shared.PortID) (shipping.Port, bool) {
	p, ok := w.ports[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (w *World) Ship(id shared.ShipID) (shipping.Ship, bool) {
	s, ok := w.ships[id]
	if !ok || s.onExpedition {
		return nil, false
	}
	return s, true
}

// PortByID returns the concrete port for simulation-side mutations
func (w *World) PortByID(id shared.PortID) (*Port, bool) {
	p, ok := w.ports[id]
	return p, ok
}

// ShipByID returns the concrete ship, expedition ships included
func (w *World) ShipByID(id shared.ShipID) (*Ship, bool) {
	s, ok := w.ships[id]
	return s, ok
}

func (w *World) PortPosition(id shared.PortID) (shared.Position, bool) {
	p, ok := w.ports[id]
	if !ok {
		return shared.Position{}, false
	}
	return p.position, true
}

func (w *World) ShipPosition(id shared.ShipID) (shared.Position, bool) {
	s, ok := w.ships[id]
	if !ok {
		return shared.Position{}, false
	}
	return s.position, true
}

func (w *World) PortAlive(id shared.PortID) bool {
	_, ok := w.ports[id]
	return ok
}

func (w *World) ShipAlive(id shared.ShipID) bool {
	s, ok := w.ships[id]
	return ok && !s.onExpedition
}

// Advance sails every ship with a destination for dt. A ship that reaches
// its destination unloads the cargo addressed there, then the handler is
// told about the arrival. Ships move in ascending id order.
func (w *World) Advance(dt shared.Duration, handler ArrivalHandler) error {
	step := w.speed * float64(dt) / 1000
	for _, id := range w.Ships() {
		s := w.ships[id]
		if s.destination == shared.NoPort {
			continue
		}
		port, ok := w.ports[s.destination]
		if !ok {
			continue
		}
		next, arrived := s.position.MoveToward(port.position, step)
		s.position = next
		if !arrived {
			continue
		}
		port.deliver(s.unload(port.id))
		if handler == nil {
			continue
		}
		if err := handler.OnShipArrived(id, port.id); err != nil {
			return fmt.Errorf("failed to handle arrival of %s at %s: %w", id, port.id, err)
		}
	}
	return nil
}

// Waiting sums the cargo waiting anywhere in the world
func (w *World) Waiting() int {
	total := 0
	for _, p := range w.ports {
		for _, items := range p.waiting {
			total += len(items)
		}
	}
	return total
}

// Delivered sums the cargo delivered anywhere in the world
func (w *World) Delivered() int {
	total := 0
	for _, p := range w.ports {
		total += len(p.delivered)
	}
	return total
}

// Launched counts the ships that left on expeditions from any port
func (w *World) Launched() int {
	total := 0
	for _, p := range w.ports {
		total += len(p.launched)
	}
	return total
}
