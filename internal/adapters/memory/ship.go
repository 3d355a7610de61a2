package memory

import (
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// Ship is an in-memory vessel that sails toward its destination
type Ship struct {
	id          shared.ShipID
	capacity    int
	position    shared.Position
	hold        []shared.CargoItem
	destination shared.PortID

	onExpedition   bool
	expeditionPort shared.PortID
}

func NewShip(id shared.ShipID, capacity int, position shared.Position) *Ship {
	return &Ship{id: id, capacity: capacity, position: position}
}

func (s *Ship) ID() shared.ShipID {
	return s.id
}

func (s *Ship) Capacity() int {
	return s.capacity
}

func (s *Ship) Position() shared.Position {
	return s.position
}

// Hold returns a copy of the cargo on board
func (s *Ship) Hold() []shared.CargoItem {
	return append([]shared.CargoItem(nil), s.hold...)
}

func (s *Ship) Load(items []shared.CargoItem) {
	s.hold = append(s.hold, items...)
}

func (s *Ship) Destination() shared.PortID {
	return s.destination
}

func (s *Ship) SetDestination(port shared.PortID) {
	s.destination = port
}

func (s *Ship) RedirectCargo(from, to shared.PortID) int {
	n := 0
	for i := range s.hold {
		if s.hold[i].Destination == from {
			s.hold[i].Destination = to
			n++
		}
	}
	return n
}

func (s *Ship) StartExpedition(port shared.PortID, items []shared.CargoItem) {
	s.onExpedition = true
	s.expeditionPort = port
	s.destination = shared.NoPort
	s.hold = append(s.hold, items...)
}

func (s *Ship) OnExpedition() bool {
	return s.onExpedition
}

// unload removes and returns the cargo addressed to port
func (s *Ship) unload(port shared.PortID) []shared.CargoItem {
	var kept, unloaded []shared.CargoItem
	for _, item := range s.hold {
		if item.Destination == port {
			unloaded = append(unloaded, item)
		} else {
			kept = append(kept, item)
		}
	}
	s.hold = kept
	return unloaded
}
