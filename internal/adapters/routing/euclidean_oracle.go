package routing

import (
	"math"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// Unreachable is returned for ids the oracle cannot place on the map
const Unreachable shared.Duration = 1 << 40

// PositionSource places ports and ships on the map
type PositionSource interface {
	PortPosition(id shared.PortID) (shared.Position, bool)
	ShipPosition(id shared.ShipID) (shared.Position, bool)
}

// EuclideanOracle estimates travel time as straight-line distance over speed
type EuclideanOracle struct {
	positions PositionSource
	speed     float64
}

// NewEuclideanOracle creates an oracle for ships covering speed units per second
func NewEuclideanOracle(positions PositionSource, speed float64) *EuclideanOracle {
	if speed <= 0 {
		speed = 1
	}
	return &EuclideanOracle{positions: positions, speed: speed}
}

func (o *EuclideanOracle) PortToPort(from, to shared.PortID) shared.Duration {
	a, ok := o.positions.PortPosition(from)
	if !ok {
		return Unreachable
	}
	return o.PositionToPort(a, to)
}

func (o *EuclideanOracle) ShipToPort(ship shared.ShipID, to shared.PortID) shared.Duration {
	a, ok := o.positions.ShipPosition(ship)
	if !ok {
		return Unreachable
	}
	return o.PositionToPort(a, to)
}

// PositionToPort is the travel time from an arbitrary position, rounded up to
// the next millisecond
func (o *EuclideanOracle) PositionToPort(from shared.Position, to shared.PortID) shared.Duration {
	b, ok := o.positions.PortPosition(to)
	if !ok {
		return Unreachable
	}
	return shared.Duration(math.Ceil(from.DistanceTo(b) / o.speed * 1000))
}
