package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/seafaring-go/internal/adapters/memory"
	"github.com/andrescamacho/seafaring-go/internal/adapters/routing"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

func TestEuclideanOracle_PortToPort(t *testing.T) {
	// Arrange
	world := memory.NewWorld(2)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 30, Y: 40})
	oracle := routing.NewEuclideanOracle(world, world.Speed())

	// Act & Assert
	assert.Equal(t, shared.Seconds(25), oracle.PortToPort(1, 2))
	assert.Equal(t, shared.Seconds(25), oracle.PortToPort(2, 1))
	assert.Equal(t, shared.Duration(0), oracle.PortToPort(1, 1))
}

func TestEuclideanOracle_ShipToPort_RoundsUp(t *testing.T) {
	// Arrange
	world := memory.NewWorld(3)
	world.AddPort(1, shared.Position{X: 1, Y: 0})
	world.AddShip(7, 3, shared.Position{X: 0, Y: 0})
	oracle := routing.NewEuclideanOracle(world, world.Speed())

	// Act
	cost := oracle.ShipToPort(7, 1)

	// Assert
	assert.Equal(t, shared.Duration(334), cost)
}

func TestEuclideanOracle_UnknownIDsAreUnreachable(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{})
	oracle := routing.NewEuclideanOracle(world, 1)

	// Act & Assert
	assert.Equal(t, routing.Unreachable, oracle.PortToPort(1, 9))
	assert.Equal(t, routing.Unreachable, oracle.PortToPort(9, 1))
	assert.Equal(t, routing.Unreachable, oracle.ShipToPort(5, 1))
}

func TestMockCostOracle_FallsBackToDefault(t *testing.T) {
	// Arrange
	oracle := routing.NewMockCostOracle(shared.Seconds(100))
	oracle.SetPortCost(1, 2, shared.Seconds(5))
	oracle.SetShipCost(3, 1, shared.Seconds(7))

	// Act & Assert
	assert.Equal(t, shared.Seconds(5), oracle.PortToPort(2, 1))
	assert.Equal(t, shared.Seconds(100), oracle.PortToPort(1, 3))
	assert.Equal(t, shared.Seconds(7), oracle.ShipToPort(3, 1))
	assert.Equal(t, shared.Seconds(100), oracle.ShipToPort(3, 2))
	assert.Equal(t, 4, oracle.Calls())
}
