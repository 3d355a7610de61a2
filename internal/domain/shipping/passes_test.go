package shipping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/seafaring-go/internal/adapters/memory"
	"github.com/andrescamacho/seafaring-go/internal/adapters/routing"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

func TestRefreshETAs_DecaysThenRecomputes(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{})
	world.AddShip(1, 3, shared.Position{})
	oracle := routing.NewMockCostOracle(shared.Seconds(100))
	oracle.SetShipCost(1, 1, shared.Seconds(9))
	f := newFixture(world, oracle)
	f.restore(t, map[shared.ShipID]shipping.Plan{1: {cargoStop(1, shared.Seconds(10))}})

	// Act & Assert: elapsed time is subtracted
	f.clock.Advance(shared.Seconds(4))
	require.NoError(t, f.sched.Update())
	assert.Equal(t, shared.Seconds(6), f.sched.PlanOf(1)[0].DurationFromPrevious)

	// Behind schedule: the remaining duration is halved
	f.clock.Advance(shared.Seconds(8))
	require.NoError(t, f.sched.Update())
	assert.Equal(t, shared.Seconds(3), f.sched.PlanOf(1)[0].DurationFromPrevious)

	// Refresh interval reached: exact answer from the oracle
	f.clock.Advance(shared.Seconds(8))
	require.NoError(t, f.sched.Update())
	assert.Equal(t, shared.Seconds(9), f.sched.PlanOf(1)[0].DurationFromPrevious)
}

func TestReconcile_CancellationShrinksLoadButKeepsStop(t *testing.T) {
	// Arrange: 4 items reserved for a ship 10 seconds away
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddShip(1, 5, shared.Position{X: 10, Y: 0})
	world.AddCargo(1, 2, 4, 1)
	f := newFixture(world, nil)
	require.NoError(t, f.sched.Update())
	require.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(10), load(2, 4))}, f.sched.PlanOf(1))

	// Act: the transfer is cancelled down to 1
	port, _ := world.PortByID(1)
	port.Cancel(2, 3)
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(10), load(2, 1))}, f.sched.PlanOf(1))
	require.Len(t, f.sink.named("load_reduced"), 1)
	assert.Equal(t, 3, f.sink.named("load_reduced")[0].(shipping.LoadReducedEvent).Quantity)
}

func TestReconcile_TrimsLatestArrivalFirst(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddShip(1, 5, shared.Position{X: 5, Y: 0})
	world.AddShip(2, 5, shared.Position{X: 20, Y: 0})
	world.AddCargo(1, 2, 3, 1)
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{
		1: {cargoStop(1, shared.Seconds(5), load(2, 2))},
		2: {cargoStop(1, shared.Seconds(20), load(2, 2))},
	})

	// Act
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(5), load(2, 2))}, f.sched.PlanOf(1))
	assert.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(20), load(2, 1))}, f.sched.PlanOf(2))
}

func TestCompact_DropsStopsWithoutPurpose(t *testing.T) {
	// Arrange: the only pickup is cancelled entirely
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 10, Y: 0})
	world.AddPort(3, shared.Position{X: 20, Y: 0})
	ship := world.AddShip(1, 5, shared.Position{X: 0, Y: 0})
	ship.Load(holdItems(100, 3, 1))
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{
		1: {cargoStop(2, shared.Seconds(10), load(1, 2)), cargoStop(3, shared.Seconds(10))},
	})

	// Act
	require.NoError(t, f.sched.Update())

	// Assert: port 2 is gone and port 3 is now reached straight from the ship
	assert.Equal(t, shipping.Plan{cargoStop(3, shared.Seconds(20))}, f.sched.PlanOf(1))
	assert.Equal(t, shared.PortID(3), ship.Destination())
}

func TestExpedition_IdleShipTakesReadyPort(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	port := world.AddPort(1, shared.Position{X: 0, Y: 0})
	port.PrepareExpedition(holdItems(500, shared.NoPort, 4))
	world.AddShip(1, 3, shared.Position{X: 7, Y: 0})
	f := newFixture(world, nil)

	// Act
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{shipping.NewExpeditionStop(1, shared.Seconds(7))}, f.sched.PlanOf(1))
}

func TestExpedition_ArrivalLaunchesShip(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	port := world.AddPort(1, shared.Position{X: 0, Y: 0})
	port.PrepareExpedition(holdItems(500, shared.NoPort, 4))
	ship := world.AddShip(1, 3, shared.Position{X: 7, Y: 0})
	f := newFixture(world, nil)
	require.NoError(t, f.sched.Update())

	// Act
	require.NoError(t, world.Advance(shared.Seconds(7), f.sched))
	require.NoError(t, f.sched.Update())

	// Assert
	assert.True(t, ship.OnExpedition())
	assert.Len(t, ship.Hold(), 4)
	assert.False(t, f.sched.Table().Has(1))
	assert.Equal(t, []shared.ShipID{1}, port.Launched())
	assert.Len(t, f.sink.named("expedition_launched"), 1)
}

func TestExpedition_ShipAlreadyHeadingThereIsFlagged(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	port := world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 50, Y: 0})
	world.AddShip(1, 3, shared.Position{X: 3, Y: 0})
	world.AddShip(2, 3, shared.Position{X: 1, Y: 0})
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{
		1: {cargoStop(1, shared.Seconds(12))},
		2: {cargoStop(2, shared.Seconds(49))},
	})
	port.PrepareExpedition(nil)

	// Act
	require.NoError(t, f.sched.Update())

	// Assert: ship 1 keeps its travel estimate, ship 2 is left alone
	assert.Equal(t, shipping.Plan{shipping.NewExpeditionStop(1, shared.Seconds(12))}, f.sched.PlanOf(1))
	assert.Equal(t, shipping.Plan{cargoStop(2, shared.Seconds(49))}, f.sched.PlanOf(2))
}

func TestExpedition_PairsGloballyClosestFirst(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{}).PrepareExpedition(nil)
	world.AddPort(2, shared.Position{X: 100}).PrepareExpedition(nil)
	world.AddShip(1, 3, shared.Position{})
	world.AddShip(2, 3, shared.Position{})
	oracle := routing.NewMockCostOracle(shared.Seconds(50))
	oracle.SetShipCost(1, 1, shared.Seconds(10))
	oracle.SetShipCost(1, 2, shared.Seconds(5))
	oracle.SetShipCost(2, 1, shared.Seconds(3))
	oracle.SetShipCost(2, 2, shared.Seconds(8))
	f := newFixture(world, oracle)

	// Act
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{shipping.NewExpeditionStop(2, shared.Seconds(5))}, f.sched.PlanOf(1))
	assert.Equal(t, shipping.Plan{shipping.NewExpeditionStop(1, shared.Seconds(3))}, f.sched.PlanOf(2))
}

func TestExpedition_DroppedWhenPortNoLongerReady(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	port := world.AddPort(1, shared.Position{})
	world.AddShip(1, 3, shared.Position{X: 5})
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{1: {shipping.NewExpeditionStop(1, shared.Seconds(5))}})
	port.CancelExpedition()

	// Act
	require.NoError(t, f.sched.Update())

	// Assert: the ship is idle again and sits within reach of the only port
	assert.Empty(t, f.sched.PlanOf(1))
}

func TestDemand_EnRouteShipTakesCargo(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddShip(1, 3, shared.Position{X: 5, Y: 0})
	world.AddShip(2, 3, shared.Position{X: 1, Y: 0})
	world.AddCargo(1, 2, 2, 1)
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{1: {cargoStop(1, shared.Seconds(5))}})

	// Act
	require.NoError(t, f.sched.Update())

	// Assert: the en-route ship wins over the closer idle one, which is
	// spread to the port nobody covers
	assert.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(5), load(2, 2))}, f.sched.PlanOf(1))
	assert.Equal(t, shipping.Plan{cargoStop(2, shared.Seconds(99))}, f.sched.PlanOf(2))
}

func TestDemand_FarEnRouteShipIsOnlyALastResort(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddShip(1, 3, shared.Position{X: 4000, Y: 0})
	world.AddShip(2, 2, shared.Position{X: 1, Y: 0})
	world.AddCargo(1, 2, 3, 1)
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{1: {cargoStop(1, shared.Seconds(4000))}})

	// Act
	require.NoError(t, f.sched.Update())

	// Assert: the idle ship takes what it can, the distant ship the rest
	assert.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(1), load(2, 2))}, f.sched.PlanOf(2))
	assert.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(4000), load(2, 1))}, f.sched.PlanOf(1))
}

func TestDemand_DetourSplicesNearbyPorts(t *testing.T) {
	// Arrange: the ship sails 1 -> 3; ports 2 and 4 lie close to them
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 10, Y: 0})
	world.AddPort(3, shared.Position{X: 100, Y: 0})
	world.AddPort(4, shared.Position{X: 110, Y: 0})
	ship := world.AddShip(1, 5, shared.Position{X: 0, Y: 0})
	ship.Load(holdItems(100, 3, 1))
	world.AddCargo(2, 4, 2, 1)
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{
		1: {cargoStop(1, 0), cargoStop(3, shared.Seconds(100))},
	})

	// Act
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{
		cargoStop(1, 0),
		cargoStop(2, shared.Seconds(10), load(4, 2)),
		cargoStop(4, shared.Seconds(100)),
		cargoStop(3, shared.Seconds(10)),
	}, f.sched.PlanOf(1))
	require.Len(t, f.sink.named("assignment"), 1)
	assert.Equal(t, shipping.AssignDetour, f.sink.named("assignment")[0].(shipping.AssignmentEvent).Kind)
}

func TestDemand_RoomFreedByDetourIsUsedInTheSameUpdate(t *testing.T) {
	// Arrange: the ship sails 1 -> 2 -> 3 -> 5 with room for 3. Port 4 lies
	// just past port 2 and is not on the plan.
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddPort(3, shared.Position{X: 200, Y: 0})
	world.AddPort(4, shared.Position{X: 110, Y: 0})
	world.AddPort(5, shared.Position{X: 300, Y: 0})
	world.AddShip(1, 3, shared.Position{X: 0, Y: 0})
	world.AddCargo(1, 4, 2, 9)
	world.AddCargo(3, 5, 3, 5)
	world.AddCargo(4, 3, 1, 1)
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{
		1: {
			cargoStop(1, 0),
			cargoStop(2, shared.Seconds(100)),
			cargoStop(3, shared.Seconds(100)),
			cargoStop(5, shared.Seconds(100)),
		},
	})

	// Act: 1 -> 4 items first fill the hold past port 3, then the detour
	// through port 4 drops them early
	require.NoError(t, f.sched.Update())
	first := f.sched.Table()
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{
		cargoStop(1, 0, load(4, 2)),
		cargoStop(2, shared.Seconds(100)),
		cargoStop(4, shared.Seconds(10), load(3, 1)),
		cargoStop(3, shared.Seconds(90), load(5, 3)),
		cargoStop(5, shared.Seconds(100)),
	}, f.sched.PlanOf(1))
	assert.Equal(t, first, f.sched.Table())
}

func TestDemand_DetourAllowedWhenStartIsVisitedLater(t *testing.T) {
	// Arrange: the plan reaches port 2 only after port 3
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 10, Y: 0})
	world.AddPort(3, shared.Position{X: 100, Y: 0})
	world.AddPort(4, shared.Position{X: 200, Y: 0})
	world.AddShip(1, 3, shared.Position{X: 0, Y: 0})
	world.AddCargo(2, 3, 2, 1)
	f := newFixture(world, nil)
	f.restore(t, map[shared.ShipID]shipping.Plan{
		1: {cargoStop(1, 0), cargoStop(3, shared.Seconds(100)), cargoStop(2, shared.Seconds(90))},
	})

	// Act
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{
		cargoStop(1, 0),
		cargoStop(2, shared.Seconds(10), load(3, 2)),
		cargoStop(3, shared.Seconds(90)),
		cargoStop(2, shared.Seconds(90)),
	}, f.sched.PlanOf(1))
	require.Len(t, f.sink.named("assignment"), 1)
	assert.Equal(t, shipping.AssignDetour, f.sink.named("assignment")[0].(shipping.AssignmentEvent).Kind)
}

func TestRebalance_IdleShipsSpreadOut(t *testing.T) {
	// Arrange: two idle ships parked at port 1
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddPort(3, shared.Position{X: 0, Y: 100})
	world.AddShip(1, 3, shared.Position{X: 0, Y: 0})
	world.AddShip(2, 3, shared.Position{X: 0, Y: 0})
	f := newFixture(world, nil)

	// Act
	require.NoError(t, f.sched.Update())
	first := f.sched.Table()
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{cargoStop(2, shared.Seconds(100))}, f.sched.PlanOf(1))
	assert.Empty(t, f.sched.PlanOf(2))
	assert.Equal(t, first, f.sched.Table())
}
