package shipping_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/seafaring-go/internal/adapters/memory"
	"github.com/andrescamacho/seafaring-go/internal/adapters/routing"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

type recordingSink struct {
	events []shipping.Event
}

func (r *recordingSink) Publish(e shipping.Event) {
	r.events = append(r.events, e)
}

func (r *recordingSink) named(name string) []shipping.Event {
	var out []shipping.Event
	for _, e := range r.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	world  *memory.World
	clock  *shared.ManualClock
	sink   *recordingSink
	sched  *shipping.Scheduler
	oracle shipping.CostOracle
}

func newFixture(world *memory.World, oracle shipping.CostOracle) *fixture {
	if oracle == nil {
		oracle = routing.NewEuclideanOracle(world, world.Speed())
	}
	clock := shared.NewManualClock(0)
	sink := &recordingSink{}
	tuning := shipping.DefaultTuning()
	tuning.VerifyInvariants = true
	sched := shipping.NewScheduler(world, oracle, clock,
		shipping.WithTuning(tuning),
		shipping.WithEventSink(sink),
	)
	return &fixture{world: world, clock: clock, sink: sink, sched: sched, oracle: oracle}
}

// restore installs plans through a snapshot taken at the current clock
func (f *fixture) restore(t *testing.T, plans map[shared.ShipID]shipping.Plan) {
	t.Helper()
	snap := shipping.Snapshot{
		Version:      shipping.SnapshotFormatVersion,
		LastUpdate:   f.clock.Now(),
		LastExactETA: f.clock.Now(),
	}
	for _, id := range f.world.Ships() {
		snap.Ships = append(snap.Ships, shipping.ShipPlan{Ship: id, Plan: plans[id]})
	}
	require.NoError(t, f.sched.Restore(snap, f.world))
}

func cargoStop(port shared.PortID, d shared.Duration, loads ...shipping.Load) shipping.Stop {
	s := shipping.NewCargoStop(port, d)
	for _, l := range loads {
		s.AddLoad(l.Destination, l.Quantity)
	}
	return s
}

func load(dest shared.PortID, qty int) shipping.Load {
	return shipping.Load{Destination: dest, Quantity: qty}
}

func holdItems(first shared.ItemID, dest shared.PortID, n int) []shared.CargoItem {
	out := make([]shared.CargoItem, n)
	for i := range out {
		out[i] = shared.CargoItem{ID: first + shared.ItemID(i), Destination: dest}
	}
	return out
}

func TestUpdate_IdleShipPicksUpWaitingCargo(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	ship := world.AddShip(1, 3, shared.Position{X: 2, Y: 0})
	world.AddCargo(1, 2, 5, 1)
	f := newFixture(world, nil)

	// Act
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(2), load(2, 3))}, f.sched.PlanOf(1))
	assert.Equal(t, shared.PortID(1), ship.Destination())
}

func TestOnShipArrived_LoadsAndHeadsForDelivery(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	ship := world.AddShip(1, 3, shared.Position{X: 2, Y: 0})
	world.AddCargo(1, 2, 5, 1)
	f := newFixture(world, nil)
	require.NoError(t, f.sched.Update())

	// Act
	require.NoError(t, world.Advance(shared.Seconds(2), f.sched))

	// Assert
	port, _ := world.PortByID(1)
	assert.Len(t, ship.Hold(), 3)
	assert.Equal(t, 2, port.CountWaiting(2))
	assert.Equal(t, shipping.Plan{cargoStop(2, shared.Seconds(100))}, f.sched.PlanOf(1))
	assert.Equal(t, shared.PortID(2), ship.Destination())
}

func TestOnShipArrived_ToleratesLateCancellation(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	ship := world.AddShip(1, 5, shared.Position{X: 0, Y: 0})
	world.AddCargo(1, 2, 4, 1)
	f := newFixture(world, nil)
	require.NoError(t, f.sched.Update())
	port, _ := world.PortByID(1)
	port.Cancel(2, 3)

	// Act
	err := f.sched.OnShipArrived(1, 1)

	// Assert
	require.NoError(t, err)
	assert.Len(t, ship.Hold(), 1)
	assert.Equal(t, shipping.Plan{cargoStop(2, shared.Seconds(100))}, f.sched.PlanOf(1))
}

func TestOnShipArrived_RejectsArrivalOffPlan(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{})
	world.AddPort(2, shared.Position{X: 10})
	world.AddShip(1, 3, shared.Position{})
	f := newFixture(world, nil)

	// Act
	errOffPlan := f.sched.OnShipArrived(1, 2)
	errUnknown := f.sched.OnShipArrived(9, 1)

	// Assert
	var violation *shared.InvariantViolationError
	require.True(t, errors.As(errOffPlan, &violation))
	assert.Equal(t, "arrival-at-head", violation.Invariant)
	var unknown *shared.UnknownShipError
	require.True(t, errors.As(errUnknown, &unknown))
	assert.Equal(t, shared.ShipID(9), unknown.Ship)
}

func TestUpdate_IsIdempotentWithoutChanges(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddPort(3, shared.Position{X: 0, Y: 100})
	world.AddShip(1, 3, shared.Position{X: 2, Y: 0})
	world.AddShip(2, 2, shared.Position{X: 0, Y: 0})
	world.AddShip(3, 4, shared.Position{X: 1, Y: 1})
	world.AddCargo(1, 2, 4, 1)
	world.AddCargo(3, 1, 2, 5)
	f := newFixture(world, nil)
	require.NoError(t, f.sched.Update())
	first := f.sched.Table()

	// Act
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, first, f.sched.Table())
}

func TestUpdate_IsDeterministic(t *testing.T) {
	run := func() []byte {
		sc, err := memory.ParseScenario([]byte(busyScenario))
		require.NoError(t, err)
		world := sc.Build()
		f := newFixture(world, nil)
		for i := 0; i < 30; i++ {
			f.clock.Advance(shared.Seconds(1))
			require.NoError(t, world.Advance(shared.Seconds(1), f.sched))
			require.NoError(t, f.sched.Update())
		}
		data, err := f.sched.Snapshot().MarshalBinary()
		require.NoError(t, err)
		return data
	}

	assert.Equal(t, run(), run())
}

func TestUpdate_KeepsInvariantsThroughASimulation(t *testing.T) {
	// Arrange
	sc, err := memory.ParseScenario([]byte(busyScenario))
	require.NoError(t, err)
	world := sc.Build()
	f := newFixture(world, nil)
	waitingBefore := world.Waiting()

	// Act
	for i := 0; i < 600; i++ {
		f.clock.Advance(shared.Seconds(1))
		require.NoError(t, world.Advance(shared.Seconds(1), f.sched))
		require.NoError(t, f.sched.Update())
	}

	// Assert
	assert.Greater(t, world.Delivered(), 0)
	assert.Less(t, world.Waiting(), waitingBefore)
}

const busyScenario = `
name: busy
speed: 2
ports:
  - {id: 1, x: 0, y: 0}
  - {id: 2, x: 60, y: 0}
  - {id: 3, x: 60, y: 60}
  - {id: 4, x: 0, y: 60}
  - {id: 5, x: 30, y: 30}
ships:
  - {id: 1, capacity: 3, x: 0, y: 0}
  - {id: 2, capacity: 5, x: 60, y: 0}
  - {id: 3, capacity: 2, x: 30, y: 30}
  - {id: 4, capacity: 4, x: 10, y: 50}
cargo:
  - {from: 1, to: 3, count: 7, priority: 2}
  - {from: 2, to: 4, count: 4, priority: 1}
  - {from: 5, to: 1, count: 3, priority: 5}
  - {from: 4, to: 2, count: 6, priority: 1}
  - {from: 3, to: 5, count: 2, priority: 3}
`

func TestUpdate_HigherPriorityRouteIsServedFirst(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddPort(3, shared.Position{X: 0, Y: 100})
	world.AddShip(1, 3, shared.Position{X: 0, Y: 0})
	world.AddCargo(1, 2, 3, 1)
	world.AddCargo(1, 3, 3, 10)
	f := newFixture(world, nil)

	// Act
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Equal(t, shipping.Plan{cargoStop(1, 0, load(3, 3))}, f.sched.PlanOf(1))
}

func TestOnShipRemoved_DropsPlanAndDemandReturns(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{X: 0, Y: 0})
	world.AddPort(2, shared.Position{X: 100, Y: 0})
	world.AddShip(1, 3, shared.Position{X: 5, Y: 0})
	world.AddShip(2, 3, shared.Position{X: 95, Y: 0})
	world.AddCargo(1, 2, 3, 1)
	f := newFixture(world, nil)
	require.NoError(t, f.sched.Update())
	require.Len(t, f.sched.PlanOf(1), 1)
	require.Empty(t, f.sched.PlanOf(2))

	// Act
	world.RemoveShip(1)
	f.sched.OnShipRemoved(1)
	require.NoError(t, f.sched.Update())

	// Assert
	assert.Empty(t, f.sched.PlanOf(1))
	assert.Equal(t, shipping.Plan{cargoStop(1, shared.Seconds(95), load(2, 3))}, f.sched.PlanOf(2))
}

func TestOnShipAdded_GivesEmptyPlan(t *testing.T) {
	// Arrange
	world := memory.NewWorld(1)
	world.AddPort(1, shared.Position{})
	f := newFixture(world, nil)
	world.AddShip(4, 2, shared.Position{})

	// Act
	f.sched.OnShipAdded(4)

	// Assert
	assert.True(t, f.sched.Table().Has(4))
	assert.NoError(t, f.sched.VerifyInvariants())
}
