package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

func items(dest shared.PortID, n int) []shared.CargoItem {
	out := make([]shared.CargoItem, n)
	for i := range out {
		out[i] = shared.CargoItem{ID: shared.ItemID(i + 1), Destination: dest}
	}
	return out
}

func stopWith(port shared.PortID, loads ...Load) Stop {
	s := NewCargoStop(port, shared.Seconds(1))
	for _, l := range loads {
		s.AddLoad(l.Destination, l.Quantity)
	}
	return s
}

func TestFreeCapacity_EmptyShip(t *testing.T) {
	plan := Plan{stopWith(1)}

	assert.Equal(t, 5, plan.freeCapacity(nil, 5, 0, 2))
}

func TestFreeCapacity_CountsLoadsUntilDestination(t *testing.T) {
	// Arrange: picks up 2 for port 3 at port 1, then 2 for port 4 at port 2
	plan := Plan{
		stopWith(1, Load{Destination: 3, Quantity: 2}),
		stopWith(2, Load{Destination: 4, Quantity: 2}),
		stopWith(3),
		stopWith(4),
	}

	// Act & Assert
	// Taking cargo for port 3 at port 1: peak is 4 aboard between port 2 and 3
	assert.Equal(t, 1, plan.freeCapacity(nil, 5, 0, 3))
	// Taking cargo for port 4 at port 3: the port 3 cargo is already gone
	assert.Equal(t, 3, plan.freeCapacity(nil, 5, 2, 4))
}

func TestFreeCapacity_HoldIsUnloadedAtItsDestination(t *testing.T) {
	// Arrange
	hold := items(1, 3)
	plan := Plan{stopWith(1), stopWith(2)}

	// Act & Assert
	assert.Equal(t, 4, plan.freeCapacity(hold, 4, 0, 2))
	assert.Equal(t, 1, plan.freeCapacity(append(hold, items(5, 3)...), 4, 0, 2))
}

func TestFreeCapacity_NeverNegative(t *testing.T) {
	plan := Plan{stopWith(1, Load{Destination: 2, Quantity: 6})}

	assert.Equal(t, 0, plan.freeCapacity(nil, 4, 0, 2))
}

func TestNeededStops(t *testing.T) {
	// Arrange
	plan := Plan{
		stopWith(1),
		stopWith(2, Load{Destination: 4, Quantity: 1}),
		stopWith(3),
		stopWith(4),
		stopWith(5),
	}
	hold := items(3, 1)

	// Act
	needed := plan.neededStops(hold)

	// Assert
	assert.Equal(t, []bool{false, true, true, true, false}, needed)
}

func TestStop_LoadsStaySortedAndMerged(t *testing.T) {
	// Arrange
	s := NewCargoStop(1, 0)

	// Act
	s.AddLoad(5, 1)
	s.AddLoad(2, 2)
	s.AddLoad(5, 3)
	s.AddLoad(3, 0)

	// Assert
	assert.Equal(t, []Load{{Destination: 2, Quantity: 2}, {Destination: 5, Quantity: 4}}, s.Loads)
	assert.Equal(t, 6, s.TotalLoad())
}

func TestStop_ReduceLoadDropsEmptyEntries(t *testing.T) {
	// Arrange
	s := stopWith(1, Load{Destination: 2, Quantity: 4}, Load{Destination: 3, Quantity: 1})

	// Act
	partial := s.ReduceLoad(2, 3)
	all := s.ReduceLoad(3, 10)

	// Assert
	assert.Equal(t, 3, partial)
	assert.Equal(t, 1, all)
	assert.Equal(t, []Load{{Destination: 2, Quantity: 1}}, s.Loads)
}

func TestStop_ExpeditionTakesNoLoads(t *testing.T) {
	s := NewExpeditionStop(1, 0)
	s.AddLoad(2, 1)

	assert.False(t, s.HasLoads())
	assert.True(t, s.IsExpedition())
}

func TestPlan_ETAAtIsCumulative(t *testing.T) {
	plan := Plan{
		NewCargoStop(1, shared.Seconds(2)),
		NewCargoStop(2, shared.Seconds(3)),
		NewCargoStop(3, shared.Seconds(4)),
	}

	assert.Equal(t, shared.Seconds(2), plan.ETAAt(0))
	assert.Equal(t, shared.Seconds(9), plan.ETAAt(2))
}

func TestPlan_CloneIsDeep(t *testing.T) {
	plan := Plan{stopWith(1, Load{Destination: 2, Quantity: 1})}

	clone := plan.Clone()
	clone[0].AddLoad(2, 5)

	assert.Equal(t, 1, plan[0].LoadFor(2))
	assert.Equal(t, 6, clone[0].LoadFor(2))
}
