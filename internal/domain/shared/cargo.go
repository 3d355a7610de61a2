package shared

import "fmt"

// CargoItem is a single ware or worker in transit. It is owned by exactly one
// container (a port's waiting set or a ship's hold) and moved, never copied.
type CargoItem struct {
	ID          ItemID
	Destination PortID
	// Priority is the shipping priority this item contributes to its port's
	// max-priority calculation
	Priority int64
}

// NewCargoItem creates a new cargo item with validation
func NewCargoItem(id ItemID, destination PortID, priority int64) (CargoItem, error) {
	if id == 0 {
		return CargoItem{}, NewValidationError("id", "cannot be zero")
	}
	if priority < 0 {
		return CargoItem{}, NewValidationError("priority", "cannot be negative")
	}
	return CargoItem{ID: id, Destination: destination, Priority: priority}, nil
}

// AwaitingPlan reports whether the item has no destination yet
func (c CargoItem) AwaitingPlan() bool {
	return c.Destination.IsZero()
}

func (c CargoItem) String() string {
	return fmt.Sprintf("CargoItem(%d -> %s)", uint32(c.ID), c.Destination)
}

// CountByDestination tallies items per destination
func CountByDestination(items []CargoItem) map[PortID]int {
	counts := make(map[PortID]int)
	for _, item := range items {
		counts[item.Destination]++
	}
	return counts
}
