package shared

import (
	"fmt"
	"slices"
)

// PortID identifies a port (dock) in the fleet. The zero value means "no port".
type PortID uint32

// NoPort is used for ships without a destination and cargo awaiting re-planning.
const NoPort PortID = 0

// IsZero reports whether the id refers to no port at all
func (p PortID) IsZero() bool {
	return p == NoPort
}

func (p PortID) String() string {
	if p == NoPort {
		return "port(none)"
	}
	return fmt.Sprintf("port(%d)", uint32(p))
}

// ShipID identifies a ship in the fleet
type ShipID uint32

func (s ShipID) String() string {
	return fmt.Sprintf("ship(%d)", uint32(s))
}

// ItemID identifies a single ware or worker in transit
type ItemID uint32

func (i ItemID) String() string {
	return fmt.Sprintf("item(%d)", uint32(i))
}

// SortPortIDs sorts ids ascending in place and returns them
func SortPortIDs(ids []PortID) []PortID {
	slices.Sort(ids)
	return ids
}

// SortShipIDs sorts ids ascending in place and returns them
func SortShipIDs(ids []ShipID) []ShipID {
	slices.Sort(ids)
	return ids
}
