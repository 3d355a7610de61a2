package shipping

import "github.com/andrescamacho/seafaring-go/internal/domain/shared"

// Event is an observable scheduling outcome
type Event interface {
	EventName() string
}

// AssignmentKind tells which part of the matching produced an assignment
type AssignmentKind string

const (
	AssignEnRoute    AssignmentKind = "en_route"
	AssignIdle       AssignmentKind = "idle"
	AssignLate       AssignmentKind = "late_en_route"
	AssignDetour     AssignmentKind = "detour"
	AssignExpedition AssignmentKind = "expedition"
	AssignRebalance  AssignmentKind = "rebalance"
)

// AssignmentEvent is published whenever a ship receives new work
type AssignmentEvent struct {
	Ship     shared.ShipID
	Kind     AssignmentKind
	Start    shared.PortID
	Dest     shared.PortID
	Quantity int
	At       shared.Time
}

func (AssignmentEvent) EventName() string { return "assignment" }

// ExpeditionLaunchedEvent is published when a ship leaves the fleet on an expedition
type ExpeditionLaunchedEvent struct {
	Ship  shared.ShipID
	Port  shared.PortID
	Items int
	At    shared.Time
}

func (ExpeditionLaunchedEvent) EventName() string { return "expedition_launched" }

// ShipReroutedEvent is published when in-flight cargo is readdressed after a
// port disappeared
type ShipReroutedEvent struct {
	Ship    shared.ShipID
	Removed shared.PortID
	To      shared.PortID
	Items   int
	At      shared.Time
}

func (ShipReroutedEvent) EventName() string { return "ship_rerouted" }

// StrandedCargoEvent is published when a ship carries cargo that no
// surviving port can receive. The ship idles until a port appears.
type StrandedCargoEvent struct {
	Ship    shared.ShipID
	Removed shared.PortID
	Items   int
	At      shared.Time
}

func (StrandedCargoEvent) EventName() string { return "stranded_cargo" }

// LoadReducedEvent is published when reconciliation trims a commitment
type LoadReducedEvent struct {
	Ship     shared.ShipID
	Start    shared.PortID
	Dest     shared.PortID
	Quantity int
	At       shared.Time
}

func (LoadReducedEvent) EventName() string { return "load_reduced" }
