package shipping

import (
	"time"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// CostOracle answers travel-time estimates. Answers are a pure function of
// the current map state; calls may be expensive.
type CostOracle interface {
	PortToPort(from, to shared.PortID) shared.Duration
	ShipToPort(ship shared.ShipID, to shared.PortID) shared.Duration
}

// Fleet enumerates the ports and ships of one interconnected water body.
// Ports and Ships must return ids in ascending order.
type Fleet interface {
	Ports() []shared.PortID
	Ships() []shared.ShipID
	Port(id shared.PortID) (Port, bool)
	Ship(id shared.ShipID) (Ship, bool)
}

// Port is the scheduler's view of a dock and the cargo waiting there
type Port interface {
	ID() shared.PortID
	CountWaiting(dest shared.PortID) int
	CalcMaxPriority(dest shared.PortID) int64
	IsExpeditionReady() bool
	TakeExpeditionCargo() []shared.CargoItem
	// TakeWaiting removes up to max items addressed to dest. Returning fewer
	// is allowed (late cancellation).
	TakeWaiting(dest shared.PortID, max int) []shared.CargoItem
	// ReturnToPlanning puts items waiting for dest back into the
	// awaiting-re-plan state
	ReturnToPlanning(dest shared.PortID)
	ExpeditionLaunched(ship shared.ShipID)
}

// Ship is the scheduler's view of a vessel
type Ship interface {
	ID() shared.ShipID
	Capacity() int
	Hold() []shared.CargoItem
	Load(items []shared.CargoItem)
	Destination() shared.PortID
	SetDestination(port shared.PortID)
	// RedirectCargo readdresses every item in the hold bound for from to to
	// and returns how many were changed
	RedirectCargo(from, to shared.PortID) int
	StartExpedition(port shared.PortID, items []shared.CargoItem)
}

// Liveness resolves persisted ids against the objects alive after loading
type Liveness interface {
	PortAlive(id shared.PortID) bool
	ShipAlive(id shared.ShipID) bool
}

// Logger is the structured logging port used by the scheduler
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// EventSink receives observable scheduling events
type EventSink interface {
	Publish(event Event)
}

// MetricsRecorder records scheduler timings and outcomes
type MetricsRecorder interface {
	RecordPass(pass string, elapsed time.Duration)
	RecordUpdate(plans, idle int)
	RecordEvent(event Event)
}

type noOpLogger struct{}

func (noOpLogger) Log(string, string, map[string]interface{}) {}

type noOpSink struct{}

func (noOpSink) Publish(Event) {}

type noOpMetrics struct{}

func (noOpMetrics) RecordPass(string, time.Duration) {}
func (noOpMetrics) RecordUpdate(int, int)            {}
func (noOpMetrics) RecordEvent(Event)                {}

// EventSinks fans an event out to several sinks in order
type EventSinks []EventSink

func (s EventSinks) Publish(event Event) {
	for _, sink := range s {
		sink.Publish(event)
	}
}
