package shipping

import (
	"context"
	"errors"
	"time"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// ErrSnapshotNotFound is returned when no stored snapshot matches a query
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotSummary describes a stored snapshot without decoding it
type SnapshotSummary struct {
	ID        string
	Fleet     string
	RunID     string
	TakenAt   time.Time
	GameTime  shared.Time
	ShipCount int
	StopCount int
}

// StoredSnapshot is a decoded snapshot with its metadata
type StoredSnapshot struct {
	SnapshotSummary
	Snapshot Snapshot
}

// EventRecord is one logged scheduling event
type EventRecord struct {
	EventID    string
	Fleet      string
	RunID      string
	Name       string
	Ship       shared.ShipID
	Port       shared.PortID
	GameTime   shared.Time
	Payload    map[string]interface{}
	RecordedAt time.Time
}

// ScheduleRepository stores encoded scheduler snapshots per fleet
type ScheduleRepository interface {
	Save(ctx context.Context, fleet, runID string, snap Snapshot) (string, error)
	Latest(ctx context.Context, fleet string) (*StoredSnapshot, error)
	FindByID(ctx context.Context, id string) (*StoredSnapshot, error)
	// List returns summaries newest first; limit 0 means no limit
	List(ctx context.Context, fleet string, limit int) ([]SnapshotSummary, error)
}

// ScheduleEventRepository appends and reads the scheduler event log
type ScheduleEventRepository interface {
	Record(ctx context.Context, fleet, runID string, event Event) error
	// ListByFleet returns events in recording order; limit 0 means no limit
	ListByFleet(ctx context.Context, fleet string, limit int) ([]EventRecord, error)
}
