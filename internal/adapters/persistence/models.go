package persistence

import (
	"time"
)

// ScheduleSnapshotModel represents the schedule_snapshots table.
// Data holds the little-endian encoded scheduler snapshot.
type ScheduleSnapshotModel struct {
	ID        string    `gorm:"column:id;primaryKey;not null"`
	Fleet     string    `gorm:"column:fleet;not null;index:idx_snapshots_fleet_taken,priority:1"`
	RunID     string    `gorm:"column:run_id;index"`
	TakenAt   time.Time `gorm:"column:taken_at;not null;index:idx_snapshots_fleet_taken,priority:2"`
	GameTime  int64     `gorm:"column:game_time;not null"`
	ShipCount int       `gorm:"column:ship_count;not null;default:0"`
	StopCount int       `gorm:"column:stop_count;not null;default:0"`
	Version   int       `gorm:"column:version;not null"`
	Data      []byte    `gorm:"column:data;not null"`
}

func (ScheduleSnapshotModel) TableName() string {
	return "schedule_snapshots"
}

// ScheduleEventModel represents the schedule_events table
type ScheduleEventModel struct {
	ID         int       `gorm:"column:id;primaryKey;autoIncrement"`
	EventID    string    `gorm:"column:event_id;unique;not null"`
	Fleet      string    `gorm:"column:fleet;not null;index"`
	RunID      string    `gorm:"column:run_id;index"`
	Name       string    `gorm:"column:name;not null"`
	ShipID     uint32    `gorm:"column:ship_id;not null"`
	PortID     uint32    `gorm:"column:port_id;not null;default:0"`
	GameTime   int64     `gorm:"column:game_time;not null"`
	Payload    string    `gorm:"column:payload;type:text"` // JSON as text
	RecordedAt time.Time `gorm:"column:recorded_at;not null"`
}

func (ScheduleEventModel) TableName() string {
	return "schedule_events"
}
