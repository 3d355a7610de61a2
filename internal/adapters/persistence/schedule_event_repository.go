package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// GormScheduleEventRepository implements shipping.ScheduleEventRepository using GORM
type GormScheduleEventRepository struct {
	db *gorm.DB
}

// NewGormScheduleEventRepository creates a new event repository
func NewGormScheduleEventRepository(db *gorm.DB) *GormScheduleEventRepository {
	return &GormScheduleEventRepository{db: db}
}

// Record persists one event
func (r *GormScheduleEventRepository) Record(ctx context.Context, fleet, runID string, event shipping.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.EventName(), err)
	}

	ship, port, at := eventKeys(event)
	model := &ScheduleEventModel{
		EventID:    uuid.New().String(),
		Fleet:      fleet,
		RunID:      runID,
		Name:       event.EventName(),
		ShipID:     uint32(ship),
		PortID:     uint32(port),
		GameTime:   int64(at),
		Payload:    string(payload),
		RecordedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// ListByFleet returns the events of a fleet in recording order. A limit of
// zero returns every event.
func (r *GormScheduleEventRepository) ListByFleet(ctx context.Context, fleet string, limit int) ([]shipping.EventRecord, error) {
	var models []ScheduleEventModel
	query := r.db.WithContext(ctx).Where("fleet = ?", fleet).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	entries := make([]shipping.EventRecord, 0, len(models))
	for _, model := range models {
		entry := shipping.EventRecord{
			EventID:    model.EventID,
			Fleet:      model.Fleet,
			RunID:      model.RunID,
			Name:       model.Name,
			Ship:       shared.ShipID(model.ShipID),
			Port:       shared.PortID(model.PortID),
			GameTime:   shared.Time(model.GameTime),
			RecordedAt: model.RecordedAt,
		}
		if model.Payload != "" {
			if err := json.Unmarshal([]byte(model.Payload), &entry.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event payload: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// eventKeys extracts the indexed columns of an event
func eventKeys(event shipping.Event) (shared.ShipID, shared.PortID, shared.Time) {
	switch e := event.(type) {
	case shipping.AssignmentEvent:
		return e.Ship, e.Start, e.At
	case shipping.ExpeditionLaunchedEvent:
		return e.Ship, e.Port, e.At
	case shipping.ShipReroutedEvent:
		return e.Ship, e.Removed, e.At
	case shipping.StrandedCargoEvent:
		return e.Ship, e.Removed, e.At
	case shipping.LoadReducedEvent:
		return e.Ship, e.Start, e.At
	default:
		return 0, 0, 0
	}
}
