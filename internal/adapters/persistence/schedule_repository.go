package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// GormScheduleRepository implements shipping.ScheduleRepository using GORM
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new GORM schedule repository
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// Save encodes snap and stores it under a fresh id
func (r *GormScheduleRepository) Save(ctx context.Context, fleet, runID string, snap shipping.Snapshot) (string, error) {
	data, err := snap.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	stops := 0
	for _, sp := range snap.Ships {
		stops += len(sp.Plan)
	}

	model := &ScheduleSnapshotModel{
		ID:        uuid.New().String(),
		Fleet:     fleet,
		RunID:     runID,
		TakenAt:   time.Now().UTC(),
		GameTime:  int64(snap.LastUpdate),
		ShipCount: len(snap.Ships),
		StopCount: stops,
		Version:   int(snap.Version),
		Data:      data,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}
	return model.ID, nil
}

// Latest returns the most recent snapshot of a fleet
func (r *GormScheduleRepository) Latest(ctx context.Context, fleet string) (*shipping.StoredSnapshot, error) {
	var model ScheduleSnapshotModel
	result := r.db.WithContext(ctx).
		Where("fleet = ?", fleet).
		Order("taken_at DESC").
		Order("game_time DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: fleet %s", shipping.ErrSnapshotNotFound, fleet)
		}
		return nil, fmt.Errorf("failed to find latest snapshot: %w", result.Error)
	}
	return r.modelToSnapshot(&model)
}

// FindByID returns one snapshot by id
func (r *GormScheduleRepository) FindByID(ctx context.Context, id string) (*shipping.StoredSnapshot, error) {
	var model ScheduleSnapshotModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", shipping.ErrSnapshotNotFound, id)
		}
		return nil, fmt.Errorf("failed to find snapshot: %w", result.Error)
	}
	return r.modelToSnapshot(&model)
}

// List returns snapshot summaries of a fleet, newest first. A limit of zero
// returns every snapshot.
func (r *GormScheduleRepository) List(ctx context.Context, fleet string, limit int) ([]shipping.SnapshotSummary, error) {
	var models []ScheduleSnapshotModel
	query := r.db.WithContext(ctx).
		Select("id", "fleet", "run_id", "taken_at", "game_time", "ship_count", "stop_count").
		Where("fleet = ?", fleet).
		Order("taken_at DESC").
		Order("game_time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	summaries := make([]shipping.SnapshotSummary, 0, len(models))
	for i := range models {
		summaries = append(summaries, summaryOf(&models[i]))
	}
	return summaries, nil
}

func (r *GormScheduleRepository) modelToSnapshot(model *ScheduleSnapshotModel) (*shipping.StoredSnapshot, error) {
	var snap shipping.Snapshot
	if err := snap.UnmarshalBinary(model.Data); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", model.ID, err)
	}
	return &shipping.StoredSnapshot{SnapshotSummary: summaryOf(model), Snapshot: snap}, nil
}

func summaryOf(model *ScheduleSnapshotModel) shipping.SnapshotSummary {
	return shipping.SnapshotSummary{
		ID:        model.ID,
		Fleet:     model.Fleet,
		RunID:     model.RunID,
		TakenAt:   model.TakenAt,
		GameTime:  shared.Time(model.GameTime),
		ShipCount: model.ShipCount,
		StopCount: model.StopCount,
	}
}
