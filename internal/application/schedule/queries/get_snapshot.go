package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/seafaring-go/internal/application/mediator"
	"github.com/andrescamacho/seafaring-go/internal/application/schedule/dtos"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// GetSnapshotQuery fetches one snapshot by id, or the fleet's latest when
// ID is empty
type GetSnapshotQuery struct {
	ID    string
	Fleet string
}

// GetSnapshotResponse represents the result of the query
type GetSnapshotResponse struct {
	Summary      shipping.SnapshotSummary
	LastExactETA shared.Time
	Plans        []dtos.PlanDTO
}

// GetSnapshotHandler handles the GetSnapshot query
type GetSnapshotHandler struct {
	snapshots shipping.ScheduleRepository
}

// NewGetSnapshotHandler creates a new GetSnapshotHandler
func NewGetSnapshotHandler(snapshots shipping.ScheduleRepository) *GetSnapshotHandler {
	return &GetSnapshotHandler{snapshots: snapshots}
}

// Handle executes the GetSnapshot query
func (h *GetSnapshotHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*GetSnapshotQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetSnapshotQuery")
	}

	var stored *shipping.StoredSnapshot
	var err error
	switch {
	case query.ID != "":
		stored, err = h.snapshots.FindByID(ctx, query.ID)
	case query.Fleet != "":
		stored, err = h.snapshots.Latest(ctx, query.Fleet)
	default:
		return nil, shared.NewValidationError("id", "either a snapshot id or a fleet is required")
	}
	if err != nil {
		return nil, err
	}

	return &GetSnapshotResponse{
		Summary:      stored.SnapshotSummary,
		LastExactETA: stored.Snapshot.LastExactETA,
		Plans:        dtos.SnapshotToDTOs(stored.Snapshot),
	}, nil
}
