package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/seafaring-go/internal/application/mediator"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// ListSnapshotsQuery lists the stored snapshots of a fleet, newest first
type ListSnapshotsQuery struct {
	Fleet string
	Limit int
}

// ListSnapshotsResponse represents the result of the query
type ListSnapshotsResponse struct {
	Snapshots []shipping.SnapshotSummary
}

// ListSnapshotsHandler handles the ListSnapshots query
type ListSnapshotsHandler struct {
	snapshots shipping.ScheduleRepository
}

// NewListSnapshotsHandler creates a new ListSnapshotsHandler
func NewListSnapshotsHandler(snapshots shipping.ScheduleRepository) *ListSnapshotsHandler {
	return &ListSnapshotsHandler{snapshots: snapshots}
}

// Handle executes the ListSnapshots query
func (h *ListSnapshotsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListSnapshotsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListSnapshotsQuery")
	}
	if query.Fleet == "" {
		return nil, shared.NewValidationError("fleet", "is required")
	}
	if query.Limit < 0 {
		return nil, shared.NewValidationError("limit", "must not be negative")
	}

	summaries, err := h.snapshots.List(ctx, query.Fleet, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return &ListSnapshotsResponse{Snapshots: summaries}, nil
}
