package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/seafaring-go/internal/application/mediator"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// ListEventsQuery lists a fleet's logged scheduling events
type ListEventsQuery struct {
	Fleet string
	RunID string
	Name  string
	Limit int
}

// ListEventsResponse represents the result of the query
type ListEventsResponse struct {
	Events []shipping.EventRecord
}

// ListEventsHandler handles the ListEvents query
type ListEventsHandler struct {
	events shipping.ScheduleEventRepository
}

// NewListEventsHandler creates a new ListEventsHandler
func NewListEventsHandler(events shipping.ScheduleEventRepository) *ListEventsHandler {
	return &ListEventsHandler{events: events}
}

// Handle executes the ListEvents query. RunID and Name filter the log; Limit
// applies after filtering.
func (h *ListEventsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListEventsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListEventsQuery")
	}
	if query.Fleet == "" {
		return nil, shared.NewValidationError("fleet", "is required")
	}

	records, err := h.events.ListByFleet(ctx, query.Fleet, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	filtered := make([]shipping.EventRecord, 0, len(records))
	for _, r := range records {
		if query.RunID != "" && r.RunID != query.RunID {
			continue
		}
		if query.Name != "" && r.Name != query.Name {
			continue
		}
		filtered = append(filtered, r)
		if query.Limit > 0 && len(filtered) == query.Limit {
			break
		}
	}
	return &ListEventsResponse{Events: filtered}, nil
}
