package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/seafaring-go/internal/adapters/persistence"
	"github.com/andrescamacho/seafaring-go/internal/application/schedule/queries"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
	"github.com/andrescamacho/seafaring-go/test/helpers"
)

func storedPlan() shipping.Snapshot {
	return shipping.Snapshot{
		Version:      shipping.SnapshotFormatVersion,
		LastUpdate:   7000,
		LastExactETA: 6000,
		Ships: []shipping.ShipPlan{{Ship: 1, Plan: shipping.Plan{
			{Port: 1, DurationFromPrevious: shared.Seconds(2), Loads: []shipping.Load{{Destination: 2, Quantity: 4}}},
			{Port: 2, DurationFromPrevious: shared.Seconds(5)},
		}}},
	}
}

func TestGetSnapshot_LatestByFleet(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormScheduleRepository(db)
	id, err := repo.Save(context.Background(), "north-sea", "run-1", storedPlan())
	require.NoError(t, err)
	handler := queries.NewGetSnapshotHandler(repo)

	// Act
	resp, err := handler.Handle(context.Background(), &queries.GetSnapshotQuery{Fleet: "north-sea"})

	// Assert
	require.NoError(t, err)
	result := resp.(*queries.GetSnapshotResponse)
	assert.Equal(t, id, result.Summary.ID)
	assert.Equal(t, shared.Time(6000), result.LastExactETA)
	require.Len(t, result.Plans, 1)
	require.Len(t, result.Plans[0].Stops, 2)
	assert.Equal(t, shared.Seconds(7), result.Plans[0].Stops[1].ETA)
	assert.Equal(t, 4, result.Plans[0].Stops[0].Loads[0].Quantity)
}

func TestGetSnapshot_RequiresIDOrFleet(t *testing.T) {
	// Arrange
	handler := queries.NewGetSnapshotHandler(persistence.NewGormScheduleRepository(helpers.NewTestDB(t)))

	// Act
	_, err := handler.Handle(context.Background(), &queries.GetSnapshotQuery{})

	// Assert
	var validation *shared.ValidationError
	assert.True(t, errors.As(err, &validation))
}

func TestListSnapshots_ReturnsNewestFirst(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormScheduleRepository(db)
	_, err := repo.Save(context.Background(), "north-sea", "run-1", storedPlan())
	require.NoError(t, err)
	newest, err := repo.Save(context.Background(), "north-sea", "run-2", storedPlan())
	require.NoError(t, err)
	handler := queries.NewListSnapshotsHandler(repo)

	// Act
	resp, err := handler.Handle(context.Background(), &queries.ListSnapshotsQuery{Fleet: "north-sea", Limit: 1})

	// Assert
	require.NoError(t, err)
	result := resp.(*queries.ListSnapshotsResponse)
	require.Len(t, result.Snapshots, 1)
	assert.Equal(t, newest, result.Snapshots[0].ID)
}

func TestListEvents_FiltersByRunAndName(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormScheduleEventRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Record(ctx, "north-sea", "run-1", shipping.AssignmentEvent{Ship: 1, Kind: shipping.AssignIdle}))
	require.NoError(t, repo.Record(ctx, "north-sea", "run-2", shipping.AssignmentEvent{Ship: 2, Kind: shipping.AssignIdle}))
	require.NoError(t, repo.Record(ctx, "north-sea", "run-2", shipping.LoadReducedEvent{Ship: 2}))
	handler := queries.NewListEventsHandler(repo)

	// Act
	resp, err := handler.Handle(ctx, &queries.ListEventsQuery{Fleet: "north-sea", RunID: "run-2", Name: "assignment"})

	// Assert
	require.NoError(t, err)
	result := resp.(*queries.ListEventsResponse)
	require.Len(t, result.Events, 1)
	assert.Equal(t, shared.ShipID(2), result.Events[0].Ship)
}
