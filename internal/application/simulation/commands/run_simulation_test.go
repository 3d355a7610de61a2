package commands_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/seafaring-go/internal/adapters/memory"
	"github.com/andrescamacho/seafaring-go/internal/adapters/persistence"
	"github.com/andrescamacho/seafaring-go/internal/adapters/routing"
	"github.com/andrescamacho/seafaring-go/internal/application/schedule/dtos"
	"github.com/andrescamacho/seafaring-go/internal/application/simulation/commands"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
	"github.com/andrescamacho/seafaring-go/test/helpers"
)

func euclidean(world *memory.World) (shipping.CostOracle, io.Closer, error) {
	return routing.NewEuclideanOracle(world, world.Speed()), nil, nil
}

func twoPortScenario() *memory.Scenario {
	return &memory.Scenario{
		Name:  "two-ports",
		Speed: 1,
		Ports: []memory.PortSpec{{ID: 1, X: 0, Y: 0}, {ID: 2, X: 10, Y: 0}},
		Ships: []memory.ShipSpec{{ID: 1, Capacity: 5, X: 0, Y: 0}},
		Cargo: []memory.CargoSpec{{From: 1, To: 2, Count: 3, Priority: 1}},
	}
}

func strictTuning() shipping.Tuning {
	tuning := shipping.DefaultTuning()
	tuning.VerifyInvariants = true
	return tuning
}

func TestRunSimulation_DeliversCargo(t *testing.T) {
	// Arrange
	handler := commands.NewRunSimulationHandler(euclidean, strictTuning(), nil, nil, nil, nil)
	cmd := &commands.RunSimulationCommand{
		Scenario: twoPortScenario(),
		Fleet:    "test",
		Ticks:    40,
		Tick:     time.Second,
	}

	// Act
	resp, err := handler.Handle(context.Background(), cmd)

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunSimulationResponse)
	assert.Equal(t, 40, result.Ticks)
	assert.Equal(t, shared.Seconds(40), shared.Duration(result.FinalTime))
	assert.Equal(t, 3, result.Delivered)
	assert.Equal(t, 0, result.Waiting)
	assert.GreaterOrEqual(t, result.Events["assignment"], 1)
	require.Len(t, result.Plans, 1)
	assert.Empty(t, result.SnapshotIDs)
}

func TestRunSimulation_AppliesScenarioEvents(t *testing.T) {
	// Arrange
	scenario := twoPortScenario()
	scenario.Events = []memory.ScenarioEvent{
		{At: 5 * time.Second, AddShip: &memory.ShipSpec{ID: 2, Capacity: 2, X: 10, Y: 0}},
		{At: 6 * time.Second, AddCargo: &memory.CargoSpec{From: 2, To: 1, Count: 2, Priority: 1}},
	}
	handler := commands.NewRunSimulationHandler(euclidean, strictTuning(), nil, nil, nil, nil)

	// Act
	resp, err := handler.Handle(context.Background(), &commands.RunSimulationCommand{
		Scenario: scenario,
		Fleet:    "test",
		Ticks:    60,
		Tick:     time.Second,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunSimulationResponse)
	assert.Equal(t, 5, result.Delivered)
	assert.Len(t, result.Plans, 2)
}

func TestRunSimulation_PersistsSnapshotsAndEvents(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	snapshots := persistence.NewGormScheduleRepository(db)
	events := persistence.NewGormScheduleEventRepository(db)
	handler := commands.NewRunSimulationHandler(euclidean, strictTuning(), snapshots, events, nil, nil)
	ctx := context.Background()

	// Act
	resp, err := handler.Handle(ctx, &commands.RunSimulationCommand{
		Scenario:      twoPortScenario(),
		Fleet:         "north-sea",
		Ticks:         25,
		Tick:          time.Second,
		SnapshotEvery: 10,
		Persist:       true,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunSimulationResponse)
	assert.Len(t, result.SnapshotIDs, 3)

	stored, err := snapshots.List(ctx, "north-sea", 0)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	logged, err := events.ListByFleet(ctx, "north-sea", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, logged)
	assert.Equal(t, result.RunID, logged[0].RunID)
}

func TestRunSimulation_ResumesFromLatestSnapshot(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	snapshots := persistence.NewGormScheduleRepository(db)
	handler := commands.NewRunSimulationHandler(euclidean, strictTuning(), snapshots, nil, nil, nil)
	ctx := context.Background()
	first, err := handler.Handle(ctx, &commands.RunSimulationCommand{
		Scenario: twoPortScenario(), Fleet: "north-sea", Ticks: 3, Tick: time.Second, Persist: true,
	})
	require.NoError(t, err)
	firstID := first.(*commands.RunSimulationResponse).SnapshotIDs[0]

	// Act
	resp, err := handler.Handle(ctx, &commands.RunSimulationCommand{
		Scenario: twoPortScenario(), Fleet: "north-sea", Ticks: 2, Tick: time.Second, Resume: true,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunSimulationResponse)
	assert.Equal(t, firstID, result.ResumedFrom)
	assert.Equal(t, shared.Time(5000), result.FinalTime)
}

func TestRunSimulation_ResumeCatchesUpWithEarlierScenarioEvents(t *testing.T) {
	// Arrange: port 3 and its cargo appear during the first run; the ship is
	// 20 seconds from port 3 and cannot reach it before the run ends
	scenario := &memory.Scenario{
		Name:  "late-port",
		Speed: 1,
		Ports: []memory.PortSpec{{ID: 1, X: 0, Y: 0}, {ID: 2, X: 10, Y: 0}},
		Ships: []memory.ShipSpec{{ID: 1, Capacity: 5, X: 0, Y: 0}},
		Events: []memory.ScenarioEvent{
			{At: 2 * time.Second, AddPort: &memory.PortSpec{ID: 3, X: 20, Y: 0}},
			{At: 3 * time.Second, AddCargo: &memory.CargoSpec{From: 3, To: 1, Count: 2, Priority: 1}},
		},
	}
	db := helpers.NewTestDB(t)
	snapshots := persistence.NewGormScheduleRepository(db)
	handler := commands.NewRunSimulationHandler(euclidean, strictTuning(), snapshots, nil, nil, nil)
	ctx := context.Background()
	_, err := handler.Handle(ctx, &commands.RunSimulationCommand{
		Scenario: scenario, Fleet: "north-sea", Ticks: 5, Tick: time.Second, Persist: true,
	})
	require.NoError(t, err)

	// Act
	resp, err := handler.Handle(ctx, &commands.RunSimulationCommand{
		Scenario: scenario, Fleet: "north-sea", Ticks: 1, Tick: time.Second, Resume: true,
	})

	// Assert: the plan toward port 3 survives and the cargo event did not
	// fire a second time
	require.NoError(t, err)
	result := resp.(*commands.RunSimulationResponse)
	assert.Equal(t, shared.Time(6000), result.FinalTime)
	assert.Equal(t, 2, result.Waiting)
	require.Len(t, result.Plans, 1)
	require.Len(t, result.Plans[0].Stops, 1)
	assert.Equal(t, shared.PortID(3), result.Plans[0].Stops[0].Port)
	assert.Equal(t, []dtos.LoadDTO{{Destination: 1, Quantity: 2}}, result.Plans[0].Stops[0].Loads)
}

func TestRunSimulation_ResumeWithoutSnapshotFails(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	snapshots := persistence.NewGormScheduleRepository(db)
	handler := commands.NewRunSimulationHandler(euclidean, strictTuning(), snapshots, nil, nil, nil)

	// Act
	_, err := handler.Handle(context.Background(), &commands.RunSimulationCommand{
		Scenario: twoPortScenario(), Fleet: "empty", Ticks: 1, Tick: time.Second, Resume: true,
	})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, shipping.ErrSnapshotNotFound))
}

func TestRunSimulation_RejectsInvalidCommands(t *testing.T) {
	handler := commands.NewRunSimulationHandler(euclidean, strictTuning(), nil, nil, nil, nil)

	cases := map[string]*commands.RunSimulationCommand{
		"no scenario":     {Fleet: "f", Ticks: 1, Tick: time.Second},
		"no fleet":        {Scenario: twoPortScenario(), Ticks: 1, Tick: time.Second},
		"no ticks":        {Scenario: twoPortScenario(), Fleet: "f", Tick: time.Second},
		"tiny tick":       {Scenario: twoPortScenario(), Fleet: "f", Ticks: 1, Tick: time.Microsecond},
		"persist no repo": {Scenario: twoPortScenario(), Fleet: "f", Ticks: 1, Tick: time.Second, Persist: true},
	}

	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), cmd)

			var validation *shared.ValidationError
			assert.True(t, errors.As(err, &validation))
		})
	}
}

func TestRunSimulation_StopsOnCancelledContext(t *testing.T) {
	// Arrange
	handler := commands.NewRunSimulationHandler(euclidean, strictTuning(), nil, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err := handler.Handle(ctx, &commands.RunSimulationCommand{
		Scenario: twoPortScenario(), Fleet: "f", Ticks: 5, Tick: time.Second,
	})

	// Assert
	assert.True(t, errors.Is(err, context.Canceled))
}
