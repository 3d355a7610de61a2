package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/seafaring-go/internal/adapters/memory"
	"github.com/andrescamacho/seafaring-go/internal/adapters/persistence"
	"github.com/andrescamacho/seafaring-go/internal/application/mediator"
	"github.com/andrescamacho/seafaring-go/internal/application/schedule/dtos"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// OracleFactory builds the cost oracle for a simulated world. The returned
// closer, if any, is closed when the run ends.
type OracleFactory func(world *memory.World) (shipping.CostOracle, io.Closer, error)

// RunSimulationCommand drives a scenario through the scheduler in lockstep
// ticks: scenario events, ship movement and arrivals, then one update.
type RunSimulationCommand struct {
	Scenario *memory.Scenario
	Fleet    string
	Ticks    int
	Tick     time.Duration
	// SnapshotEvery persists a snapshot every N ticks; 0 persists only the
	// final table. Ignored unless Persist is set.
	SnapshotEvery int
	Persist       bool
	// Resume restores the fleet's latest stored snapshot before the first tick
	Resume bool
}

// RunSimulationResponse summarises a finished run
type RunSimulationResponse struct {
	RunID       string
	Fleet       string
	Ticks       int
	FinalTime   shared.Time
	Delivered   int
	Waiting     int
	Launched    int
	Events      map[string]int
	Plans       []dtos.PlanDTO
	SnapshotIDs []string
	ResumedFrom string
}

// RunSimulationHandler handles the RunSimulation command
type RunSimulationHandler struct {
	oracles   OracleFactory
	tuning    shipping.Tuning
	snapshots shipping.ScheduleRepository
	events    shipping.ScheduleEventRepository
	metrics   shipping.MetricsRecorder
	logger    shipping.Logger
}

// NewRunSimulationHandler creates a new RunSimulationHandler. Repositories
// and metrics may be nil.
func NewRunSimulationHandler(
	oracles OracleFactory,
	tuning shipping.Tuning,
	snapshots shipping.ScheduleRepository,
	events shipping.ScheduleEventRepository,
	metrics shipping.MetricsRecorder,
	logger shipping.Logger,
) *RunSimulationHandler {
	return &RunSimulationHandler{
		oracles:   oracles,
		tuning:    tuning,
		snapshots: snapshots,
		events:    events,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the RunSimulation command
func (h *RunSimulationHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*RunSimulationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunSimulationCommand")
	}
	if err := h.validate(cmd); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	world := cmd.Scenario.Build()

	oracle, closer, err := h.oracles(world)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost oracle: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	var resumed *shipping.StoredSnapshot
	if cmd.Resume {
		if h.snapshots == nil {
			return nil, fmt.Errorf("resume requires a snapshot repository")
		}
		resumed, err = h.snapshots.Latest(ctx, cmd.Fleet)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot to resume: %w", err)
		}
	}

	var start shared.Time
	if resumed != nil {
		start = resumed.Snapshot.LastUpdate
	}
	clock := shared.NewManualClock(start)

	counts := eventCounter{}
	sinks := shipping.EventSinks{counts}
	if cmd.Persist && h.events != nil {
		sinks = append(sinks, persistence.NewEventLog(ctx, h.events, cmd.Fleet, runID, h.logger))
	}

	opts := []shipping.Option{
		shipping.WithTuning(h.tuning),
		shipping.WithEventSink(sinks),
	}
	if h.logger != nil {
		opts = append(opts, shipping.WithLogger(h.logger))
	}
	if h.metrics != nil {
		opts = append(opts, shipping.WithMetrics(h.metrics))
	}
	sched := shipping.NewScheduler(world, oracle, clock, opts...)

	events := make([]memory.ScenarioEvent, len(cmd.Scenario.Events))
	copy(events, cmd.Scenario.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	resp := &RunSimulationResponse{RunID: runID, Fleet: cmd.Fleet, Events: counts}
	next := 0
	if resumed != nil {
		// The world is rebuilt from the scenario, so it has to catch up with
		// everything that happened before the snapshot. The restored table
		// already reflects those events.
		for next < len(events) && eventTime(events[next]) <= start {
			world.Apply(events[next], replayHooks{})
			next++
		}
		if err := sched.Restore(resumed.Snapshot, world); err != nil {
			return nil, fmt.Errorf("failed to restore snapshot %s: %w", resumed.ID, err)
		}
		resp.ResumedFrom = resumed.ID
		h.log("INFO", "[Simulation] Resumed from snapshot", map[string]interface{}{
			"snapshot_id": resumed.ID,
			"at":          int64(start),
			"replayed":    next,
		})
	}

	h.log("INFO", "[Simulation] Run started", map[string]interface{}{
		"run_id":   runID,
		"fleet":    cmd.Fleet,
		"scenario": cmd.Scenario.Name,
		"ticks":    cmd.Ticks,
		"tick":     cmd.Tick.String(),
	})

	dt := shared.FromStd(cmd.Tick)
	for tick := 1; tick <= cmd.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation interrupted at tick %d: %w", tick, err)
		}

		// Scenario times are absolute, resumed runs included
		clock.Advance(dt)
		for next < len(events) && eventTime(events[next]) <= clock.Now() {
			world.Apply(events[next], sched)
			next++
		}

		if err := world.Advance(dt, sched); err != nil {
			return nil, fmt.Errorf("tick %d: %w", tick, err)
		}
		if err := sched.Update(); err != nil {
			return nil, fmt.Errorf("tick %d: %w", tick, err)
		}
		resp.Ticks = tick

		if cmd.Persist && cmd.SnapshotEvery > 0 && tick%cmd.SnapshotEvery == 0 && tick != cmd.Ticks {
			id, err := h.saveSnapshot(ctx, cmd.Fleet, runID, sched)
			if err != nil {
				return nil, err
			}
			resp.SnapshotIDs = append(resp.SnapshotIDs, id)
		}
	}

	if cmd.Persist {
		id, err := h.saveSnapshot(ctx, cmd.Fleet, runID, sched)
		if err != nil {
			return nil, err
		}
		resp.SnapshotIDs = append(resp.SnapshotIDs, id)
	}

	resp.FinalTime = clock.Now()
	resp.Delivered = world.Delivered()
	resp.Waiting = world.Waiting()
	resp.Launched = world.Launched()
	resp.Plans = dtos.SnapshotToDTOs(sched.Snapshot())

	h.log("INFO", "[Simulation] Run finished", map[string]interface{}{
		"run_id":    runID,
		"ticks":     resp.Ticks,
		"delivered": resp.Delivered,
		"waiting":   resp.Waiting,
		"launched":  resp.Launched,
	})
	return resp, nil
}

func (h *RunSimulationHandler) validate(cmd *RunSimulationCommand) error {
	switch {
	case cmd.Scenario == nil:
		return shared.NewValidationError("scenario", "is required")
	case cmd.Fleet == "":
		return shared.NewValidationError("fleet", "is required")
	case cmd.Ticks <= 0:
		return shared.NewValidationError("ticks", "must be positive")
	case cmd.Tick < time.Millisecond:
		return shared.NewValidationError("tick", "must be at least 1ms")
	case cmd.Persist && h.snapshots == nil:
		return shared.NewValidationError("persist", "requires a snapshot repository")
	}
	return nil
}

func (h *RunSimulationHandler) saveSnapshot(ctx context.Context, fleet, runID string, sched *shipping.Scheduler) (string, error) {
	id, err := h.snapshots.Save(ctx, fleet, runID, sched.Snapshot())
	if err != nil {
		return "", fmt.Errorf("failed to persist snapshot: %w", err)
	}
	h.log("DEBUG", "[Simulation] Snapshot saved", map[string]interface{}{"snapshot_id": id, "fleet": fleet})
	return id, nil
}

func (h *RunSimulationHandler) log(level, message string, metadata map[string]interface{}) {
	if h.logger != nil {
		h.logger.Log(level, message, metadata)
	}
}

// eventTime places a scenario event on the game clock
func eventTime(ev memory.ScenarioEvent) shared.Time {
	return shared.Time(0).Add(shared.FromStd(ev.At))
}

// replayHooks ignores scheduler callbacks while a resumed world catches up
type replayHooks struct{}

func (replayHooks) OnPortRemoved(shared.PortID) {}
func (replayHooks) OnPortAdded(shared.PortID)   {}
func (replayHooks) OnShipRemoved(shared.ShipID) {}
func (replayHooks) OnShipAdded(shared.ShipID)   {}

// eventCounter counts published events by name
type eventCounter map[string]int

func (c eventCounter) Publish(event shipping.Event) {
	c[event.EventName()]++
}
