package steps

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/seafaring-go/internal/adapters/memory"
	"github.com/andrescamacho/seafaring-go/internal/adapters/routing"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

type eventRecorder struct {
	events []shipping.Event
}

func (r *eventRecorder) Publish(e shipping.Event) {
	r.events = append(r.events, e)
}

type schedulerContext struct {
	world    *memory.World
	scenario *memory.Scenario
	clock    *shared.ManualClock
	sched    *shipping.Scheduler
	sink     *eventRecorder
	plans    map[shared.ShipID]shipping.Plan
	nextItem shared.ItemID
	ticks    int
	tick     shared.Duration
}

func (c *schedulerContext) reset() {
	c.world = nil
	c.scenario = nil
	c.clock = nil
	c.sched = nil
	c.sink = nil
	c.plans = make(map[shared.ShipID]shipping.Plan)
	c.nextItem = 100000
	c.ticks = 0
	c.tick = 0
}

func InitializeSchedulerScenario(ctx *godog.ScenarioContext) {
	c := &schedulerContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, nil
	})

	// World setup
	ctx.Step(`^a world where ships sail (\d+) units? per second$`, c.aWorldWhereShipsSail)
	ctx.Step(`^the following ports:$`, c.theFollowingPorts)
	ctx.Step(`^the following ships:$`, c.theFollowingShips)
	ctx.Step(`^(\d+) items? waits? at port (\d+) for port (\d+)$`, c.itemsWaitAtPort)
	ctx.Step(`^(\d+) items? with priority (\d+) waits? at port (\d+) for port (\d+)$`, c.itemsWithPriorityWaitAtPort)
	ctx.Step(`^ship (\d+) carries (\d+) items? for port (\d+)$`, c.shipCarriesItems)
	ctx.Step(`^ship (\d+) is following the plan:$`, c.shipIsFollowingThePlan)
	ctx.Step(`^the scenario file "([^"]*)"$`, c.theScenarioFile)

	// Actions
	ctx.Step(`^the scheduler updates$`, c.theSchedulerUpdates)
	ctx.Step(`^(\d+) seconds? pass(?:es)?$`, c.secondsPass)
	ctx.Step(`^(\d+) items? from port (\d+) to port (\d+) (?:is|are) cancelled$`, c.itemsAreCancelled)
	ctx.Step(`^port (\d+) is destroyed$`, c.portIsDestroyed)
	ctx.Step(`^ship (\d+) with capacity (\d+) joins the fleet at (\d+), (\d+)$`, c.shipJoinsTheFleet)
	ctx.Step(`^the simulation runs for (\d+) ticks of (\d+) seconds?$`, c.theSimulationRuns)

	// Assertions
	ctx.Step(`^ship (\d+) should have the plan:$`, c.shipShouldHaveThePlan)
	ctx.Step(`^ship (\d+) should have an empty plan$`, c.shipShouldHaveAnEmptyPlan)
	ctx.Step(`^ship (\d+) should no longer be scheduled$`, c.shipShouldNoLongerBeScheduled)
	ctx.Step(`^ship (\d+) should be heading to port (\d+)$`, c.shipShouldBeHeadingTo)
	ctx.Step(`^ship (\d+) should hold (\d+) items?$`, c.shipShouldHold)
	ctx.Step(`^ship (\d+) should hold (\d+) items? for port (\d+)$`, c.shipShouldHoldFor)
	ctx.Step(`^(\d+) items? should be waiting at port (\d+) for port (\d+)$`, c.itemsShouldBeWaiting)
	ctx.Step(`^(\d+) items? should be planned from port (\d+) to port (\d+)$`, c.itemsShouldBePlanned)
	ctx.Step(`^port (\d+) should have launched ship (\d+)$`, c.portShouldHaveLaunched)
	ctx.Step(`^an? "([^"]*)" event should have been published$`, c.eventShouldHaveBeenPublished)
	ctx.Step(`^the schedule should satisfy every invariant$`, c.theScheduleShouldSatisfyEveryInvariant)
	ctx.Step(`^some cargo should have been delivered$`, c.someCargoShouldHaveBeenDelivered)
	ctx.Step(`^updating again should not change the schedule$`, c.updatingAgainShouldNotChange)
	ctx.Step(`^a second run of the same scenario should produce an identical schedule$`, c.aSecondRunShouldBeIdentical)
}

// ensureScheduler builds the scheduler on first use and installs the plans
// given by "is following the plan" steps
func (c *schedulerContext) ensureScheduler() error {
	if c.sched != nil {
		return nil
	}
	if c.world == nil {
		return fmt.Errorf("no world set up")
	}
	c.clock, c.sink, c.sched = newScheduler(c.world)
	if len(c.plans) == 0 {
		return nil
	}

	snap := shipping.Snapshot{
		Version:      shipping.SnapshotFormatVersion,
		LastUpdate:   c.clock.Now(),
		LastExactETA: c.clock.Now(),
	}
	for _, id := range c.world.Ships() {
		snap.Ships = append(snap.Ships, shipping.ShipPlan{Ship: id, Plan: c.plans[id]})
	}
	if err := c.sched.Restore(snap, c.world); err != nil {
		return fmt.Errorf("failed to install plans: %w", err)
	}
	return nil
}

func newScheduler(world *memory.World) (*shared.ManualClock, *eventRecorder, *shipping.Scheduler) {
	clock := shared.NewManualClock(0)
	sink := &eventRecorder{}
	tuning := shipping.DefaultTuning()
	tuning.VerifyInvariants = true
	sched := shipping.NewScheduler(world, routing.NewEuclideanOracle(world, world.Speed()), clock,
		shipping.WithTuning(tuning),
		shipping.WithEventSink(sink),
	)
	return clock, sink, sched
}

func (c *schedulerContext) newItems(n int, dest shared.PortID) []shared.CargoItem {
	items := make([]shared.CargoItem, n)
	for i := range items {
		c.nextItem++
		items[i] = shared.CargoItem{ID: c.nextItem, Destination: dest}
	}
	return items
}

func (c *schedulerContext) aWorldWhereShipsSail(speed int) error {
	c.world = memory.NewWorld(float64(speed))
	return nil
}

func (c *schedulerContext) theFollowingPorts(table *godog.Table) error {
	if c.world == nil {
		return fmt.Errorf("no world set up")
	}
	for _, row := range table.Rows[1:] {
		id, err := intCell(table, row, "id")
		if err != nil {
			return err
		}
		x, err := floatCell(table, row, "x")
		if err != nil {
			return err
		}
		y, err := floatCell(table, row, "y")
		if err != nil {
			return err
		}
		port := c.world.AddPort(shared.PortID(id), shared.Position{X: x, Y: y})
		if cellValue(table, row, "expedition_cargo") != "" {
			n, err := intCell(table, row, "expedition_cargo")
			if err != nil {
				return err
			}
			port.PrepareExpedition(c.newItems(n, shared.NoPort))
		}
	}
	return nil
}

func (c *schedulerContext) theFollowingShips(table *godog.Table) error {
	if c.world == nil {
		return fmt.Errorf("no world set up")
	}
	for _, row := range table.Rows[1:] {
		id, err := intCell(table, row, "id")
		if err != nil {
			return err
		}
		capacity, err := intCell(table, row, "capacity")
		if err != nil {
			return err
		}
		x, err := floatCell(table, row, "x")
		if err != nil {
			return err
		}
		y, err := floatCell(table, row, "y")
		if err != nil {
			return err
		}
		c.world.AddShip(shared.ShipID(id), capacity, shared.Position{X: x, Y: y})
	}
	return nil
}

func (c *schedulerContext) itemsWaitAtPort(count, from, to int) error {
	return c.itemsWithPriorityWaitAtPort(count, 1, from, to)
}

func (c *schedulerContext) itemsWithPriorityWaitAtPort(count, priority, from, to int) error {
	if _, ok := c.world.PortByID(shared.PortID(from)); !ok {
		return fmt.Errorf("port %d does not exist", from)
	}
	c.world.AddCargo(shared.PortID(from), shared.PortID(to), count, int64(priority))
	return nil
}

func (c *schedulerContext) shipCarriesItems(shipID, count, dest int) error {
	ship, ok := c.world.ShipByID(shared.ShipID(shipID))
	if !ok {
		return fmt.Errorf("ship %d does not exist", shipID)
	}
	ship.Load(c.newItems(count, shared.PortID(dest)))
	return nil
}

func (c *schedulerContext) shipIsFollowingThePlan(shipID int, table *godog.Table) error {
	if c.sched != nil {
		return fmt.Errorf("plans must be given before the scheduler runs")
	}
	plan, err := planFromTable(table)
	if err != nil {
		return err
	}
	c.plans[shared.ShipID(shipID)] = plan
	return nil
}

func (c *schedulerContext) theScenarioFile(path string) error {
	scenario, err := memory.LoadScenario(path)
	if err != nil {
		return err
	}
	c.scenario = scenario
	c.world = scenario.Build()
	return nil
}

func (c *schedulerContext) theSchedulerUpdates() error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	return c.sched.Update()
}

func (c *schedulerContext) secondsPass(seconds int) error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	d := shared.Seconds(int64(seconds))
	c.clock.Advance(d)
	return c.world.Advance(d, c.sched)
}

func (c *schedulerContext) itemsAreCancelled(count, from, to int) error {
	port, ok := c.world.PortByID(shared.PortID(from))
	if !ok {
		return fmt.Errorf("port %d does not exist", from)
	}
	if cancelled := port.Cancel(shared.PortID(to), count); cancelled != count {
		return fmt.Errorf("expected to cancel %d items, cancelled %d", count, cancelled)
	}
	return nil
}

func (c *schedulerContext) portIsDestroyed(portID int) error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	c.world.RemovePort(shared.PortID(portID))
	c.sched.OnPortRemoved(shared.PortID(portID))
	return nil
}

func (c *schedulerContext) shipJoinsTheFleet(shipID, capacity, x, y int) error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	c.world.AddShip(shared.ShipID(shipID), capacity, shared.Position{X: float64(x), Y: float64(y)})
	c.sched.OnShipAdded(shared.ShipID(shipID))
	return nil
}

func (c *schedulerContext) theSimulationRuns(ticks, seconds int) error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	c.ticks = ticks
	c.tick = shared.Seconds(int64(seconds))
	return simulate(c.world, c.scenario, c.clock, c.sched, ticks, c.tick)
}

// simulate drives the world in lockstep ticks, applying due scenario events
// before the ships move
func simulate(world *memory.World, scenario *memory.Scenario, clock *shared.ManualClock, sched *shipping.Scheduler, ticks int, tick shared.Duration) error {
	var events []memory.ScenarioEvent
	if scenario != nil {
		events = scenario.Events
	}
	next := 0
	var elapsed shared.Duration
	for i := 0; i < ticks; i++ {
		clock.Advance(tick)
		elapsed += tick
		for next < len(events) && shared.FromStd(events[next].At) <= elapsed {
			world.Apply(events[next], sched)
			next++
		}
		if err := world.Advance(tick, sched); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
		if err := sched.Update(); err != nil {
			return fmt.Errorf("tick %d: %w", i, err)
		}
	}
	return nil
}

func (c *schedulerContext) shipShouldHaveThePlan(shipID int, table *godog.Table) error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	expected, err := planFromTable(table)
	if err != nil {
		return err
	}
	got := describePlan(c.sched.PlanOf(shared.ShipID(shipID)))
	want := describePlan(expected)
	if got != want {
		return fmt.Errorf("ship %d plan mismatch:\n  expected: %s\n  actual:   %s", shipID, want, got)
	}
	return nil
}

func (c *schedulerContext) shipShouldHaveAnEmptyPlan(shipID int) error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	if plan := c.sched.PlanOf(shared.ShipID(shipID)); len(plan) != 0 {
		return fmt.Errorf("expected ship %d to be idle, plan is %s", shipID, describePlan(plan))
	}
	return nil
}

func (c *schedulerContext) shipShouldNoLongerBeScheduled(shipID int) error {
	if c.sched.Table().Has(shared.ShipID(shipID)) {
		return fmt.Errorf("ship %d still has a schedule entry", shipID)
	}
	return nil
}

func (c *schedulerContext) shipShouldBeHeadingTo(shipID, portID int) error {
	ship, ok := c.world.ShipByID(shared.ShipID(shipID))
	if !ok {
		return fmt.Errorf("ship %d does not exist", shipID)
	}
	if ship.Destination() != shared.PortID(portID) {
		return fmt.Errorf("expected ship %d heading to port %d, heading to %s", shipID, portID, ship.Destination())
	}
	return nil
}

func (c *schedulerContext) shipShouldHold(shipID, count int) error {
	ship, ok := c.world.ShipByID(shared.ShipID(shipID))
	if !ok {
		return fmt.Errorf("ship %d does not exist", shipID)
	}
	if got := len(ship.Hold()); got != count {
		return fmt.Errorf("expected ship %d to hold %d items, holds %d", shipID, count, got)
	}
	return nil
}

func (c *schedulerContext) shipShouldHoldFor(shipID, count, dest int) error {
	ship, ok := c.world.ShipByID(shared.ShipID(shipID))
	if !ok {
		return fmt.Errorf("ship %d does not exist", shipID)
	}
	hold := ship.Hold()
	if len(hold) != count {
		return fmt.Errorf("expected ship %d to hold %d items, holds %d", shipID, count, len(hold))
	}
	if got := shared.CountByDestination(hold)[shared.PortID(dest)]; got != count {
		return fmt.Errorf("expected %d items aboard ship %d for port %d, found %d", count, shipID, dest, got)
	}
	return nil
}

func (c *schedulerContext) itemsShouldBeWaiting(count, from, to int) error {
	port, ok := c.world.PortByID(shared.PortID(from))
	if !ok {
		return fmt.Errorf("port %d does not exist", from)
	}
	if got := port.CountWaiting(shared.PortID(to)); got != count {
		return fmt.Errorf("expected %d items waiting at port %d for port %d, found %d", count, from, to, got)
	}
	return nil
}

func (c *schedulerContext) itemsShouldBePlanned(count, from, to int) error {
	if got := c.sched.Table().Planned(shared.PortID(from), shared.PortID(to)); got != count {
		return fmt.Errorf("expected %d items planned from port %d to port %d, found %d", count, from, to, got)
	}
	return nil
}

func (c *schedulerContext) portShouldHaveLaunched(portID, shipID int) error {
	port, ok := c.world.PortByID(shared.PortID(portID))
	if !ok {
		return fmt.Errorf("port %d does not exist", portID)
	}
	for _, id := range port.Launched() {
		if id == shared.ShipID(shipID) {
			return nil
		}
	}
	return fmt.Errorf("port %d did not launch ship %d (launched: %v)", portID, shipID, port.Launched())
}

func (c *schedulerContext) eventShouldHaveBeenPublished(name string) error {
	if c.sink == nil {
		return fmt.Errorf("scheduler never ran")
	}
	seen := make([]string, 0, len(c.sink.events))
	for _, e := range c.sink.events {
		if e.EventName() == name {
			return nil
		}
		seen = append(seen, e.EventName())
	}
	return fmt.Errorf("no %q event published (seen: %s)", name, strings.Join(seen, ", "))
}

func (c *schedulerContext) theScheduleShouldSatisfyEveryInvariant() error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	return c.sched.VerifyInvariants()
}

func (c *schedulerContext) someCargoShouldHaveBeenDelivered() error {
	if c.world.Delivered() == 0 {
		return fmt.Errorf("no cargo delivered")
	}
	return nil
}

func (c *schedulerContext) updatingAgainShouldNotChange() error {
	if err := c.ensureScheduler(); err != nil {
		return err
	}
	if err := c.sched.Update(); err != nil {
		return err
	}
	before, err := c.sched.Snapshot().MarshalBinary()
	if err != nil {
		return err
	}
	if err := c.sched.Update(); err != nil {
		return err
	}
	after, err := c.sched.Snapshot().MarshalBinary()
	if err != nil {
		return err
	}
	if !bytes.Equal(before, after) {
		return fmt.Errorf("schedule changed without any change in the world")
	}
	return nil
}

func (c *schedulerContext) aSecondRunShouldBeIdentical() error {
	if c.scenario == nil {
		return fmt.Errorf("a scenario file is required")
	}
	first, err := c.sched.Snapshot().MarshalBinary()
	if err != nil {
		return err
	}

	world := c.scenario.Build()
	clock, _, sched := newScheduler(world)
	if err := simulate(world, c.scenario, clock, sched, c.ticks, c.tick); err != nil {
		return err
	}
	second, err := sched.Snapshot().MarshalBinary()
	if err != nil {
		return err
	}
	if !bytes.Equal(first, second) {
		return fmt.Errorf("second run produced a different schedule")
	}
	return nil
}

// planFromTable reads a plan from a | port | duration | loads | kind | table.
// Loads are written as dest:qty pairs separated by commas.
func planFromTable(table *godog.Table) (shipping.Plan, error) {
	plan := make(shipping.Plan, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		port, err := intCell(table, row, "port")
		if err != nil {
			return nil, err
		}
		d, err := time.ParseDuration(cellValue(table, row, "duration"))
		if err != nil {
			return nil, fmt.Errorf("invalid duration: %w", err)
		}

		if cellValue(table, row, "kind") == "expedition" {
			plan = append(plan, shipping.NewExpeditionStop(shared.PortID(port), shared.FromStd(d)))
			continue
		}
		stop := shipping.NewCargoStop(shared.PortID(port), shared.FromStd(d))
		loads := cellValue(table, row, "loads")
		if loads != "" {
			for _, part := range strings.Split(loads, ",") {
				dest, qty, ok := strings.Cut(strings.TrimSpace(part), ":")
				if !ok {
					return nil, fmt.Errorf("invalid load %q, expected dest:qty", part)
				}
				destID, err := strconv.Atoi(dest)
				if err != nil {
					return nil, fmt.Errorf("invalid load destination %q: %w", dest, err)
				}
				n, err := strconv.Atoi(qty)
				if err != nil {
					return nil, fmt.Errorf("invalid load quantity %q: %w", qty, err)
				}
				stop.AddLoad(shared.PortID(destID), n)
			}
		}
		plan = append(plan, stop)
	}
	return plan, nil
}

func describePlan(plan shipping.Plan) string {
	if len(plan) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(plan))
	for _, stop := range plan {
		loads := make([]string, 0, len(stop.Loads))
		for _, l := range stop.Loads {
			loads = append(loads, fmt.Sprintf("%d:%d", l.Destination, l.Quantity))
		}
		parts = append(parts, fmt.Sprintf("%s %s %s{%s}", stop.Port, stop.DurationFromPrevious, stop.Kind, strings.Join(loads, ",")))
	}
	return "[" + strings.Join(parts, " | ") + "]"
}

func cellValue(table *godog.Table, row *messages.PickleTableRow, column string) string {
	header := table.Rows[0]
	for i, cell := range header.Cells {
		if cell.Value == column && i < len(row.Cells) {
			return strings.TrimSpace(row.Cells[i].Value)
		}
	}
	return ""
}

func intCell(table *godog.Table, row *messages.PickleTableRow, column string) (int, error) {
	v, err := strconv.Atoi(cellValue(table, row, column))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", column, err)
	}
	return v, nil
}

func floatCell(table *godog.Table, row *messages.PickleTableRow, column string) (float64, error) {
	v, err := strconv.ParseFloat(cellValue(table, row, column), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", column, err)
	}
	return v, nil
}
