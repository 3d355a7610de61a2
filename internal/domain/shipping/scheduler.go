package shipping

import (
	"fmt"
	"time"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// Scheduler decides, for every ship of one fleet, which ports it visits next
// and what it loads there. It is single-threaded: Update and the event hooks
// must never run concurrently.
type Scheduler struct {
	fleet   Fleet
	oracle  CostOracle
	clock   shared.Clock
	tuning  Tuning
	logger  Logger
	events  EventSink
	metrics MetricsRecorder

	table        *Table
	lastUpdate   shared.Time
	lastExactETA shared.Time

	// pending holds ships changed by event hooks; they are compacted on the
	// next update
	pending map[shared.ShipID]bool
}

// Option configures a Scheduler
type Option func(*Scheduler)

func WithTuning(t Tuning) Option {
	return func(s *Scheduler) { s.tuning = t.withDefaults() }
}

func WithLogger(l Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithEventSink(sink EventSink) Option {
	return func(s *Scheduler) {
		if sink != nil {
			s.events = sink
		}
	}
}

func WithMetrics(m MetricsRecorder) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewScheduler creates a scheduler with an empty plan for every ship
// currently in the fleet
func NewScheduler(fleet Fleet, oracle CostOracle, clock shared.Clock, opts ...Option) *Scheduler {
	s := &Scheduler{
		fleet:   fleet,
		oracle:  oracle,
		clock:   clock,
		tuning:  DefaultTuning(),
		logger:  noOpLogger{},
		events:  noOpSink{},
		metrics: noOpMetrics{},
		table:   NewTable(),
		pending: make(map[shared.ShipID]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	now := clock.Now()
	s.lastUpdate = now
	s.lastExactETA = now
	for _, id := range fleet.Ships() {
		s.table.set(id, nil)
	}
	return s
}

// Tuning returns the constants in effect
func (s *Scheduler) Tuning() Tuning {
	return s.tuning
}

// PlanOf returns a copy of the ship's plan. Unknown ships have no plan.
func (s *Scheduler) PlanOf(ship shared.ShipID) Plan {
	plan, _ := s.table.Plan(ship)
	return plan
}

// Table returns a deep copy of the schedule table
func (s *Scheduler) Table() *Table {
	return s.table.Clone()
}

// updateState is recomputed for every update
type updateState struct {
	now        shared.Time
	costs      *costCache
	ports      []shared.PortID
	alive      map[shared.PortID]bool
	reduced    map[shared.ShipID]bool
	unserviced []shared.PortID
}

func (s *Scheduler) newState() *updateState {
	ports := s.fleet.Ports()
	alive := make(map[shared.PortID]bool, len(ports))
	for _, p := range ports {
		alive[p] = true
	}
	return &updateState{
		now:     s.clock.Now(),
		costs:   newCostCache(s.oracle),
		ports:   ports,
		alive:   alive,
		reduced: make(map[shared.ShipID]bool),
	}
}

// Update runs the six-pass scheduling update: ETA refresh, capacity
// reconciliation, plan compaction, expedition assignment, demand matching
// and idle-ship rebalancing.
func (s *Scheduler) Update() error {
	st := s.newState()

	s.timed("sync", func() { s.syncTable(st) })
	s.timed("eta_refresh", func() { s.refreshETAs(st) })
	s.timed("reconcile", func() { s.reconcile(st) })
	s.timed("compact", func() { s.compact(st) })
	s.timed("expeditions", func() { s.assignExpeditions(st) })
	s.timed("demand", func() { s.matchDemand(st) })
	s.timed("rebalance", func() { s.rebalance(st) })

	if s.tuning.VerifyInvariants {
		if err := s.VerifyInvariants(); err != nil {
			s.logger.Log("ERROR", fmt.Sprintf("[Scheduler] Update aborted: %v", err), nil)
			return err
		}
	}

	idle := len(s.table.Idle())
	s.metrics.RecordUpdate(s.table.Len(), idle)
	s.logger.Log("DEBUG", "[Scheduler] Update complete", map[string]interface{}{
		"ships": s.table.Len(),
		"idle":  idle,
		"at":    int64(st.now),
	})
	return nil
}

func (s *Scheduler) timed(pass string, fn func()) {
	start := time.Now()
	fn()
	s.metrics.RecordPass(pass, time.Since(start))
}

func (s *Scheduler) publish(event Event) {
	s.events.Publish(event)
	s.metrics.RecordEvent(event)
}

// setPlan stores plan and steers the ship toward its head stop
func (s *Scheduler) setPlan(id shared.ShipID, plan Plan) {
	if len(plan) == 0 {
		plan = nil
	}
	s.table.set(id, plan)
	ship, ok := s.fleet.Ship(id)
	if !ok {
		return
	}
	if head := plan.Head(); ship.Destination() != head {
		ship.SetDestination(head)
	}
}

// removeStop splices stop i out of the plan and recomputes the duration of
// the stop that takes its place
func removeStop(costs *costCache, ship shared.ShipID, plan Plan, i int) Plan {
	out := make(Plan, 0, len(plan)-1)
	out = append(out, plan[:i]...)
	out = append(out, plan[i+1:]...)
	if i < len(out) {
		out[i].DurationFromPrevious = costs.legCost(ship, out, i)
	}
	return out
}

// syncTable keeps exactly one entry per fleet ship and drops every reference
// to ports that left the fleet
func (s *Scheduler) syncTable(st *updateState) {
	ships := s.fleet.Ships()
	inFleet := make(map[shared.ShipID]bool, len(ships))
	for _, id := range ships {
		inFleet[id] = true
		if !s.table.Has(id) {
			s.table.set(id, nil)
		}
	}

	for _, id := range s.table.Ships() {
		if !inFleet[id] {
			s.table.remove(id)
			delete(s.pending, id)
			continue
		}
		plan := s.table.plans[id]
		changed := false
		for i := len(plan) - 1; i >= 0; i-- {
			if !st.alive[plan[i].Port] {
				plan = removeStop(st.costs, id, plan, i)
				changed = true
				continue
			}
			for _, l := range append([]Load(nil), plan[i].Loads...) {
				if !st.alive[l.Destination] {
					plan[i].RemoveLoad(l.Destination)
					changed = true
				}
			}
		}
		if changed {
			s.setPlan(id, plan)
			st.reduced[id] = true
		}
	}

	for id := range s.pending {
		if inFleet[id] {
			st.reduced[id] = true
		}
	}
	s.pending = make(map[shared.ShipID]bool)
}
