package shipping

import (
	"sort"

	"github.com/andrescamacho/seafaring-go/internal/domain/fleet"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// demandPair is a (start, dest) route with cargo not yet covered by any plan
type demandPair struct {
	start    shared.PortID
	dest     shared.PortID
	open     int
	priority int64
}

// candidate is a ship already visiting start with room left there
type candidate struct {
	ship  shared.ShipID
	stop  int
	free  int
	eta   shared.Duration
	score int64
}

// detour is a plan with start (and possibly dest) spliced in
type detour struct {
	ship  shared.ShipID
	plan  Plan
	stop  int
	free  int
	extra shared.Duration
}

// matchDemand assigns open demand, highest priority first: to ships already
// en route, then to idle ships, then to en-route ships with a poor score and
// finally to ships that can make a short detour. A detour can free room for
// a route matched earlier in the same round, so rounds repeat until one
// assigns nothing. Every productive round lowers the open demand.
func (s *Scheduler) matchDemand(st *updateState) {
	for {
		if s.matchRound(st) == 0 {
			return
		}
	}
}

// matchRound makes one pass over the open routes and returns how many items
// it assigned
func (s *Scheduler) matchRound(st *updateState) int {
	assigned := 0
	for _, pair := range s.demandPairs(st) {
		remaining := pair.open

		accepted, rejected := s.scoreCandidates(pair)
		for _, c := range accepted {
			if remaining == 0 {
				break
			}
			remaining -= s.assignEnRoute(st, pair, c, remaining, AssignEnRoute)
		}
		if remaining > 0 {
			remaining = s.assignIdle(st, pair, remaining)
		}
		for _, c := range rejected {
			if remaining == 0 {
				break
			}
			remaining -= s.assignEnRoute(st, pair, c, remaining, AssignLate)
		}
		if remaining > 0 {
			remaining = s.assignDetours(st, pair, remaining)
		}
		assigned += pair.open - remaining
	}
	return assigned
}

// demandPairs lists every route with open demand, ordered by priority, then
// open count, then start and dest id
func (s *Scheduler) demandPairs(st *updateState) []demandPair {
	planned := s.table.plannedTotals()
	var pairs []demandPair
	for _, start := range st.ports {
		port, ok := s.fleet.Port(start)
		if !ok {
			continue
		}
		for _, dest := range st.ports {
			if dest == start {
				continue
			}
			waiting := port.CountWaiting(dest)
			if waiting == 0 {
				continue
			}
			open := waiting - planned[routeKey{start: start, dest: dest}]
			if open <= 0 {
				continue
			}
			priority := port.CalcMaxPriority(dest) * int64(open) * s.tuning.PriorityScale / int64(waiting)
			pairs = append(pairs, demandPair{start: start, dest: dest, open: open, priority: priority})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if a.open != b.open {
			return a.open > b.open
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.dest < b.dest
	})
	return pairs
}

// score rates an en-route ship: free capacity over travel time, zero when
// the ship is horribly far away
func (s *Scheduler) score(free int, eta shared.Duration) int64 {
	if eta > s.tuning.HorriblyLong {
		return 0
	}
	if eta < s.tuning.MinETA {
		eta = s.tuning.MinETA
	}
	return int64(free) * s.tuning.ScoreScale / int64(eta)
}

// scoreCandidates finds the ships visiting pair.start before any visit of
// pair.dest with room left there, split by the acceptance threshold
func (s *Scheduler) scoreCandidates(pair demandPair) (accepted, rejected []candidate) {
	var all []candidate
	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		if len(plan) == 0 || plan.HasExpedition() {
			continue
		}
		i := plan.IndexOf(pair.start)
		if i < 0 {
			continue
		}
		if d := plan.IndexOf(pair.dest); d >= 0 && d < i {
			continue
		}
		ship, ok := s.fleet.Ship(id)
		if !ok {
			continue
		}
		free := plan.freeCapacity(ship.Hold(), ship.Capacity(), i, pair.dest)
		if free <= 0 {
			continue
		}
		eta := plan.ETAAt(i)
		all = append(all, candidate{ship: id, stop: i, free: free, eta: eta, score: s.score(free, eta)})
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.eta != b.eta {
			return a.eta < b.eta
		}
		if a.free != b.free {
			return a.free > b.free
		}
		return a.ship < b.ship
	})

	remaining := pair.open
	for _, c := range all {
		take := min(c.free, remaining)
		if remaining > 0 && c.score >= s.tuning.AcceptThreshold*int64(take) {
			accepted = append(accepted, c)
			remaining -= take
			continue
		}
		rejected = append(rejected, c)
	}
	return accepted, rejected
}

// assignEnRoute merges up to remaining items into the candidate's stop at
// start and returns how many were taken
func (s *Scheduler) assignEnRoute(st *updateState, pair demandPair, c candidate, remaining int, kind AssignmentKind) int {
	take := min(c.free, remaining)
	if take <= 0 {
		return 0
	}
	s.table.plans[c.ship][c.stop].AddLoad(pair.dest, take)
	s.publish(AssignmentEvent{Ship: c.ship, Kind: kind, Start: pair.start, Dest: pair.dest, Quantity: take, At: st.now})
	return take
}

// assignIdle hands demand to the closest idle ships, one brand-new plan each
func (s *Scheduler) assignIdle(st *updateState, pair demandPair, remaining int) int {
	selector := fleet.NewSelector(st.costs.shipToPort)
	for remaining > 0 {
		idle := s.idleShipsWithRoom()
		if len(idle) == 0 {
			break
		}
		result, err := selector.SelectClosestShip(idle, pair.start)
		if err != nil {
			break
		}
		ship, _ := s.fleet.Ship(result.Ship)
		take := min(ship.Capacity()-len(ship.Hold()), remaining)

		stop := NewCargoStop(pair.start, result.Cost)
		stop.AddLoad(pair.dest, take)
		s.setPlan(result.Ship, Plan{stop})
		remaining -= take
		s.publish(AssignmentEvent{Ship: result.Ship, Kind: AssignIdle, Start: pair.start, Dest: pair.dest, Quantity: take, At: st.now})
	}
	return remaining
}

func (s *Scheduler) idleShipsWithRoom() []shared.ShipID {
	var idle []shared.ShipID
	for _, id := range s.table.Idle() {
		if ship, ok := s.fleet.Ship(id); ok && ship.Capacity() > len(ship.Hold()) {
			idle = append(idle, id)
		}
	}
	return idle
}

// proximityGroup is every port within DetourRadius of center, center included
func (s *Scheduler) proximityGroup(st *updateState, center shared.PortID) map[shared.PortID]bool {
	group := map[shared.PortID]bool{center: true}
	for _, p := range st.ports {
		if p != center && st.costs.portToPort(center, p) <= s.tuning.DetourRadius {
			group[p] = true
		}
	}
	return group
}

// assignDetours splices pair.start (and pair.dest when needed) between two
// stops of plans passing near both ends of the route. Cheapest detours win.
// It returns the demand left over.
func (s *Scheduler) assignDetours(st *updateState, pair demandPair, remaining int) int {
	startGroup := s.proximityGroup(st, pair.start)
	endGroup := s.proximityGroup(st, pair.dest)

	var options []detour
	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		if len(plan) == 0 || plan.HasExpedition() {
			continue
		}
		ship, ok := s.fleet.Ship(id)
		if !ok {
			continue
		}
		if d, ok := s.buildDetour(st, id, plan, pair, startGroup, endGroup); ok {
			d.free = d.plan.freeCapacity(ship.Hold(), ship.Capacity(), d.stop, pair.dest)
			if d.free > 0 {
				options = append(options, d)
			}
		}
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].extra != options[j].extra {
			return options[i].extra < options[j].extra
		}
		return options[i].ship < options[j].ship
	})

	for _, d := range options {
		if remaining == 0 {
			break
		}
		take := min(d.free, remaining)
		d.plan[d.stop].AddLoad(pair.dest, take)
		s.setPlan(d.ship, d.plan)
		remaining -= take
		s.publish(AssignmentEvent{Ship: d.ship, Kind: AssignDetour, Start: pair.start, Dest: pair.dest, Quantity: take, At: st.now})
	}
	return remaining
}

// buildDetour finds the first stop i in the start group and the first later
// stop j in the end group, then inserts start right after i and dest right
// before j unless dest is already visited in between. A visit of start after
// j does not prevent the detour.
func (s *Scheduler) buildDetour(st *updateState, id shared.ShipID, plan Plan, pair demandPair, startGroup, endGroup map[shared.PortID]bool) (detour, bool) {
	i := -1
	for k, stop := range plan {
		if startGroup[stop.Port] {
			i = k
			break
		}
	}
	if i < 0 {
		return detour{}, false
	}
	j := -1
	for k := i + 1; k < len(plan); k++ {
		if endGroup[plan[k].Port] {
			j = k
			break
		}
	}
	if j < 0 {
		return detour{}, false
	}

	// start visited between the anchors is covered by the en-route match
	if plan[i:j+1].IndexOf(pair.start) >= 0 {
		return detour{}, false
	}

	// dest may only be visited between the two anchors
	for k, stop := range plan {
		if stop.Port == pair.dest && (k <= i || k > j) {
			return detour{}, false
		}
	}

	out := make(Plan, 0, len(plan)+2)
	out = append(out, plan[:i+1].Clone()...)
	out = append(out, NewCargoStop(pair.start, 0))
	startIdx := len(out) - 1
	out = append(out, plan[i+1:j].Clone()...)
	if plan[i+1:j+1].IndexOf(pair.dest) < 0 {
		out = append(out, NewCargoStop(pair.dest, 0))
	}
	out = append(out, plan[j:].Clone()...)

	if len(out) > len(st.ports) {
		return detour{}, false
	}

	// Legs from the inserted start onward are rechained through the oracle
	for k := startIdx; k < len(out); k++ {
		out[k].DurationFromPrevious = st.costs.legCost(id, out, k)
	}
	var before, after shared.Duration
	for _, stop := range plan {
		before += stop.DurationFromPrevious
	}
	for _, stop := range out {
		after += stop.DurationFromPrevious
	}
	return detour{ship: id, plan: out, stop: startIdx, extra: after - before}, true
}
