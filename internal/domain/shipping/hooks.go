package shipping

import (
	"fmt"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// OnShipArrived consumes the ship's head stop. An expedition stop hands the
// ship and the port's expedition cargo over to the expedition and drops the
// ship from the table. A cargo stop loads what is still waiting (fewer items
// than planned is fine), pops the stop and appends delivery stops for cargo
// in the hold that the rest of the plan does not cover.
func (s *Scheduler) OnShipArrived(shipID shared.ShipID, portID shared.PortID) error {
	plan, ok := s.table.plans[shipID]
	if !ok {
		return shared.NewUnknownShipError(shipID)
	}
	ship, ok := s.fleet.Ship(shipID)
	if !ok {
		return shared.NewUnknownShipError(shipID)
	}
	if plan.Head() != portID {
		err := shared.NewInvariantViolationError("arrival-at-head",
			fmt.Sprintf("%s arrived at %s but its plan is %s", shipID, portID, plan))
		s.logger.Log("ERROR", fmt.Sprintf("[Scheduler] %v", err), nil)
		return err
	}
	port, ok := s.fleet.Port(portID)
	if !ok {
		return shared.NewUnknownPortError(portID)
	}

	st := s.newState()
	head := plan[0]

	if head.IsExpedition() {
		items := port.TakeExpeditionCargo()
		ship.StartExpedition(portID, items)
		port.ExpeditionLaunched(shipID)
		s.table.remove(shipID)
		delete(s.pending, shipID)
		s.publish(ExpeditionLaunchedEvent{Ship: shipID, Port: portID, Items: len(items), At: st.now})
		s.logger.Log("INFO", "[Scheduler] Expedition launched", map[string]interface{}{
			"ship":  uint32(shipID),
			"port":  uint32(portID),
			"items": len(items),
		})
		return nil
	}

	for _, l := range head.Loads {
		room := ship.Capacity() - len(ship.Hold())
		if room <= 0 {
			break
		}
		if items := port.TakeWaiting(l.Destination, min(l.Quantity, room)); len(items) > 0 {
			ship.Load(items)
		}
	}

	rest := plan[1:].Clone()
	rest = s.appendDeliveryStops(st, shipID, ship.Hold(), portID, rest)
	s.setPlan(shipID, rest)
	return nil
}

// appendDeliveryStops adds a stop for every live destination of the hold not
// yet in plan, nearest first
func (s *Scheduler) appendDeliveryStops(st *updateState, id shared.ShipID, hold []shared.CargoItem, at shared.PortID, plan Plan) Plan {
	missing := make(map[shared.PortID]bool)
	for _, item := range hold {
		d := item.Destination
		if d != shared.NoPort && d != at && st.alive[d] && !plan.Visits(d) {
			missing[d] = true
		}
	}
	if len(missing) == 0 {
		return plan
	}
	dests := make([]shared.PortID, 0, len(missing))
	for d := range missing {
		dests = append(dests, d)
	}
	shared.SortPortIDs(dests)

	from := at
	if len(plan) > 0 {
		from = plan[len(plan)-1].Port
	}
	for len(dests) > 0 {
		best := 0
		bestCost := st.costs.portToPort(from, dests[0])
		for k := 1; k < len(dests); k++ {
			if c := st.costs.portToPort(from, dests[k]); c < bestCost {
				best, bestCost = k, c
			}
		}
		plan = append(plan, NewCargoStop(dests[best], bestCost))
		from = dests[best]
		dests = append(dests[:best], dests[best+1:]...)
	}
	return plan
}

// OnPortRemoved splices the port out of every plan, readdresses cargo in
// flight to it and returns cargo waiting for it elsewhere to planning.
// Ships touched here are compacted on the next update.
func (s *Scheduler) OnPortRemoved(removed shared.PortID) {
	st := s.newState()
	delete(st.alive, removed)
	ports := st.ports[:0:0]
	for _, p := range st.ports {
		if p != removed {
			ports = append(ports, p)
		}
	}
	st.ports = ports

	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		changed := false
		replacement := shared.NoPort

		for idx := plan.IndexOf(removed); idx >= 0; idx = plan.IndexOf(removed) {
			if replacement == shared.NoPort && idx+1 < len(plan) && plan[idx+1].Port != removed {
				replacement = plan[idx+1].Port
			}
			plan = removeStop(st.costs, id, plan, idx)
			changed = true
		}
		for i := range plan {
			if plan[i].RemoveLoad(removed) > 0 {
				changed = true
			}
		}

		ship, ok := s.fleet.Ship(id)
		if ok && shared.CountByDestination(ship.Hold())[removed] > 0 {
			if replacement == shared.NoPort {
				replacement = s.nearestPort(st, id)
			}
			if replacement == shared.NoPort {
				items := shared.CountByDestination(ship.Hold())[removed]
				s.logger.Log("WARNING", "[Scheduler] Cargo stranded: no port left to deliver to", map[string]interface{}{
					"ship":    uint32(id),
					"removed": uint32(removed),
					"items":   items,
				})
				s.publish(StrandedCargoEvent{Ship: id, Removed: removed, Items: items, At: st.now})
			} else {
				n := ship.RedirectCargo(removed, replacement)
				if !plan.Visits(replacement) {
					plan = append(plan, NewCargoStop(replacement, 0))
					plan[len(plan)-1].DurationFromPrevious = st.costs.legCost(id, plan, len(plan)-1)
				}
				changed = true
				s.publish(ShipReroutedEvent{Ship: id, Removed: removed, To: replacement, Items: n, At: st.now})
			}
		}

		if changed {
			s.setPlan(id, plan)
			s.pending[id] = true
		}
	}

	for _, p := range st.ports {
		if port, ok := s.fleet.Port(p); ok {
			port.ReturnToPlanning(removed)
		}
	}
}

// nearestPort is the live port closest to the ship, NoPort when none is left
func (s *Scheduler) nearestPort(st *updateState, id shared.ShipID) shared.PortID {
	best := shared.NoPort
	var bestCost shared.Duration
	for _, p := range st.ports {
		if c := st.costs.shipToPort(id, p); best == shared.NoPort || c < bestCost {
			best, bestCost = p, c
		}
	}
	return best
}

// OnShipRemoved deletes the ship's plan. Cargo it had been promised is
// picked up again by the next update.
func (s *Scheduler) OnShipRemoved(id shared.ShipID) {
	s.table.remove(id)
	delete(s.pending, id)
}

// OnShipAdded gives a new ship an empty plan
func (s *Scheduler) OnShipAdded(id shared.ShipID) {
	if !s.table.Has(id) {
		s.table.set(id, nil)
	}
}

// OnPortAdded points every idle ship at the port when it is the fleet's
// first. Cargo stranded in their holds is readdressed to it.
func (s *Scheduler) OnPortAdded(added shared.PortID) {
	for _, p := range s.fleet.Ports() {
		if p != added {
			return
		}
	}

	st := s.newState()
	st.alive[added] = true
	for _, id := range s.table.Idle() {
		ship, ok := s.fleet.Ship(id)
		if !ok {
			continue
		}
		stale := make([]shared.PortID, 0)
		for d := range shared.CountByDestination(ship.Hold()) {
			if d != added {
				stale = append(stale, d)
			}
		}
		for _, d := range shared.SortPortIDs(stale) {
			ship.RedirectCargo(d, added)
		}
		s.setPlan(id, Plan{NewCargoStop(added, st.costs.shipToPort(id, added))})
		s.publish(AssignmentEvent{Ship: id, Kind: AssignRebalance, Start: added, At: st.now})
	}
}
