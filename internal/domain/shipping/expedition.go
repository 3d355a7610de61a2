package shipping

import (
	"github.com/andrescamacho/seafaring-go/internal/domain/fleet"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// assignExpeditions gives every unserviced expedition-ready port a ship.
// A ship already heading there with nothing else to do just has its stop
// flagged; the remaining ports are paired greedily with the closest trivial
// ships.
func (s *Scheduler) assignExpeditions(st *updateState) {
	if len(st.unserviced) == 0 {
		return
	}

	var remaining []shared.PortID
	for _, p := range st.unserviced {
		if id, ok := s.shipHeadingTo(p); ok {
			s.table.plans[id][0].Kind = ExpeditionStop
			s.publish(AssignmentEvent{Ship: id, Kind: AssignExpedition, Start: p, At: st.now})
			continue
		}
		remaining = append(remaining, p)
	}
	if len(remaining) == 0 {
		return
	}

	trivial := s.trivialShips()
	selector := fleet.NewSelector(st.costs.shipToPort)
	for _, pairing := range selector.PairClosest(remaining, trivial) {
		s.setPlan(pairing.Ship, Plan{NewExpeditionStop(pairing.Port, pairing.Cost)})
		s.publish(AssignmentEvent{Ship: pairing.Ship, Kind: AssignExpedition, Start: pairing.Port, At: st.now})
		s.logger.Log("INFO", "[Scheduler] Expedition assigned", map[string]interface{}{
			"ship": uint32(pairing.Ship),
			"port": uint32(pairing.Port),
			"eta":  pairing.Cost.String(),
		})
	}
}

// shipHeadingTo finds the lowest-id ship whose plan is a single plain stop at
// port and whose hold is empty
func (s *Scheduler) shipHeadingTo(port shared.PortID) (shared.ShipID, bool) {
	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		if len(plan) != 1 || plan[0].Port != port || plan[0].IsExpedition() || plan[0].HasLoads() {
			continue
		}
		if ship, ok := s.fleet.Ship(id); ok && len(ship.Hold()) == 0 {
			return id, true
		}
	}
	return 0, false
}

// trivialShips are ships with an empty hold and no load or expedition
// commitments, ascending
func (s *Scheduler) trivialShips() []shared.ShipID {
	var trivial []shared.ShipID
	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		if plan.HasLoads() || plan.HasExpedition() {
			continue
		}
		if ship, ok := s.fleet.Ship(id); ok && len(ship.Hold()) == 0 {
			trivial = append(trivial, id)
		}
	}
	return trivial
}
