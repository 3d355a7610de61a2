package shipping

import (
	"github.com/andrescamacho/seafaring-go/internal/domain/fleet"
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// rebalance spreads the remaining idle ships over the ports with the fewest
// committed ships
func (s *Scheduler) rebalance(st *updateState) {
	idle := s.table.Idle()
	if len(idle) == 0 || len(st.ports) == 0 {
		return
	}

	tally := fleet.NewTally(st.ports)
	for _, id := range s.table.Ships() {
		seen := make(map[shared.PortID]bool)
		for _, stop := range s.table.plans[id] {
			if !seen[stop.Port] {
				seen[stop.Port] = true
				tally.Add(stop.Port)
			}
		}
	}

	distribution := fleet.NewDistributionService(st.costs.shipToPort, s.tuning.NearbyRadius)
	for _, a := range distribution.AssignIdleShips(tally, idle) {
		if a.Stay {
			continue
		}
		s.setPlan(a.Ship, Plan{NewCargoStop(a.Port, a.Cost)})
		s.publish(AssignmentEvent{Ship: a.Ship, Kind: AssignRebalance, Start: a.Port, At: st.now})
	}
}
