package shipping

import "github.com/andrescamacho/seafaring-go/internal/domain/shared"

// compact strips stops that no longer serve a purpose from every reduced ship
func (s *Scheduler) compact(st *updateState) {
	ids := make([]shared.ShipID, 0, len(st.reduced))
	for id := range st.reduced {
		ids = append(ids, id)
	}
	for _, id := range shared.SortShipIDs(ids) {
		plan := s.table.plans[id]
		if len(plan) == 0 {
			continue
		}
		var hold []shared.CargoItem
		if ship, ok := s.fleet.Ship(id); ok {
			hold = ship.Hold()
		}
		needed := plan.neededStops(hold)
		changed := false
		for i := len(plan) - 1; i >= 0; i-- {
			if !needed[i] {
				plan = removeStop(st.costs, id, plan, i)
				changed = true
			}
		}
		if changed {
			s.setPlan(id, plan)
		}
	}
}
