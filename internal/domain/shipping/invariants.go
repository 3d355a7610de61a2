package shipping

import (
	"fmt"
	"sort"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// VerifyInvariants checks the table against the fleet and returns the first
// violation found
func (s *Scheduler) VerifyInvariants() error {
	ships := s.fleet.Ships()
	if len(ships) != s.table.Len() {
		return shared.NewInvariantViolationError("one-plan-per-ship",
			fmt.Sprintf("%d ships in fleet, %d plans", len(ships), s.table.Len()))
	}
	for _, id := range ships {
		if !s.table.Has(id) {
			return shared.NewInvariantViolationError("one-plan-per-ship", fmt.Sprintf("%s has no plan", id))
		}
	}

	portCount := len(s.fleet.Ports())
	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		if len(plan) > portCount {
			return shared.NewInvariantViolationError("plan-length",
				fmt.Sprintf("%s plans %d stops for %d ports", id, len(plan), portCount))
		}
		for i, stop := range plan {
			if !stop.IsExpedition() {
				continue
			}
			if len(plan) != 1 || stop.HasLoads() {
				return shared.NewInvariantViolationError("expedition-alone",
					fmt.Sprintf("%s stop %d is an expedition in %s", id, i, plan))
			}
		}
	}

	totals := s.table.plannedTotals()
	keys := make([]routeKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
	for _, k := range keys {
		if waiting := s.waiting(k.start, k.dest); totals[k] > waiting {
			return shared.NewInvariantViolationError("capacity-conservation",
				fmt.Sprintf("%d planned from %s to %s, %d waiting", totals[k], k.start, k.dest, waiting))
		}
	}
	return nil
}
