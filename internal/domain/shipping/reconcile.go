package shipping

import (
	"sort"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// commitment is one load entry of one stop
type commitment struct {
	ship     shared.ShipID
	stop     int
	eta      shared.Duration
	quantity int
}

type expeditionStop struct {
	ship shared.ShipID
	stop int
	eta  shared.Duration
}

// reconcile trims commitments that exceed the cargo actually waiting, latest
// arrival first, and lines expedition stops up with port readiness
func (s *Scheduler) reconcile(st *updateState) {
	s.trimOvercommitted(st)
	s.reconcileExpeditions(st)
}

func (s *Scheduler) trimOvercommitted(st *updateState) {
	byRoute := make(map[routeKey][]commitment)
	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		for i, stop := range plan {
			eta := plan.ETAAt(i)
			for _, l := range stop.Loads {
				key := routeKey{start: stop.Port, dest: l.Destination}
				byRoute[key] = append(byRoute[key], commitment{ship: id, stop: i, eta: eta, quantity: l.Quantity})
			}
		}
	}

	keys := make([]routeKey, 0, len(byRoute))
	for k := range byRoute {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	for _, key := range keys {
		commitments := byRoute[key]
		planned := 0
		for _, c := range commitments {
			planned += c.quantity
		}
		waiting := s.waiting(key.start, key.dest)
		excess := planned - waiting
		if excess <= 0 {
			continue
		}

		sort.Slice(commitments, func(i, j int) bool {
			a, b := commitments[i], commitments[j]
			if a.eta != b.eta {
				return a.eta > b.eta
			}
			if a.ship != b.ship {
				return a.ship > b.ship
			}
			return a.stop > b.stop
		})

		for _, c := range commitments {
			if excess == 0 {
				break
			}
			removed := s.table.plans[c.ship][c.stop].ReduceLoad(key.dest, excess)
			if removed == 0 {
				continue
			}
			excess -= removed
			st.reduced[c.ship] = true
			s.publish(LoadReducedEvent{Ship: c.ship, Start: key.start, Dest: key.dest, Quantity: removed, At: st.now})
		}
	}
}

func (s *Scheduler) waiting(start, dest shared.PortID) int {
	port, ok := s.fleet.Port(start)
	if !ok {
		return 0
	}
	return port.CountWaiting(dest)
}

func (s *Scheduler) reconcileExpeditions(st *updateState) {
	byPort := make(map[shared.PortID][]expeditionStop)
	for _, id := range s.table.Ships() {
		plan := s.table.plans[id]
		for i, stop := range plan {
			if stop.IsExpedition() {
				byPort[stop.Port] = append(byPort[stop.Port], expeditionStop{ship: id, stop: i, eta: plan.ETAAt(i)})
			}
		}
	}

	var drop []expeditionStop
	for _, p := range st.ports {
		stops := byPort[p]
		port, ok := s.fleet.Port(p)
		ready := ok && port.IsExpeditionReady()
		switch {
		case !ready:
			drop = append(drop, stops...)
		case len(stops) == 0:
			st.unserviced = append(st.unserviced, p)
		case len(stops) > 1:
			sort.Slice(stops, func(i, j int) bool {
				if stops[i].eta != stops[j].eta {
					return stops[i].eta < stops[j].eta
				}
				return stops[i].ship < stops[j].ship
			})
			drop = append(drop, stops[1:]...)
		}
	}

	// Highest stop index first so earlier indices of the same plan stay valid
	sort.Slice(drop, func(i, j int) bool {
		if drop[i].ship != drop[j].ship {
			return drop[i].ship < drop[j].ship
		}
		return drop[i].stop > drop[j].stop
	})
	for _, d := range drop {
		s.setPlan(d.ship, removeStop(st.costs, d.ship, s.table.plans[d.ship], d.stop))
		st.reduced[d.ship] = true
	}
}
