package shipping

import (
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// Table maps every ship in the fleet to its plan. It is the scheduler's only
// persistent state. Iteration always goes through Ships, which is ordered.
type Table struct {
	plans map[shared.ShipID]Plan
}

func NewTable() *Table {
	return &Table{plans: make(map[shared.ShipID]Plan)}
}

// Ships returns the ship ids in ascending order
func (t *Table) Ships() []shared.ShipID {
	ids := make([]shared.ShipID, 0, len(t.plans))
	for id := range t.plans {
		ids = append(ids, id)
	}
	return shared.SortShipIDs(ids)
}

func (t *Table) Len() int {
	return len(t.plans)
}

func (t *Table) Has(ship shared.ShipID) bool {
	_, ok := t.plans[ship]
	return ok
}

// Plan returns a deep copy of the ship's plan
func (t *Table) Plan(ship shared.ShipID) (Plan, bool) {
	plan, ok := t.plans[ship]
	return plan.Clone(), ok
}

func (t *Table) set(ship shared.ShipID, plan Plan) {
	t.plans[ship] = plan
}

func (t *Table) remove(ship shared.ShipID) {
	delete(t.plans, ship)
}

// Idle returns the ships with an empty plan, ascending
func (t *Table) Idle() []shared.ShipID {
	var idle []shared.ShipID
	for _, id := range t.Ships() {
		if len(t.plans[id]) == 0 {
			idle = append(idle, id)
		}
	}
	return idle
}

// Planned sums the quantity committed at start for dest over all plans
func (t *Table) Planned(start, dest shared.PortID) int {
	total := 0
	for _, plan := range t.plans {
		for _, stop := range plan {
			if stop.Port == start {
				total += stop.LoadFor(dest)
			}
		}
	}
	return total
}

type routeKey struct {
	start shared.PortID
	dest  shared.PortID
}

func (k routeKey) less(o routeKey) bool {
	if k.start != o.start {
		return k.start < o.start
	}
	return k.dest < o.dest
}

// plannedTotals sums every commitment by (start, dest)
func (t *Table) plannedTotals() map[routeKey]int {
	totals := make(map[routeKey]int)
	for _, plan := range t.plans {
		for _, stop := range plan {
			for _, l := range stop.Loads {
				totals[routeKey{start: stop.Port, dest: l.Destination}] += l.Quantity
			}
		}
	}
	return totals
}

// Clone returns a deep copy of the whole table
func (t *Table) Clone() *Table {
	out := NewTable()
	for id, plan := range t.plans {
		out.plans[id] = plan.Clone()
	}
	return out
}
