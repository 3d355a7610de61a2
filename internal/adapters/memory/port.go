package memory

import (
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// Port is an in-memory dock holding waiting cargo grouped by destination
type Port struct {
	id       shared.PortID
	position shared.Position

	waiting   map[shared.PortID][]shared.CargoItem
	unplanned []shared.CargoItem
	delivered []shared.CargoItem

	expeditionReady bool
	expeditionCargo []shared.CargoItem
	launched        []shared.ShipID
}

func NewPort(id shared.PortID, position shared.Position) *Port {
	return &Port{
		id:       id,
		position: position,
		waiting:  make(map[shared.PortID][]shared.CargoItem),
	}
}

func (p *Port) ID() shared.PortID {
	return p.id
}

func (p *Port) Position() shared.Position {
	return p.position
}

// AddCargo puts an item in the waiting set. Items without a destination wait
// for planning.
func (p *Port) AddCargo(item shared.CargoItem) {
	if item.AwaitingPlan() {
		p.unplanned = append(p.unplanned, item)
		return
	}
	p.waiting[item.Destination] = append(p.waiting[item.Destination], item)
}

func (p *Port) CountWaiting(dest shared.PortID) int {
	return len(p.waiting[dest])
}

// CalcMaxPriority sums the shipping priorities of the items waiting for dest
func (p *Port) CalcMaxPriority(dest shared.PortID) int64 {
	var total int64
	for _, item := range p.waiting[dest] {
		total += item.Priority
	}
	return total
}

// TakeWaiting removes up to max items for dest, oldest first
func (p *Port) TakeWaiting(dest shared.PortID, max int) []shared.CargoItem {
	items := p.waiting[dest]
	if max > len(items) {
		max = len(items)
	}
	if max <= 0 {
		return nil
	}
	taken := append([]shared.CargoItem(nil), items[:max]...)
	if rest := items[max:]; len(rest) > 0 {
		p.waiting[dest] = append([]shared.CargoItem(nil), rest...)
	} else {
		delete(p.waiting, dest)
	}
	return taken
}

// Cancel withdraws up to n items waiting for dest, newest first, as when a
// transfer is cancelled. It returns how many were withdrawn.
func (p *Port) Cancel(dest shared.PortID, n int) int {
	items := p.waiting[dest]
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return 0
	}
	if rest := items[:len(items)-n]; len(rest) > 0 {
		p.waiting[dest] = rest
	} else {
		delete(p.waiting, dest)
	}
	return n
}

// ReturnToPlanning clears the destination of every item waiting for dest
func (p *Port) ReturnToPlanning(dest shared.PortID) {
	for _, item := range p.waiting[dest] {
		item.Destination = shared.NoPort
		p.unplanned = append(p.unplanned, item)
	}
	delete(p.waiting, dest)
}

// Unplanned returns the items awaiting a destination
func (p *Port) Unplanned() []shared.CargoItem {
	return append([]shared.CargoItem(nil), p.unplanned...)
}

// Readdress gives every unplanned item the destination dest
func (p *Port) Readdress(dest shared.PortID) int {
	n := len(p.unplanned)
	for _, item := range p.unplanned {
		item.Destination = dest
		p.waiting[dest] = append(p.waiting[dest], item)
	}
	p.unplanned = nil
	return n
}

func (p *Port) deliver(items []shared.CargoItem) {
	p.delivered = append(p.delivered, items...)
}

// Delivered returns the items that reached this port
func (p *Port) Delivered() []shared.CargoItem {
	return append([]shared.CargoItem(nil), p.delivered...)
}

func (p *Port) IsExpeditionReady() bool {
	return p.expeditionReady
}

// PrepareExpedition marks the port ready and stocks the cargo the expedition
// ship will take
func (p *Port) PrepareExpedition(items []shared.CargoItem) {
	p.expeditionReady = true
	p.expeditionCargo = append(p.expeditionCargo, items...)
}

// CancelExpedition withdraws readiness; the stocked cargo stays
func (p *Port) CancelExpedition() {
	p.expeditionReady = false
}

func (p *Port) TakeExpeditionCargo() []shared.CargoItem {
	items := p.expeditionCargo
	p.expeditionCargo = nil
	return items
}

func (p *Port) ExpeditionLaunched(ship shared.ShipID) {
	p.expeditionReady = false
	p.launched = append(p.launched, ship)
}

// Launched lists the ships that left this port on an expedition
func (p *Port) Launched() []shared.ShipID {
	return append([]shared.ShipID(nil), p.launched...)
}
