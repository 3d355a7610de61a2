package memory

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// Scenario describes a starting world and the events that happen to it
type Scenario struct {
	Name   string          `yaml:"name"`
	Speed  float64         `yaml:"speed"`
	Ports  []PortSpec      `yaml:"ports"`
	Ships  []ShipSpec      `yaml:"ships"`
	Cargo  []CargoSpec     `yaml:"cargo"`
	Events []ScenarioEvent `yaml:"events"`
}

type PortSpec struct {
	ID              uint32  `yaml:"id"`
	X               float64 `yaml:"x"`
	Y               float64 `yaml:"y"`
	ExpeditionReady bool    `yaml:"expedition_ready"`
	ExpeditionCargo int     `yaml:"expedition_cargo"`
}

type ShipSpec struct {
	ID       uint32  `yaml:"id"`
	Capacity int     `yaml:"capacity"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
}

type CargoSpec struct {
	From     uint32 `yaml:"from"`
	To       uint32 `yaml:"to"`
	Count    int    `yaml:"count"`
	Priority int64  `yaml:"priority"`
}

// ScenarioEvent happens once simulated time reaches At
type ScenarioEvent struct {
	At         time.Duration `yaml:"at"`
	RemovePort uint32        `yaml:"remove_port,omitempty"`
	RemoveShip uint32        `yaml:"remove_ship,omitempty"`
	AddPort    *PortSpec     `yaml:"add_port,omitempty"`
	AddShip    *ShipSpec     `yaml:"add_ship,omitempty"`
	AddCargo   *CargoSpec    `yaml:"add_cargo,omitempty"`
	Cancel     *CargoSpec    `yaml:"cancel,omitempty"`
}

// Hooks are the scheduler callbacks scenario events trigger
type Hooks interface {
	OnPortRemoved(port shared.PortID)
	OnPortAdded(port shared.PortID)
	OnShipRemoved(ship shared.ShipID)
	OnShipAdded(ship shared.ShipID)
}

// LoadScenario reads a YAML scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a YAML scenario
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(sc.Events, func(i, j int) bool { return sc.Events[i].At < sc.Events[j].At })
	return &sc, nil
}

// Validate checks ids and references
func (sc *Scenario) Validate() error {
	ports := make(map[uint32]bool)
	for _, p := range sc.Ports {
		if p.ID == 0 {
			return shared.NewValidationError("ports.id", "cannot be zero")
		}
		if ports[p.ID] {
			return shared.NewValidationError("ports.id", fmt.Sprintf("duplicate port %d", p.ID))
		}
		ports[p.ID] = true
	}
	ships := make(map[uint32]bool)
	for _, s := range sc.Ships {
		if s.ID == 0 {
			return shared.NewValidationError("ships.id", "cannot be zero")
		}
		if ships[s.ID] {
			return shared.NewValidationError("ships.id", fmt.Sprintf("duplicate ship %d", s.ID))
		}
		if s.Capacity <= 0 {
			return shared.NewValidationError("ships.capacity", fmt.Sprintf("ship %d needs a positive capacity", s.ID))
		}
		ships[s.ID] = true
	}
	for _, c := range sc.Cargo {
		if !ports[c.From] || !ports[c.To] {
			return shared.NewValidationError("cargo", fmt.Sprintf("unknown port in %d -> %d", c.From, c.To))
		}
		if c.From == c.To {
			return shared.NewValidationError("cargo", fmt.Sprintf("cargo from %d to itself", c.From))
		}
	}
	return nil
}

// Build creates the world described by the scenario
func (sc *Scenario) Build() *World {
	w := NewWorld(sc.Speed)
	for _, p := range sc.Ports {
		w.addPortSpec(p)
	}
	for _, s := range sc.Ships {
		w.AddShip(shared.ShipID(s.ID), s.Capacity, shared.Position{X: s.X, Y: s.Y})
	}
	for _, c := range sc.Cargo {
		w.addCargoSpec(c)
	}
	return w
}

func (w *World) addPortSpec(spec PortSpec) *Port {
	p := w.AddPort(shared.PortID(spec.ID), shared.Position{X: spec.X, Y: spec.Y})
	if spec.ExpeditionReady {
		p.PrepareExpedition(w.newItems(spec.ExpeditionCargo, shared.NoPort, 0))
	}
	return p
}

func (w *World) addCargoSpec(spec CargoSpec) {
	p, ok := w.ports[shared.PortID(spec.From)]
	if !ok {
		return
	}
	for _, item := range w.newItems(spec.Count, shared.PortID(spec.To), spec.Priority) {
		p.AddCargo(item)
	}
}

// AddCargo creates count items waiting at from for to
func (w *World) AddCargo(from, to shared.PortID, count int, priority int64) {
	w.addCargoSpec(CargoSpec{From: uint32(from), To: uint32(to), Count: count, Priority: priority})
}

func (w *World) newItems(count int, dest shared.PortID, priority int64) []shared.CargoItem {
	items := make([]shared.CargoItem, 0, count)
	for i := 0; i < count; i++ {
		w.nextItem++
		items = append(items, shared.CargoItem{ID: w.nextItem, Destination: dest, Priority: priority})
	}
	return items
}

// Apply performs a scenario event on the world and tells the scheduler
func (w *World) Apply(ev ScenarioEvent, hooks Hooks) {
	if ev.RemovePort != 0 {
		id := shared.PortID(ev.RemovePort)
		w.RemovePort(id)
		hooks.OnPortRemoved(id)
	}
	if ev.RemoveShip != 0 {
		id := shared.ShipID(ev.RemoveShip)
		w.RemoveShip(id)
		hooks.OnShipRemoved(id)
	}
	if ev.AddPort != nil {
		p := w.addPortSpec(*ev.AddPort)
		hooks.OnPortAdded(p.id)
	}
	if ev.AddShip != nil {
		s := w.AddShip(shared.ShipID(ev.AddShip.ID), ev.AddShip.Capacity, shared.Position{X: ev.AddShip.X, Y: ev.AddShip.Y})
		hooks.OnShipAdded(s.id)
	}
	if ev.AddCargo != nil {
		w.addCargoSpec(*ev.AddCargo)
	}
	if ev.Cancel != nil {
		if p, ok := w.ports[shared.PortID(ev.Cancel.From)]; ok {
			p.Cancel(shared.PortID(ev.Cancel.To), ev.Cancel.Count)
		}
	}
}
