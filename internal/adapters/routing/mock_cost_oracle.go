package routing

import (
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

// MockCostOracle answers from fixed tables (no map required). Pairs that were
// never set fall back to Default. Port-to-port costs are symmetric.
type MockCostOracle struct {
	Default shared.Duration

	ports map[[2]shared.PortID]shared.Duration
	ships map[shared.ShipID]map[shared.PortID]shared.Duration
	calls int
}

// NewMockCostOracle creates a new mock cost oracle
func NewMockCostOracle(defaultCost shared.Duration) *MockCostOracle {
	return &MockCostOracle{
		Default: defaultCost,
		ports:   make(map[[2]shared.PortID]shared.Duration),
		ships:   make(map[shared.ShipID]map[shared.PortID]shared.Duration),
	}
}

func (m *MockCostOracle) SetPortCost(a, b shared.PortID, cost shared.Duration) {
	m.ports[[2]shared.PortID{a, b}] = cost
	m.ports[[2]shared.PortID{b, a}] = cost
}

func (m *MockCostOracle) SetShipCost(ship shared.ShipID, port shared.PortID, cost shared.Duration) {
	if m.ships[ship] == nil {
		m.ships[ship] = make(map[shared.PortID]shared.Duration)
	}
	m.ships[ship][port] = cost
}

func (m *MockCostOracle) PortToPort(from, to shared.PortID) shared.Duration {
	m.calls++
	if from == to {
		return 0
	}
	if c, ok := m.ports[[2]shared.PortID{from, to}]; ok {
		return c
	}
	return m.Default
}

func (m *MockCostOracle) ShipToPort(ship shared.ShipID, to shared.PortID) shared.Duration {
	m.calls++
	if c, ok := m.ships[ship][to]; ok {
		return c
	}
	return m.Default
}

// Calls counts the questions answered so far
func (m *MockCostOracle) Calls() int {
	return m.calls
}
