package shipping

import "github.com/andrescamacho/seafaring-go/internal/domain/shared"

type portPair struct {
	from shared.PortID
	to   shared.PortID
}

type shipPort struct {
	ship shared.ShipID
	port shared.PortID
}

// costCache memoises oracle answers for the duration of one update or hook.
// The map does not change while the scheduler runs, so answers stay valid.
type costCache struct {
	oracle CostOracle
	ports  map[portPair]shared.Duration
	ships  map[shipPort]shared.Duration
}

func newCostCache(oracle CostOracle) *costCache {
	return &costCache{
		oracle: oracle,
		ports:  make(map[portPair]shared.Duration),
		ships:  make(map[shipPort]shared.Duration),
	}
}

func (c *costCache) portToPort(from, to shared.PortID) shared.Duration {
	if from == to {
		return 0
	}
	key := portPair{from: from, to: to}
	if d, ok := c.ports[key]; ok {
		return d
	}
	d := c.oracle.PortToPort(from, to)
	c.ports[key] = d
	return d
}

func (c *costCache) shipToPort(ship shared.ShipID, port shared.PortID) shared.Duration {
	key := shipPort{ship: ship, port: port}
	if d, ok := c.ships[key]; ok {
		return d
	}
	d := c.oracle.ShipToPort(ship, port)
	c.ships[key] = d
	return d
}

// legCost is the duration of stop i of plan: from the ship for the head,
// chained from the previous stop otherwise
func (c *costCache) legCost(ship shared.ShipID, plan Plan, i int) shared.Duration {
	if i == 0 {
		return c.shipToPort(ship, plan[0].Port)
	}
	return c.portToPort(plan[i-1].Port, plan[i].Port)
}
