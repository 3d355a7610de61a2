package dtos

import (
	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// StopDTO is a display-ready plan stop
type StopDTO struct {
	Port       shared.PortID
	Duration   shared.Duration
	ETA        shared.Duration
	Expedition bool
	Loads      []LoadDTO
}

// LoadDTO is one pickup instruction
type LoadDTO struct {
	Destination shared.PortID
	Quantity    int
}

// PlanDTO is one ship's plan
type PlanDTO struct {
	Ship  shared.ShipID
	Stops []StopDTO
}

// PlanToDTO converts a plan, computing cumulative ETAs per stop
func PlanToDTO(ship shared.ShipID, plan shipping.Plan) PlanDTO {
	dto := PlanDTO{Ship: ship, Stops: make([]StopDTO, 0, len(plan))}
	for i, stop := range plan {
		s := StopDTO{
			Port:       stop.Port,
			Duration:   stop.DurationFromPrevious,
			ETA:        plan.ETAAt(i),
			Expedition: stop.IsExpedition(),
		}
		for _, l := range stop.Loads {
			s.Loads = append(s.Loads, LoadDTO{Destination: l.Destination, Quantity: l.Quantity})
		}
		dto.Stops = append(dto.Stops, s)
	}
	return dto
}

// SnapshotToDTOs converts every table entry of a snapshot
func SnapshotToDTOs(snap shipping.Snapshot) []PlanDTO {
	plans := make([]PlanDTO, 0, len(snap.Ships))
	for _, sp := range snap.Ships {
		plans = append(plans, PlanToDTO(sp.Ship, sp.Plan))
	}
	return plans
}
