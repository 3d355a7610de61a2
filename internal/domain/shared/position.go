package shared

import (
	"fmt"
	"math"
)

// Position is an immutable map location
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// DistanceTo calculates Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// MoveToward returns the position reached after travelling step units toward
// target, and whether the target was reached
func (p Position) MoveToward(target Position, step float64) (Position, bool) {
	distance := p.DistanceTo(target)
	if distance <= step || distance == 0 {
		return target, true
	}
	ratio := step / distance
	return Position{
		X: p.X + (target.X-p.X)*ratio,
		Y: p.Y + (target.Y-p.Y)*ratio,
	}, false
}

func (p Position) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}
