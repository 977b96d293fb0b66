// Package world provides positions, travel distance, and the registry of
// depletable resource nodes (forests, berry bushes, chickens).
package world

import (
	"fmt"
	"math"
)

// Position is a point on the map. Units are scaled so that the straight-line
// distance between two positions equals the walking time in ticks.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Origin is the home base position.
var Origin = Position{}

// Distance returns the straight-line distance between a and b.
func Distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// String returns "(x,y)".
func (p Position) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}
