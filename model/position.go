package model

import (
	"math"

	"github.com/paulmach/orb"
)

// Position represents a point in 3D plan space (metres). X and Y span the
// horizontal floor plane; Z is height above the floor.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceTo returns the straight-line distance between two points.
func (p Position) DistanceTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PlanPoint projects the position onto the horizontal floor plane.
func (p Position) PlanPoint() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Finite reports whether all three coordinates are real numbers.
func (p Position) Finite() bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
