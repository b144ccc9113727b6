package model

import "github.com/paulmach/orb"

// Room represents one room of the floor plan as an ordered outline of 2D
// vertices on the floor plane. The outline is implicitly closed: the last
// vertex connects back to the first. Containment and intersection tests are
// only meaningful for outlines of at least three vertices.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`

	// Outline vertices in insertion order (insertion order is winding
	// order). Coordinates are metres on the floor plane.
	Outline []orb.Point `json:"outline"`

	// WallMaterial is applied to every wall segment derived from the
	// outline's edges.
	WallMaterial Material `json:"wall_material"`

	// CeilingHeightM bounds the vertical extent of the room's walls.
	// Zero means "use the configured default".
	CeilingHeightM float64 `json:"ceiling_height_m,omitempty"`
}
