package core

import (
	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/model"
)

// WallSegment is one vertical wall of the floor plan: a plan segment with a
// fixed per-crossing attenuation and a height. Segments are immutable once
// built and are rebuilt wholesale whenever room geometry changes.
type WallSegment struct {
	A, B          orb.Point
	AttenuationDB float64
	HeightM       float64
}

// WallsForRooms derives one wall segment per polygon edge for every room
// with a usable outline. The closing edge from the last vertex back to the
// first is included. Rooms without an explicit ceiling height use the
// configured default.
func WallsForRooms(rooms []model.Room, cfg model.Config) []WallSegment {
	var walls []WallSegment
	for _, room := range rooms {
		n := len(room.Outline)
		if n < 3 {
			continue
		}
		height := room.CeilingHeightM
		if height <= 0 {
			height = cfg.CeilingHeightM
		}
		atten := room.WallMaterial.AttenuationDB()
		for i := 0; i < n; i++ {
			walls = append(walls, WallSegment{
				A:             room.Outline[i],
				B:             room.Outline[(i+1)%n],
				AttenuationDB: atten,
				HeightM:       height,
			})
		}
	}
	return walls
}

// Scene is an immutable snapshot of the floor plan handed to the engines.
// Engines never see the live PlanStore, so a concurrent plan edit can never
// corrupt an in-flight computation.
type Scene struct {
	Rooms        []model.Room
	Transmitters []model.Transmitter
	Walls        []WallSegment

	// Generation identifies the plan revision this snapshot was taken
	// from. Downstream caches key on it to invalidate stale results.
	Generation uint64
}

// ContainsPlanPoint reports whether the point lies inside at least one room.
func (s *Scene) ContainsPlanPoint(pt orb.Point) bool {
	for _, room := range s.Rooms {
		if PointInPolygon(pt, room.Outline) {
			return true
		}
	}
	return false
}
