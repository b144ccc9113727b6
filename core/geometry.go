package core

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/model"
)

// parallelEpsilon is the cross-product magnitude below which two segments
// are treated as parallel and therefore non-intersecting. Collinear overlap
// is deliberately not handled: a ray sliding exactly along a wall does not
// count as crossing it.
const parallelEpsilon = 1e-6

// PointInPolygon reports whether pt lies inside the polygon described by
// outline, using the even-odd crossing-number test on the floor plane. The
// outline is implicitly closed. Degenerate outlines (fewer than three
// vertices) contain nothing.
func PointInPolygon(pt orb.Point, outline []orb.Point) bool {
	n := len(outline)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := outline[i], outline[j]
		if (pi.Y() > pt.Y()) != (pj.Y() > pt.Y()) {
			// x coordinate where the edge crosses the test point's
			// horizontal line.
			x := pi.X() + (pt.Y()-pi.Y())*(pj.X()-pi.X())/(pj.Y()-pi.Y())
			if pt.X() < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// SegmentsIntersect reports whether the segments p1–p2 and q1–q2 cross,
// via cross-product parametrization. Parallel segments are reported as
// non-intersecting.
func SegmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	_, ok := segmentCrossingParam(p1, p2, q1, q2)
	return ok
}

// segmentCrossingParam returns the parameter t along from→to at which it
// crosses the segment a–b, or (0, false) when it doesn't.
func segmentCrossingParam(from, to, a, b orb.Point) (float64, bool) {
	d1x := to.X() - from.X()
	d1y := to.Y() - from.Y()
	d2x := b.X() - a.X()
	d2y := b.Y() - a.Y()

	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < parallelEpsilon {
		return 0, false
	}

	t := ((a.X()-from.X())*d2y - (a.Y()-from.Y())*d2x) / denom
	u := ((a.X()-from.X())*d1y - (a.Y()-from.Y())*d1x) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// RayIntersectsWall reports whether the 3D segment from→to passes through
// the wall, treating the wall as a vertical rectangle standing on its plan
// segment from the floor up to its height. The plan crossing is found
// first; the path's height at that crossing must then fall within the
// wall's vertical extent.
func RayIntersectsWall(from, to model.Position, w WallSegment) bool {
	t, ok := segmentCrossingParam(from.PlanPoint(), to.PlanPoint(), w.A, w.B)
	if !ok {
		return false
	}
	z := from.Z + t*(to.Z-from.Z)
	return z >= 0 && z <= w.HeightM
}

// defaultPlanExtentM is the side length of the fallback square used when
// the scene has no usable room geometry.
const defaultPlanExtentM = 10.0

// PlanBound returns the bounding box of the union of all room outline
// vertices, padded on each side by pad metres. With no usable geometry it
// degrades to a default square anchored at the origin so downstream
// lattice generation always has a finite, non-empty area to work with.
func PlanBound(rooms []model.Room, pad float64) orb.Bound {
	var b orb.Bound
	first := true
	for _, room := range rooms {
		if len(room.Outline) < 3 {
			continue
		}
		for _, pt := range room.Outline {
			if first {
				b = orb.Bound{Min: pt, Max: pt}
				first = false
				continue
			}
			b = b.Extend(pt)
		}
	}
	if first {
		return orb.Bound{
			Min: orb.Point{0, 0},
			Max: orb.Point{defaultPlanExtentM, defaultPlanExtentM},
		}
	}
	return padBound(b, pad)
}

func padBound(b orb.Bound, pad float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min.X() - pad, b.Min.Y() - pad},
		Max: orb.Point{b.Max.X() + pad, b.Max.Y() + pad},
	}
}
