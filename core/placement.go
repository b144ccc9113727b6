package core

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/model"
)

const (
	// coverageLatticeM spaces the points a placement must cover.
	coverageLatticeM = 1.0
	// candidateLatticeM spaces the coarser candidate positions.
	candidateLatticeM = 2.0
	// minSeparationM rejects candidates too close to an already chosen
	// transmitter, to avoid clustering.
	minSeparationM = 3.0
)

// PlacementSearch proposes near-optimal transmitter positions with a greedy
// maximum-coverage sweep: each round picks the candidate that raises the
// most still-uncovered points to at least fair quality. Greedy set cover
// carries no optimality guarantee, but the search is deterministic for
// identical inputs: candidates are generated in row-major lattice order and
// only a strictly better coverage count displaces the current pick, so
// exact ties resolve to the earlier candidate.
type PlacementSearch struct {
	Cfg model.Config

	// Band and RF parameters assigned to proposed transmitters.
	Band     model.Band
	PowerDBm float64
	GainDBi  float64
}

// NewPlacementSearch constructs a search using cfg and default AP
// parameters on the 2.4 GHz band.
func NewPlacementSearch(cfg model.Config) *PlacementSearch {
	return &PlacementSearch{Cfg: cfg, Band: model.Band2_4GHz}
}

// Run returns up to maxAPs proposed transmitters, ranked in selection
// order. It terminates early when every coverage point is served or no
// candidate improves coverage. Degenerate geometry yields an empty list.
func (s *PlacementSearch) Run(ctx context.Context, scene *Scene, maxAPs int) ([]model.Transmitter, error) {
	if maxAPs <= 0 {
		return nil, nil
	}

	uncovered := latticeInsideRooms(scene, coverageLatticeM, s.Cfg.SampleHeightM)
	candidates := latticeInsideRooms(scene, candidateLatticeM, s.effectiveCeiling(scene))
	if len(uncovered) == 0 || len(candidates) == 0 {
		return nil, nil
	}

	m := &PathLossModel{Walls: scene.Walls, Cfg: s.Cfg}

	var chosen []model.Transmitter
	for len(chosen) < maxAPs && len(uncovered) > 0 {
		select {
		case <-ctx.Done():
			return chosen, ctx.Err()
		default:
		}

		bestIdx := -1
		bestCount := 0
		var bestCovered []bool
		for ci, cand := range candidates {
			if tooCloseToChosen(cand, chosen) {
				continue
			}
			tx := s.transmitterAt(cand, len(chosen))
			covered := make([]bool, len(uncovered))
			count := 0
			for pi, pt := range uncovered {
				sig, _ := m.SignalStrength(tx, pt)
				if sig >= model.ThresholdFairDBm {
					covered[pi] = true
					count++
				}
			}
			if count > bestCount {
				bestIdx = ci
				bestCount = count
				bestCovered = covered
			}
		}

		if bestIdx < 0 {
			break
		}

		chosen = append(chosen, s.transmitterAt(candidates[bestIdx], len(chosen)))

		remaining := uncovered[:0]
		for pi, pt := range uncovered {
			if !bestCovered[pi] {
				remaining = append(remaining, pt)
			}
		}
		uncovered = remaining
	}

	return chosen, nil
}

func (s *PlacementSearch) effectiveCeiling(scene *Scene) float64 {
	h := s.Cfg.CeilingHeightM
	for _, room := range scene.Rooms {
		if room.CeilingHeightM > h {
			h = room.CeilingHeightM
		}
	}
	if h <= 0 {
		h = model.DefaultConfig().CeilingHeightM
	}
	return h
}

func (s *PlacementSearch) transmitterAt(pos model.Position, rank int) model.Transmitter {
	return model.Transmitter{
		Name:     fmt.Sprintf("proposed-ap-%d", rank+1),
		Position: pos,
		PowerDBm: s.PowerDBm,
		GainDBi:  s.GainDBi,
		Band:     s.Band,
	}
}

func tooCloseToChosen(pos model.Position, chosen []model.Transmitter) bool {
	for _, tx := range chosen {
		if tx.Position.DistanceTo(pos) < minSeparationM {
			return true
		}
	}
	return false
}

// latticeInsideRooms generates a row-major regular lattice over the plan
// bound at height z, keeping only points inside at least one room. The
// order is stable for identical room input, which the greedy search relies
// on for reproducibility.
func latticeInsideRooms(scene *Scene, spacing, z float64) []model.Position {
	if spacing <= 0 {
		return nil
	}
	bound := PlanBound(scene.Rooms, 0)
	width := int((bound.Max.X()-bound.Min.X())/spacing) + 1
	height := int((bound.Max.Y()-bound.Min.Y())/spacing) + 1

	var pts []model.Position
	for row := 0; row < height; row++ {
		y := bound.Min.Y() + float64(row)*spacing
		for col := 0; col < width; col++ {
			x := bound.Min.X() + float64(col)*spacing
			if scene.ContainsPlanPoint(orb.Point{x, y}) {
				pts = append(pts, model.Position{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}
