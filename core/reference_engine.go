package core

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/model"
)

// ReferenceEngine is the single-threaded CPU implementation of the
// propagation model. It is pure: all state lives in the per-call result.
type ReferenceEngine struct{}

// NewReferenceEngine constructs the reference engine. It is always
// available.
func NewReferenceEngine() *ReferenceEngine {
	return &ReferenceEngine{}
}

func (e *ReferenceEngine) Name() string { return "reference" }

// ComputeField samples the best-server signal on a regular lattice at the
// configured sample height. Lattice points outside every room are skipped,
// bounding the work to occupied floor area. An empty transmitter list
// yields an empty field, not an error.
func (e *ReferenceEngine) ComputeField(ctx context.Context, scene *Scene, cfg model.Config) (*Field, error) {
	return e.compute(ctx, scene, cfg, []float64{cfg.SampleHeightM})
}

// ComputeVolume samples the field at levels evenly spaced heights between
// 1 m and the configured ceiling height. levels below 1 degrades to the
// single-height field.
func (e *ReferenceEngine) ComputeVolume(ctx context.Context, scene *Scene, cfg model.Config, levels int) (*Field, error) {
	if levels < 2 {
		return e.ComputeField(ctx, scene, cfg)
	}
	const bottomM = 1.0
	top := cfg.CeilingHeightM
	if top <= bottomM {
		top = bottomM
	}
	heights := make([]float64, levels)
	step := (top - bottomM) / float64(levels-1)
	for i := range heights {
		heights[i] = bottomM + float64(i)*step
	}
	return e.compute(ctx, scene, cfg, heights)
}

func (e *ReferenceEngine) compute(ctx context.Context, scene *Scene, cfg model.Config, heights []float64) (*Field, error) {
	res := cfg.SampleResolutionM
	if res <= 0 {
		res = model.DefaultConfig().SampleResolutionM
	}
	bound := PlanBound(scene.Rooms, res)

	field := &Field{
		Bound:       bound,
		ResolutionM: res,
		HeightsM:    heights,
		Generation:  scene.Generation,
		Engine:      e.Name(),
	}
	if len(scene.Transmitters) == 0 {
		return field, nil
	}

	m := &PathLossModel{Walls: scene.Walls, Cfg: cfg}

	// Integer lattice indexing keeps the sample set identical to the
	// parallel engine's for the same bound and resolution.
	width := int((bound.Max.X()-bound.Min.X())/res) + 1
	height := int((bound.Max.Y()-bound.Min.Y())/res) + 1

	for _, h := range heights {
		for row := 0; row < height; row++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			y := bound.Min.Y() + float64(row)*res
			for col := 0; col < width; col++ {
				x := bound.Min.X() + float64(col)*res
				pt := orb.Point{x, y}
				if !scene.ContainsPlanPoint(pt) {
					continue
				}
				pos := model.Position{X: x, Y: y, Z: h}
				sig, loss, idx := m.BestSignal(scene.Transmitters, pos)
				sample := Sample{
					Position:   pos,
					SignalDBm:  sig,
					PathLossDB: loss,
					Quality:    model.ClassifyQuality(sig),
				}
				if sample.Quality != model.QualityNone && idx >= 0 {
					sample.Transmitter = &scene.Transmitters[idx]
				}
				field.Samples = append(field.Samples, sample)
			}
		}
	}
	return field, nil
}
