package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/model"
)

// ErrParallelUnavailable is returned when the parallel engine cannot be
// constructed on this host; callers fall back to the reference engine.
var ErrParallelUnavailable = errors.New("parallel engine unavailable")

const (
	// segmentStride is the flattened wall-buffer layout: ax, ay, bx, by.
	segmentStride = 4
	// txStride is the flattened transmitter-buffer layout: x, y, z,
	// eirp offset.
	txStride = 4
	// tileRows bounds each dispatch tile, sized for occupancy only; cells
	// carry no inter-cell dependency or ordering requirement.
	tileRows = 16
)

// ParallelEngine is the data-parallel re-expression of the best-server
// propagation model: one worker-owned cell per output lattice point,
// evaluated against flattened wall and transmitter buffers with a
// simplified loss kernel. It deliberately omits the floor term and uses the
// generic wall attenuation constant; for single-transmitter no-wall scenes
// its output matches the reference engine exactly.
type ParallelEngine struct {
	workers int
}

// NewParallelEngine constructs the engine with the given worker count.
// Zero selects one worker per CPU. Construction fails when parallel compute
// is disabled for the host or no workers can be provisioned; the error
// wraps ErrParallelUnavailable so callers can fall back.
func NewParallelEngine(workers int) (*ParallelEngine, error) {
	if strings.EqualFold(os.Getenv("COVERAGE_DISABLE_PARALLEL"), "true") {
		return nil, fmt.Errorf("%w: disabled via COVERAGE_DISABLE_PARALLEL", ErrParallelUnavailable)
	}
	if workers < 0 {
		return nil, fmt.Errorf("%w: negative worker count %d", ErrParallelUnavailable, workers)
	}
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		return nil, ErrParallelUnavailable
	}
	return &ParallelEngine{workers: workers}, nil
}

func (e *ParallelEngine) Name() string { return "parallel" }

// kernelExponent is the distance exponent of the simplified loss kernel.
// The reference model's distance terms sum to 10·(2 + indoor − free)·log10 d;
// using the same coefficient keeps the two engines in agreement on relative
// coverage ordering.
func kernelExponent(cfg model.Config) float64 {
	return 2 + cfg.IndoorExponent - cfg.FreeSpaceExponent
}

// eirpOffset folds everything distance-independent about a transmitter into
// one constant: power + gain − fixed FSPL frequency term.
func eirpOffset(tx model.Transmitter) float64 {
	return tx.EffectivePowerDBm() + tx.EffectiveGainDBi() -
		20*math.Log10(tx.Band.CenterFrequencyHz()) - fsplConstant
}

// ComputeField evaluates the simplified best-server model over the sample
// lattice in a single blocking dispatch. Buffers are built up front, tiles
// of rows are handed to workers, and the call returns only after every tile
// completes. Cancellation is honoured between the buffer build and the
// dispatch, never mid-dispatch.
func (e *ParallelEngine) ComputeField(ctx context.Context, scene *Scene, cfg model.Config) (*Field, error) {
	res := cfg.SampleResolutionM
	if res <= 0 {
		res = model.DefaultConfig().SampleResolutionM
	}
	bound := PlanBound(scene.Rooms, res)

	field := &Field{
		Bound:       bound,
		ResolutionM: res,
		HeightsM:    []float64{cfg.SampleHeightM},
		Generation:  scene.Generation,
		Engine:      e.Name(),
	}
	if len(scene.Transmitters) == 0 {
		return field, nil
	}

	width := int((bound.Max.X()-bound.Min.X())/res) + 1
	height := int((bound.Max.Y()-bound.Min.Y())/res) + 1

	// Flatten walls and transmitters into fixed-stride buffers.
	segs := make([]float64, 0, len(scene.Walls)*segmentStride)
	for _, w := range scene.Walls {
		segs = append(segs, w.A.X(), w.A.Y(), w.B.X(), w.B.Y())
	}
	txs := make([]float64, 0, len(scene.Transmitters)*txStride)
	for _, tx := range scene.Transmitters {
		txs = append(txs, tx.Position.X, tx.Position.Y, tx.Position.Z, eirpOffset(tx))
	}

	// Occupancy mask: only cells inside at least one room are dispatched.
	mask := make([]bool, width*height)
	for row := 0; row < height; row++ {
		y := bound.Min.Y() + float64(row)*res
		for col := 0; col < width; col++ {
			x := bound.Min.X() + float64(col)*res
			mask[row*width+col] = scene.ContainsPlanPoint(orb.Point{x, y})
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	exponent := kernelExponent(cfg)
	signal := make([]float64, width*height)
	winner := make([]int, width*height)

	rows := make(chan int, e.workers)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for start := range rows {
				end := start + tileRows
				if end > height {
					end = height
				}
				e.computeTile(start, end, width, bound, res, cfg.SampleHeightM,
					exponent, cfg.WallAttenuationDB, segs, txs, mask, signal, winner)
			}
		}()
	}
	for start := 0; start < height; start += tileRows {
		rows <- start
	}
	close(rows)
	wg.Wait()

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			i := row*width + col
			if !mask[i] {
				continue
			}
			pos := model.Position{
				X: bound.Min.X() + float64(col)*res,
				Y: bound.Min.Y() + float64(row)*res,
				Z: cfg.SampleHeightM,
			}
			sig := signal[i]
			sample := Sample{
				Position:   pos,
				SignalDBm:  sig,
				PathLossDB: scene.Transmitters[winner[i]].EffectivePowerDBm() + scene.Transmitters[winner[i]].EffectiveGainDBi() - sig,
				Quality:    model.ClassifyQuality(sig),
			}
			if sample.Quality != model.QualityNone {
				sample.Transmitter = &scene.Transmitters[winner[i]]
			}
			field.Samples = append(field.Samples, sample)
		}
	}
	return field, nil
}

// computeTile is the kernel body: each cell of the tile computes its
// best-of-all-transmitters signal independently.
func (e *ParallelEngine) computeTile(rowStart, rowEnd, width int, bound orb.Bound, res, z, exponent, wallAtten float64, segs, txs []float64, mask []bool, signal []float64, winner []int) {
	for row := rowStart; row < rowEnd; row++ {
		y := bound.Min.Y() + float64(row)*res
		for col := 0; col < width; col++ {
			i := row*width + col
			if !mask[i] {
				continue
			}
			x := bound.Min.X() + float64(col)*res

			best := math.Inf(-1)
			bestTx := 0
			for t := 0; t+txStride <= len(txs); t += txStride {
				dx := x - txs[t]
				dy := y - txs[t+1]
				dz := z - txs[t+2]
				dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
				if dist < minDistanceM {
					dist = minDistanceM
				}

				crossings := 0
				for s := 0; s+segmentStride <= len(segs); s += segmentStride {
					if SegmentsIntersect(
						orb.Point{txs[t], txs[t+1]}, orb.Point{x, y},
						orb.Point{segs[s], segs[s+1]}, orb.Point{segs[s+2], segs[s+3]},
					) {
						crossings++
					}
				}

				loss := 10*exponent*math.Log10(dist) + wallAtten*float64(crossings)
				sig := txs[t+3] - loss
				if sig > best {
					best = sig
					bestTx = t / txStride
				}
			}
			signal[i] = best
			winner[i] = bestTx
		}
	}
}
