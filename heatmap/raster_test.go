package heatmap

import (
	"context"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/core"
	"github.com/signalsfoundry/coverage-mapper/model"
)

func testField(samples []core.Sample) *core.Field {
	return &core.Field{
		Bound:       orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}},
		ResolutionM: 1,
		HeightsM:    []float64{1},
		Samples:     samples,
		Generation:  1,
		Engine:      "reference",
	}
}

func sampleAt(x, y, z, dbm float64) core.Sample {
	return core.Sample{
		Position:  model.Position{X: x, Y: y, Z: z},
		SignalDBm: dbm,
		Quality:   model.ClassifyQuality(dbm),
	}
}

func TestNewRaster_SentinelEverywhere(t *testing.T) {
	r := NewRaster(4, 3, orb.Bound{Max: orb.Point{1, 1}})
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if r.Known(x, y) {
				t.Fatalf("fresh raster cell (%d,%d) is not sentinel", x, y)
			}
		}
	}
}

func TestRaster_OutOfRangeAccess(t *testing.T) {
	r := NewRaster(2, 2, orb.Bound{Max: orb.Point{1, 1}})
	if got := r.At(-1, 0); got != SentinelDBm {
		t.Errorf("out-of-range read = %v, want sentinel", got)
	}
	r.Set(5, 5, -40) // must not panic
	if got := r.At(5, 5); got != SentinelDBm {
		t.Errorf("out-of-range read after write = %v, want sentinel", got)
	}
}

func TestRasterize_MapsSamplesToPixels(t *testing.T) {
	field := testField([]core.Sample{
		sampleAt(0, 0, 1, -40),
		sampleAt(10, 10, 1, -60),
	})

	r := Rasterize(context.Background(), field, 11, 11, 1, 0.5, nil)
	if r.At(0, 0) != -40 {
		t.Errorf("corner (0,0) = %v, want -40", r.At(0, 0))
	}
	if r.At(10, 10) != -60 {
		t.Errorf("corner (10,10) = %v, want -60", r.At(10, 10))
	}
}

func TestRasterize_StrongestSampleWinsPerCell(t *testing.T) {
	// Two samples landing in the same pixel cell.
	field := testField([]core.Sample{
		sampleAt(5.0, 5.0, 1, -70),
		sampleAt(5.1, 5.0, 1, -45),
	})

	r := Rasterize(context.Background(), field, 8, 8, 1, 0.5, nil)
	strongest := math.Inf(-1)
	for _, v := range r.Values {
		if v != SentinelDBm && v > strongest {
			strongest = v
		}
	}
	if strongest != -45 {
		t.Errorf("strongest rasterized value = %v, want -45 (best server wins)", strongest)
	}
}

func TestRasterize_SkipsInvalidValues(t *testing.T) {
	field := testField([]core.Sample{
		sampleAt(2, 2, 1, math.NaN()),
		sampleAt(3, 3, 1, math.Inf(-1)),
		sampleAt(4, 4, 1, 500),  // above the sanity window
		sampleAt(5, 5, 1, -300), // below the sanity window
		sampleAt(6, 6, 1, -55),
	})

	r := Rasterize(context.Background(), field, 11, 11, 1, 0.5, nil)
	known := 0
	for _, v := range r.Values {
		if v != SentinelDBm {
			known++
			if v != -55 {
				t.Errorf("unexpected rasterized value %v, only -55 is valid", v)
			}
		}
	}
	if known != 1 {
		t.Errorf("raster holds %d known cells, want 1 (invalid samples skipped)", known)
	}
}

func TestRasterize_HeightBandFilter(t *testing.T) {
	field := testField([]core.Sample{
		sampleAt(2, 2, 1.0, -40),
		sampleAt(4, 4, 2.5, -42), // outside 1.0 ± 0.5
	})

	r := Rasterize(context.Background(), field, 11, 11, 1.0, 0.5, nil)
	known := 0
	for _, v := range r.Values {
		if v != SentinelDBm {
			known++
		}
	}
	if known != 1 {
		t.Errorf("height filter kept %d cells, want 1", known)
	}

	// Negative tolerance disables the filter.
	r = Rasterize(context.Background(), field, 11, 11, 1.0, -1, nil)
	known = 0
	for _, v := range r.Values {
		if v != SentinelDBm {
			known++
		}
	}
	if known != 2 {
		t.Errorf("disabled height filter kept %d cells, want 2", known)
	}
}
