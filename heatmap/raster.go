// Package heatmap turns coverage fields into color-mapped images: samples
// are rasterized onto a pixel grid, gaps are filled by a selectable
// interpolation method, the result is smoothed, colorized through a palette,
// and optionally overlaid with signal-level contours.
package heatmap

import (
	"context"
	"math"

	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/core"
	"github.com/signalsfoundry/coverage-mapper/internal/logging"
)

// SentinelDBm marks raster cells that received no direct sample. It sits at
// the bottom of the normalization window so an unfilled cell renders as
// "no coverage" rather than garbage.
const SentinelDBm = -100.0

// Sanity window for incoming sample values; anything outside is treated as
// corrupted and skipped rather than rendered.
const (
	maxSaneSignalDBm = 30.0
	minSaneSignalDBm = -200.0
)

// minExtentM guards the world-to-pixel scaling against zero-size bounds.
const minExtentM = 1e-6

// Raster is a row-major scalar grid in dBm with its world-space extent.
type Raster struct {
	Width, Height int
	Bound         orb.Bound
	Values        []float64
}

// NewRaster allocates a raster with every cell set to the sentinel.
func NewRaster(width, height int, bound orb.Bound) *Raster {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	values := make([]float64, width*height)
	for i := range values {
		values[i] = SentinelDBm
	}
	return &Raster{Width: width, Height: height, Bound: bound, Values: values}
}

// At returns the value at (x, y); out-of-range coordinates read as the
// sentinel.
func (r *Raster) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return SentinelDBm
	}
	return r.Values[y*r.Width+x]
}

// Set writes the value at (x, y), ignoring out-of-range coordinates.
func (r *Raster) Set(x, y int, v float64) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return
	}
	r.Values[y*r.Width+x] = v
}

// Known reports whether the cell holds a real value rather than the
// sentinel.
func (r *Raster) Known(x, y int) bool {
	return r.At(x, y) != SentinelDBm
}

// Rasterize maps field samples within the height band heightM ± tolM onto a
// width×height raster by linear scaling from the field's world bound to
// pixel bounds. Corrupted sample values are skipped and logged, never
// drawn. When several samples land in one cell the strongest survives,
// matching the best-server model.
func Rasterize(ctx context.Context, field *core.Field, width, height int, heightM, tolM float64, log logging.Logger) *Raster {
	if log == nil {
		log = logging.Noop()
	}
	r := NewRaster(width, height, field.Bound)

	spanX := field.Bound.Max.X() - field.Bound.Min.X()
	spanY := field.Bound.Max.Y() - field.Bound.Min.Y()
	if spanX < minExtentM {
		spanX = minExtentM
	}
	if spanY < minExtentM {
		spanY = minExtentM
	}

	skipped := 0
	for _, s := range field.Samples {
		if tolM >= 0 && math.Abs(s.Position.Z-heightM) > tolM {
			continue
		}
		if math.IsNaN(s.SignalDBm) || math.IsInf(s.SignalDBm, 0) ||
			s.SignalDBm > maxSaneSignalDBm || s.SignalDBm < minSaneSignalDBm {
			skipped++
			continue
		}
		x := int((s.Position.X - field.Bound.Min.X()) / spanX * float64(r.Width-1))
		y := int((s.Position.Y - field.Bound.Min.Y()) / spanY * float64(r.Height-1))
		if s.SignalDBm > r.At(x, y) {
			r.Set(x, y, s.SignalDBm)
		}
	}
	if skipped > 0 {
		log.Warn(ctx, "skipped samples with invalid signal values",
			logging.Int("count", skipped))
	}
	return r
}
