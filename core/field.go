package core

import (
	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/model"
)

// Sample is one evaluated point of a coverage field: where it was taken,
// the strongest received signal there, and which transmitter produced it.
type Sample struct {
	Position   model.Position `json:"position"`
	SignalDBm  float64        `json:"signal_dbm"`
	PathLossDB float64        `json:"path_loss_db"`
	Quality    model.Quality  `json:"-"`

	// Transmitter is the dominant (best-server) access point for this
	// sample, nil when the strongest signal still classifies as "none".
	Transmitter *model.Transmitter `json:"-"`
}

// Field is a computed coverage field: a set of samples on a regular lattice
// over the plan bound, at one or more heights. A Field is derived data and
// is never mutated after computation; configuration or geometry changes
// produce a fresh Field.
type Field struct {
	Bound       orb.Bound
	ResolutionM float64
	HeightsM    []float64
	Samples     []Sample

	// Generation is the plan revision the field was computed from.
	Generation uint64
	// Engine names the implementation that produced the field.
	Engine string
}

// Normalization window for scalar exports: [-100, 0] dBm maps onto [0, 1].
const (
	normFloorDBm = -100.0
	normSpanDB   = 100.0
)

// NormalizeSignal maps a signal strength in dBm onto the [0,1] scalar used
// by normalized exports. Values outside the window clamp; they never wrap.
func NormalizeSignal(signalDBm float64) float64 {
	v := (signalDBm - normFloorDBm) / normSpanDB
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalized returns the per-sample normalized scalar values of the field.
func (f *Field) Normalized() []float64 {
	out := make([]float64, len(f.Samples))
	for i, s := range f.Samples {
		out[i] = NormalizeSignal(s.SignalDBm)
	}
	return out
}
