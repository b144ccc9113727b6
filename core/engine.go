package core

import (
	"context"

	"github.com/signalsfoundry/coverage-mapper/internal/logging"
	"github.com/signalsfoundry/coverage-mapper/model"
)

// PropagationEngine computes a coverage field for a scene. Two
// implementations exist: the reference engine, which is the source of truth
// for the physical model, and the parallel engine, an accelerated
// re-expression of the same best-server physics. The parallel engine is
// only ever a performance optimization; it is validated against the
// reference, never trusted independently.
type PropagationEngine interface {
	Name() string
	ComputeField(ctx context.Context, scene *Scene, cfg model.Config) (*Field, error)
}

// NewEngine returns the preferred engine for this host: the parallel engine
// when it can be constructed, otherwise the reference engine. Fallback is
// transparent to callers; both engines satisfy the same contract.
func NewEngine(workers int, log logging.Logger) PropagationEngine {
	if log == nil {
		log = logging.Noop()
	}
	par, err := NewParallelEngine(workers)
	if err != nil {
		log.Warn(context.Background(), "parallel engine unavailable, using reference engine",
			logging.String("error", err.Error()))
		return NewReferenceEngine()
	}
	log.Debug(context.Background(), "using parallel engine",
		logging.Int("workers", par.workers))
	return par
}
