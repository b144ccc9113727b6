package core

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/coverage-mapper/internal/logging"
	"github.com/signalsfoundry/coverage-mapper/internal/observability"
	"github.com/signalsfoundry/coverage-mapper/model"
)

// fieldCacheSize bounds how many computed fields one analyzer retains;
// distinct (generation, config, mode) keys beyond this evict oldest-first.
const fieldCacheSize = 8

// Analyzer ties a PlanStore to a propagation engine and memoizes computed
// fields keyed by plan generation and configuration. It replaces implicit
// static caching with an explicit caller-owned object: any configuration or
// geometry change shows up in the cache key, and Invalidate drops
// everything outright.
//
// An Analyzer is intended for use from a single goroutine at a time; the
// memoized results are not guarded for concurrent calls against the same
// instance.
type Analyzer struct {
	store   *PlanStore
	engine  PropagationEngine
	log     logging.Logger
	metrics *observability.EngineCollector
	tracer  trace.Tracer
	cache   *lru.Cache[string, *Field]
}

// NewAnalyzer constructs an analyzer. engine may be nil, in which case the
// host-preferred engine is selected with transparent fallback. metrics may
// be nil to disable instrumentation.
func NewAnalyzer(store *PlanStore, engine PropagationEngine, log logging.Logger, metrics *observability.EngineCollector) *Analyzer {
	if log == nil {
		log = logging.Noop()
	}
	if engine == nil {
		engine = NewEngine(0, log)
	}
	cache, _ := lru.New[string, *Field](fieldCacheSize)
	return &Analyzer{
		store:   store,
		engine:  engine,
		log:     log,
		metrics: metrics,
		tracer:  otel.Tracer("coverage-mapper/core"),
		cache:   cache,
	}
}

// Store exposes the underlying plan store.
func (a *Analyzer) Store() *PlanStore { return a.store }

// Engine exposes the selected propagation engine.
func (a *Analyzer) Engine() PropagationEngine { return a.engine }

// Field returns the coverage field for the current plan and configuration,
// computing it on first request and serving the memoized copy afterwards.
func (a *Analyzer) Field(ctx context.Context) (*Field, error) {
	return a.field(ctx, 1)
}

// Volume returns the volumetric field sampled at the given number of height
// levels. Levels below 2 degrade to the single-height field.
func (a *Analyzer) Volume(ctx context.Context, levels int) (*Field, error) {
	return a.field(ctx, levels)
}

func (a *Analyzer) field(ctx context.Context, levels int) (*Field, error) {
	scene := a.store.Snapshot()
	cfg := a.store.Config()

	key := fmt.Sprintf("g%d|%s|%s|l%d", scene.Generation, cfg.Key(), a.engine.Name(), levels)
	if cached, ok := a.cache.Get(key); ok {
		a.metrics.CacheHit("field")
		return cached, nil
	}
	a.metrics.CacheMiss("field")

	ctx, span := a.tracer.Start(ctx, "coverage.compute_field",
		trace.WithAttributes(
			attribute.String("engine", a.engine.Name()),
			attribute.Int("rooms", len(scene.Rooms)),
			attribute.Int("walls", len(scene.Walls)),
			attribute.Int("transmitters", len(scene.Transmitters)),
			attribute.Int("levels", levels),
		))
	defer span.End()

	start := time.Now()
	var (
		field *Field
		err   error
	)
	if levels > 1 {
		// Volumetric sampling stays on the reference model; the parallel
		// kernel has no floor term.
		ref, ok := a.engine.(*ReferenceEngine)
		if !ok {
			ref = NewReferenceEngine()
		}
		field, err = ref.ComputeVolume(ctx, scene, cfg, levels)
	} else {
		field, err = a.engine.ComputeField(ctx, scene, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("compute field: %w", err)
	}

	elapsed := time.Since(start)
	a.metrics.ObserveFieldComputation(field.Engine, len(field.Samples), elapsed.Seconds())
	a.metrics.SetSceneGauges(len(scene.Rooms), len(scene.Walls), len(scene.Transmitters))
	log := a.log
	if ctxLog := logging.LoggerFromContext(ctx); ctxLog != nil {
		log = ctxLog
	}
	log.Info(ctx, "coverage field computed",
		logging.String("engine", field.Engine),
		logging.Int("samples", len(field.Samples)),
		logging.Int("levels", levels),
		logging.Float64("elapsed_s", elapsed.Seconds()))

	a.cache.Add(key, field)
	return field, nil
}

// SuggestPlacements runs the greedy placement search over the current plan
// and returns up to maxAPs ranked proposals.
func (a *Analyzer) SuggestPlacements(ctx context.Context, maxAPs int) ([]model.Transmitter, error) {
	scene := a.store.Snapshot()
	ctx, span := a.tracer.Start(ctx, "coverage.placement_search",
		trace.WithAttributes(attribute.Int("max_aps", maxAPs)))
	defer span.End()

	search := NewPlacementSearch(a.store.Config())
	return search.Run(ctx, scene, maxAPs)
}

// Invalidate drops every memoized field. Generation keying already keeps
// stale results from being served; this additionally releases the memory.
func (a *Analyzer) Invalidate() {
	a.cache.Purge()
}
