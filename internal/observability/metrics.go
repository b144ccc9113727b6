package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles Prometheus metrics for the coverage engine and
// renderer. All record methods are nil-safe so instrumentation stays
// optional for library callers.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	FieldComputations *prometheus.CounterVec
	FieldDurations    *prometheus.HistogramVec
	FieldSamples      *prometheus.HistogramVec

	RenderDurations *prometheus.HistogramVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec

	SceneRooms        prometheus.Gauge
	SceneWalls        prometheus.Gauge
	SceneTransmitters prometheus.Gauge
}

// NewEngineCollector registers engine Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	computations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_field_computations_total",
		Help: "Total number of coverage field computations, labeled by engine.",
	}, []string{"engine"})
	computations, err := registerCounterVec(reg, computations, "coverage_field_computations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coverage_field_duration_seconds",
		Help:    "Coverage field computation latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"engine"})
	durations, err = registerHistogramVec(reg, durations, "coverage_field_duration_seconds")
	if err != nil {
		return nil, err
	}

	samples := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coverage_field_samples",
		Help:    "Number of lattice samples produced per field computation.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"engine"})
	samples, err = registerHistogramVec(reg, samples, "coverage_field_samples")
	if err != nil {
		return nil, err
	}

	renders := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coverage_render_duration_seconds",
		Help:    "Heatmap render latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"scheme"})
	renders, err = registerHistogramVec(reg, renders, "coverage_render_duration_seconds")
	if err != nil {
		return nil, err
	}

	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_cache_hits_total",
		Help: "Memoized result reuse, labeled by cache kind (field, heatmap).",
	}, []string{"kind"})
	hits, err = registerCounterVec(reg, hits, "coverage_cache_hits_total")
	if err != nil {
		return nil, err
	}

	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_cache_misses_total",
		Help: "Memoized result recomputation, labeled by cache kind.",
	}, []string{"kind"})
	misses, err = registerCounterVec(reg, misses, "coverage_cache_misses_total")
	if err != nil {
		return nil, err
	}

	rooms, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coverage_scene_rooms",
		Help: "Current number of rooms in the analyzed plan.",
	}), "coverage_scene_rooms")
	if err != nil {
		return nil, err
	}
	walls, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coverage_scene_walls",
		Help: "Current number of derived wall segments in the analyzed plan.",
	}), "coverage_scene_walls")
	if err != nil {
		return nil, err
	}
	transmitters, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "coverage_scene_transmitters",
		Help: "Current number of transmitters in the analyzed plan.",
	}), "coverage_scene_transmitters")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:          gatherer,
		FieldComputations: computations,
		FieldDurations:    durations,
		FieldSamples:      samples,
		RenderDurations:   renders,
		CacheHits:         hits,
		CacheMisses:       misses,
		SceneRooms:        rooms,
		SceneWalls:        walls,
		SceneTransmitters: transmitters,
	}, nil
}

// ObserveFieldComputation records one completed field computation.
func (c *EngineCollector) ObserveFieldComputation(engine string, samples int, seconds float64) {
	if c == nil {
		return
	}
	if c.FieldComputations != nil {
		c.FieldComputations.WithLabelValues(engine).Inc()
	}
	if c.FieldDurations != nil {
		c.FieldDurations.WithLabelValues(engine).Observe(seconds)
	}
	if c.FieldSamples != nil {
		c.FieldSamples.WithLabelValues(engine).Observe(float64(samples))
	}
}

// ObserveRender records one completed heatmap render.
func (c *EngineCollector) ObserveRender(scheme string, seconds float64) {
	if c == nil || c.RenderDurations == nil {
		return
	}
	c.RenderDurations.WithLabelValues(scheme).Observe(seconds)
}

// CacheHit records a memoized-result reuse for the given cache kind.
func (c *EngineCollector) CacheHit(kind string) {
	if c == nil || c.CacheHits == nil {
		return
	}
	c.CacheHits.WithLabelValues(kind).Inc()
}

// CacheMiss records a cache miss for the given cache kind.
func (c *EngineCollector) CacheMiss(kind string) {
	if c == nil || c.CacheMisses == nil {
		return
	}
	c.CacheMisses.WithLabelValues(kind).Inc()
}

// SetSceneGauges drives the plan-size gauges from the store's mutators.
func (c *EngineCollector) SetSceneGauges(rooms, walls, transmitters int) {
	if c == nil {
		return
	}
	if c.SceneRooms != nil {
		c.SceneRooms.Set(float64(rooms))
	}
	if c.SceneWalls != nil {
		c.SceneWalls.Set(float64(walls))
	}
	if c.SceneTransmitters != nil {
		c.SceneTransmitters.Set(float64(transmitters))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
