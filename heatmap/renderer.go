package heatmap

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/coverage-mapper/core"
	"github.com/signalsfoundry/coverage-mapper/internal/logging"
	"github.com/signalsfoundry/coverage-mapper/internal/observability"
	"github.com/signalsfoundry/coverage-mapper/model"
)

// renderCacheSize bounds how many rendered heatmaps one renderer retains.
const renderCacheSize = 16

// Raster dimension clamps for the internal working resolution.
const (
	minRasterDim = 8
	maxRasterDim = 2048
)

// Options selects how a field is turned into an image. The zero value is
// not useful; start from DefaultOptions.
type Options struct {
	// Width and Height are the output image dimensions in pixels.
	Width, Height int

	// PixelResolutionM sets the internal working raster scale in metres
	// per pixel. Zero rasterizes directly at the output dimensions.
	PixelResolutionM float64

	Method model.InterpolationMethod
	Scheme model.ColorScheme

	SmoothingSigma float64
	Contours       bool

	// HeightM and HeightToleranceM select the height band of samples to
	// rasterize. A negative tolerance disables the filter.
	HeightM          float64
	HeightToleranceM float64
}

// DefaultOptions derives render options from a configuration snapshot.
func DefaultOptions(cfg model.Config) Options {
	return Options{
		Width:            640,
		Height:           480,
		PixelResolutionM: cfg.PixelResolutionM,
		Method:           cfg.Interpolation,
		Scheme:           cfg.ColorScheme,
		SmoothingSigma:   cfg.SmoothingSigma,
		HeightM:          cfg.SampleHeightM,
		HeightToleranceM: cfg.HeightToleranceM,
	}
}

func (o Options) key() string {
	return fmt.Sprintf("%dx%d|%.4g|%s|%s|%.3g|%t|%.3g±%.3g",
		o.Width, o.Height, o.PixelResolutionM, o.Method, o.Scheme,
		o.SmoothingSigma, o.Contours, o.HeightM, o.HeightToleranceM)
}

// Rendered is one finished heatmap: the color image plus the interpolated
// scalar raster it was drawn from, kept for export and contour queries.
type Rendered struct {
	Image  *image.NRGBA
	Raster *Raster
}

// Renderer turns coverage fields into heatmap images and memoizes the
// results keyed by field generation and render options. The memoized state
// is the renderer's only mutable state; Invalidate drops it wholesale.
// Concurrent calls against the same instance must be externally
// synchronized.
type Renderer struct {
	log     logging.Logger
	metrics *observability.EngineCollector
	tracer  trace.Tracer
	cache   *lru.Cache[string, *Rendered]
}

// NewRenderer constructs a renderer. log and metrics may be nil.
func NewRenderer(log logging.Logger, metrics *observability.EngineCollector) *Renderer {
	if log == nil {
		log = logging.Noop()
	}
	cache, _ := lru.New[string, *Rendered](renderCacheSize)
	return &Renderer{
		log:     log,
		metrics: metrics,
		tracer:  otel.Tracer("coverage-mapper/heatmap"),
		cache:   cache,
	}
}

// Render produces the heatmap for a field, serving the memoized image when
// the field revision and options match a previous call.
func (r *Renderer) Render(ctx context.Context, field *core.Field, opts Options) (*Rendered, error) {
	if field == nil {
		return nil, fmt.Errorf("render: nil field")
	}
	if opts.Width < 1 || opts.Height < 1 {
		return nil, fmt.Errorf("render: invalid output dimensions %dx%d", opts.Width, opts.Height)
	}

	key := fmt.Sprintf("g%d|%s|n%d|%s", field.Generation, field.Engine, len(field.Samples), opts.key())
	if cached, ok := r.cache.Get(key); ok {
		r.metrics.CacheHit("heatmap")
		return cached, nil
	}
	r.metrics.CacheMiss("heatmap")

	ctx, span := r.tracer.Start(ctx, "coverage.render_heatmap",
		trace.WithAttributes(
			attribute.String("method", opts.Method.String()),
			attribute.String("scheme", opts.Scheme.String()),
			attribute.Int("samples", len(field.Samples)),
		))
	defer span.End()

	start := time.Now()

	rasterW, rasterH := r.rasterSize(field, opts)
	raster := Rasterize(ctx, field, rasterW, rasterH, opts.HeightM, opts.HeightToleranceM, r.log)
	Interpolate(raster, opts.Method, opts.SmoothingSigma)
	GaussianSmooth(raster, opts.SmoothingSigma, 1)

	img := Colorize(raster, opts.Scheme)
	if opts.Contours {
		DrawContours(img, raster)
	}

	out := img
	if rasterW != opts.Width || rasterH != opts.Height {
		out = imaging.Resize(img, opts.Width, opts.Height, imaging.Lanczos)
	}

	rendered := &Rendered{Image: out, Raster: raster}
	r.cache.Add(key, rendered)

	elapsed := time.Since(start)
	r.metrics.ObserveRender(opts.Scheme.String(), elapsed.Seconds())
	r.log.Debug(ctx, "heatmap rendered",
		logging.String("method", opts.Method.String()),
		logging.String("scheme", opts.Scheme.String()),
		logging.Int("width", opts.Width),
		logging.Int("height", opts.Height),
		logging.String("elapsed", elapsed.String()))

	return rendered, nil
}

// rasterSize picks the internal working resolution: the world bound divided
// by the configured metres-per-pixel, clamped to sane dimensions, or the
// output size when no resolution is configured.
func (r *Renderer) rasterSize(field *core.Field, opts Options) (int, int) {
	if opts.PixelResolutionM <= 0 {
		return opts.Width, opts.Height
	}
	w := int((field.Bound.Max.X() - field.Bound.Min.X()) / opts.PixelResolutionM)
	h := int((field.Bound.Max.Y() - field.Bound.Min.Y()) / opts.PixelResolutionM)
	return clampDim(w), clampDim(h)
}

func clampDim(v int) int {
	if v < minRasterDim {
		return minRasterDim
	}
	if v > maxRasterDim {
		return maxRasterDim
	}
	return v
}

// Invalidate drops every memoized heatmap. Callers mutating configuration
// or geometry get fresh renders anyway through generation keying; this
// releases the memory eagerly.
func (r *Renderer) Invalidate() {
	r.cache.Purge()
}
