package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image/png"
	"net/http"
	"os"

	"github.com/signalsfoundry/coverage-mapper/core"
	"github.com/signalsfoundry/coverage-mapper/heatmap"
	"github.com/signalsfoundry/coverage-mapper/internal/logging"
	"github.com/signalsfoundry/coverage-mapper/internal/observability"
	"github.com/signalsfoundry/coverage-mapper/model"
)

func main() {
	planPath := flag.String("plan", "examples/floorplan.json", "floor plan scenario JSON")
	outPath := flag.String("out", "heatmap.png", "output heatmap PNG path (empty to skip)")
	fieldPath := flag.String("field", "", "optional scalar field JSON export path")
	width := flag.Int("width", 800, "output image width in pixels")
	height := flag.Int("height", 600, "output image height in pixels")
	method := flag.String("method", "idw", "interpolation method: nearest|bilinear|bicubic|idw|kriging|spline")
	scheme := flag.String("scheme", "classic", "color scheme: classic|thermal|grayscale")
	engineName := flag.String("engine", "auto", "propagation engine: auto|reference|parallel")
	levels := flag.Int("levels", 1, "volumetric height levels (1 = single slice)")
	place := flag.Int("place", 0, "suggest up to N transmitter placements")
	contours := flag.Bool("contours", false, "overlay signal-level contours")
	metricsListen := flag.String("metrics-listen", "", "address for the Prometheus /metrics endpoint (empty to disable)")

	flag.Parse()

	log := logging.NewFromEnv()
	ctx := logging.ContextWithLogger(context.Background(), log)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		fatal(ctx, log, "init tracing", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	var collector *observability.EngineCollector
	if *metricsListen != "" {
		collector, err = observability.NewEngineCollector(nil)
		if err != nil {
			fatal(ctx, log, "init metrics", err)
		}
		go func() {
			log.Info(ctx, "metrics endpoint listening", logging.String("addr", *metricsListen))
			mux := http.NewServeMux()
			mux.Handle("/metrics", collector.Handler())
			if err := http.ListenAndServe(*metricsListen, mux); err != nil {
				log.Error(ctx, "metrics server failed", logging.String("error", err.Error()))
			}
		}()
	}

	store := core.NewPlanStore(model.DefaultConfig())

	f, err := os.Open(*planPath)
	if err != nil {
		fatal(ctx, log, "open plan scenario", err)
	}
	scenario, err := core.LoadPlanScenario(store, f)
	f.Close()
	if err != nil {
		fatal(ctx, log, "load plan scenario", err)
	}
	log.Info(ctx, "plan scenario loaded",
		logging.Int("rooms", len(scenario.RoomIDs)),
		logging.Int("transmitters", len(scenario.TransmitterNames)),
		logging.Any("config_overridden", scenario.ConfigOverridden))

	engine, err := selectEngine(*engineName, log)
	if err != nil {
		fatal(ctx, log, "select engine", err)
	}

	analyzer := core.NewAnalyzer(store, engine, log, collector)

	field, err := analyzer.Volume(ctx, *levels)
	if err != nil {
		fatal(ctx, log, "compute field", err)
	}

	if *fieldPath != "" {
		if err := exportField(*fieldPath, field); err != nil {
			fatal(ctx, log, "export field", err)
		}
		log.Info(ctx, "scalar field exported", logging.String("path", *fieldPath))
	}

	if *outPath != "" {
		if err := renderHeatmap(ctx, analyzer, collector, field, *outPath, *width, *height, *method, *scheme, *contours, log); err != nil {
			fatal(ctx, log, "render heatmap", err)
		}
		log.Info(ctx, "heatmap written", logging.String("path", *outPath))
	}

	if *place > 0 {
		proposals, err := analyzer.SuggestPlacements(ctx, *place)
		if err != nil {
			fatal(ctx, log, "placement search", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(proposals); err != nil {
			fatal(ctx, log, "encode placements", err)
		}
	}
}

func selectEngine(name string, log logging.Logger) (core.PropagationEngine, error) {
	switch name {
	case "auto", "":
		return core.NewEngine(0, log), nil
	case "reference":
		return core.NewReferenceEngine(), nil
	case "parallel":
		// Explicit request: surface unavailability instead of silently
		// falling back.
		return core.NewParallelEngine(0)
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

func renderHeatmap(ctx context.Context, analyzer *core.Analyzer, collector *observability.EngineCollector, field *core.Field, path string, width, height int, method, scheme string, contours bool, log logging.Logger) error {
	interp, err := model.ParseInterpolationMethod(method)
	if err != nil {
		return err
	}
	colors, err := model.ParseColorScheme(scheme)
	if err != nil {
		return err
	}

	opts := heatmap.DefaultOptions(analyzer.Store().Config())
	opts.Width = width
	opts.Height = height
	opts.Method = interp
	opts.Scheme = colors
	opts.Contours = contours

	renderer := heatmap.NewRenderer(log, collector)
	rendered, err := renderer.Render(ctx, field, opts)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, rendered.Image)
}

// fieldExportJSON is the export shape for one sample: position plus signal,
// quality, and the dominant transmitter's name.
type fieldExportJSON struct {
	Position    model.Position `json:"position"`
	SignalDBm   float64        `json:"signal_dbm"`
	PathLossDB  float64        `json:"path_loss_db"`
	Quality     string         `json:"quality"`
	Transmitter string         `json:"transmitter,omitempty"`
}

func exportField(path string, field *core.Field) error {
	samples := make([]fieldExportJSON, 0, len(field.Samples))
	for _, s := range field.Samples {
		entry := fieldExportJSON{
			Position:   s.Position,
			SignalDBm:  s.SignalDBm,
			PathLossDB: s.PathLossDB,
			Quality:    s.Quality.String(),
		}
		if s.Transmitter != nil {
			entry.Transmitter = s.Transmitter.Name
		}
		samples = append(samples, entry)
	}

	payload := struct {
		Engine     string            `json:"engine"`
		Generation uint64            `json:"generation"`
		HeightsM   []float64         `json:"heights_m"`
		Samples    []fieldExportJSON `json:"samples"`
	}{
		Engine:     field.Engine,
		Generation: field.Generation,
		HeightsM:   field.HeightsM,
		Samples:    samples,
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func fatal(ctx context.Context, log logging.Logger, msg string, err error) {
	log.Error(ctx, msg, logging.String("error", err.Error()))
	os.Exit(1)
}
