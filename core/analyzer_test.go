package core

import (
	"context"
	"testing"

	"github.com/signalsfoundry/coverage-mapper/internal/logging"
	"github.com/signalsfoundry/coverage-mapper/model"
)

// recordingLogger captures Info messages so tests can assert what was
// logged and through which logger.
type recordingLogger struct {
	messages []string
}

func (r *recordingLogger) With(fields ...logging.Field) logging.Logger {
	return r
}

func (r *recordingLogger) Debug(context.Context, string, ...logging.Field) {}

func (r *recordingLogger) Info(_ context.Context, msg string, _ ...logging.Field) {
	r.messages = append(r.messages, msg)
}

func (r *recordingLogger) Warn(context.Context, string, ...logging.Field)  {}
func (r *recordingLogger) Error(context.Context, string, ...logging.Field) {}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	store := NewPlanStore(model.DefaultConfig())
	if err := store.AddRoom(model.Room{ID: "r", Outline: squareOutline(0, 0, 5), WallMaterial: model.MaterialDrywall}); err != nil {
		t.Fatalf("AddRoom: %v", err)
	}
	if err := store.AddTransmitter(model.Transmitter{Name: "ap", Position: model.Position{X: 2.5, Y: 2.5, Z: 2.4}}); err != nil {
		t.Fatalf("AddTransmitter: %v", err)
	}
	return NewAnalyzer(store, NewReferenceEngine(), nil, nil)
}

func TestAnalyzer_MemoizesField(t *testing.T) {
	a := newTestAnalyzer(t)

	first, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	second, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if first != second {
		t.Fatalf("expected memoized field pointer on unchanged plan")
	}
}

func TestAnalyzer_UsesContextLoggerWhenPresent(t *testing.T) {
	a := newTestAnalyzer(t)

	rec := &recordingLogger{}
	ctx := logging.ContextWithLogger(context.Background(), rec)
	if _, err := a.Field(ctx); err != nil {
		t.Fatalf("Field: %v", err)
	}

	found := false
	for _, msg := range rec.messages {
		if msg == "coverage field computed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("context logger saw %v, want the field computation log line", rec.messages)
	}
}

func TestAnalyzer_PlanChangeInvalidatesMemo(t *testing.T) {
	a := newTestAnalyzer(t)

	before, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}

	if err := a.Store().AddTransmitter(model.Transmitter{Name: "ap2", Position: model.Position{X: 1, Y: 1, Z: 2.4}}); err != nil {
		t.Fatalf("AddTransmitter: %v", err)
	}

	after, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if before == after {
		t.Fatalf("expected recomputation after plan mutation")
	}
	if after.Generation <= before.Generation {
		t.Fatalf("field generation did not advance: %d -> %d", before.Generation, after.Generation)
	}
}

func TestAnalyzer_ConfigChangeInvalidatesMemo(t *testing.T) {
	a := newTestAnalyzer(t)

	before, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}

	cfg := a.Store().Config()
	cfg.SampleResolutionM = 0.25
	a.Store().SetConfig(cfg)

	after, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if before == after {
		t.Fatalf("expected recomputation after configuration change")
	}
	if len(after.Samples) <= len(before.Samples) {
		t.Fatalf("finer resolution should produce more samples: %d -> %d", len(before.Samples), len(after.Samples))
	}
}

func TestAnalyzer_InvalidateDropsMemo(t *testing.T) {
	a := newTestAnalyzer(t)

	first, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}

	a.Invalidate()

	second, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh computation after Invalidate")
	}
}

func TestAnalyzer_VolumeKeyedSeparatelyFromField(t *testing.T) {
	a := newTestAnalyzer(t)

	flat, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	volume, err := a.Volume(context.Background(), 3)
	if err != nil {
		t.Fatalf("Volume: %v", err)
	}
	if flat == volume {
		t.Fatalf("volume and single-height field must be cached under distinct keys")
	}
	if len(volume.HeightsM) != 3 {
		t.Fatalf("volume heights = %v, want 3 levels", volume.HeightsM)
	}

	// Both stay memoized independently.
	flatAgain, err := a.Field(context.Background())
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if flatAgain != flat {
		t.Fatalf("single-height field evicted by volume computation")
	}
}

func TestAnalyzer_NilEngineSelectsDefault(t *testing.T) {
	store := NewPlanStore(model.DefaultConfig())
	a := NewAnalyzer(store, nil, nil, nil)
	if a.Engine() == nil {
		t.Fatalf("expected a default engine to be selected")
	}
}
