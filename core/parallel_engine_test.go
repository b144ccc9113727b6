package core

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/signalsfoundry/coverage-mapper/model"
)

func TestNewParallelEngine_DisabledByEnv(t *testing.T) {
	t.Setenv("COVERAGE_DISABLE_PARALLEL", "true")
	_, err := NewParallelEngine(0)
	if err == nil {
		t.Fatalf("expected construction to fail when disabled via environment")
	}
	if !errors.Is(err, ErrParallelUnavailable) {
		t.Fatalf("err = %v, want wrapped ErrParallelUnavailable", err)
	}
}

func TestNewParallelEngine_NegativeWorkers(t *testing.T) {
	_, err := NewParallelEngine(-1)
	if err == nil {
		t.Fatalf("expected construction to fail for negative worker count")
	}
	if !errors.Is(err, ErrParallelUnavailable) {
		t.Fatalf("err = %v, want wrapped ErrParallelUnavailable", err)
	}
}

func TestNewEngine_FallsBackToReference(t *testing.T) {
	t.Setenv("COVERAGE_DISABLE_PARALLEL", "true")
	engine := NewEngine(0, nil)
	if engine.Name() != "reference" {
		t.Fatalf("engine = %q, want reference fallback when parallel is unavailable", engine.Name())
	}
}

func TestNewEngine_PrefersParallel(t *testing.T) {
	t.Setenv("COVERAGE_DISABLE_PARALLEL", "")
	engine := NewEngine(2, nil)
	if engine.Name() != "parallel" {
		t.Fatalf("engine = %q, want parallel when available", engine.Name())
	}
}

// TestEnginesAgree compares the parallel engine against the reference on a
// drywall scene. Drywall's 5 dB matches the kernel's generic wall constant
// and no floor is crossed, so both engines evaluate the same closed form and
// must agree to numerical noise on the identical sample lattice.
func TestEnginesAgree(t *testing.T) {
	rooms := []model.Room{
		{ID: "left", Outline: squareOutline(0, 0, 6), WallMaterial: model.MaterialDrywall},
		{ID: "right", Outline: squareOutline(6, 0, 6), WallMaterial: model.MaterialDrywall},
	}
	scene := testScene(t, rooms, []model.Transmitter{
		{Name: "ap", Position: model.Position{X: 3, Y: 3, Z: 2.4}, Band: model.Band5GHz},
	})
	cfg := model.DefaultConfig()

	refField, err := NewReferenceEngine().ComputeField(context.Background(), scene, cfg)
	if err != nil {
		t.Fatalf("reference ComputeField: %v", err)
	}

	par, err := NewParallelEngine(4)
	if err != nil {
		t.Fatalf("NewParallelEngine: %v", err)
	}
	parField, err := par.ComputeField(context.Background(), scene, cfg)
	if err != nil {
		t.Fatalf("parallel ComputeField: %v", err)
	}

	if len(parField.Samples) != len(refField.Samples) {
		t.Fatalf("sample counts differ: parallel %d, reference %d", len(parField.Samples), len(refField.Samples))
	}
	for i := range refField.Samples {
		rs, ps := refField.Samples[i], parField.Samples[i]
		if rs.Position != ps.Position {
			t.Fatalf("sample %d position differs: %v vs %v", i, rs.Position, ps.Position)
		}
		if math.Abs(rs.SignalDBm-ps.SignalDBm) > 1e-6 {
			t.Errorf("sample %d at %v: reference %.9f dBm, parallel %.9f dBm", i, rs.Position, rs.SignalDBm, ps.SignalDBm)
		}
	}
}

func TestParallelEngine_Deterministic(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 8), WallMaterial: model.MaterialConcrete},
	}
	scene := testScene(t, rooms, []model.Transmitter{
		{Name: "a", Position: model.Position{X: 2, Y: 2, Z: 2.4}},
		{Name: "b", Position: model.Position{X: 6, Y: 6, Z: 2.4}, Band: model.Band5GHz},
	})
	cfg := model.DefaultConfig()

	par, err := NewParallelEngine(8)
	if err != nil {
		t.Fatalf("NewParallelEngine: %v", err)
	}

	first, err := par.ComputeField(context.Background(), scene, cfg)
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}
	second, err := par.ComputeField(context.Background(), scene, cfg)
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}

	if len(first.Samples) != len(second.Samples) {
		t.Fatalf("sample counts differ across runs: %d vs %d", len(first.Samples), len(second.Samples))
	}
	for i := range first.Samples {
		if first.Samples[i] != second.Samples[i] {
			t.Fatalf("sample %d differs across identical runs", i)
		}
	}
}

func TestParallelEngine_EmptyTransmitters(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 4), WallMaterial: model.MaterialDrywall},
	}
	scene := testScene(t, rooms, nil)

	par, err := NewParallelEngine(2)
	if err != nil {
		t.Fatalf("NewParallelEngine: %v", err)
	}
	field, err := par.ComputeField(context.Background(), scene, model.DefaultConfig())
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}
	if len(field.Samples) != 0 {
		t.Fatalf("expected empty field with no transmitters, got %d samples", len(field.Samples))
	}
}

func TestParallelEngine_NormalizedOutputStaysInRange(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 6), WallMaterial: model.MaterialMetal},
	}
	// Extreme power values in both directions.
	scene := testScene(t, rooms, []model.Transmitter{
		{Name: "hot", Position: model.Position{X: 1, Y: 1, Z: 2.4}, PowerDBm: 60},
		{Name: "cold", Position: model.Position{X: 5, Y: 5, Z: 2.4}, PowerDBm: -80},
	})

	par, err := NewParallelEngine(4)
	if err != nil {
		t.Fatalf("NewParallelEngine: %v", err)
	}
	field, err := par.ComputeField(context.Background(), scene, model.DefaultConfig())
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}

	for i, v := range field.Normalized() {
		if v < 0 || v > 1 {
			t.Fatalf("normalized sample %d = %v, want within [0, 1]", i, v)
		}
	}
}

func TestParallelEngine_SampleInvariantsMatchReferenceContract(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 5), WallMaterial: model.MaterialDrywall},
	}
	scene := testScene(t, rooms, []model.Transmitter{
		{Name: "ap", Position: model.Position{X: 2.5, Y: 2.5, Z: 2.4}},
	})

	par, err := NewParallelEngine(2)
	if err != nil {
		t.Fatalf("NewParallelEngine: %v", err)
	}
	field, err := par.ComputeField(context.Background(), scene, model.DefaultConfig())
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}

	for _, s := range field.Samples {
		if s.Quality != model.ClassifyQuality(s.SignalDBm) {
			t.Errorf("quality %v inconsistent with %.2f dBm", s.Quality, s.SignalDBm)
		}
		if s.Quality != model.QualityNone && s.Transmitter == nil {
			t.Errorf("covered sample at %v missing dominant transmitter", s.Position)
		}
	}
}
