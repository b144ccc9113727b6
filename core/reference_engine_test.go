package core

import (
	"context"
	"math"
	"testing"

	"github.com/signalsfoundry/coverage-mapper/model"
)

func testScene(t *testing.T, rooms []model.Room, txs []model.Transmitter) *Scene {
	t.Helper()
	cfg := model.DefaultConfig()
	return &Scene{
		Rooms:        rooms,
		Transmitters: txs,
		Walls:        WallsForRooms(rooms, cfg),
		Generation:   1,
	}
}

func TestReferenceEngine_EmptyTransmittersYieldsEmptyField(t *testing.T) {
	scene := testScene(t, []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 5), WallMaterial: model.MaterialDrywall},
	}, nil)

	field, err := NewReferenceEngine().ComputeField(context.Background(), scene, model.DefaultConfig())
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}
	if len(field.Samples) != 0 {
		t.Fatalf("expected empty field with no transmitters, got %d samples", len(field.Samples))
	}
	if field.Engine != "reference" {
		t.Errorf("field engine = %q, want reference", field.Engine)
	}
}

func TestReferenceEngine_SamplesOnlyInsideRooms(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 4), WallMaterial: model.MaterialDrywall},
	}
	scene := testScene(t, rooms, []model.Transmitter{
		{Name: "ap", Position: model.Position{X: 2, Y: 2, Z: 2.4}},
	})

	field, err := NewReferenceEngine().ComputeField(context.Background(), scene, model.DefaultConfig())
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}
	if len(field.Samples) == 0 {
		t.Fatalf("expected samples inside the room")
	}
	for _, s := range field.Samples {
		if !scene.ContainsPlanPoint(s.Position.PlanPoint()) {
			t.Errorf("sample at %v lies outside every room", s.Position)
		}
		if s.Position.Z != model.DefaultConfig().SampleHeightM {
			t.Errorf("sample height = %v, want configured %v", s.Position.Z, model.DefaultConfig().SampleHeightM)
		}
	}
}

func TestReferenceEngine_SampleInvariants(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 6), WallMaterial: model.MaterialDrywall},
	}
	txs := []model.Transmitter{
		{Name: "a", Position: model.Position{X: 1, Y: 1, Z: 2.4}},
		{Name: "b", Position: model.Position{X: 5, Y: 5, Z: 2.4}},
	}
	scene := testScene(t, rooms, txs)

	field, err := NewReferenceEngine().ComputeField(context.Background(), scene, model.DefaultConfig())
	if err != nil {
		t.Fatalf("ComputeField: %v", err)
	}

	for _, s := range field.Samples {
		if s.Quality != model.ClassifyQuality(s.SignalDBm) {
			t.Errorf("sample quality %v inconsistent with signal %.2f dBm", s.Quality, s.SignalDBm)
		}
		if s.Quality != model.QualityNone && s.Transmitter == nil {
			t.Errorf("covered sample at %v has no dominant transmitter", s.Position)
		}
		if s.Transmitter != nil && s.Transmitter.Name != "a" && s.Transmitter.Name != "b" {
			t.Errorf("dominant transmitter %q is not part of the scene", s.Transmitter.Name)
		}
	}
}

func TestReferenceEngine_VolumeLevels(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 4), WallMaterial: model.MaterialDrywall, CeilingHeightM: 2.5},
	}
	scene := testScene(t, rooms, []model.Transmitter{
		{Name: "ap", Position: model.Position{X: 2, Y: 2, Z: 2.4}},
	})
	cfg := model.DefaultConfig()
	cfg.CeilingHeightM = 2.5

	field, err := NewReferenceEngine().ComputeVolume(context.Background(), scene, cfg, 4)
	if err != nil {
		t.Fatalf("ComputeVolume: %v", err)
	}
	if len(field.HeightsM) != 4 {
		t.Fatalf("volume heights = %v, want 4 levels", field.HeightsM)
	}
	if field.HeightsM[0] != 1.0 {
		t.Errorf("bottom level = %v, want 1.0", field.HeightsM[0])
	}
	if math.Abs(field.HeightsM[3]-2.5) > 1e-12 {
		t.Errorf("top level = %v, want ceiling 2.5", field.HeightsM[3])
	}

	// Levels must be evenly spaced.
	step := field.HeightsM[1] - field.HeightsM[0]
	for i := 2; i < len(field.HeightsM); i++ {
		if math.Abs((field.HeightsM[i]-field.HeightsM[i-1])-step) > 1e-9 {
			t.Errorf("uneven level spacing: %v", field.HeightsM)
		}
	}

	// Every level contributes samples.
	perHeight := map[float64]int{}
	for _, s := range field.Samples {
		perHeight[s.Position.Z]++
	}
	if len(perHeight) != 4 {
		t.Errorf("samples span %d distinct heights, want 4", len(perHeight))
	}
}

func TestReferenceEngine_VolumeSingleLevelDegradesToField(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 4), WallMaterial: model.MaterialDrywall},
	}
	scene := testScene(t, rooms, []model.Transmitter{
		{Name: "ap", Position: model.Position{X: 2, Y: 2, Z: 2.4}},
	})
	cfg := model.DefaultConfig()

	field, err := NewReferenceEngine().ComputeVolume(context.Background(), scene, cfg, 1)
	if err != nil {
		t.Fatalf("ComputeVolume: %v", err)
	}
	if len(field.HeightsM) != 1 || field.HeightsM[0] != cfg.SampleHeightM {
		t.Errorf("single-level volume heights = %v, want [%v]", field.HeightsM, cfg.SampleHeightM)
	}
}

func TestReferenceEngine_CancelledContext(t *testing.T) {
	rooms := []model.Room{
		{ID: "r", Outline: squareOutline(0, 0, 10), WallMaterial: model.MaterialDrywall},
	}
	scene := testScene(t, rooms, []model.Transmitter{
		{Name: "ap", Position: model.Position{X: 5, Y: 5, Z: 2.4}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewReferenceEngine().ComputeField(ctx, scene, model.DefaultConfig()); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func TestNormalizeSignal_Clamps(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-150, 0},
		{-100, 0},
		{-50, 0.5},
		{0, 1},
		{50, 1},
	}
	for _, c := range cases {
		if got := NormalizeSignal(c.in); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("NormalizeSignal(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
