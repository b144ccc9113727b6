// core/scenario_loader.go
package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"

	"github.com/signalsfoundry/coverage-mapper/model"
)

// PlanScenario is a small summary of what was loaded from JSON. It's mainly
// useful for logging or debugging from main().
type PlanScenario struct {
	RoomIDs          []string
	TransmitterNames []string
	ConfigOverridden bool
}

// internal JSON shapes – keep them unexported so we're free to evolve them.
type planScenarioJSON struct {
	Rooms        []roomJSON        `json:"rooms"`
	Transmitters []transmitterJSON `json:"transmitters"`
	Config       *json.RawMessage  `json:"config"`
}

type roomJSON struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Outline      [][]float64 `json:"outline"` // [[x, y], ...] metres
	WallMaterial string      `json:"wall_material"`
	CeilingM     float64     `json:"ceiling_height_m"`
}

type transmitterJSON struct {
	Name     string   `json:"name"`
	Position *posJSON `json:"position"`
	PowerDBm float64  `json:"power_dbm"`
	GainDBi  float64  `json:"gain_dbi"`
	Band     string   `json:"band"`
}

type posJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LoadPlanScenario reads a JSON floor-plan scenario from r, populates the
// PlanStore with rooms, transmitters, and optional configuration overrides,
// and returns a summary of what was loaded.
//
// It fails only on JSON / structural errors; rooms with degenerate outlines
// load fine and simply contribute no coverage area, matching how direct
// Add*() calls behave.
func LoadPlanScenario(store *PlanStore, r io.Reader) (*PlanScenario, error) {
	if store == nil {
		return nil, fmt.Errorf("LoadPlanScenario: store is nil")
	}

	var payload planScenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadPlanScenario: decode failed: %w", err)
	}

	result := &PlanScenario{
		RoomIDs:          make([]string, 0, len(payload.Rooms)),
		TransmitterNames: make([]string, 0, len(payload.Transmitters)),
	}

	// 1) Configuration overrides, applied first so wall derivation sees
	// the effective config.
	if payload.Config != nil {
		cfg := store.Config()
		if err := json.Unmarshal(*payload.Config, &cfg); err != nil {
			return nil, fmt.Errorf("LoadPlanScenario: bad config block: %w", err)
		}
		store.SetConfig(cfg)
		result.ConfigOverridden = true
	}

	// 2) Rooms
	for _, rj := range payload.Rooms {
		material, err := model.ParseMaterial(rj.WallMaterial)
		if err != nil {
			return nil, fmt.Errorf("LoadPlanScenario: room %q: %w", rj.ID, err)
		}
		outline := make([]orb.Point, 0, len(rj.Outline))
		for _, v := range rj.Outline {
			if len(v) != 2 {
				return nil, fmt.Errorf("LoadPlanScenario: room %q: outline vertex needs exactly [x, y]", rj.ID)
			}
			outline = append(outline, orb.Point{v[0], v[1]})
		}
		room := model.Room{
			ID:             rj.ID,
			Name:           rj.Name,
			Outline:        outline,
			WallMaterial:   material,
			CeilingHeightM: rj.CeilingM,
		}
		if err := store.AddRoom(room); err != nil {
			return nil, fmt.Errorf("LoadPlanScenario: %w", err)
		}
		result.RoomIDs = append(result.RoomIDs, room.ID)
	}

	// 3) Transmitters
	for i, tj := range payload.Transmitters {
		if tj.Position == nil {
			return nil, fmt.Errorf("LoadPlanScenario: transmitter %d has no position", i)
		}
		band, err := model.ParseBand(tj.Band)
		if err != nil {
			return nil, fmt.Errorf("LoadPlanScenario: transmitter %q: %w", tj.Name, err)
		}
		tx := model.Transmitter{
			Name:     tj.Name,
			Position: model.Position{X: tj.Position.X, Y: tj.Position.Y, Z: tj.Position.Z},
			PowerDBm: tj.PowerDBm,
			GainDBi:  tj.GainDBi,
			Band:     band,
		}
		if err := store.AddTransmitter(tx); err != nil {
			return nil, fmt.Errorf("LoadPlanScenario: %w", err)
		}
		result.TransmitterNames = append(result.TransmitterNames, tx.Name)
	}

	return result, nil
}
