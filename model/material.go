package model

import (
	"encoding/json"
	"fmt"
)

// Material identifies the construction material of a wall or floor slab.
// Each material carries a fixed attenuation applied whenever a propagation
// path crosses a segment of that type.
type Material int

const (
	MaterialAir Material = iota
	MaterialDrywall
	MaterialConcrete
	MaterialGlass
	MaterialWood
	MaterialMetal
	MaterialFloor
	MaterialDoor
)

// AttenuationDB returns the fixed per-crossing attenuation for the material
// in dB. The switch is exhaustive over all defined materials; unknown values
// fall back to the drywall figure rather than zero so a bad input never
// produces optimistic coverage.
func (m Material) AttenuationDB() float64 {
	switch m {
	case MaterialAir:
		return 0
	case MaterialDrywall:
		return 5
	case MaterialConcrete:
		return 10
	case MaterialGlass:
		return 2
	case MaterialWood:
		return 3
	case MaterialMetal:
		return 20
	case MaterialFloor:
		return 15
	case MaterialDoor:
		return 4
	default:
		return 5
	}
}

func (m Material) String() string {
	switch m {
	case MaterialAir:
		return "air"
	case MaterialDrywall:
		return "drywall"
	case MaterialConcrete:
		return "concrete"
	case MaterialGlass:
		return "glass"
	case MaterialWood:
		return "wood"
	case MaterialMetal:
		return "metal"
	case MaterialFloor:
		return "floor"
	case MaterialDoor:
		return "door"
	default:
		return "unknown"
	}
}

// ParseMaterial converts a scenario-file material name into a Material.
func ParseMaterial(s string) (Material, error) {
	switch s {
	case "air":
		return MaterialAir, nil
	case "drywall", "":
		return MaterialDrywall, nil
	case "concrete":
		return MaterialConcrete, nil
	case "glass":
		return MaterialGlass, nil
	case "wood":
		return MaterialWood, nil
	case "metal":
		return MaterialMetal, nil
	case "floor":
		return MaterialFloor, nil
	case "door":
		return MaterialDoor, nil
	default:
		return MaterialDrywall, fmt.Errorf("unknown material %q", s)
	}
}

// MarshalJSON encodes the material by name so scenario files stay readable.
func (m Material) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Material) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMaterial(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
