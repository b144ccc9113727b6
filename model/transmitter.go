package model

import (
	"encoding/json"
	"fmt"
)

// Band identifies a WiFi frequency band. Each band maps to a fixed centre
// frequency used by the path-loss model.
type Band int

const (
	Band2_4GHz Band = iota
	Band5GHz
	Band6GHz
)

// CenterFrequencyMHz returns the fixed centre frequency of the band.
func (b Band) CenterFrequencyMHz() float64 {
	switch b {
	case Band5GHz:
		return 5180
	case Band6GHz:
		return 5955
	default:
		return 2437
	}
}

// CenterFrequencyHz returns the centre frequency in Hz, the unit the FSPL
// constant in core expects.
func (b Band) CenterFrequencyHz() float64 {
	return b.CenterFrequencyMHz() * 1e6
}

func (b Band) String() string {
	switch b {
	case Band5GHz:
		return "5GHz"
	case Band6GHz:
		return "6GHz"
	default:
		return "2.4GHz"
	}
}

// ParseBand converts a scenario-file band name into a Band.
func ParseBand(s string) (Band, error) {
	switch s {
	case "2.4GHz", "2.4", "":
		return Band2_4GHz, nil
	case "5GHz", "5":
		return Band5GHz, nil
	case "6GHz", "6":
		return Band6GHz, nil
	default:
		return Band2_4GHz, fmt.Errorf("unknown band %q", s)
	}
}

// MarshalJSON encodes the band by name.
func (b Band) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Band) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBand(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Default RF parameters for access points that don't specify overrides.
const (
	DefaultTxPowerDBm     = 20.0
	DefaultAntennaGainDBi = 2.15
)

// Transmitter describes a WiFi access point: a 3D position plus its RF
// parameters. Multiple transmitters may coexist; the engine attributes
// coverage at each point to whichever one yields the strongest signal.
type Transmitter struct {
	Name     string   `json:"name,omitempty"`
	Position Position `json:"position"`

	// PowerDBm is the transmit power. Zero means "use the default".
	PowerDBm float64 `json:"power_dbm,omitempty"`
	// GainDBi is the antenna gain. Zero means "use the default".
	GainDBi float64 `json:"gain_dbi,omitempty"`

	Band Band `json:"band"`
}

// EffectivePowerDBm returns the transmit power, substituting the default
// when unset.
func (t Transmitter) EffectivePowerDBm() float64 {
	if t.PowerDBm == 0 {
		return DefaultTxPowerDBm
	}
	return t.PowerDBm
}

// EffectiveGainDBi returns the antenna gain, substituting the default
// when unset.
func (t Transmitter) EffectiveGainDBi() float64 {
	if t.GainDBi == 0 {
		return DefaultAntennaGainDBi
	}
	return t.GainDBi
}
