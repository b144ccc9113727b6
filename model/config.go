package model

import "fmt"

// InterpolationMethod selects how the heatmap generator fills raster cells
// that received no direct sample.
type InterpolationMethod int

const (
	InterpNearest InterpolationMethod = iota
	InterpBilinear
	InterpBicubic
	InterpIDW
	InterpKriging
	InterpSpline
)

func (m InterpolationMethod) String() string {
	switch m {
	case InterpNearest:
		return "nearest"
	case InterpBilinear:
		return "bilinear"
	case InterpBicubic:
		return "bicubic"
	case InterpIDW:
		return "idw"
	case InterpKriging:
		return "kriging"
	case InterpSpline:
		return "spline"
	default:
		return "unknown"
	}
}

// ParseInterpolationMethod converts a flag/scenario value into a method.
func ParseInterpolationMethod(s string) (InterpolationMethod, error) {
	switch s {
	case "nearest":
		return InterpNearest, nil
	case "bilinear":
		return InterpBilinear, nil
	case "bicubic":
		return InterpBicubic, nil
	case "idw", "":
		return InterpIDW, nil
	case "kriging":
		return InterpKriging, nil
	case "spline":
		return InterpSpline, nil
	default:
		return InterpIDW, fmt.Errorf("unknown interpolation method %q", s)
	}
}

// ColorScheme selects the palette used when colorizing a heatmap.
type ColorScheme int

const (
	SchemeClassic ColorScheme = iota
	SchemeThermal
	SchemeGrayscale
)

func (s ColorScheme) String() string {
	switch s {
	case SchemeThermal:
		return "thermal"
	case SchemeGrayscale:
		return "grayscale"
	default:
		return "classic"
	}
}

// ParseColorScheme converts a flag/scenario value into a scheme.
func ParseColorScheme(s string) (ColorScheme, error) {
	switch s {
	case "classic", "":
		return SchemeClassic, nil
	case "thermal":
		return SchemeThermal, nil
	case "grayscale", "gray":
		return SchemeGrayscale, nil
	default:
		return SchemeClassic, fmt.Errorf("unknown color scheme %q", s)
	}
}

// Config is an immutable snapshot of all tunable analysis parameters. A
// Config is consumed whole per generation call; callers that change any
// field must treat the result as a new configuration and invalidate every
// cache derived from the old one (PlanStore bumps its generation for this).
type Config struct {
	// Path-loss exponents.
	FreeSpaceExponent  float64 `json:"free_space_exponent"`
	IndoorExponent     float64 `json:"indoor_exponent"`
	ObstructedExponent float64 `json:"obstructed_exponent"`

	// Attenuation constants. WallAttenuationDB is the generic per-wall
	// figure used where no material-specific value applies (the parallel
	// engine's flattened kernel); material walls carry their own values.
	WallAttenuationDB  float64 `json:"wall_attenuation_db"`
	FloorAttenuationDB float64 `json:"floor_attenuation_db"`
	FloorHeightM       float64 `json:"floor_height_m"`

	// Sampling geometry.
	SampleResolutionM float64 `json:"sample_resolution_m"`
	PixelResolutionM  float64 `json:"pixel_resolution_m"`
	SampleHeightM     float64 `json:"sample_height_m"`
	CeilingHeightM    float64 `json:"ceiling_height_m"`
	HeightToleranceM  float64 `json:"height_tolerance_m"`

	// Rendering.
	Interpolation  InterpolationMethod `json:"interpolation"`
	ColorScheme    ColorScheme         `json:"color_scheme"`
	SmoothingSigma float64             `json:"smoothing_sigma"`
}

// DefaultConfig returns the documented defaults for every parameter.
func DefaultConfig() Config {
	return Config{
		FreeSpaceExponent:  2.0,
		IndoorExponent:     3.0,
		ObstructedExponent: 4.0,
		WallAttenuationDB:  5,
		FloorAttenuationDB: 15,
		FloorHeightM:       3,
		SampleResolutionM:  0.5,
		PixelResolutionM:   0.05,
		SampleHeightM:      1.0,
		CeilingHeightM:     2.7,
		HeightToleranceM:   0.5,
		Interpolation:      InterpIDW,
		ColorScheme:        SchemeClassic,
		SmoothingSigma:     1.5,
	}
}

// Key returns a deterministic string identifying this configuration, used
// to key memoized results. Two configs with equal keys produce identical
// outputs for identical scenes.
func (c Config) Key() string {
	return fmt.Sprintf("e%.3g/%.3g/%.3g|a%.3g/%.3g/%.3g|s%.3g/%.3g/%.3g/%.3g/%.3g|r%s/%s/%.3g",
		c.FreeSpaceExponent, c.IndoorExponent, c.ObstructedExponent,
		c.WallAttenuationDB, c.FloorAttenuationDB, c.FloorHeightM,
		c.SampleResolutionM, c.PixelResolutionM, c.SampleHeightM, c.CeilingHeightM, c.HeightToleranceM,
		c.Interpolation, c.ColorScheme, c.SmoothingSigma)
}
