package heatmap

import (
	"image"
	"image/color"

	"github.com/signalsfoundry/coverage-mapper/model"
)

// Normalization window for colorization: signals at or below -100 dBm map
// to 0, at or above -30 dBm to 1.
const (
	colorFloorDBm   = -100.0
	colorCeilingDBm = -30.0
)

// colorStop is one control point of a palette: a fractional position in
// [0,1] and the color there.
type colorStop struct {
	pos float64
	c   color.NRGBA
}

// schemeStops returns the discrete control-point list for a scheme. Values
// between stops blend linearly.
func schemeStops(scheme model.ColorScheme) []colorStop {
	switch scheme {
	case model.SchemeThermal:
		return []colorStop{
			{0.0, color.NRGBA{R: 0, G: 0, B: 0, A: 255}},
			{0.25, color.NRGBA{R: 96, G: 0, B: 128, A: 255}},
			{0.5, color.NRGBA{R: 220, G: 20, B: 20, A: 255}},
			{0.75, color.NRGBA{R: 255, G: 160, B: 0, A: 255}},
			{1.0, color.NRGBA{R: 255, G: 255, B: 220, A: 255}},
		}
	case model.SchemeGrayscale:
		return []colorStop{
			{0.0, color.NRGBA{R: 16, G: 16, B: 16, A: 255}},
			{1.0, color.NRGBA{R: 240, G: 240, B: 240, A: 255}},
		}
	default: // classic
		return []colorStop{
			{0.0, color.NRGBA{R: 0, G: 0, B: 160, A: 255}},
			{0.25, color.NRGBA{R: 0, G: 180, B: 220, A: 255}},
			{0.5, color.NRGBA{R: 0, G: 200, B: 0, A: 255}},
			{0.75, color.NRGBA{R: 250, G: 220, B: 0, A: 255}},
			{1.0, color.NRGBA{R: 230, G: 30, B: 30, A: 255}},
		}
	}
}

// NormalizeForColor maps a signal in dBm to the [0,1] palette position.
func NormalizeForColor(signalDBm float64) float64 {
	v := (signalDBm - colorFloorDBm) / (colorCeilingDBm - colorFloorDBm)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ColorAt returns the palette color for a signal strength, blending
// linearly between the two nearest control points.
func ColorAt(scheme model.ColorScheme, signalDBm float64) color.NRGBA {
	stops := schemeStops(scheme)
	pos := NormalizeForColor(signalDBm)

	if pos <= stops[0].pos {
		return stops[0].c
	}
	for i := 1; i < len(stops); i++ {
		if pos <= stops[i].pos {
			lo, hi := stops[i-1], stops[i]
			t := (pos - lo.pos) / (hi.pos - lo.pos)
			return lerpColor(lo.c, hi.c, t)
		}
	}
	return stops[len(stops)-1].c
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 255,
	}
}

// Colorize renders the raster into an image through the scheme's palette.
// The image Y axis points down while the raster's world Y axis points up,
// so rows are flipped.
func Colorize(r *Raster, scheme model.ColorScheme) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			img.SetNRGBA(x, r.Height-1-y, ColorAt(scheme, r.At(x, y)))
		}
	}
	return img
}
