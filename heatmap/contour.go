package heatmap

import (
	"image"
	"image/color"
)

// ContourLevelsDBm are the fixed signal levels the overlay draws.
var ContourLevelsDBm = []float64{-80, -70, -60, -50, -40}

var contourColor = color.NRGBA{R: 40, G: 40, B: 40, A: 255}

// DrawContours overlays contour lines on an image already colorized from
// the raster: a pixel is part of a contour when its cell sits at or above a
// level while its left or top neighbour sits below it. This is a coarse
// marching-squares simplification, not full contour tracing.
func DrawContours(img *image.NRGBA, r *Raster) {
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			v := r.At(x, y)
			if v == SentinelDBm {
				continue
			}
			for _, level := range ContourLevelsDBm {
				if v < level {
					continue
				}
				left := r.At(x-1, y)
				top := r.At(x, y-1)
				crossesLeft := x > 0 && left != SentinelDBm && left < level
				crossesTop := y > 0 && top != SentinelDBm && top < level
				if crossesLeft || crossesTop {
					img.SetNRGBA(x, r.Height-1-y, contourColor)
					break
				}
			}
		}
	}
}
