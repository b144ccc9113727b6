package heatmap

import (
	"math"

	"github.com/signalsfoundry/coverage-mapper/model"
)

const (
	// nearestSearchRadius caps the expanding-ring search of the
	// nearest-neighbor method.
	nearestSearchRadius = 10
	// idwPower is the inverse-distance weighting exponent.
	idwPower = 2.0
	// bilinearNeighbors is how many known points the bilinear
	// approximation blends.
	bilinearNeighbors = 4
)

// Interpolate fills every sentinel cell of the raster using the selected
// method. Cells that already hold a sample value are never touched, so
// interpolation reproduces known samples exactly. Kriging and spline are
// named presets of the IDW/smoothing pipeline, not true implementations;
// bicubic is approximated as bilinear plus extra smoothing passes.
func Interpolate(r *Raster, method model.InterpolationMethod, sigma float64) {
	switch method {
	case model.InterpNearest:
		interpolateNearest(r)
	case model.InterpBilinear:
		interpolateKNearest(r, bilinearNeighbors)
	case model.InterpBicubic:
		interpolateKNearest(r, bilinearNeighbors)
		GaussianSmooth(r, smoothSigma(sigma), 2)
	case model.InterpSpline:
		interpolateKNearest(r, bilinearNeighbors)
		GaussianSmooth(r, smoothSigma(sigma), 3)
	case model.InterpKriging:
		interpolateIDW(r)
	default:
		interpolateIDW(r)
	}
}

func smoothSigma(sigma float64) float64 {
	if sigma <= 0 {
		return 1
	}
	return sigma
}

// knownCell is a filled raster cell used as an interpolation source.
type knownCell struct {
	x, y  int
	value float64
}

func collectKnown(r *Raster) []knownCell {
	var known []knownCell
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if r.Known(x, y) {
				known = append(known, knownCell{x: x, y: y, value: r.At(x, y)})
			}
		}
	}
	return known
}

// interpolateNearest fills each sentinel cell with the value of the nearest
// known cell found by an expanding ring search, giving up beyond the radius
// cap.
func interpolateNearest(r *Raster) {
	out := make([]float64, len(r.Values))
	copy(out, r.Values)

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if r.Known(x, y) {
				continue
			}
			if v, ok := nearestKnown(r, x, y); ok {
				out[y*r.Width+x] = v
			}
		}
	}
	r.Values = out
}

func nearestKnown(r *Raster, cx, cy int) (float64, bool) {
	bestDist := math.MaxFloat64
	bestVal := 0.0
	found := false
	for radius := 1; radius <= nearestSearchRadius; radius++ {
		for y := cy - radius; y <= cy+radius; y++ {
			for x := cx - radius; x <= cx+radius; x++ {
				// Ring only: interior cells were checked at a
				// smaller radius.
				if x != cx-radius && x != cx+radius && y != cy-radius && y != cy+radius {
					continue
				}
				if !r.Known(x, y) {
					continue
				}
				dx := float64(x - cx)
				dy := float64(y - cy)
				d := dx*dx + dy*dy
				if d < bestDist {
					bestDist = d
					bestVal = r.At(x, y)
					found = true
				}
			}
		}
		if found {
			// One extra ring could still hold a closer diagonal
			// match, but the approximation is fine at heatmap
			// resolution.
			return bestVal, true
		}
	}
	return 0, false
}

// interpolateIDW fills each sentinel cell with the inverse-distance-weighted
// mean of every known cell.
func interpolateIDW(r *Raster) {
	known := collectKnown(r)
	if len(known) == 0 {
		return
	}

	out := make([]float64, len(r.Values))
	copy(out, r.Values)

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if r.Known(x, y) {
				continue
			}
			var sum, weight float64
			for _, k := range known {
				dx := float64(k.x - x)
				dy := float64(k.y - y)
				d := math.Sqrt(dx*dx + dy*dy)
				w := 1.0 / math.Pow(d, idwPower)
				sum += k.value * w
				weight += w
			}
			if weight > 0 {
				out[y*r.Width+x] = sum / weight
			}
		}
	}
	r.Values = out
}

// interpolateKNearest blends the k nearest known cells by inverse distance,
// degrading to the all-points weighted average when fewer than k exist.
func interpolateKNearest(r *Raster, k int) {
	known := collectKnown(r)
	if len(known) == 0 {
		return
	}
	if len(known) < k {
		interpolateIDW(r)
		return
	}

	out := make([]float64, len(r.Values))
	copy(out, r.Values)

	distances := make([]float64, len(known))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if r.Known(x, y) {
				continue
			}
			for i, kc := range known {
				dx := float64(kc.x - x)
				dy := float64(kc.y - y)
				distances[i] = math.Sqrt(dx*dx + dy*dy)
			}
			out[y*r.Width+x] = blendNearest(known, distances, k)
		}
	}
	r.Values = out
}

// blendNearest selects the k smallest distances and returns their
// inverse-distance-weighted value.
func blendNearest(known []knownCell, distances []float64, k int) float64 {
	type pick struct {
		dist  float64
		value float64
	}
	picks := make([]pick, 0, k)
	for i, d := range distances {
		if len(picks) < k {
			picks = append(picks, pick{dist: d, value: known[i].value})
			continue
		}
		// Replace the current farthest pick when this one is closer.
		farthest := 0
		for j := 1; j < len(picks); j++ {
			if picks[j].dist > picks[farthest].dist {
				farthest = j
			}
		}
		if d < picks[farthest].dist {
			picks[farthest] = pick{dist: d, value: known[i].value}
		}
	}

	var sum, weight float64
	for _, p := range picks {
		w := 1.0 / math.Pow(p.dist, idwPower)
		sum += p.value * w
		weight += w
	}
	if weight == 0 {
		return SentinelDBm
	}
	return sum / weight
}
