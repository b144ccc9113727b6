package heatmap

import "math"

// GaussianSmooth applies the given number of normalized Gaussian convolution
// passes to the raster. The kernel size is ⌈3σ⌉·2+1. Sentinel neighbours are
// skipped from the weighted sum, and cells whose kernel window would extend
// past the image border are excluded from convolution entirely so smoothing
// never bleeds across completely unknown border regions.
func GaussianSmooth(r *Raster, sigma float64, passes int) {
	if sigma <= 0 || passes < 1 {
		return
	}

	radius := int(math.Ceil(3 * sigma))
	size := radius*2 + 1
	kernel := make([]float64, size*size)
	twoSigmaSq := 2 * sigma * sigma
	for ky := -radius; ky <= radius; ky++ {
		for kx := -radius; kx <= radius; kx++ {
			kernel[(ky+radius)*size+(kx+radius)] = math.Exp(-float64(kx*kx+ky*ky) / twoSigmaSq)
		}
	}

	for pass := 0; pass < passes; pass++ {
		out := make([]float64, len(r.Values))
		copy(out, r.Values)

		for y := radius; y < r.Height-radius; y++ {
			for x := radius; x < r.Width-radius; x++ {
				if !r.Known(x, y) {
					continue
				}
				var sum, weight float64
				for ky := -radius; ky <= radius; ky++ {
					for kx := -radius; kx <= radius; kx++ {
						v := r.At(x+kx, y+ky)
						if v == SentinelDBm {
							continue
						}
						w := kernel[(ky+radius)*size+(kx+radius)]
						sum += v * w
						weight += w
					}
				}
				if weight > 0 {
					out[y*r.Width+x] = sum / weight
				}
			}
		}
		r.Values = out
	}
}
