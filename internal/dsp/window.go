package dsp

import "math"

// applyTukey multiplies x in place by a Tukey (tapered cosine) window.
// alpha is the fraction of the window inside the cosine taper; alpha 0 is
// rectangular, alpha 1 is a Hann window.
func applyTukey(x []float64, alpha float64) {
	n := len(x)
	if n < 2 || alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}

	edge := alpha * float64(n-1) / 2
	for j := range x {
		fj := float64(j)
		switch {
		case fj < edge:
			x[j] *= 0.5 * (1 + math.Cos(math.Pi*(fj/edge-1)))
		case fj > float64(n-1)-edge:
			x[j] *= 0.5 * (1 + math.Cos(math.Pi*((fj-float64(n-1))/edge+1)))
		}
	}
}
