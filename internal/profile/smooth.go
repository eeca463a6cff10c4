package profile

import "gonum.org/v1/gonum/stat"

// Smooth applies a running mean with the given half window to data and
// returns the smoothed copy. Points closer than halfWindow to either end
// average over the truncated one-sided range. When the full window does
// not fit inside the series at all, every output point is the series mean.
func Smooth(data []float64, halfWindow int) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	out := make([]float64, n)
	if 2*halfWindow+1 >= n {
		mean := stat.Mean(data, nil)
		for i := range out {
			out[i] = mean
		}
		return out
	}

	for i := range data {
		switch {
		case i <= halfWindow:
			out[i] = stat.Mean(data[:i+halfWindow], nil)
		case i >= n-halfWindow:
			out[i] = stat.Mean(data[i-halfWindow:], nil)
		default:
			out[i] = stat.Mean(data[i-halfWindow:i+halfWindow], nil)
		}
	}
	return out
}
