package climatology

import (
	"math"
	"time"
)

// Reference is the climatology profile at a drop position: mean
// temperatures at the surviving depth levels plus the closed +/- one sigma
// fill band as a polygon in (temperature, depth) space.
type Reference struct {
	Temperature []float64
	Depth       []float64
	TempFill    []float64
	DepthFill   []float64
}

// ProfileAt interpolates the climatology to a position for the given month.
// Longitude is normalized to [0, 360) and both coordinates are clamped to
// the grid interior, so out-of-domain positions produce the nearest valid
// profile rather than an error. Depth levels with no climatology coverage
// are dropped; in fully unsampled regions the result is empty.
func (d *Dataset) ProfileAt(lat, lon float64, month time.Month) Reference {
	lat, lon = clampToGrid(lat, lon)

	var ref Reference
	for level, depth := range depthLevels {
		t := d.bilinear(month, level, lat, lon)
		if math.IsNaN(t) {
			continue
		}
		ref.Temperature = append(ref.Temperature, t)
		ref.Depth = append(ref.Depth, depth)
		ref.TempFill = append(ref.TempFill, t-tempSigma[level])
	}

	// Close the band: down the cold edge, back up the warm edge.
	for i := len(ref.Depth) - 1; i >= 0; i-- {
		levelIdx := levelIndex(ref.Depth[i])
		ref.TempFill = append(ref.TempFill, ref.Temperature[i]+tempSigma[levelIdx])
	}
	ref.DepthFill = append(append([]float64{}, ref.Depth...), reversed(ref.Depth)...)
	return ref
}

func levelIndex(depth float64) int {
	for i, d := range depthLevels {
		if d == depth {
			return i
		}
	}
	return 0
}

func reversed(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}

// clampToGrid normalizes longitude to [0, 360) east and clamps both
// coordinates to the outermost cell centers.
func clampToGrid(lat, lon float64) (float64, float64) {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	lat = math.Min(math.Max(lat, firstLat), -firstLat)
	lon = math.Min(math.Max(lon, firstLon), 360-firstLon)
	return lat, lon
}

// bilinear interpolates one depth level of the monthly grid. A missing
// value at any surrounding cell makes the result NaN.
func (d *Dataset) bilinear(month time.Month, level int, lat, lon float64) float64 {
	fi := lat - firstLat
	fj := lon - firstLon

	i0 := int(math.Floor(fi))
	j0 := int(math.Floor(fj))
	if i0 > latCells-2 {
		i0 = latCells - 2
	}
	if j0 > lonCells-2 {
		j0 = lonCells - 2
	}
	wi := fi - float64(i0)
	wj := fj - float64(j0)

	t00 := d.temp(month, level, i0, j0)
	t01 := d.temp(month, level, i0, j0+1)
	t10 := d.temp(month, level, i0+1, j0)
	t11 := d.temp(month, level, i0+1, j0+1)

	return (1-wi)*(1-wj)*t00 + (1-wi)*wj*t01 + wi*(1-wj)*t10 + wi*wj*t11
}

// interp1 linearly interpolates (xp, fp) at each x. Values outside the
// knot range hold the nearest endpoint, and NaN knots propagate into the
// segments they border. xp must be increasing.
func interp1(x, xp, fp []float64) []float64 {
	out := make([]float64, len(x))
	for k, xv := range x {
		switch {
		case len(xp) == 0:
			out[k] = math.NaN()
		case xv <= xp[0]:
			out[k] = fp[0]
		case xv >= xp[len(xp)-1]:
			out[k] = fp[len(fp)-1]
		default:
			i := 1
			for xp[i] < xv {
				i++
			}
			w := (xv - xp[i-1]) / (xp[i] - xp[i-1])
			out[k] = fp[i-1] + w*(fp[i]-fp[i-1])
		}
	}
	return out
}
