package climatology

import (
	"math"

	"github.com/oceansonde/ares/internal/profile"
)

// minUsableTemp marks climatology levels below the realistic ocean range
// as missing; some gridded products use large negative values near ice.
const minUsableTemp = -8.0

// CompareOptions tune the climatology comparison.
type CompareOptions struct {
	SlopeThreshold   float64 // degC/m of smoothed slope difference flagging a mismatch
	SmoothHalfWindow int     // half window for slope-difference smoothing, points
	MinFillMatch     float64 // fraction of points that must sit inside the fill band
}

// DefaultCompareOptions returns the operational comparison settings.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		SlopeThreshold:   0.1,
		SmoothHalfWindow: 50,
		MinFillMatch:     0.9,
	}
}

// Comparison is the outcome of matching a profile against climatology.
type Comparison struct {
	// Match is true when enough of the profile sits inside the climatology
	// fill band. Degenerate inputs with no overlapping valid data always
	// match, since there is no evidence of a mismatch.
	Match bool

	// Cutoff is the depth below which the profile diverges from
	// climatology, indicating a bottom strike. NaN when no cutoff applies.
	Cutoff float64
}

// Compare checks a QC'ed profile against the climatology reference. The
// slope of the profile and of the interpolated climatology are differenced,
// smoothed, and thresholded to find a divergence depth; the profile above
// that depth is then tested point by point against the fill band polygon.
func Compare(p profile.Profile, ref Reference, opts CompareOptions) Comparison {
	refTemp := append([]float64(nil), ref.Temperature...)
	for i, t := range refTemp {
		if t <= minUsableTemp {
			refTemp[i] = math.NaN()
		}
	}

	interp := interp1(p.Depth, ref.Depth, refTemp)

	// Keep only points where both profile and climatology are valid.
	var temp, depth, climo []float64
	for i := range interp {
		if math.IsNaN(interp[i]) || math.IsNaN(p.Temperature[i]) {
			continue
		}
		temp = append(temp, p.Temperature[i])
		depth = append(depth, p.Depth[i])
		climo = append(climo, interp[i])
	}
	if len(temp) == 0 {
		return Comparison{Match: true, Cutoff: math.NaN()}
	}

	// Slope difference at segment midpoints.
	slopeDiff := make([]float64, len(depth)-1)
	slopeDepth := make([]float64, len(depth)-1)
	for i := range slopeDiff {
		dz := depth[i+1] - depth[i]
		climoSlope := (climo[i+1] - climo[i]) / dz
		profSlope := (temp[i+1] - temp[i]) / dz
		slopeDiff[i] = climoSlope - profSlope
		slopeDepth[i] = 0.5*depth[i+1] + 0.5*depth[i]
	}

	cutoff := math.NaN()
	for i, v := range profile.Smooth(slopeDiff, opts.SmoothHalfWindow) {
		if math.Abs(v) >= opts.SlopeThreshold {
			if math.IsNaN(cutoff) || slopeDepth[i] > cutoff {
				cutoff = slopeDepth[i]
			}
		}
	}
	if !math.IsNaN(cutoff) {
		var tt, dd []float64
		for i := range depth {
			if depth[i] <= cutoff {
				tt = append(tt, temp[i])
				dd = append(dd, depth[i])
			}
		}
		temp, depth = tt, dd
	}

	maxDepth := math.Inf(1)
	if !math.IsNaN(cutoff) {
		maxDepth = cutoff
	}

	// Containment test against the fill band. The shallowest point is
	// nudged below the band's top edge so a surface point at exactly 0 m
	// does not fall on the polygon boundary.
	if len(depth) > 0 {
		depth[0] = 0.1
	}
	inside, total := 0, 0
	for i := range temp {
		if depth[i] > maxDepth {
			continue
		}
		total++
		if polygonContains(ref.TempFill, ref.DepthFill, temp[i], depth[i]) {
			inside++
		}
	}

	match := total > 0 && float64(inside)/float64(total) >= opts.MinFillMatch
	return Comparison{Match: match, Cutoff: cutoff}
}
