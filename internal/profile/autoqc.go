package profile

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	gapCheckDepth  = 50.0 // false starts are only corrected in the upper profile
	gapMinSize     = 10.0 // smallest depth jump treated as a gap, meters
	despikeWindow  = 5.0  // despiker range is +/- this many meters
	despikeMinKeep = 10.0 // points shallower than this always survive despiking
)

// Options control the automated QC pipeline.
type Options struct {
	SmoothWindow  float64 // depth span of the smoothing window, meters
	MinResolution float64 // minimum vertical spacing of subsampled points, meters
	MaxStdDev     float64 // despiker tolerance in running standard deviations
	CheckForGaps  bool    // correct false starts from VHF interference
}

// DefaultOptions returns the operational QC settings.
func DefaultOptions() Options {
	return Options{
		SmoothWindow:  8,
		MinResolution: 8,
		MaxStdDev:     1,
		CheckForGaps:  true,
	}
}

// AutoQC runs the full quality-control pipeline over a raw profile: gap
// removal, despiking, depth-based smoothing, and slope-limited subsampling,
// finishing with a surface point if the profile does not start at 0 m.
// An empty profile is returned unchanged.
func AutoQC(raw Profile, opts Options) Profile {
	if raw.Len() == 0 {
		return raw
	}

	p := raw
	if opts.CheckForGaps {
		p = removeGaps(p)
	}
	p = despike(p, opts.MaxStdDev)
	p = smoothByDepth(p, opts.SmoothWindow)
	p = subsample(p, opts.MinResolution)

	if p.Len() > 0 && p.Depth[0] != 0 {
		p.Depth = append([]float64{0}, p.Depth...)
		p.Temperature = append([]float64{p.Temperature[0]}, p.Temperature...)
	}
	return p
}

// removeGaps corrects false starts: a depth jump of gapMinSize or more in
// the upper gapCheckDepth meters means the receiver triggered early, so the
// profile restarts at the deepest such jump with depths re-zeroed there.
// Repeats until no gap remains.
func removeGaps(p Profile) Profile {
	depth := p.Depth
	temp := p.Temperature
	for {
		lastGap := -1
		for i := 1; i < len(depth); i++ {
			if depth[i] >= depth[i-1]+gapMinSize && depth[i-1] <= gapCheckDepth {
				lastGap = i
			}
		}
		if lastGap < 0 {
			return Profile{Temperature: temp, Depth: depth}
		}

		start := depth[lastGap]
		temp = temp[lastGap:]
		rezeroed := make([]float64, len(depth)-lastGap)
		for i, d := range depth[lastGap:] {
			rezeroed[i] = d - start
		}
		depth = rezeroed
	}
}

// despike drops points more than maxDev running standard deviations from
// the running mean of a +/- despikeWindow meter depth band. Points above
// despikeMinKeep meters are always kept.
func despike(p Profile, maxDev float64) Profile {
	maxDepth := floats.Max(p.Depth)

	var out Profile
	for n, cdepth := range p.Depth {
		var band []float64
		lo, hi := cdepth-despikeWindow, cdepth+despikeWindow
		switch {
		case cdepth <= despikeWindow:
			lo, hi = math.Inf(-1), despikeWindow
		case cdepth >= maxDepth-despikeWindow:
			lo, hi = maxDepth-despikeWindow, math.Inf(1)
		}
		for i, d := range p.Depth {
			if d >= lo && d <= hi {
				band = append(band, p.Temperature[i])
			}
		}

		mean := stat.Mean(band, nil)
		std := stat.PopStdDev(band, nil)
		if math.Abs(p.Temperature[n]-mean) <= maxDev*std || p.Depth[n] < despikeMinKeep {
			out.Temperature = append(out.Temperature, p.Temperature[n])
			out.Depth = append(out.Depth, p.Depth[n])
		}
	}
	return out
}

// smoothByDepth averages temperatures over a depth window that shrinks near
// the profile ends so the window always fits; the shallowest and deepest
// points keep their original temperatures.
func smoothByDepth(p Profile, window float64) Profile {
	if p.Len() == 0 {
		return p
	}
	minDepth := floats.Min(p.Depth)
	maxDepth := floats.Max(p.Depth)

	out := Profile{Depth: p.Depth}
	for n, cdepth := range p.Depth {
		if cdepth == minDepth || cdepth == maxDepth {
			out.Temperature = append(out.Temperature, p.Temperature[n])
			continue
		}

		cur := window
		switch {
		case cdepth <= window/2:
			cur = 2 * cdepth
		case cdepth >= maxDepth-window/2:
			cur = 2 * (maxDepth - cdepth)
		}

		var band []float64
		for i, d := range p.Depth {
			if d >= cdepth-cur/2 && d <= cdepth+cur/2 {
				band = append(band, p.Temperature[i])
			}
		}
		out.Temperature = append(out.Temperature, stat.Mean(band, nil))
	}
	return out
}

// subsample keeps critical points: the local slope must not exceed
// 0.5 degC/m and consecutive kept points must be at least minRes meters
// apart. Slopes are centered differences with 0 pinned at both ends, so
// the endpoints always satisfy the slope constraint.
func subsample(p Profile, minRes float64) Profile {
	n := p.Len()
	if n == 0 {
		return p
	}

	dtdz := make([]float64, n)
	for i := 1; i < n-1; i++ {
		dtdz[i] = (p.Temperature[i+1] - p.Temperature[i-1]) / (p.Depth[i+1] - p.Depth[i-1])
	}

	var out Profile
	lastDepth := math.Inf(-1)
	for i, cdepth := range p.Depth {
		if dtdz[i] <= 0.5 && cdepth-lastDepth >= minRes {
			out.Depth = append(out.Depth, cdepth)
			out.Temperature = append(out.Temperature, p.Temperature[i])
			lastDepth = cdepth
		}
	}
	return out
}
