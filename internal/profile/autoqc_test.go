package profile

import (
	"math"
	"testing"
)

// linear builds a clean profile from 0 to maxDepth at the given spacing
// with a mild linear temperature gradient.
func linear(maxDepth, spacing float64) Profile {
	var p Profile
	for d := 0.0; d <= maxDepth; d += spacing {
		p.Depth = append(p.Depth, d)
		p.Temperature = append(p.Temperature, 28-0.01*d)
	}
	return p
}

func TestAutoQCEmptyProfile(t *testing.T) {
	out := AutoQC(Profile{}, DefaultOptions())
	if out.Len() != 0 {
		t.Fatalf("expected empty output, got %d points", out.Len())
	}
}

func TestAutoQCStartsAtSurface(t *testing.T) {
	p := linear(500, 1.5)
	out := AutoQC(p, DefaultOptions())
	if out.Len() == 0 {
		t.Fatal("QC removed the whole profile")
	}
	if out.Depth[0] != 0 {
		t.Errorf("first depth %v, want surface point at 0", out.Depth[0])
	}
	for i := 1; i < out.Len(); i++ {
		if out.Depth[i] <= out.Depth[i-1] {
			t.Fatalf("depths not increasing at %d: %v <= %v", i, out.Depth[i], out.Depth[i-1])
		}
	}
}

func TestAutoQCSubsampleSpacing(t *testing.T) {
	opts := DefaultOptions()
	opts.MinResolution = 20

	out := AutoQC(linear(500, 1.5), opts)
	// Ignore the inserted surface point; every other pair must respect the
	// minimum vertical resolution.
	for i := 2; i < out.Len(); i++ {
		if gap := out.Depth[i] - out.Depth[i-1]; gap < opts.MinResolution {
			t.Errorf("points %d,%d only %v m apart, want >= %v", i-1, i, gap, opts.MinResolution)
		}
	}
}

func TestRemoveGapsReZeroesFalseStart(t *testing.T) {
	// Interference points at 0-3 m, then the real drop starts with a 30 m
	// jump. The profile must restart at the jump with depth re-zeroed.
	p := Profile{
		Depth:       []float64{0, 1, 2, 3, 33, 34.5, 36, 37.5},
		Temperature: []float64{5, 5, 5, 5, 20, 20, 20, 20},
	}
	out := removeGaps(p)
	if out.Len() != 4 {
		t.Fatalf("got %d points, want 4", out.Len())
	}
	if out.Depth[0] != 0 {
		t.Errorf("re-zeroed start depth %v, want 0", out.Depth[0])
	}
	if out.Temperature[0] != 20 {
		t.Errorf("start temperature %v, want 20", out.Temperature[0])
	}
	if got := out.Depth[3]; got != 4.5 {
		t.Errorf("last depth %v, want 4.5", got)
	}
}

func TestRemoveGapsKeepsCleanProfile(t *testing.T) {
	p := linear(200, 1.5)
	out := removeGaps(p)
	if out.Len() != p.Len() {
		t.Errorf("clean profile shrank from %d to %d points", p.Len(), out.Len())
	}
}

func TestRemoveGapsIgnoresDeepGaps(t *testing.T) {
	// A transmission dropout below the 50 m check depth is not a false
	// start and must not re-zero the profile.
	p := Profile{
		Depth:       []float64{0, 8, 16, 24, 32, 40, 48, 56, 120, 128},
		Temperature: []float64{28, 28, 27, 27, 26, 26, 25, 25, 22, 22},
	}
	out := removeGaps(p)
	if out.Len() != p.Len() {
		t.Errorf("deep gap removed points: %d -> %d", p.Len(), out.Len())
	}
}

func TestDespikeRemovesOutlier(t *testing.T) {
	p := linear(100, 1.5)
	// Plant a 10 degC spike well below the always-keep depth.
	spikeAt := -1
	for i, d := range p.Depth {
		if d > 50 {
			spikeAt = i
			break
		}
	}
	p.Temperature[spikeAt] += 10

	out := despike(p, 1)
	for i, d := range out.Depth {
		if d == p.Depth[spikeAt] && out.Temperature[i] == p.Temperature[spikeAt] {
			t.Fatalf("spike at %v m survived despiking", d)
		}
	}
	if out.Len() == 0 {
		t.Fatal("despiker removed everything")
	}
}

func TestDespikeKeepsShallowOutlier(t *testing.T) {
	p := linear(100, 1.5)
	p.Temperature[2] += 10 // 3 m, inside the always-keep band

	out := despike(p, 1)
	found := false
	for i, d := range out.Depth {
		if d == p.Depth[2] && out.Temperature[i] == p.Temperature[2] {
			found = true
		}
	}
	if !found {
		t.Error("outlier above 10 m was removed; shallow points must survive")
	}
}

func TestSmoothByDepthKeepsEndpoints(t *testing.T) {
	p := Profile{
		Depth:       []float64{0, 4, 8, 12, 16, 20},
		Temperature: []float64{30, 10, 20, 10, 20, 5},
	}
	out := smoothByDepth(p, 8)
	if out.Temperature[0] != 30 {
		t.Errorf("surface temperature %v, want original 30", out.Temperature[0])
	}
	if last := out.Temperature[out.Len()-1]; last != 5 {
		t.Errorf("bottom temperature %v, want original 5", last)
	}
	for i, v := range out.Temperature {
		if math.IsNaN(v) {
			t.Fatalf("NaN at %d after smoothing", i)
		}
	}
}

func TestSubsampleRejectsSteepSlope(t *testing.T) {
	// Slope of 1 degC/m between 40 and 60 m; interior points of that ramp
	// exceed the 0.5 degC/m limit and must not be kept.
	p := Profile{
		Depth:       []float64{0, 10, 20, 30, 40, 50, 60, 70, 80},
		Temperature: []float64{20, 20, 20, 20, 20, 30, 40, 40, 40},
	}
	out := subsample(p, 8)
	for i, d := range out.Depth {
		if d == 50 {
			t.Errorf("steep point at 50 m kept (index %d)", i)
		}
	}
}
