package climatology

import (
	"math"
	"testing"

	"github.com/oceansonde/ares/internal/profile"
)

// flatReference builds a reference profile at a constant temperature with
// a +/- band halfwidth over the standard depth levels.
func flatReference(temp, halfwidth float64) Reference {
	var ref Reference
	for _, d := range depthLevels {
		ref.Temperature = append(ref.Temperature, temp)
		ref.Depth = append(ref.Depth, d)
		ref.TempFill = append(ref.TempFill, temp-halfwidth)
	}
	for i := len(depthLevels) - 1; i >= 0; i-- {
		ref.TempFill = append(ref.TempFill, temp+halfwidth)
	}
	ref.DepthFill = append(append([]float64{}, ref.Depth...), reversed(ref.Depth)...)
	return ref
}

func TestCompareNoValidData(t *testing.T) {
	nan := math.NaN()
	p := profile.Profile{
		Temperature: []float64{nan, nan, nan},
		Depth:       []float64{0, 10, 20},
	}

	c := Compare(p, flatReference(20, 1), DefaultCompareOptions())
	if !c.Match {
		t.Error("all-NaN profile must match by default")
	}
	if !math.IsNaN(c.Cutoff) {
		t.Errorf("cutoff %v, want NaN", c.Cutoff)
	}
}

func TestCompareEmptyReference(t *testing.T) {
	p := profile.Profile{
		Temperature: []float64{20, 20, 20},
		Depth:       []float64{0, 50, 100},
	}

	c := Compare(p, Reference{}, DefaultCompareOptions())
	if !c.Match {
		t.Error("profile with no climatology coverage must match by default")
	}
	if !math.IsNaN(c.Cutoff) {
		t.Errorf("cutoff %v, want NaN", c.Cutoff)
	}
}

func TestCompareMatchingProfile(t *testing.T) {
	var p profile.Profile
	for d := 0.0; d <= 300; d += 4 {
		p.Depth = append(p.Depth, d)
		p.Temperature = append(p.Temperature, 20)
	}

	c := Compare(p, flatReference(20, 1), DefaultCompareOptions())
	if !c.Match {
		t.Error("profile identical to climatology reported as mismatch")
	}
	if !math.IsNaN(c.Cutoff) {
		t.Errorf("cutoff %v for matching profile, want NaN", c.Cutoff)
	}
}

func TestCompareDivergenceBelowThermocline(t *testing.T) {
	// Matches the flat reference down to 100 m, then runs off at 0.5 degC/m
	// so the bottom half diverges far beyond the band halfwidth.
	var p profile.Profile
	for d := 0.0; d <= 200; d += 1 {
		temp := 20.0
		if d > 100 {
			temp = 20 - 0.5*(d-100)
		}
		p.Depth = append(p.Depth, d)
		p.Temperature = append(p.Temperature, temp)
	}

	c := Compare(p, flatReference(20, 1), DefaultCompareOptions())
	if c.Match {
		t.Error("diverging profile reported as matching")
	}
	if math.IsNaN(c.Cutoff) {
		t.Fatal("no cutoff reported for diverging profile")
	}
	if c.Cutoff > 200 {
		t.Errorf("cutoff %v m beyond profile bottom", c.Cutoff)
	}
	if c.Cutoff < 100 {
		t.Errorf("cutoff %v m above the divergence start", c.Cutoff)
	}
}

func TestCompareIgnoresColdFillLevels(t *testing.T) {
	ref := flatReference(20, 1)
	// Poison the deep reference levels with a missing-data marker; only the
	// shallow levels should take part in the comparison.
	for i, d := range ref.Depth {
		if d >= 500 {
			ref.Temperature[i] = -99
		}
	}

	var p profile.Profile
	for d := 0.0; d <= 300; d += 4 {
		p.Depth = append(p.Depth, d)
		p.Temperature = append(p.Temperature, 20)
	}

	c := Compare(p, ref, DefaultCompareOptions())
	if !c.Match {
		t.Error("missing deep reference levels broke a matching comparison")
	}
}

func TestPolygonContains(t *testing.T) {
	ref := flatReference(20, 1)

	tests := []struct {
		name string
		temp float64
		dep  float64
		want bool
	}{
		{"center of band", 20, 500, true},
		{"inside cold edge", 19.5, 500, true},
		{"outside cold edge", 18.5, 500, false},
		{"outside warm edge", 21.5, 500, false},
		{"below band", 20, 1200, false},
		{"near surface", 20, 0.1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := polygonContains(ref.TempFill, ref.DepthFill, tc.temp, tc.dep)
			if got != tc.want {
				t.Errorf("polygonContains(%v, %v) = %v, want %v", tc.temp, tc.dep, got, tc.want)
			}
		})
	}
}
