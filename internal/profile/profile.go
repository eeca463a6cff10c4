// Package profile accumulates tone readings into temperature-depth
// profiles and applies the automated quality-control pipeline.
package profile

import (
	"math"

	"github.com/oceansonde/ares/internal/drop"
)

// Profile is a temperature-depth profile. Temperature and Depth are always
// the same length; depths increase monotonically once the profile has been
// through QC, but raw profiles carry whatever the receiver produced.
type Profile struct {
	Temperature []float64 // degC
	Depth       []float64 // meters
}

// Len returns the number of points in the profile.
func (p Profile) Len() int {
	return len(p.Depth)
}

// FromReadings builds a raw profile from stored tone readings, dropping
// readings without a usable temperature or depth.
func FromReadings(readings []drop.ToneReading) Profile {
	var p Profile
	for _, r := range readings {
		if math.IsNaN(r.Temperature) || math.IsNaN(r.Depth) {
			continue
		}
		p.Temperature = append(p.Temperature, r.Temperature)
		p.Depth = append(p.Depth, r.Depth)
	}
	return p
}
