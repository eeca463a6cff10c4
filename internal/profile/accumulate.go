package profile

import (
	"math"

	"github.com/oceansonde/ares/internal/drop"
	"github.com/oceansonde/ares/internal/dsp"
)

// TriggerConfig holds the acceptance thresholds for the first profile
// point. They are stricter than the detector thresholds so noise cannot
// start a drop.
type TriggerConfig struct {
	Ratio  float64 // minimum tone ratio to trigger the drop
	Signal float64 // minimum signal level to trigger the drop
}

// DefaultTriggerConfig returns the operational trigger thresholds.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{Ratio: 0.75, Signal: 1e7}
}

// Accumulator converts a stream of detected tones into tone readings.
// Before the trigger fires, readings carry NaN temperature and depth; once
// a tone clears both trigger thresholds, depth is computed from the time
// elapsed since that first point and temperature from each accepted tone.
// Not safe for concurrent use.
type Accumulator struct {
	cfg       TriggerConfig
	triggered bool
	startTime float64
	readings  []drop.ToneReading
}

// NewAccumulator returns an accumulator with the given trigger thresholds.
func NewAccumulator(cfg TriggerConfig) *Accumulator {
	return &Accumulator{cfg: cfg}
}

// Add records the tone detected at elapsed seconds since acquisition start
// and returns the resulting reading.
func (a *Accumulator) Add(elapsed float64, tone dsp.Tone) drop.ToneReading {
	r := drop.ToneReading{
		Elapsed:     elapsed,
		Frequency:   tone.Frequency,
		Signal:      tone.Signal,
		Ratio:       tone.Ratio,
		Temperature: math.NaN(),
		Depth:       math.NaN(),
	}

	if !a.triggered && tone.Valid() && tone.Ratio >= a.cfg.Ratio && tone.Signal >= a.cfg.Signal {
		a.triggered = true
		a.startTime = elapsed
	}
	if a.triggered {
		r.Depth = dsp.TimeToDepth(elapsed - a.startTime)
		if tone.Valid() {
			r.Temperature = dsp.FrequencyToTemperature(tone.Frequency)
		}
	}

	a.readings = append(a.readings, r)
	return r
}

// Triggered reports whether a tone has cleared the trigger thresholds.
func (a *Accumulator) Triggered() bool {
	return a.triggered
}

// StartTime returns the elapsed time of the first profile point. The
// second return is false until the trigger has fired.
func (a *Accumulator) StartTime() (float64, bool) {
	return a.startTime, a.triggered
}

// Readings returns all readings recorded so far.
func (a *Accumulator) Readings() []drop.ToneReading {
	return a.readings
}

// Profile returns the raw profile built from the usable readings.
func (a *Accumulator) Profile() Profile {
	return FromReadings(a.readings)
}
