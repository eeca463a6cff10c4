package profile

import (
	"math"
	"testing"

	"github.com/oceansonde/ares/internal/dsp"
)

func TestAccumulatorBeforeTrigger(t *testing.T) {
	acc := NewAccumulator(DefaultTriggerConfig())

	// Valid tone, but below the trigger thresholds.
	r := acc.Add(1.0, dsp.Tone{Frequency: 2000, Signal: 6e6, Ratio: 0.6})
	if acc.Triggered() {
		t.Fatal("sub-threshold tone triggered the drop")
	}
	if !math.IsNaN(r.Temperature) || !math.IsNaN(r.Depth) {
		t.Errorf("untriggered reading carries values: temp=%v depth=%v", r.Temperature, r.Depth)
	}
	if r.Frequency != 2000 {
		t.Errorf("reading frequency %v, want raw 2000", r.Frequency)
	}
}

func TestAccumulatorTriggerAndDepth(t *testing.T) {
	acc := NewAccumulator(TriggerConfig{Ratio: 0.75, Signal: 1e7})

	acc.Add(2.0, dsp.Tone{Frequency: 2000, Signal: 6e6, Ratio: 0.6})
	first := acc.Add(5.0, dsp.Tone{Frequency: 2000, Signal: 2e7, Ratio: 0.9})
	if !acc.Triggered() {
		t.Fatal("tone above both thresholds did not trigger")
	}
	if first.Depth != 0 {
		t.Errorf("first point depth %v, want 0", first.Depth)
	}
	if want := (2000.0 - 1440.0) / 36.0; first.Temperature != want {
		t.Errorf("first point temperature %v, want %v", first.Temperature, want)
	}

	start, ok := acc.StartTime()
	if !ok || start != 5.0 {
		t.Fatalf("StartTime() = %v, %v; want 5.0, true", start, ok)
	}

	later := acc.Add(15.0, dsp.Tone{Frequency: 2100, Signal: 2e7, Ratio: 0.9})
	if want := 1.52 * 10.0; later.Depth != want {
		t.Errorf("depth after 10 s = %v, want %v", later.Depth, want)
	}
}

func TestAccumulatorDropoutAfterTrigger(t *testing.T) {
	acc := NewAccumulator(TriggerConfig{Ratio: 0.75, Signal: 1e7})
	acc.Add(0, dsp.Tone{Frequency: 2000, Signal: 2e7, Ratio: 0.9})

	// Signal dropout: rejected tone mid-drop still gets a depth so the gap
	// checker can see the hole, but no temperature.
	r := acc.Add(4.0, dsp.Tone{Frequency: 0, Signal: 1e5, Ratio: 0.1})
	if !math.IsNaN(r.Temperature) {
		t.Errorf("dropout reading temperature %v, want NaN", r.Temperature)
	}
	if r.Depth != 1.52*4.0 {
		t.Errorf("dropout reading depth %v, want %v", r.Depth, 1.52*4.0)
	}

	p := acc.Profile()
	if p.Len() != 1 {
		t.Errorf("profile has %d points, want 1 (dropout excluded)", p.Len())
	}
}
