package dsp

import (
	"math"
	"testing"
)

func TestDetect_DCOnlyBlock(t *testing.T) {
	// A constant block has all its energy at DC, outside the passband,
	// so no threshold combination can accept a tone.
	block := make([]float64, 4096)
	for i := range block {
		block[i] = 0.7
	}

	cfgs := []Config{
		{MinRatio: 0, MinSignal: 0},
		{MinRatio: 0.001, MinSignal: 0},
		DefaultConfig(),
	}
	for _, cfg := range cfgs {
		tone := Detect(block, 8000, cfg)
		if cfg.MinRatio > 0 && tone.Frequency != 0 {
			t.Errorf("cfg %+v: expected 0 Hz sentinel for DC block, got %f", cfg, tone.Frequency)
		}
		if tone.Valid() && cfg.MinRatio > 0 {
			t.Errorf("cfg %+v: DC block reported as valid tone", cfg)
		}
	}
}

func TestDetect_PureSinusoid(t *testing.T) {
	const (
		fs   = 8000.0
		freq = 2000.0
		n    = 4096
	)
	block := make([]float64, n)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
	}

	tone := Detect(block, fs, Config{MinRatio: 0.5, MinSignal: 1, TaperAlpha: 0.25})
	if !tone.Valid() {
		t.Fatalf("expected valid tone, got %+v", tone)
	}

	binWidth := fs / n
	if diff := math.Abs(tone.Frequency - freq); diff > binWidth {
		t.Errorf("detected %f Hz, want within %f Hz of %f", tone.Frequency, binWidth, freq)
	}
	if tone.Ratio <= 0.5 || tone.Ratio > 1 {
		t.Errorf("unexpected ratio %f for a pure in-band sinusoid", tone.Ratio)
	}
}

func TestDetect_BelowSignalThreshold(t *testing.T) {
	const fs = 8000.0
	block := make([]float64, 2048)
	for i := range block {
		block[i] = 0.001 * math.Sin(2*math.Pi*2000*float64(i)/fs)
	}

	tone := Detect(block, fs, Config{MinRatio: 0.5, MinSignal: 1e6})
	if tone.Frequency != 0 {
		t.Errorf("expected rejection below MinSignal, got %f Hz", tone.Frequency)
	}
	if tone.Ratio == 0 {
		t.Error("measured ratio should still be reported for rejected blocks")
	}
}

func TestFrequencyToTemperature(t *testing.T) {
	tests := []struct {
		frequency float64
		want      float64
	}{
		{1440, 0},
		{2000, (2000.0 - 1440.0) / 36.0},
		{2800, (2800.0 - 1440.0) / 36.0},
	}
	for _, tc := range tests {
		if got := FrequencyToTemperature(tc.frequency); got != tc.want {
			t.Errorf("FrequencyToTemperature(%f) = %v, want %v", tc.frequency, got, tc.want)
		}
	}
}

func TestTimeToDepth(t *testing.T) {
	if got := TimeToDepth(10); got != 15.2 {
		t.Errorf("TimeToDepth(10) = %v, want 15.2", got)
	}
	if got := TimeToDepth(0); got != 0 {
		t.Errorf("TimeToDepth(0) = %v, want 0", got)
	}
}
