package dsp

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

const (
	// PassbandLow and PassbandHigh bound the AXBT temperature band in Hz.
	PassbandLow  = 1300.0
	PassbandHigh = 2800.0
)

// Config holds the detector acceptance thresholds. It is passed explicitly
// on every call; the detector keeps no state between blocks.
type Config struct {
	MinRatio   float64 // minimum in-band to whole-spectrum ratio to accept a tone
	MinSignal  float64 // minimum whole-spectrum peak magnitude to accept a tone
	TaperAlpha float64 // Tukey taper shape, 0 disables the taper
}

// DefaultConfig returns the operational detector thresholds.
func DefaultConfig() Config {
	return Config{
		MinRatio:   0.5,
		MinSignal:  5e6,
		TaperAlpha: 0.25,
	}
}

// Tone is the result of one detector pass over a sample block.
type Tone struct {
	Frequency float64 // peak in-band frequency in Hz, 0 if no tone was accepted
	Signal    float64 // whole-spectrum peak magnitude
	Ratio     float64 // in-band peak magnitude normalized by Signal
}

// Valid reports whether the block contained an accepted tone.
func (t Tone) Valid() bool {
	return t.Frequency != 0
}

// Detect locates the strongest tone in the AXBT passband of a sample block.
// The block is tapered, transformed, and the magnitude spectrum restricted
// to [PassbandLow, PassbandHigh]; the in-band peak is normalized by the
// whole-spectrum maximum. A tone below either threshold is reported with
// the 0 Hz sentinel frequency while Signal and Ratio keep their measured
// values, so callers can still display signal quality for rejected blocks.
//
// Zero-length blocks are not validated here; sources must not emit them.
func Detect(block []float64, sampleRate float64, cfg Config) Tone {
	n := len(block)

	samples := block
	if cfg.TaperAlpha > 0 {
		samples = make([]float64, n)
		copy(samples, block)
		applyTukey(samples, cfg.TaperAlpha)
	}

	spectrum := fft.FFTReal(samples)
	mag := make([]float64, n)
	for i, c := range spectrum {
		mag[i] = cmplx.Abs(c)
	}
	maxAll := floats.Max(mag)

	// Scan the passband. Bins at or above n/2 fold to negative frequencies
	// and can never land inside the band.
	df := sampleRate / float64(n)
	peakIdx := -1
	peakMag := 0.0
	for i := 0; i < n; i++ {
		f := df * float64(i)
		if float64(i) >= float64(n)/2 {
			f = df * float64(i-n)
		}
		if f < PassbandLow || f > PassbandHigh {
			continue
		}
		if peakIdx < 0 || mag[i] > peakMag {
			peakIdx = i
			peakMag = mag[i]
		}
	}

	t := Tone{Signal: maxAll}
	if peakIdx < 0 || maxAll == 0 {
		return t
	}

	t.Ratio = peakMag / maxAll
	if t.Ratio >= cfg.MinRatio && maxAll >= cfg.MinSignal {
		t.Frequency = df * float64(peakIdx)
	}
	return t
}
