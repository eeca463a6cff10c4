package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/mjibson/go-dsp/wav"
)

// WAVSource replays a recorded drop from a WAV file, emitting the same
// windowed blocks a live device would. The whole file is decoded up front
// so replay never blocks on disk.
type WAVSource struct {
	path    string
	timing  Timing
	rate    float64
	samples []float64

	isSampling atomic.Bool
	cancel     context.CancelFunc
}

// NewWAVSource opens and decodes a WAV recording.
func NewWAVSource(path string, timing Timing) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wav source: %w", err)
	}
	defer f.Close()

	w, err := wav.New(f)
	if err != nil {
		return nil, fmt.Errorf("wav source: %s: %w", path, err)
	}

	floats, err := w.ReadFloats(w.Samples)
	if err != nil {
		return nil, fmt.Errorf("wav source: %s: %w", path, err)
	}

	// Collapse to mono and restore the raw 16-bit integer scale so the
	// detector thresholds match the live path.
	ch := int(w.NumChannels)
	samples := make([]float64, 0, len(floats)/ch)
	for i := 0; i+ch <= len(floats); i += ch {
		var sum float64
		for j := 0; j < ch; j++ {
			sum += float64(floats[i+j])
		}
		samples = append(samples, sum/float64(ch)*32768)
	}

	return &WAVSource{
		path:    path,
		timing:  timing,
		rate:    float64(w.SampleRate),
		samples: samples,
	}, nil
}

// ID returns the base name of the recording.
func (s *WAVSource) ID() string {
	return filepath.Base(s.path)
}

// Duration returns the length of the recording in seconds.
func (s *WAVSource) Duration() float64 {
	return float64(len(s.samples)) / s.rate
}

// BeginSampling replays the recording. Each block is centered on its hop
// position, shrinking at the file edges, so the profile matches what the
// live path would have produced at the same timestamps.
func (s *WAVSource) BeginSampling(ctx context.Context, blocks chan<- Block) (<-chan error, error) {
	if s.isSampling.Load() {
		return nil, fmt.Errorf("wav source is already running")
	}
	s.isSampling.Store(true)

	ctx, s.cancel = context.WithCancel(ctx)
	stopped := make(chan error)

	go func() {
		defer close(stopped)
		defer s.isSampling.Store(false)

		half := int(s.timing.Window.Seconds() * s.rate / 2)
		hop := int(s.timing.Hop.Seconds() * s.rate)
		if hop <= 0 {
			hop = 1
		}

		for center := hop; center < len(s.samples); center += hop {
			lo := center - half
			if lo < 0 {
				lo = 0
			}
			hi := center + half
			if hi > len(s.samples) {
				hi = len(s.samples)
			}

			b := Block{
				Samples:    append([]float64(nil), s.samples[lo:hi]...),
				SampleRate: s.rate,
				Elapsed:    float64(center) / s.rate,
			}
			select {
			case blocks <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	return stopped, nil
}

func (s *WAVSource) Stop() {
	if !s.isSampling.Load() {
		return
	}
	s.cancel()
}
