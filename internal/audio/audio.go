// Package audio produces fixed-length blocks of demodulated AXBT audio,
// either live from an external demodulator process or replayed from a
// recorded WAV file.
package audio

import (
	"context"
	"os/exec"
	"time"
)

// Block is one windowed chunk of audio handed to the tone detector.
// Samples are raw signed 16-bit values widened to float64.
type Block struct {
	Samples    []float64
	SampleRate float64
	Elapsed    float64 // seconds since acquisition start, at the window end
}

// Source emits audio blocks until its context is cancelled or the
// underlying stream ends.
type Source interface {
	// BeginSampling starts the source and sends blocks to the channel. The
	// returned channel is closed when sampling stops; a non-nil value on it
	// reports why sampling failed.
	BeginSampling(ctx context.Context, blocks chan<- Block) (<-chan error, error)
	Stop()
	ID() string
}

// Handler supplies the demodulator command for a live source.
type Handler interface {
	Cmd(ctx context.Context) *exec.Cmd
	SampleRate() float64
	Source() string
}

// Timing controls how the sample stream is windowed.
type Timing struct {
	Window time.Duration // length of each block handed to the detector
	Hop    time.Duration // interval between consecutive blocks
}

// DefaultTiming returns the operational window and hop.
func DefaultTiming() Timing {
	return Timing{
		Window: 300 * time.Millisecond,
		Hop:    100 * time.Millisecond,
	}
}
