package audio

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrBrokenPipe is returned when reading from the demodulator fails.
var ErrBrokenPipe = errors.New("broken pipe")

// WithLogger sets the logger for the device.
func WithLogger(logger *slog.Logger) func(d *Device) {
	return func(d *Device) {
		d.logger = logger.With(
			slog.String("source", d.handler.Source()),
			slog.String("sourceID", d.sourceID),
		)
	}
}

// WithTiming overrides the default window and hop.
func WithTiming(t Timing) func(d *Device) {
	return func(d *Device) {
		d.timing = t
	}
}

// Device runs an external demodulator command and windows its signed
// 16-bit little-endian PCM stdout stream into audio blocks.
type Device struct {
	sourceID string
	handler  Handler
	timing   Timing

	isSampling atomic.Bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	logger *slog.Logger
}

// NewDevice creates a new Device instance with a discard logger.
func NewDevice(sourceID string, h Handler, options ...func(d *Device)) *Device {
	d := Device{
		sourceID: sourceID,
		handler:  h,
		timing:   DefaultTiming(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&d)
	}

	return &d
}

// ID returns the source identifier.
func (d *Device) ID() string {
	return d.sourceID
}

// IsSampling returns true if the device is running.
func (d *Device) IsSampling() bool {
	return d.isSampling.Load()
}

// BeginSampling starts the demodulator and streams blocks to the channel.
func (d *Device) BeginSampling(ctx context.Context, blocks chan<- Block) (<-chan error, error) {
	if d.isSampling.Load() {
		return nil, fmt.Errorf("device is already running")
	}

	d.isSampling.Store(true)

	ctx, d.cancel = context.WithCancel(ctx)
	cmd := d.handler.Cmd(ctx)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		d.isSampling.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error creating stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		d.isSampling.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error creating stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		d.isSampling.Store(false) // Reset running state on error
		return nil, fmt.Errorf("error starting command: %w", err)
	}

	samplingStopped := make(chan error)

	d.wg.Add(1)
	go func() {
		defer close(samplingStopped)

		d.logger.Info("starting audio collection...")

		done := make(chan error, 3) // expects three results from three goroutines

		go d.handleStdout(ctx, stdout, blocks, done)
		go d.handleStderr(stderr, done)
		go d.handleCmdWait(ctx, cmd, done)

		var errs []error
		for i := 0; i < cap(done); i++ {
			if err := <-done; err != nil {
				d.cancel() // cancel context on error
				d.logger.Error(err.Error())

				errs = append(errs, err)
			}
		}

		close(done)

		d.logger.Info("audio collection stopped")

		d.isSampling.Store(false)
		d.wg.Done()

		if len(errs) > 0 {
			samplingStopped <- errors.Join(errs...)
		}
	}()

	return samplingStopped, nil
}

func (d *Device) Stop() {
	if !d.isSampling.Load() {
		return // already stopped
	}

	d.cancel()
	d.wg.Wait()
	d.isSampling.Store(false)
}

// handleStdout reads raw PCM from stdout and emits a windowed block once
// per hop. The window slides over the stream, so consecutive blocks
// overlap when the window is longer than the hop.
func (d *Device) handleStdout(ctx context.Context, stdout io.Reader, blocks chan<- Block, done chan<- error) {
	rate := d.handler.SampleRate()
	windowLen := int(d.timing.Window.Seconds() * rate)
	hopLen := int(d.timing.Hop.Seconds() * rate)

	r := bufio.NewReaderSize(stdout, 1<<16)
	hop := make([]byte, hopLen*2)
	window := make([]float64, 0, windowLen)
	total := 0

	for {
		if _, err := io.ReadFull(r, hop); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, fs.ErrClosed) {
				done <- nil
				return
			}
			done <- fmt.Errorf("%w: error reading stdout: %w", ErrBrokenPipe, err)
			return
		}

		for i := 0; i < len(hop); i += 2 {
			window = append(window, float64(int16(binary.LittleEndian.Uint16(hop[i:]))))
		}
		if len(window) > windowLen {
			window = window[len(window)-windowLen:]
		}
		total += hopLen

		if len(window) < windowLen {
			continue
		}

		b := Block{
			Samples:    append([]float64(nil), window...),
			SampleRate: rate,
			Elapsed:    float64(total) / rate,
		}
		select {
		case blocks <- b:
		case <-ctx.Done():
			done <- nil
			return
		}
	}
}

// handleStderr reads from stderr and logs whatever the demodulator prints.
func (d *Device) handleStderr(stderr io.Reader, done chan<- error) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		d.logger.Warn(fmt.Sprintf("%s >> %s", d.handler.Source(), line))
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- fmt.Errorf("%w: error reading stderr: %w", ErrBrokenPipe, err)
		return
	}

	done <- nil
}

// handleCmdWait waits for the command to exit. An exit forced by context
// cancellation is a normal stop, not an error.
func (d *Device) handleCmdWait(ctx context.Context, cmd *exec.Cmd, done chan<- error) {
	if err := cmd.Wait(); err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		done <- fmt.Errorf("command exited with error: %w", err)
		return
	}

	done <- nil
}
