package gps

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	serial "github.com/tarm/goserial"
)

// DefaultBaud is the NMEA 0183 standard rate.
const DefaultBaud = 4800

// SerialConfig configures the NMEA serial receiver.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// Serial reads NMEA sentences from a serial GPS receiver and keeps the
// most recent fix. Safe for concurrent use.
type Serial struct {
	port   io.ReadWriteCloser
	logger *slog.Logger

	mu  sync.RWMutex
	fix Fix
}

// OpenSerial opens the receiver port.
func OpenSerial(cfg SerialConfig, logger *slog.Logger) (*Serial, error) {
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: cfg.Port, Baud: cfg.Baud})
	if err != nil {
		return nil, fmt.Errorf("gps: open %s: %w", cfg.Port, err)
	}
	return &Serial{
		port:   port,
		logger: logger.With(slog.String("port", cfg.Port)),
	}, nil
}

// Run reads sentences until the context is cancelled or the port fails.
// Sentences that do not parse are logged and skipped; the receiver losing
// its fix marks the stored fix invalid rather than stopping.
func (s *Serial) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.port)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := scanner.Text()
		fix, err := ParseSentence(line)
		switch {
		case err == nil:
			s.mu.Lock()
			s.fix = fix
			s.mu.Unlock()
		case errors.Is(err, ErrNoFix):
			s.mu.Lock()
			s.fix.Valid = false
			s.mu.Unlock()
		case errors.Is(err, ErrUnsupportedSentence):
			// routine; receivers emit many sentence types
		default:
			s.logger.Warn("skipping NMEA sentence", slog.String("error", err.Error()))
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("gps: read: %w", err)
	}
	return ctx.Err()
}

// Current returns the most recent fix; zero-value (invalid) before the
// first complete sentence.
func (s *Serial) Current() Fix {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fix
}

// Close closes the port, which also unblocks Run.
func (s *Serial) Close() error {
	return s.port.Close()
}
