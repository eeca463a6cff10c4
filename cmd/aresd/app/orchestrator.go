package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oceansonde/ares/internal/audio"
	"github.com/oceansonde/ares/internal/drop"
	"github.com/oceansonde/ares/internal/dsp"
	"github.com/oceansonde/ares/internal/gps"
	"github.com/oceansonde/ares/internal/profile"
	"github.com/oceansonde/ares/internal/storage"
)

const (
	maxBatchSize = 100
	fixInterval  = 10 * time.Second
)

// WithMaxBatchSize sets the maximum batch size of tone readings to store
// within a single database transaction.
func WithMaxBatchSize(size int) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.maxBatchSize = size
	}
}

// WithFixInterval sets how often the current GPS fix is snapshotted into
// the drop database.
func WithFixInterval(interval time.Duration) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.fixInterval = interval
	}
}

// WithDetector sets the tone detector thresholds.
func WithDetector(cfg dsp.Config) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.detector = cfg
	}
}

// WithTrigger sets the drop trigger thresholds.
func WithTrigger(cfg profile.TriggerConfig) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.trigger = cfg
	}
}

// Orchestrator runs a single drop: it feeds audio blocks from the source
// through the tone detector, accumulates the resulting readings into the
// drop profile, and persists readings and GPS fixes in batches.
type Orchestrator struct {
	source   audio.Source
	position gps.Provider

	logger *slog.Logger
	store  storage.Store

	detector dsp.Config
	trigger  profile.TriggerConfig

	maxBatchSize int
	fixInterval  time.Duration
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(store storage.Store, source audio.Source, position gps.Provider, logger *slog.Logger, options ...func(*Orchestrator)) *Orchestrator {
	o := Orchestrator{
		source:       source,
		position:     position,
		logger:       logger,
		store:        store,
		detector:     dsp.DefaultConfig(),
		trigger:      profile.DefaultTriggerConfig(),
		maxBatchSize: maxBatchSize,
		fixInterval:  fixInterval,
	}

	for _, option := range options {
		option(&o)
	}

	return &o
}

// Run registers the drop and processes blocks until the source ends or the
// context is cancelled. The source ending is a normal completion for WAV
// replay and an error for a live demodulator.
func (o *Orchestrator) Run(ctx context.Context, sourceConfig *SourceConfig, rawConfig any) error {
	dropID, err := o.store.CreateDrop(ctx, drop.Session{
		SourceType:   string(sourceConfig.Type),
		SourceID:     o.source.ID(),
		VHFFrequency: sourceConfig.VHFFrequency,
		VHFChannel:   sourceConfig.VHFChannel,
	}, rawConfig)
	if err != nil {
		return fmt.Errorf("creating drop: %w", err)
	}

	o.logger.Info("drop registered",
		slog.Int64("dropID", dropID),
		slog.String("source", o.source.ID()),
		slog.Float64("vhfChannel", sourceConfig.VHFChannel),
		slog.Float64("vhfFrequency", sourceConfig.VHFFrequency))

	o.storeFix(ctx, dropID)

	blocks := make(chan audio.Block, 16)
	done, err := o.source.BeginSampling(ctx, blocks)
	if err != nil {
		return fmt.Errorf("starting source: %w", err)
	}
	defer o.source.Stop()

	accumulator := profile.NewAccumulator(o.trigger)
	batch := make([]drop.ToneReading, 0, o.maxBatchSize)
	ticker := time.NewTicker(o.fixInterval)
	defer ticker.Stop()

	for {
		select {
		case block := <-blocks:
			tone := dsp.Detect(block.Samples, block.SampleRate, o.detector)
			wasTriggered := accumulator.Triggered()
			reading := accumulator.Add(block.Elapsed, tone)
			if !wasTriggered && accumulator.Triggered() {
				o.logger.Info("drop triggered",
					slog.Float64("elapsed", reading.Elapsed),
					slog.Float64("frequency", reading.Frequency))
				o.storeFix(ctx, dropID)
			}

			batch = append(batch, reading)
			if len(batch) >= o.maxBatchSize {
				o.flush(ctx, dropID, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			o.storeFix(ctx, dropID)

		case err = <-done:
			// Drain blocks already in flight before the final flush.
			for {
				select {
				case block := <-blocks:
					tone := dsp.Detect(block.Samples, block.SampleRate, o.detector)
					batch = append(batch, accumulator.Add(block.Elapsed, tone))
					continue
				default:
				}
				break
			}
			o.flush(context.WithoutCancel(ctx), dropID, batch)
			o.storeFix(context.WithoutCancel(ctx), dropID)
			o.logSummary(dropID, accumulator)

			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("source failed: %w", err)
			}
			return nil
		}
	}
}

func (o *Orchestrator) flush(ctx context.Context, dropID int64, batch []drop.ToneReading) {
	if len(batch) == 0 {
		return
	}
	if err := o.store.StoreReadings(ctx, dropID, batch); err != nil {
		o.logger.Error(fmt.Sprintf("storing readings: %s", err.Error()))
	}
}

func (o *Orchestrator) storeFix(ctx context.Context, dropID int64) {
	fix := o.position.Current()
	if _, err := o.store.StoreFix(ctx, dropID, drop.Fix{
		Time:      fix.Time,
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
		Valid:     fix.Valid,
	}); err != nil {
		o.logger.Error(fmt.Sprintf("storing fix: %s", err.Error()))
	}
}

func (o *Orchestrator) logSummary(dropID int64, accumulator *profile.Accumulator) {
	p := accumulator.Profile()
	attrs := []any{
		slog.Int64("dropID", dropID),
		slog.Int("readings", len(accumulator.Readings())),
		slog.Bool("triggered", accumulator.Triggered()),
		slog.Int("profilePoints", p.Len()),
	}
	if p.Len() > 0 {
		attrs = append(attrs, slog.Float64("maxDepth", p.Depth[p.Len()-1]))
	}
	o.logger.Info("drop complete", attrs...)
}
