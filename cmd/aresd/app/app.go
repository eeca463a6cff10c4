package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oceansonde/ares/internal/audio"
	"github.com/oceansonde/ares/internal/gps"
	"github.com/oceansonde/ares/internal/storage"
)

const (
	storageDir = "data"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer store.Close()

	source, sourceConfig, err := createSource(config, logger)
	if err != nil {
		return fmt.Errorf("failed to create audio source: %w", err)
	}

	position, stopGPS, err := createPositionProvider(ctx, &config.GPS, logger)
	if err != nil {
		return fmt.Errorf("failed to create position provider: %w", err)
	}
	defer stopGPS()

	options := []func(*Orchestrator){
		WithTrigger(config.TriggerConfig()),
		WithDetector(config.DetectorConfig()),
	}
	if config.Storage.MaxBatchSize > 0 {
		options = append(options, WithMaxBatchSize(config.Storage.MaxBatchSize))
	}
	if config.GPS.FixIntervalSec > 0 {
		options = append(options, WithFixInterval(time.Duration(config.GPS.FixIntervalSec)*time.Second))
	}

	orchestrator := NewOrchestrator(store, source, position, logger, options...)
	return orchestrator.Run(ctx, &config.Source, sourceConfig)
}

func createSource(config *Config, logger *slog.Logger) (audio.Source, any, error) {
	switch config.Source.Type {
	case SourceDemod:
		handler, err := audio.NewRTLFM(config.Source.Demod)
		if err != nil {
			return nil, nil, err
		}
		device := audio.NewDevice(config.Source.Name, handler,
			audio.WithLogger(logger), audio.WithTiming(config.Timing()))
		return device, &config.Source.Demod, nil

	case SourceWAV:
		source, err := audio.NewWAVSource(config.Source.WAVPath, config.Timing())
		if err != nil {
			return nil, nil, err
		}
		return source, config.Source.WAVPath, nil

	default:
		return nil, nil, fmt.Errorf("unknown source type '%s'", config.Source.Type)
	}
}

func createPositionProvider(ctx context.Context, config *GPSConfig, logger *slog.Logger) (gps.Provider, func(), error) {
	if config.Serial == nil {
		return gps.Static{Latitude: config.Latitude, Longitude: config.Longitude}, func() {}, nil
	}

	receiver, err := gps.OpenSerial(*config.Serial, logger)
	if err != nil {
		return nil, nil, err
	}
	go func() {
		if err := receiver.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error(fmt.Sprintf("GPS receiver stopped: %s", err.Error()))
		}
	}()

	return receiver, func() { _ = receiver.Close() }, nil
}

func createStorage(config *StorageConfig) (storage.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("inspecting storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("ares_drop_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), nil
}
