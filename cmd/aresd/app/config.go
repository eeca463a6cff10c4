package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oceansonde/ares/internal/audio"
	"github.com/oceansonde/ares/internal/dsp"
	"github.com/oceansonde/ares/internal/gps"
	"github.com/oceansonde/ares/internal/profile"
)

const (
	SourceDemod SourceType = "demod"
	SourceWAV   SourceType = "wav"
)

type SourceType string

// Config represents the main application configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Source   SourceConfig   `yaml:"source"`
	Detector DetectorConfig `yaml:"detector"`
	Trigger  TriggerConfig  `yaml:"trigger"`
	GPS      GPSConfig      `yaml:"gps"`
	Storage  StorageConfig  `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`

	level slog.Level
}

// Level returns the parsed log level; info when unset.
func (s *Settings) Level() slog.Level {
	return s.level
}

// SourceConfig selects and configures the audio source. For a demod source
// the VHF tuning is given either as a channel or as a frequency in MHz;
// whichever is set is snapped to the nearest valid channel/frequency pair
// and the demodulator is tuned to the snapped frequency.
type SourceConfig struct {
	Type         SourceType        `yaml:"type"`
	Name         string            `yaml:"name"`
	WAVPath      string            `yaml:"wavPath"`
	Demod        audio.RTLFMConfig `yaml:"demod"`
	VHFChannel   float64           `yaml:"vhfChannel"`
	VHFFrequency float64           `yaml:"vhfFrequency"`
	WindowMs     int               `yaml:"windowMs"`
	HopMs        int               `yaml:"hopMs"`
}

// DetectorConfig overrides the tone detector thresholds. Zero fields keep
// the operational defaults.
type DetectorConfig struct {
	MinRatio   float64 `yaml:"minRatio"`
	MinSignal  float64 `yaml:"minSignal"`
	TaperAlpha float64 `yaml:"taperAlpha"`
}

// TriggerConfig overrides the drop trigger thresholds. Zero fields keep
// the operational defaults.
type TriggerConfig struct {
	Ratio  float64 `yaml:"ratio"`
	Signal float64 `yaml:"signal"`
}

// GPSConfig selects the position source: a serial NMEA receiver when a
// port is configured, otherwise a static position.
type GPSConfig struct {
	Serial    *gps.SerialConfig `yaml:"serial"`
	Latitude  float64           `yaml:"latitude"`
	Longitude float64           `yaml:"longitude"`
	// FixIntervalSec is how often the current fix is snapshotted into the
	// drop database. Zero keeps the default.
	FixIntervalSec int `yaml:"fixIntervalSec"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// LoadConfig reads, parses and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if err = config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Settings.LogLevel != "" {
		if err := c.Settings.level.UnmarshalText([]byte(c.Settings.LogLevel)); err != nil {
			return fmt.Errorf("invalid log level '%s'", c.Settings.LogLevel)
		}
	}

	switch c.Source.Type {
	case SourceDemod:
		switch {
		case c.Source.VHFChannel != 0:
			freq, channel := dsp.FindFrequency(c.Source.VHFChannel)
			c.Source.VHFChannel = channel
			c.Source.VHFFrequency = freq

		case c.Source.VHFFrequency != 0:
			channel, freq := dsp.FindChannel(c.Source.VHFFrequency)
			c.Source.VHFChannel = channel
			c.Source.VHFFrequency = freq

		default:
			return fmt.Errorf("demod source requires vhfChannel or vhfFrequency")
		}

		c.Source.Demod.FrequencyMHz = c.Source.VHFFrequency
		if err := c.Source.Demod.Validate(); err != nil {
			return err
		}

	case SourceWAV:
		if c.Source.WAVPath == "" {
			return fmt.Errorf("wav source requires wavPath")
		}
		if c.Source.VHFChannel != 0 || c.Source.VHFFrequency != 0 {
			// Tuning recorded for the drop metadata only.
			if c.Source.VHFChannel != 0 {
				c.Source.VHFFrequency, c.Source.VHFChannel = dsp.FindFrequency(c.Source.VHFChannel)
			} else {
				c.Source.VHFChannel, c.Source.VHFFrequency = dsp.FindChannel(c.Source.VHFFrequency)
			}
		}

	default:
		return fmt.Errorf("unknown source type '%s'", c.Source.Type)
	}

	if c.Source.Name == "" {
		c.Source.Name = string(c.Source.Type)
	}
	if c.GPS.Serial == nil && (c.GPS.Latitude == 0 && c.GPS.Longitude == 0) {
		return fmt.Errorf("gps requires a serial port or a static position")
	}
	return nil
}

// Timing returns the source windowing, with configured overrides applied
// to the operational defaults.
func (c *Config) Timing() audio.Timing {
	t := audio.DefaultTiming()
	if c.Source.WindowMs > 0 {
		t.Window = time.Duration(c.Source.WindowMs) * time.Millisecond
	}
	if c.Source.HopMs > 0 {
		t.Hop = time.Duration(c.Source.HopMs) * time.Millisecond
	}
	return t
}

// DetectorConfig returns the tone detector thresholds, with configured
// overrides applied to the operational defaults.
func (c *Config) DetectorConfig() dsp.Config {
	cfg := dsp.DefaultConfig()
	if c.Detector.MinRatio > 0 {
		cfg.MinRatio = c.Detector.MinRatio
	}
	if c.Detector.MinSignal > 0 {
		cfg.MinSignal = c.Detector.MinSignal
	}
	if c.Detector.TaperAlpha > 0 {
		cfg.TaperAlpha = c.Detector.TaperAlpha
	}
	return cfg
}

// TriggerConfig returns the drop trigger thresholds, with configured
// overrides applied to the operational defaults.
func (c *Config) TriggerConfig() profile.TriggerConfig {
	cfg := profile.DefaultTriggerConfig()
	if c.Trigger.Ratio > 0 {
		cfg.Ratio = c.Trigger.Ratio
	}
	if c.Trigger.Signal > 0 {
		cfg.Signal = c.Trigger.Signal
	}
	return cfg
}
