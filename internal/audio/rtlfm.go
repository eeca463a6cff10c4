package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

const (
	rtlFMBinary = "rtl_fm"

	// DefaultAudioRate is the demodulated audio sample rate in Hz. AXBT
	// tones live below 2.8 kHz, so 8 kHz leaves comfortable headroom.
	DefaultAudioRate = 8000
)

// RTLFMConfig configures an rtl_fm narrowband FM demodulator tuned to a
// sonobuoy VHF channel.
type RTLFMConfig struct {
	DeviceIndex  int     `yaml:"device_index"`
	FrequencyMHz float64 `yaml:"frequency_mhz"`
	SampleRate   int     `yaml:"sample_rate"`
	Gain         float64 `yaml:"gain"`
	SquelchLevel int     `yaml:"squelch_level"`
	ExtraArgs    []string `yaml:"extra_args"`
}

// Validate checks the configuration and applies defaults.
func (c *RTLFMConfig) Validate() error {
	if c.FrequencyMHz <= 0 {
		return fmt.Errorf("rtl_fm: frequency must be positive, got %v MHz", c.FrequencyMHz)
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultAudioRate
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("rtl_fm: invalid sample rate %d", c.SampleRate)
	}
	if c.DeviceIndex < 0 {
		return fmt.Errorf("rtl_fm: invalid device index %d", c.DeviceIndex)
	}
	return nil
}

// Args builds the rtl_fm command line. Output is signed 16-bit
// little-endian mono PCM on stdout.
func (c *RTLFMConfig) Args() []string {
	args := []string{
		"-f", fmt.Sprintf("%.6fM", c.FrequencyMHz),
		"-M", "fm",
		"-s", strconv.Itoa(c.SampleRate),
		"-d", strconv.Itoa(c.DeviceIndex),
	}
	if c.Gain != 0 {
		args = append(args, "-g", strconv.FormatFloat(c.Gain, 'f', 1, 64))
	}
	if c.SquelchLevel > 0 {
		args = append(args, "-l", strconv.Itoa(c.SquelchLevel))
	}
	args = append(args, c.ExtraArgs...)
	return append(args, "-")
}

// RTLFM is the live VHF receiver handler.
type RTLFM struct {
	cfg RTLFMConfig
}

// NewRTLFM returns a handler for a validated rtl_fm configuration.
func NewRTLFM(cfg RTLFMConfig) (*RTLFM, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RTLFM{cfg: cfg}, nil
}

func (h *RTLFM) Cmd(ctx context.Context) *exec.Cmd {
	return exec.CommandContext(ctx, rtlFMBinary, h.cfg.Args()...)
}

func (h *RTLFM) SampleRate() float64 {
	return float64(h.cfg.SampleRate)
}

func (h *RTLFM) Source() string {
	return rtlFMBinary
}
