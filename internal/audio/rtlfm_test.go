package audio

import (
	"strings"
	"testing"
)

func TestRTLFMConfigValidateDefaults(t *testing.T) {
	cfg := RTLFMConfig{FrequencyMHz: 170.5}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.SampleRate != DefaultAudioRate {
		t.Errorf("sample rate %d, want default %d", cfg.SampleRate, DefaultAudioRate)
	}
}

func TestRTLFMConfigValidateRejectsBadFrequency(t *testing.T) {
	cfg := RTLFMConfig{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero frequency")
	}
}

func TestRTLFMArgs(t *testing.T) {
	cfg := RTLFMConfig{
		DeviceIndex:  1,
		FrequencyMHz: 170.5,
		SampleRate:   8000,
		Gain:         29.7,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	args := strings.Join(cfg.Args(), " ")
	for _, want := range []string{"-f 170.500000M", "-M fm", "-s 8000", "-d 1", "-g 29.7"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
	if !strings.HasSuffix(args, " -") {
		t.Errorf("args %q must end with stdout marker", args)
	}
}
