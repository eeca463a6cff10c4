package logdta

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	nan := math.NaN()
	in := []Record{
		{Elapsed: 0.1, Depth: nan, Frequency: 0, Temperature: nan},
		{Elapsed: 0.2, Depth: 0, Frequency: 2000, Temperature: 15.56},
		{Elapsed: 1.2, Depth: 1.5, Frequency: 2036.5, Temperature: 16.57},
	}

	var buf bytes.Buffer
	launch := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	if err := Write(&buf, launch, in); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	gotLaunch, out, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if !gotLaunch.Equal(launch) {
		t.Errorf("launch %v, want %v", gotLaunch, launch)
	}
	if len(out) != len(in) {
		t.Fatalf("read %d records, want %d", len(out), len(in))
	}

	if !math.IsNaN(out[0].Depth) || !math.IsNaN(out[0].Temperature) {
		t.Errorf("dropout row read back as %+v, want NaN depth/temperature", out[0])
	}
	if out[0].Frequency != 0 {
		t.Errorf("dropout frequency %v, want 0", out[0].Frequency)
	}

	if out[2].Depth != 1.5 || out[2].Temperature != 16.57 || out[2].Frequency != 2036.5 {
		t.Errorf("record = %+v", out[2])
	}
	if out[2].Elapsed != 1.2 {
		t.Errorf("elapsed %v, want 1.2", out[2].Elapsed)
	}
}

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer
	launch := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	err := Write(&buf, launch, []Record{
		{Elapsed: 0.1, Depth: math.NaN(), Frequency: 0, Temperature: math.NaN()},
	})
	if err != nil {
		t.Fatal(err)
	}

	text := buf.String()
	for _, want := range []string{
		"Probe Type = AXBT",
		"Date = 2024/03/05",
		"Time = 14:30:00",
		"-10.0",    // missing depth sentinel
		"******",   // missing temperature marker
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 7 {
		t.Errorf("got %d lines, want 6 header lines + 1 data row", len(lines))
	}
}

func TestZfill(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"1.0", 4, "01.0"},
		{"-1.2", 4, "-1.2"},
		{"-1.2", 6, "-001.2"},
		{"15.56", 4, "15.56"},
	}
	for _, tc := range tests {
		if got := zfill(tc.in, tc.width); got != tc.want {
			t.Errorf("zfill(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
