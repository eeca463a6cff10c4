package edf

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	meta := Metadata{
		Launch:    time.Date(2024, time.March, 5, 14, 30, 45, 0, time.UTC),
		Latitude:  29.5,
		Longitude: -80.25,
	}
	temperature := []float64{28.5, 28.4, math.NaN(), 27.9}
	depth := []float64{0, 1.5, 3.0, 4.5}

	var buf bytes.Buffer
	if err := Write(&buf, meta, temperature, depth); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	got, gotTemp, gotDepth, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}

	if !got.Launch.Equal(meta.Launch) {
		t.Errorf("launch %v, want %v", got.Launch, meta.Launch)
	}
	if math.Abs(got.Latitude-meta.Latitude) > 1e-4 {
		t.Errorf("latitude %v, want %v", got.Latitude, meta.Latitude)
	}
	if math.Abs(got.Longitude-meta.Longitude) > 1e-4 {
		t.Errorf("longitude %v, want %v", got.Longitude, meta.Longitude)
	}

	// NaN row dropped on write.
	if len(gotDepth) != 3 {
		t.Fatalf("read %d points, want 3", len(gotDepth))
	}
	if gotDepth[2] != 4.5 || gotTemp[2] != 27.9 {
		t.Errorf("last point (%v, %v), want (27.9, 4.5)", gotTemp[2], gotDepth[2])
	}
}

func TestWriteHeaderFields(t *testing.T) {
	meta := Metadata{
		Launch:    time.Date(2024, time.March, 5, 14, 30, 45, 0, time.UTC),
		Latitude:  -12.75,
		Longitude: 45.5,
	}

	var buf bytes.Buffer
	if err := Write(&buf, meta, nil, nil); err != nil {
		t.Fatal(err)
	}

	text := buf.String()
	for _, want := range []string{
		"// This is a MK21 EXPORT DATA FILE  (EDF)",
		"Date of Launch:  05/03/24",
		"Time of Launch:  14:30:45",
		"Latitude      :  12:45.0000S",
		"Longitude     :  045:30.000E",
		"Probe Type       :  AXBT",
		"Depth (m)  - Temperature",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("header missing %q", want)
		}
	}
}
