package jjvv

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	h := Header{
		Day:          5,
		Month:        time.March,
		Year:         2024,
		Time:         1430,
		Latitude:     29.5,
		Longitude:    -80.25,
		Identifier:   "AL123",
		BottomStrike: true,
	}
	temperature := []float64{28.5, 28.4, 26.0, 24.0, 20.0, 18.0}
	depth := []float64{0, 10, 50, 90, 110, 150}

	var buf bytes.Buffer
	if err := Write(&buf, h, temperature, depth); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	got, gotTemp, gotDepth, err := Read(bytes.NewReader(buf.Bytes()), 2020)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}

	if got.Day != 5 || got.Month != time.March || got.Year != 2024 || got.Time != 1430 {
		t.Errorf("header date/time = %+v", got)
	}
	if got.Latitude != 29.5 || got.Longitude != -80.25 {
		t.Errorf("position (%v, %v), want (29.5, -80.25)", got.Latitude, got.Longitude)
	}
	if got.Identifier != "AL123" {
		t.Errorf("identifier %q, want AL123", got.Identifier)
	}
	if !got.BottomStrike {
		t.Error("bottom strike flag lost")
	}

	if len(gotDepth) != len(depth) {
		t.Fatalf("read %d points, want %d: %v", len(gotDepth), len(depth), gotDepth)
	}
	for i := range depth {
		if gotDepth[i] != depth[i] || gotTemp[i] != temperature[i] {
			t.Errorf("point %d: (%v, %v), want (%v, %v)", i, gotTemp[i], gotDepth[i], temperature[i], depth[i])
		}
	}
}

func TestWriteLayout(t *testing.T) {
	h := Header{
		Day: 5, Month: time.March, Year: 2024, Time: 1430,
		Latitude: 29.5, Longitude: -80.25,
		Identifier: "AL123", BottomStrike: true,
	}
	temperature := []float64{28.5, 28.4, 26.0, 24.0, 20.0, 18.0}
	depth := []float64{0, 10, 50, 90, 110, 150}

	var buf bytes.Buffer
	if err := Write(&buf, h, temperature, depth); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}

	// Northwest quadrant is 7; positions are thousandths of a degree.
	if lines[0] != "JJVV 05034 1430/ 729500 080250 88888" {
		t.Errorf("header line = %q", lines[0])
	}
	if lines[1] != "51099 00285 10284 50260 90240 99901" {
		t.Errorf("first data line = %q", lines[1])
	}
	if lines[2] != "10200 50180 00000 AL123" {
		t.Errorf("last data line = %q", lines[2])
	}
}

func TestReadSouthEastQuadrant(t *testing.T) {
	msg := "JJVV 05034 1430/ 312750 045500 88888\n51099 00285\nSHIP1\n"

	got, _, gotDepth, err := Read(strings.NewReader(msg), 2020)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}
	if got.Latitude != -12.75 || got.Longitude != 45.5 {
		t.Errorf("position (%v, %v), want (-12.75, 45.5)", got.Latitude, got.Longitude)
	}
	if got.Identifier != "SHIP1" {
		t.Errorf("identifier %q, want SHIP1", got.Identifier)
	}
	if got.BottomStrike {
		t.Error("bottom strike flagged without 00000 group")
	}
	if len(gotDepth) != 1 || gotDepth[0] != 0 {
		t.Errorf("depth = %v, want [0]", gotDepth)
	}
}
