package fin

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWriteReadRoundTrip(t *testing.T) {
	h := Header{
		Year:      2024,
		Month:     time.March,
		Day:       5,
		Time:      1430,
		Latitude:  29.5,
		Longitude: -80.25,
		Num:       99,
	}
	temperature := []float64{28.5, 28.4, 28.2, 27.9, 26.5, 24.1, 22.8}
	depth := []float64{0, 8, 16, 24, 32, 40, 48}

	var buf bytes.Buffer
	if err := Write(&buf, h, temperature, depth); err != nil {
		t.Fatalf("Write() = %v", err)
	}

	got, gotTemp, gotDepth, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() = %v", err)
	}

	if got.Year != 2024 || got.Month != time.March || got.Day != 5 {
		t.Errorf("date %04d-%02d-%02d, want 2024-03-05", got.Year, got.Month, got.Day)
	}
	if got.Time != 1430 || got.Num != 99 {
		t.Errorf("time/num = %d/%d, want 1430/99", got.Time, got.Num)
	}
	if got.Latitude != 29.5 || got.Longitude != -80.25 {
		t.Errorf("position (%v, %v), want (29.5, -80.25)", got.Latitude, got.Longitude)
	}

	if len(gotDepth) != len(depth) {
		t.Fatalf("read %d points, want %d", len(gotDepth), len(depth))
	}
	for i := range depth {
		if gotDepth[i] != depth[i] || gotTemp[i] != temperature[i] {
			t.Errorf("point %d: (%v, %v), want (%v, %v)", i, gotTemp[i], gotDepth[i], temperature[i], depth[i])
		}
	}
}

func TestWriteLayout(t *testing.T) {
	h := Header{
		Year: 2024, Month: time.March, Day: 5, Time: 1430,
		Latitude: 29.5, Longitude: -80.25, Num: 99,
	}
	temperature := []float64{28.5, 28.4, 28.2, 27.9, 26.5, 24.1, 22.8}
	depth := []float64{0, 8, 16, 24, 32, 40, 48}

	var buf bytes.Buffer
	if err := Write(&buf, h, temperature, depth); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 profile lines", len(lines))
	}

	// March 5 2024 (leap year) is day 65.
	if !strings.HasPrefix(lines[0], "2024   065   1430    29.500   -080.250   99   6   7") {
		t.Errorf("header = %q", lines[0])
	}

	// Five 16-character pairs on a full line.
	if len(lines[1]) != 80 {
		t.Errorf("full profile line is %d characters, want 80: %q", len(lines[1]), lines[1])
	}
	if len(lines[2]) != 32 {
		t.Errorf("remainder line is %d characters, want 32: %q", len(lines[2]), lines[2])
	}
}
