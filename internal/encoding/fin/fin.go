// Package fin reads and writes FIN files: the quality-controlled
// temperature-depth profile exchange format, five points per line.
package fin

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Header is the single-line FIN file header.
type Header struct {
	Year      int
	Month     time.Month
	Day       int
	Time      int // observation time as HHMM, 24-hour UTC
	Latitude  float64
	Longitude float64
	Num       int // drop number within the mission; 99 when untracked
}

// Write writes header and profile. The profile is written five
// temperature-depth pairs per line in fixed-width columns.
func Write(w io.Writer, h Header, temperature, depth []float64) error {
	bw := bufio.NewWriter(w)

	dayOfYear := time.Date(h.Year, h.Month, h.Day, 0, 0, 0, 0, time.UTC).YearDay()

	fmt.Fprintf(bw, "%04d   %03d   %04d   %s   %s   %02d   6   %d   0   0   \n",
		h.Year, dayOfYear, h.Time,
		coordinateString(h.Latitude, 2),
		coordinateString(h.Longitude, 3),
		h.Num, len(depth))

	for i := 0; i < len(depth); i += 5 {
		end := i + 5
		if end > len(depth) {
			end = len(depth)
		}
		for j := i; j < end; j++ {
			fmt.Fprintf(bw, "% 8.3f% 8.1f", temperature[j], depth[j])
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// coordinateString formats a coordinate as a signed fixed-point value with
// zero-padded whole degrees and exactly three decimals, positive values
// carrying a leading space.
func coordinateString(v float64, degDigits int) string {
	sign := " "
	if v < 0 {
		sign, v = "-", -v
	}
	deg := math.Floor(v)
	rem := math.Round((v - deg) * 1000)
	return fmt.Sprintf("%s%0*d.%03d", sign, degDigits, int(deg), int(rem))
}

// Read parses a FIN file.
func Read(r io.Reader) (Header, []float64, []float64, error) {
	scanner := bufio.NewScanner(r)
	var h Header

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return h, nil, nil, fmt.Errorf("fin: %w", err)
		}
		return h, nil, nil, fmt.Errorf("fin: %w", io.ErrUnexpectedEOF)
	}

	fields := strings.Fields(scanner.Text())
	if len(fields) < 6 {
		return h, nil, nil, fmt.Errorf("fin: short header: %q", scanner.Text())
	}

	year, err1 := strconv.Atoi(fields[0])
	dayOfYear, err2 := strconv.Atoi(fields[1])
	obsTime, err3 := strconv.Atoi(fields[2])
	lat, err4 := strconv.ParseFloat(fields[3], 64)
	lon, err5 := strconv.ParseFloat(fields[4], 64)
	num, err6 := strconv.Atoi(fields[5])
	for _, err := range []error{err1, err2, err3, err4, err5, err6} {
		if err != nil {
			return h, nil, nil, fmt.Errorf("fin: malformed header: %w", err)
		}
	}

	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, dayOfYear-1)
	h = Header{
		Year:      year,
		Month:     date.Month(),
		Day:       date.Day(),
		Time:      obsTime,
		Latitude:  lat,
		Longitude: lon,
		Num:       num,
	}

	var temperature, depth []float64
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		for i := 0; i+1 < len(fields); i += 2 {
			t, err1 := strconv.ParseFloat(fields[i], 64)
			d, err2 := strconv.ParseFloat(fields[i+1], 64)
			if err1 != nil || err2 != nil {
				return h, nil, nil, fmt.Errorf("fin: malformed profile line: %q", scanner.Text())
			}
			temperature = append(temperature, t)
			depth = append(depth, d)
		}
	}
	if err := scanner.Err(); err != nil {
		return h, nil, nil, fmt.Errorf("fin: %w", err)
	}

	return h, temperature, depth, nil
}
