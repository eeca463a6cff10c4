// Package logdta reads and writes MK21-style LOG (.DTA) files carrying the
// raw time/depth/frequency/temperature record of a drop.
package logdta

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one line of the raw drop log.
type Record struct {
	Elapsed     float64 // seconds since acquisition start
	Depth       float64 // meters, NaN when the tone was rejected
	Frequency   float64 // Hz, 0 when no tone was detected
	Temperature float64 // degC, NaN when the tone was rejected
}

const header = "    Time     Depth    Frequency    (C)       (F) "

// Write writes the log file: a six-line header with the launch date and
// time, then one fixed-width row per record. Missing depths are written as
// -10.0 and missing temperatures as asterisks, matching the MK21 logs this
// format descends from.
func Write(w io.Writer, launch time.Time, records []Record) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "     Probe Type = AXBT\n")
	fmt.Fprintf(bw, "       Date = %s\n", launch.Format("2006/01/02"))
	fmt.Fprintf(bw, "       Time = %s\n\n", launch.Format("15:04:05"))
	fmt.Fprintf(bw, "%s\n\n", header)

	for _, r := range records {
		tstr := zfill(formatRounded(r.Elapsed, 1), 4)
		fstr := zfill(formatRounded(r.Frequency, 3), 5)

		dstr := "-10.0"
		if !math.IsNaN(r.Depth) {
			dstr = zfill(formatRounded(r.Depth, 1), 4)
		}

		tcstr, tfstr := "******", "******"
		if !math.IsNaN(r.Temperature) {
			tcstr = zfill(formatRounded(r.Temperature, 2), 4)
			tfstr = zfill(formatRounded(r.Temperature*1.8+32, 2), 4)
		}

		fmt.Fprintf(bw, "%7s%10s%11s%10s%10s\n", tstr, dstr, fstr, tcstr, tfstr)
	}

	return bw.Flush()
}

// Read parses a log file back into the launch time and records. Rows whose
// frequency column is zero or unparseable keep their time and frequency but
// carry NaN depth and temperature, preserving dropouts in the record.
func Read(r io.Reader) (time.Time, []Record, error) {
	scanner := bufio.NewScanner(r)

	var date, clock string
	for i := 0; i < 6 && scanner.Scan(); i++ {
		line := scanner.Text()
		if _, v, ok := strings.Cut(line, "="); ok {
			switch {
			case strings.Contains(line, "Date"):
				date = strings.TrimSpace(v)
			case strings.Contains(line, "Time"):
				clock = strings.TrimSpace(v)
			}
		}
	}
	launch, err := time.Parse("2006/01/02 15:04:05", date+" "+clock)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("logdta: malformed header date/time: %w", err)
	}

	var records []Record
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}

		elapsed, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}

		rec := Record{
			Elapsed:     elapsed,
			Depth:       math.NaN(),
			Temperature: math.NaN(),
		}
		rec.Frequency, _ = strconv.ParseFloat(fields[2], 64)

		if rec.Frequency != 0 {
			if d, err := strconv.ParseFloat(fields[1], 64); err == nil {
				rec.Depth = d
			}
			if t, err := strconv.ParseFloat(fields[3], 64); err == nil {
				rec.Temperature = t
			}
		}

		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return time.Time{}, nil, fmt.Errorf("logdta: %w", err)
	}
	return launch, records, nil
}

// formatRounded renders a value rounded to the given number of decimal
// places with trailing zeros trimmed, but always keeping a decimal point.
func formatRounded(v float64, places int) string {
	scale := math.Pow(10, float64(places))
	s := strconv.FormatFloat(math.Round(v*scale)/scale, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// zfill left-pads with zeros to the given width, after any sign.
func zfill(s string, width int) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	for len(sign)+len(s) < width {
		s = "0" + s
	}
	return sign + s
}
