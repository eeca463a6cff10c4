package gps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnsupportedSentence is returned for NMEA sentence types the parser
	// does not handle; callers normally skip these.
	ErrUnsupportedSentence = errors.New("unsupported NMEA sentence")

	// ErrNoFix is returned for well-formed sentences reporting no solution.
	ErrNoFix = errors.New("no position fix")
)

// ParseSentence parses a GGA or RMC sentence into a fix. The checksum is
// verified when present. The fix time carries only the time of day for
// GGA; RMC sentences include the date.
func ParseSentence(line string) (Fix, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Fix{}, fmt.Errorf("not an NMEA sentence: %q", line)
	}
	body := line[1:]

	if i := strings.IndexByte(body, '*'); i >= 0 {
		want, err := strconv.ParseUint(body[i+1:], 16, 8)
		if err != nil {
			return Fix{}, fmt.Errorf("bad checksum field in %q", line)
		}
		var sum byte
		for j := 0; j < i; j++ {
			sum ^= body[j]
		}
		if sum != byte(want) {
			return Fix{}, fmt.Errorf("checksum mismatch in %q: got %02X, want %02X", line, sum, byte(want))
		}
		body = body[:i]
	}

	fields := strings.Split(body, ",")
	talker := fields[0]
	switch {
	case strings.HasSuffix(talker, "GGA"):
		return parseGGA(fields)
	case strings.HasSuffix(talker, "RMC"):
		return parseRMC(fields)
	}
	return Fix{}, fmt.Errorf("%w: %s", ErrUnsupportedSentence, talker)
}

// parseGGA handles $--GGA,time,lat,N/S,lon,E/W,quality,...
func parseGGA(fields []string) (Fix, error) {
	if len(fields) < 7 {
		return Fix{}, fmt.Errorf("short GGA sentence: %d fields", len(fields))
	}
	quality, err := strconv.Atoi(fields[6])
	if err != nil || quality == 0 {
		return Fix{}, ErrNoFix
	}

	lat, err := parseCoordinate(fields[2], fields[3])
	if err != nil {
		return Fix{}, err
	}
	lon, err := parseCoordinate(fields[4], fields[5])
	if err != nil {
		return Fix{}, err
	}
	t, err := parseClock(fields[1], time.Time{})
	if err != nil {
		return Fix{}, err
	}

	return Fix{Time: t, Latitude: lat, Longitude: lon, Valid: true}, nil
}

// parseRMC handles $--RMC,time,status,lat,N/S,lon,E/W,sog,cog,date,...
func parseRMC(fields []string) (Fix, error) {
	if len(fields) < 10 {
		return Fix{}, fmt.Errorf("short RMC sentence: %d fields", len(fields))
	}
	if fields[2] != "A" {
		return Fix{}, ErrNoFix
	}

	lat, err := parseCoordinate(fields[3], fields[4])
	if err != nil {
		return Fix{}, err
	}
	lon, err := parseCoordinate(fields[5], fields[6])
	if err != nil {
		return Fix{}, err
	}

	date, err := time.Parse("020106", fields[9])
	if err != nil {
		return Fix{}, fmt.Errorf("bad RMC date %q: %w", fields[9], err)
	}
	t, err := parseClock(fields[1], date)
	if err != nil {
		return Fix{}, err
	}

	return Fix{Time: t, Latitude: lat, Longitude: lon, Valid: true}, nil
}

// parseCoordinate converts ddmm.mmmm / dddmm.mmmm plus a hemisphere letter
// to signed decimal degrees.
func parseCoordinate(value, hemi string) (float64, error) {
	if value == "" || hemi == "" {
		return 0, fmt.Errorf("empty coordinate")
	}
	dot := strings.IndexByte(value, '.')
	if dot < 3 {
		return 0, fmt.Errorf("malformed coordinate %q", value)
	}

	deg, err := strconv.ParseFloat(value[:dot-2], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed coordinate %q", value)
	}
	min, err := strconv.ParseFloat(value[dot-2:], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed coordinate %q", value)
	}

	coord := deg + min/60
	switch hemi {
	case "N", "E":
	case "S", "W":
		coord = -coord
	default:
		return 0, fmt.Errorf("bad hemisphere %q", hemi)
	}
	return coord, nil
}

// parseClock merges an hhmmss.sss field into the given date (zero date
// keeps just the time of day).
func parseClock(value string, date time.Time) (time.Time, error) {
	if len(value) < 6 {
		return time.Time{}, fmt.Errorf("bad time field %q", value)
	}
	hour, err1 := strconv.Atoi(value[0:2])
	minute, err2 := strconv.Atoi(value[2:4])
	sec, err3 := strconv.ParseFloat(value[4:], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("bad time field %q", value)
	}

	nsec := int((sec - float64(int(sec))) * 1e9)
	return time.Date(date.Year(), date.Month(), date.Day(),
		hour, minute, int(sec), nsec, time.UTC), nil
}
