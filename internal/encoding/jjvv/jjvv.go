// Package jjvv reads and writes JJVV bathythermograph messages: integer
// depths and decitemperatures in five-character groups, with quadrant-coded
// position and hundreds-of-meters depth markers.
package jjvv

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Header is the drop metadata carried by a JJVV message.
type Header struct {
	Day          int
	Month        time.Month
	Year         int
	Time         int // observation time as HHMM, 24-hour UTC
	Latitude     float64
	Longitude    float64
	Identifier   string // launch platform identifier, at most five characters
	BottomStrike bool
}

// Write encodes the message. Depths must be increasing whole meters;
// within each hundreds block a point is encoded as two depth digits and
// three decitemperature digits, and crossing a hundreds boundary emits a
// 999xx marker group.
func Write(w io.Writer, h Header, temperature, depth []float64) error {
	bw := bufio.NewWriter(w)

	quad := "1"
	switch {
	case h.Longitude >= 0 && h.Latitude < 0:
		quad = "3"
	case h.Longitude < 0 && h.Latitude < 0:
		quad = "5"
	case h.Longitude < 0 && h.Latitude >= 0:
		quad = "7"
	}

	fmt.Fprintf(bw, "JJVV %02d%02d%d %04d/ %s%s %s 88888\n",
		h.Day, int(h.Month), h.Year%10, h.Time, quad,
		zfill(strconv.Itoa(int(math.Abs(h.Latitude*1000))), 5),
		zfill(strconv.Itoa(int(math.Abs(h.Longitude*1000))), 6))

	groups := []string{"51099"}
	hundreds := 0
	lastDepth := -1
	for i := 0; i < len(depth); {
		curDepth := int(depth[i])
		if curDepth-hundreds > 99 {
			hundreds += 100
			groups = append(groups, "999"+zfill(strconv.Itoa(hundreds/100), 2))
			continue
		}
		if curDepth-lastDepth >= 1 {
			deciTemp := int(math.Round(temperature[i] * 10))
			groups = append(groups, zfill(strconv.Itoa(curDepth-hundreds), 2)+zfill(strconv.Itoa(deciTemp), 3))
			lastDepth = curDepth
		}
		i++
	}

	if h.BottomStrike {
		groups = append(groups, "00000")
	}

	id := h.Identifier
	if len(id) > 5 {
		id = id[:5]
	}
	groups = append(groups, id)

	// First line carries six groups when there are enough, full lines five,
	// and the remainder goes on the last line.
	i := 0
	for i < len(groups) {
		switch {
		case i == 0 && len(groups) >= 6:
			fmt.Fprintf(bw, "%s\n", strings.Join(groups[:6], " "))
			i = 6
		case i+5 < len(groups):
			fmt.Fprintf(bw, "%s \n", strings.Join(groups[i:i+5], " "))
			i += 5
		default:
			fmt.Fprintf(bw, "%s\n", strings.Join(groups[i:], " "))
			i = len(groups)
		}
	}

	return bw.Flush()
}

// Read decodes a message. JJVV carries only the last digit of the year, so
// the caller supplies the decade (e.g. 2020 for a message from 2020-2029).
func Read(r io.Reader, decade int) (Header, []float64, []float64, error) {
	scanner := bufio.NewScanner(r)
	var h Header

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return h, nil, nil, fmt.Errorf("jjvv: %w", err)
		}
		return h, nil, nil, fmt.Errorf("jjvv: %w", io.ErrUnexpectedEOF)
	}

	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 {
		return h, nil, nil, fmt.Errorf("jjvv: short header: %q", scanner.Text())
	}

	dateStr := fields[1]
	if len(dateStr) < 5 {
		return h, nil, nil, fmt.Errorf("jjvv: malformed date group %q", dateStr)
	}
	day, err1 := strconv.Atoi(dateStr[:2])
	month, err2 := strconv.Atoi(dateStr[2:4])
	yearDigit, err3 := strconv.Atoi(dateStr[4:5])
	obsTime, err4 := strconv.Atoi(strings.TrimSuffix(fields[2], "/")[:4])
	for _, err := range []error{err1, err2, err3, err4} {
		if err != nil {
			return h, nil, nil, fmt.Errorf("jjvv: malformed header: %w", err)
		}
	}

	latStr, lonStr := fields[3], fields[4]
	if len(latStr) < 4 || len(lonStr) < 4 {
		return h, nil, nil, fmt.Errorf("jjvv: malformed position groups %q %q", latStr, lonStr)
	}
	quad, err := strconv.Atoi(latStr[:1])
	if err != nil {
		return h, nil, nil, fmt.Errorf("jjvv: malformed quadrant: %w", err)
	}
	lat, err1 := fixedPoint(latStr[1:3], latStr[3:])
	lon, err2 := fixedPoint(lonStr[:3], lonStr[3:])
	if err1 != nil || err2 != nil {
		return h, nil, nil, fmt.Errorf("jjvv: malformed position groups %q %q", latStr, lonStr)
	}
	switch quad {
	case 3:
		lat = -lat
	case 5:
		lat, lon = -lat, -lon
	case 7:
		lon = -lon
	}

	h = Header{
		Day:        day,
		Month:      time.Month(month),
		Year:       decade + yearDigit,
		Time:       obsTime,
		Latitude:   lat,
		Longitude:  lon,
		Identifier: "UNKNOWN",
	}

	var temperature, depth []float64
	hundreds := 0
	lastDepth := -1
	firstDataLine := true
	for scanner.Scan() {
		groups := strings.Fields(scanner.Text())
		if firstDataLine && len(groups) > 0 {
			groups = groups[1:] // leading 51099 instrument group
			firstDataLine = false
		}

		for _, g := range groups {
			if _, err := strconv.Atoi(g); err != nil {
				h.Identifier = g
				continue
			}
			if g == "00000" {
				h.BottomStrike = true
				continue
			}
			if len(g) != 5 {
				continue
			}

			if g[:3] == "999" {
				if marker, err := strconv.Atoi(g[3:]); err == nil && marker*100 == hundreds+100 {
					hundreds += 100
					continue
				}
			}

			d, err1 := strconv.Atoi(g[:2])
			deciTemp, err2 := strconv.Atoi(g[2:])
			if err1 != nil || err2 != nil {
				continue
			}
			if d+hundreds == lastDepth {
				continue
			}
			lastDepth = d + hundreds
			depth = append(depth, float64(lastDepth))
			temperature = append(temperature, float64(deciTemp)/10)
		}
	}
	if err := scanner.Err(); err != nil {
		return h, nil, nil, fmt.Errorf("jjvv: %w", err)
	}

	return h, temperature, depth, nil
}

// fixedPoint parses whole and fractional digit strings as whole.frac.
func fixedPoint(whole, frac string) (float64, error) {
	w, err := strconv.ParseFloat(whole, 64)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(frac, 64)
	if err != nil {
		return 0, err
	}
	return w + f/math.Pow(10, float64(len(frac))), nil
}

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
