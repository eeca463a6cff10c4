// Package edf reads and writes MK21 export data files (EDF) carrying a raw
// temperature-depth profile with launch time and position.
package edf

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Metadata is the drop information carried in the EDF header.
type Metadata struct {
	Launch    time.Time
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees, east positive
}

// fixedHeader is the static portion of the MK21 header between the
// position lines and the profile data.
const fixedHeader = `Serial #      :  99
//
// Here are the contents of the memo fields.
// Depth 6000 Sst -99.00 Sssv -99.00 SssvSst -99.00
//
// Here is some probe information for this drop.
//
Probe Type       :  AXBT
Terminal Depth   :  800 m
Depth Equation   :  Simple
Depth Coeff. 1   :  0.0
Depth Coeff. 2   :  1.5
Depth Coeff. 3   :  0.0
Depth Coeff. 4   :  0.0
Pressure Pt Correction:  N/A
//
Raw Data Filename:  N/A
//
Display Units    :  Metric
//
// This XBT export file has not been noise reduced or averaged.
//
// Sound velocity not included.
//
Depth (m)  - Temperature (°C)
`

// Write writes the EDF file. Points where either temperature or depth is
// NaN are omitted from the profile section.
func Write(w io.Writer, m Metadata, temperature, depth []float64) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "// This is a MK21 EXPORT DATA FILE  (EDF)\n//\n")
	fmt.Fprintf(bw, "Date of Launch:  %02d/%02d/%02d\n", m.Launch.Day(), int(m.Launch.Month()), m.Launch.Year()%100)
	fmt.Fprintf(bw, "Time of Launch:  %02d:%02d:%02d\n", m.Launch.Hour(), m.Launch.Minute(), m.Launch.Second())
	fmt.Fprintf(bw, "Sequence #    :  99\n")

	nsh, ewh := "N", "E"
	lat, lon := m.Latitude, m.Longitude
	if lat < 0 {
		nsh, lat = "S", -lat
	}
	if lon < 0 {
		ewh, lon = "W", -lon
	}
	latDeg := math.Floor(lat)
	lonDeg := math.Floor(lon)
	fmt.Fprintf(bw, "Latitude      :  %02d:%07.4f%s\n", int(latDeg), (lat-latDeg)*60, nsh)
	fmt.Fprintf(bw, "Longitude     :  %03d:%06.3f%s\n", int(lonDeg), (lon-lonDeg)*60, ewh)

	bw.WriteString(fixedHeader)

	for i := range depth {
		if math.IsNaN(temperature[i]) || math.IsNaN(depth[i]) {
			continue
		}
		fmt.Fprintf(bw, "%s\t%s\n",
			zfill(formatRounded(depth[i], 1), 5),
			zfill(formatRounded(temperature[i], 2), 4))
	}

	return bw.Flush()
}

// Read parses an EDF file. Header fields are located by byte offset within
// their lines, the way MK21 consumers read them. The profile section ends
// at the first line that fails to parse.
func Read(r io.Reader) (Metadata, []float64, []float64, error) {
	scanner := bufio.NewScanner(r)
	var m Metadata

	readLine := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return scanner.Text(), nil
	}

	// two comment lines
	for i := 0; i < 2; i++ {
		if _, err := readLine(); err != nil {
			return m, nil, nil, fmt.Errorf("edf: header: %w", err)
		}
	}

	dateLine, err := readLine()
	if err != nil {
		return m, nil, nil, fmt.Errorf("edf: date: %w", err)
	}
	timeLine, err := readLine()
	if err != nil {
		return m, nil, nil, fmt.Errorf("edf: time: %w", err)
	}
	if _, err = readLine(); err != nil { // sequence number
		return m, nil, nil, fmt.Errorf("edf: header: %w", err)
	}
	latLine, err := readLine()
	if err != nil {
		return m, nil, nil, fmt.Errorf("edf: latitude: %w", err)
	}
	lonLine, err := readLine()
	if err != nil {
		return m, nil, nil, fmt.Errorf("edf: longitude: %w", err)
	}

	day, err1 := headerInt(dateLine, 17, 19)
	month, err2 := headerInt(dateLine, 20, 22)
	year, err3 := headerInt(dateLine, 23, len(dateLine))
	hour, err4 := headerInt(timeLine, 17, 19)
	minute, err5 := headerInt(timeLine, 20, 22)
	second, err6 := headerInt(timeLine, 23, len(timeLine))
	for _, err := range []error{err1, err2, err3, err4, err5, err6} {
		if err != nil {
			return m, nil, nil, fmt.Errorf("edf: malformed date/time header: %w", err)
		}
	}
	m.Launch = time.Date(year+2000, time.Month(month), day, hour, minute, second, 0, time.UTC)

	if m.Latitude, err = parseCoordinate(latLine, 19); err != nil {
		return m, nil, nil, fmt.Errorf("edf: latitude: %w", err)
	}
	if m.Longitude, err = parseCoordinate(lonLine, 20); err != nil {
		return m, nil, nil, fmt.Errorf("edf: longitude: %w", err)
	}

	// remaining header lines
	for i := 0; i < 25; i++ {
		if _, err := readLine(); err != nil {
			return m, nil, nil, fmt.Errorf("edf: header: %w", err)
		}
	}

	var temperature, depth []float64
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			break
		}
		d, err1 := strconv.ParseFloat(fields[0], 64)
		t, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			break
		}
		depth = append(depth, d)
		temperature = append(temperature, t)
	}
	if err := scanner.Err(); err != nil {
		return m, nil, nil, fmt.Errorf("edf: profile: %w", err)
	}

	return m, temperature, depth, nil
}

// parseCoordinate decodes "dd:mm.mmmmH" starting at byte 17, with the
// degree field ending at degEnd and the hemisphere letter last.
func parseCoordinate(line string, degEnd int) (float64, error) {
	if len(line) < degEnd+2 {
		return 0, fmt.Errorf("short coordinate line %q", line)
	}

	deg, err := strconv.ParseFloat(strings.TrimSpace(line[17:degEnd]), 64)
	if err != nil {
		return 0, err
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(line[degEnd+1:len(line)-1]), 64)
	if err != nil {
		return 0, err
	}

	coord := deg + min/60
	switch hemi := line[len(line)-1]; hemi {
	case 'S', 's', 'W', 'w':
		coord = -coord
	}
	return coord, nil
}

func headerInt(line string, from, to int) (int, error) {
	if len(line) < from {
		return 0, fmt.Errorf("short header line %q", line)
	}
	if to > len(line) {
		to = len(line)
	}
	return strconv.Atoi(strings.TrimSpace(line[from:to]))
}

func formatRounded(v float64, places int) string {
	scale := math.Pow(10, float64(places))
	s := strconv.FormatFloat(math.Round(v*scale)/scale, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
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
