// Package climatology loads the gridded ocean temperature climatology and
// compares measured profiles against it.
package climatology

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// Grid geometry: 1 degree cells with centers at +/- 0.5 degrees, latitudes
// south to north, longitudes 0 to 360 east.
const (
	latCells = 180
	lonCells = 360
	months   = 12

	fillValue  = -32000 // raw value marking a missing grid cell
	tempScale  = 100.0  // raw int16 counts per degC
	firstLat   = -89.5
	firstLon   = 0.5
	magicBytes = "ARESCLM1"
)

// depthLevels are the fixed climatology depth levels in meters.
var depthLevels = []float64{
	0, 10, 20, 30, 50, 75, 100, 125, 150, 200,
	250, 300, 400, 500, 600, 700, 800, 900, 1000,
}

// tempSigma is the climatology standard deviation per depth level, degC.
// Variability collapses with depth below the seasonal layer.
var tempSigma = []float64{
	2.5, 2.5, 2.4, 2.3, 2.1, 1.9, 1.7, 1.5, 1.3, 1.1,
	0.9, 0.8, 0.7, 0.6, 0.55, 0.5, 0.5, 0.5, 0.5,
}

// Dataset is the in-memory climatology: monthly mean temperatures on the
// global grid plus the relief grid for bathymetry lookups. It is loaded
// once and read-only afterwards, so it is safe for concurrent use.
type Dataset struct {
	temps  []int16 // [month][level][lat][lon]
	relief []int16 // [lat][lon], meters above sea level (ocean negative)
}

// Load reads a climatology container file into memory.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("climatology: %w", err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)

	magic := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("climatology: read header: %w", err)
	}
	if !bytes.Equal(magic, []byte(magicBytes)) {
		return nil, fmt.Errorf("climatology: %s is not a climatology file", path)
	}

	var levelCount uint32
	if err := binary.Read(r, binary.LittleEndian, &levelCount); err != nil {
		return nil, fmt.Errorf("climatology: read level count: %w", err)
	}
	if int(levelCount) != len(depthLevels) {
		return nil, fmt.Errorf("climatology: file has %d depth levels, want %d", levelCount, len(depthLevels))
	}

	levels := make([]float64, levelCount)
	if err := binary.Read(r, binary.LittleEndian, levels); err != nil {
		return nil, fmt.Errorf("climatology: read depth levels: %w", err)
	}
	for i, lv := range levels {
		if lv != depthLevels[i] {
			return nil, fmt.Errorf("climatology: depth level %d is %v m, want %v", i, lv, depthLevels[i])
		}
	}

	d := &Dataset{
		temps:  make([]int16, months*len(depthLevels)*latCells*lonCells),
		relief: make([]int16, latCells*lonCells),
	}
	if err := binary.Read(r, binary.LittleEndian, d.temps); err != nil {
		return nil, fmt.Errorf("climatology: read temperature grid: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, d.relief); err != nil {
		return nil, fmt.Errorf("climatology: read relief grid: %w", err)
	}
	return d, nil
}

// temp returns the grid temperature in degC, NaN for missing cells.
func (d *Dataset) temp(month time.Month, level, latIdx, lonIdx int) float64 {
	raw := d.temps[((int(month)-1)*len(depthLevels)+level)*latCells*lonCells+latIdx*lonCells+lonIdx]
	if raw == fillValue {
		return math.NaN()
	}
	return float64(raw) / tempScale
}
