package climatology

import "math"

// OceanDepth returns the interpolated ocean depth in meters at a position,
// positive downward. Land cells have negative depth. Coordinates clamp to
// the grid the same way climatology lookups do.
func (d *Dataset) OceanDepth(lat, lon float64) float64 {
	lat, lon = clampToGrid(lat, lon)

	fi := lat - firstLat
	fj := lon - firstLon
	i0 := int(math.Floor(fi))
	j0 := int(math.Floor(fj))
	if i0 > latCells-2 {
		i0 = latCells - 2
	}
	if j0 > lonCells-2 {
		j0 = lonCells - 2
	}
	wi := fi - float64(i0)
	wj := fj - float64(j0)

	r00 := float64(d.relief[i0*lonCells+j0])
	r01 := float64(d.relief[i0*lonCells+j0+1])
	r10 := float64(d.relief[(i0+1)*lonCells+j0])
	r11 := float64(d.relief[(i0+1)*lonCells+j0+1])

	relief := (1-wi)*(1-wj)*r00 + (1-wi)*wj*r01 + wi*(1-wj)*r10 + wi*wj*r11
	return -relief
}
