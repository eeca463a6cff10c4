package climatology

// polygonContains reports whether point (x, y) lies inside the polygon
// with vertices (xs[i], ys[i]), using even-odd ray casting. The polygon is
// treated as closed between the last and first vertex.
func polygonContains(xs, ys []float64, x, y float64) bool {
	n := len(xs)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		if (ys[i] > y) != (ys[j] > y) {
			xCross := xs[i] + (y-ys[i])/(ys[j]-ys[i])*(xs[j]-xs[i])
			if x < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
