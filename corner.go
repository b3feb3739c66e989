package vtrace

import "math"

// detectCorners implements §4.7: a multi-scale turning-angle analysis
// over a closed, simplified polyline (first == last; indices below
// work over the open prefix). Returns a sorted, non-max-suppressed
// set of indices into that open prefix.
func detectCorners(points []Point, aggressive bool, minDist int) []int {
	open := points
	if len(open) > 1 && open[0] == open[len(open)-1] {
		open = open[:len(open)-1]
	}
	n := len(open)
	if n < 3 {
		return nil
	}

	thresholdDeg := 130.0
	if aggressive {
		thresholdDeg = 140.0
	}
	thresholdRad := thresholdDeg * math.Pi / 180

	angles := make([]float64, n) // minimum turning angle across scales, +Inf if no scale applies
	for i := range angles {
		angles[i] = math.Inf(1)
	}
	for _, r := range []int{4, 6} {
		if 2*r+1 > n {
			continue
		}
		for i := 0; i < n; i++ {
			a := exteriorAngle(open, i, r, n)
			if a < angles[i] {
				angles[i] = a
			}
		}
	}

	localMinRange := 2
	if minDist < localMinRange {
		localMinRange = minDist
	}

	var candidates []int
	for i := 0; i < n; i++ {
		if angles[i] >= thresholdRad {
			continue
		}
		if isCyclicLocalMin(angles, i, localMinRange, n) {
			candidates = append(candidates, i)
		}
	}

	return nonMaxSuppressCyclic(candidates, angles, n, minDist)
}

// exteriorAngle is the turning angle at open[i] using neighbors i-r
// and i+r (indices wrapped cyclically), in radians.
func exteriorAngle(open []Point, i, r, n int) float64 {
	prev := open[((i-r)%n+n)%n]
	cur := open[i]
	next := open[(i+r)%n]

	v1 := Point{X: cur.X - prev.X, Y: cur.Y - prev.Y}
	v2 := Point{X: next.X - cur.X, Y: next.Y - cur.Y}
	len1 := math.Hypot(v1.X, v1.Y)
	len2 := math.Hypot(v2.X, v2.Y)
	if len1 == 0 || len2 == 0 {
		return math.Pi
	}
	cos := (v1.X*v2.X + v1.Y*v2.Y) / (len1 * len2)
	cos = clampF(cos, -1, 1)
	// The interior turning angle; a straight line is pi, a sharp
	// corner approaches 0.
	return math.Pi - math.Acos(cos)
}

func isCyclicLocalMin(angles []float64, i, radius, n int) bool {
	for d := 1; d <= radius; d++ {
		if angles[((i-d)%n+n)%n] < angles[i] {
			return false
		}
		if angles[(i+d)%n] < angles[i] {
			return false
		}
	}
	return true
}

func cyclicDistance(i, j, n int) int {
	d := i - j
	if d < 0 {
		d = -d
	}
	if n-d < d {
		d = n - d
	}
	return d
}

// nonMaxSuppressCyclic keeps the sharpest (lowest-angle) candidate
// within each cyclic neighborhood of radius minDist, returning a
// sorted index set.
func nonMaxSuppressCyclic(candidates []int, angles []float64, n, minDist int) []int {
	if len(candidates) == 0 {
		return nil
	}
	ordered := append([]int(nil), candidates...)
	sortIntsByAngleAsc(ordered, angles)

	kept := make([]int, 0, len(ordered))
	for _, c := range ordered {
		suppressed := false
		for _, k := range kept {
			if cyclicDistance(c, k, n) < minDist {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	sortInts(kept)
	return kept
}

func sortIntsByAngleAsc(idx []int, angles []float64) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && angles[idx[j]] < angles[idx[j-1]]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
}

func sortInts(idx []int) {
	for i := 1; i < len(idx); i++ {
		for j := i; j > 0 && idx[j] < idx[j-1]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
}
