package vtrace

import "math"

// simplifyContour implements §4.6: radial pre-filter, closed-path
// Ramer-Douglas-Peucker, and optional staircase removal. points is a
// closed loop (first == last); the return value is also closed.
func simplifyContour(points []Point, eps float64, staircase bool) []Point {
	if len(points) <= 4 {
		return points
	}
	open := points[:len(points)-1] // drop the duplicated closing point while we work

	filtered := radialFilter(open, eps)
	if len(filtered) < 3 {
		filtered = open
	}

	rdped := rdpClosed(filtered, eps)
	if staircase {
		rdped = removeStaircases(rdped)
	}

	out := make([]Point, len(rdped)+1)
	copy(out, rdped)
	out[len(rdped)] = rdped[0]
	return out
}

// radialFilter drops consecutive points closer than sqrt(eps^2/2)
// (§4.6 step 1).
func radialFilter(points []Point, eps float64) []Point {
	thresholdSq := eps * eps / 2
	out := make([]Point, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		if sqDist(out[len(out)-1], p) >= thresholdSq {
			out = append(out, p)
		}
	}
	// Guard the wrap-around edge (last kept point vs. the first).
	if len(out) > 1 && sqDist(out[len(out)-1], out[0]) < thresholdSq {
		out = out[:len(out)-1]
	}
	return out
}

func sqDist(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// rdpClosed runs Ramer-Douglas-Peucker on a closed polyline: split
// first at the point farthest from P[0], then recursively simplify
// each open arc between split points (§4.6 step 2).
func rdpClosed(points []Point, eps float64) []Point {
	if len(points) < 3 {
		return points
	}
	farIdx, _ := farthestFrom(points, points[0])
	if farIdx == 0 {
		farIdx = len(points) / 2
	}

	seg1 := make([]Point, 0, farIdx+1)
	seg1 = append(seg1, points[:farIdx+1]...)
	arc1 := rdpOpen(seg1, eps)

	seg2 := make([]Point, 0, len(points)-farIdx+1)
	seg2 = append(seg2, points[farIdx:]...)
	seg2 = append(seg2, points[0])
	arc2 := rdpOpen(seg2, eps)

	out := make([]Point, 0, len(arc1)+len(arc2)-1)
	out = append(out, arc1...)
	out = append(out, arc2[1:len(arc2)-1]...) // drop shared endpoints
	return out
}

func farthestFrom(points []Point, from Point) (int, float64) {
	best, bestDist := 0, -1.0
	for i, p := range points {
		d := sqDist(from, p)
		if d > bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// rdpOpen is the classical recursive RDP over an open polyline
// (first and last points are always kept).
func rdpOpen(points []Point, eps float64) []Point {
	if len(points) < 3 {
		return points
	}
	first, last := points[0], points[len(points)-1]
	maxDist, maxIdx := -1.0, -1
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist, maxIdx = d, i
		}
	}
	if maxDist <= eps {
		return []Point{first, last}
	}
	left := rdpOpen(points[:maxIdx+1], eps)
	right := rdpOpen(points[maxIdx:], eps)
	return append(left[:len(left)-1], right...)
}

func perpendicularDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	proj := Point{X: a.X + t*dx, Y: a.Y + t*dy}
	return math.Hypot(p.X-proj.X, p.Y-proj.Y)
}

// removeStaircases drops the middle point of any horizontal-then-
// vertical or vertical-then-horizontal transition whose segments are
// both shorter than 2.5 units, aborting (returning the input
// unmodified) if more than 70% of points would be removed (§4.6
// step 3).
func removeStaircases(points []Point) []Point {
	if len(points) < 3 {
		return points
	}
	n := len(points)
	drop := make([]bool, n)
	dropped := 0
	for i := 0; i < n; i++ {
		prev := points[(i-1+n)%n]
		cur := points[i]
		next := points[(i+1)%n]
		if isStaircaseCorner(prev, cur, next) {
			drop[i] = true
			dropped++
		}
	}
	if float64(dropped) > 0.7*float64(n) {
		return points
	}
	out := make([]Point, 0, n-dropped)
	for i, p := range points {
		if !drop[i] {
			out = append(out, p)
		}
	}
	if len(out) < 3 {
		return points
	}
	return out
}

func isStaircaseCorner(prev, cur, next Point) bool {
	d1 := dist(prev, cur)
	d2 := dist(cur, next)
	if d1 >= 2.5 || d2 >= 2.5 {
		return false
	}
	horizThenVert := prev.Y == cur.Y && cur.X == next.X
	vertThenHoriz := prev.X == cur.X && cur.Y == next.Y
	return horizThenVert || vertThenHoriz
}

func dist(a, b Point) float64 {
	return math.Sqrt(sqDist(a, b))
}
