package vtrace

// smoothChaikin implements §4.8: k iterations of Chaikin corner-
// cutting over a closed polyline (points[0] == points[len-1] expected
// on input; the duplicate is dropped and re-added on output). Points
// within 0.5 units of a saved corner position are preserved unchanged
// (emitting a single midpoint companion instead of the usual pair)
// across every iteration.
func smoothChaikin(points []Point, k int, cornerPositions []Point) []Point {
	if k <= 0 || len(points) < 3 {
		return points
	}
	open := points
	if open[0] == open[len(open)-1] {
		open = open[:len(open)-1]
	}

	cur := append([]Point(nil), open...)
	for iter := 0; iter < k; iter++ {
		n := len(cur)
		next := make([]Point, 0, n*2)
		for i := 0; i < n; i++ {
			p0 := cur[i]
			p1 := cur[(i+1)%n]
			if isNearCorner(p0, cornerPositions) {
				next = append(next, p0, midpoint(p0, p1))
				continue
			}
			next = append(next, Point{
				X: 0.75*p0.X + 0.25*p1.X,
				Y: 0.75*p0.Y + 0.25*p1.Y,
			}, Point{
				X: 0.25*p0.X + 0.75*p1.X,
				Y: 0.25*p0.Y + 0.75*p1.Y,
			})
		}
		cur = next
	}

	out := make([]Point, len(cur)+1)
	copy(out, cur)
	out[len(cur)] = cur[0]
	return out
}

func isNearCorner(p Point, corners []Point) bool {
	const tol = 0.5
	tolSq := tol * tol
	for _, c := range corners {
		if sqDist(p, c) <= tolSq {
			return true
		}
	}
	return false
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
