package vtrace

import "testing"

func TestSmoothChaikinClosesOutputLoop(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	out := smoothChaikin(square, 1, nil)
	if out[0] != out[len(out)-1] {
		t.Errorf("smoothChaikin() result is not closed: first=%v last=%v", out[0], out[len(out)-1])
	}
	if len(out) != 9 {
		t.Errorf("smoothChaikin(1 iter, 4 pts) produced %d points (incl. close), want 9", len(out))
	}
}

func TestSmoothChaikinZeroIterationsIsIdentity(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	out := smoothChaikin(square, 0, nil)
	for i := range square {
		if out[i] != square[i] {
			t.Errorf("smoothChaikin(k=0) changed point %d: %v vs %v", i, out[i], square[i])
		}
	}
}

func TestSmoothChaikinPreservesCornerPosition(t *testing.T) {
	square := []Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	corners := []Point{{0, 0}}
	out := smoothChaikin(square, 1, corners)

	found := false
	for _, p := range out {
		if p == (Point{0, 0}) {
			found = true
		}
	}
	if !found {
		t.Errorf("smoothChaikin() did not preserve the marked corner (0,0): %v", out)
	}
}

func TestIsNearCornerWithinTolerance(t *testing.T) {
	corners := []Point{{5, 5}}
	if !isNearCorner(Point{5.3, 5.3}, corners) {
		t.Errorf("isNearCorner(0.3 away) = false, want true")
	}
	if isNearCorner(Point{10, 10}, corners) {
		t.Errorf("isNearCorner(far away) = true, want false")
	}
}

func TestMidpointIsAverage(t *testing.T) {
	got := midpoint(Point{0, 0}, Point{10, 4})
	want := Point{5, 2}
	if got != want {
		t.Errorf("midpoint() = %v, want %v", got, want)
	}
}
