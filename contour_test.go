package vtrace

import "testing"

func TestTraceMarchingSquaresIsolatedPixelProducesFourVertices(t *testing.T) {
	lb := layerBitmaps{width: 1, height: 1, binary: []byte{255}, alpha: []byte{255}}
	contours := traceMarchingSquares(lb)
	if len(contours) != 1 {
		t.Fatalf("traceMarchingSquares(1x1) produced %d contours, want 1", len(contours))
	}
	pts := contours[0].Points
	if len(pts) != 5 {
		t.Fatalf("traceMarchingSquares(1x1) produced %d points (incl. closing point), want 5", len(pts))
	}
	if pts[0] != pts[len(pts)-1] {
		t.Errorf("contour is not closed: first=%v last=%v", pts[0], pts[len(pts)-1])
	}
}

func TestTraceMarchingSquaresTwoByTwoBlockIsSingleOuterPath(t *testing.T) {
	binary := []byte{255, 255, 255, 255}
	alpha := []byte{255, 255, 255, 255}
	lb := layerBitmaps{width: 2, height: 2, binary: binary, alpha: alpha}

	contours := traceMarchingSquares(lb)
	if len(contours) != 1 {
		t.Fatalf("traceMarchingSquares(2x2 block) produced %d contours, want 1", len(contours))
	}
	if !contours[0].outer() {
		t.Errorf("traceMarchingSquares(2x2 block) contour is not outer (area=%v)", contours[0].Area)
	}
}

func TestShoelaceAreaOfUnitSquareIsOne(t *testing.T) {
	square := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if got := shoelaceArea(square); got != 1 {
		t.Errorf("shoelaceArea(unit square) = %v, want 1", got)
	}
}

func TestSortContoursByAreaDescending(t *testing.T) {
	cs := []rawContour{{Area: 5}, {Area: 50}, {Area: -20}}
	sortContoursByArea(cs)
	if cs[0].absArea() != 50 || cs[1].absArea() != 20 || cs[2].absArea() != 5 {
		t.Errorf("sortContoursByArea() = %v, want descending by absolute area", cs)
	}
}

func TestTraceLayerFallsBackWhenMarchingSquaresFindsNothing(t *testing.T) {
	// An all-background layer: marching squares finds no contours, so
	// traceLayer must defer to the fallback tracer (which will also
	// legitimately find nothing here).
	lb := layerBitmaps{width: 2, height: 2, binary: make([]byte, 4), alpha: make([]byte, 4)}
	contours := traceLayer(lb, Options{})
	if len(contours) != 0 {
		t.Errorf("traceLayer(empty layer) = %d contours, want 0", len(contours))
	}
}
