package vtrace

import (
	"errors"
	"testing"
)

func TestLeastSquaresFitStraightLine(t *testing.T) {
	points := []Point{{0, 0}, {5, 0}, {10, 0}}
	curves, err := leastSquaresFit(points, 0.5)
	if err != nil {
		t.Fatalf("leastSquaresFit() error = %v", err)
	}
	if len(curves) != 1 {
		t.Fatalf("leastSquaresFit() produced %d curves, want 1", len(curves))
	}
	c := curves[0]
	if c.P0 != (Point{0, 0}) || c.P3 != (Point{10, 0}) {
		t.Errorf("leastSquaresFit() endpoints = %v, %v, want (0,0),(10,0)", c.P0, c.P3)
	}
	if c.C1.Y != 0 || c.C2.Y != 0 {
		t.Errorf("leastSquaresFit() control points off the line: %v", c)
	}
}

func TestLeastSquaresFitTooFewPointsErrors(t *testing.T) {
	_, err := leastSquaresFit([]Point{{0, 0}}, 0.5)
	if !errors.Is(err, errFitTooFewPoints) {
		t.Errorf("leastSquaresFit(1 pt) error = %v, want errFitTooFewPoints", err)
	}
}

func TestRetractHandlesClampsLongHandles(t *testing.T) {
	curves := []CubicBezier{{
		P0: Point{0, 0},
		C1: Point{100, 0},
		C2: Point{10, 0},
		P3: Point{10, 0},
	}}
	retractHandles(curves)
	l := dist(curves[0].P0, curves[0].P3)
	maxLen := l * 0.6
	if got := dist(curves[0].P0, curves[0].C1); got > maxLen+1e-9 {
		t.Errorf("retractHandles() C1 handle length = %v, want <= %v", got, maxLen)
	}
}

func TestCatmullRomFitProducesOneCurvePerSegment(t *testing.T) {
	points := []Point{{0, 0}, {5, 5}, {10, 0}, {15, 5}}
	curves := catmullRomFit(points)
	if len(curves) != len(points)-1 {
		t.Errorf("catmullRomFit() produced %d curves, want %d", len(curves), len(points)-1)
	}
	if curves[0].P0 != points[0] {
		t.Errorf("catmullRomFit() first curve P0 = %v, want %v", curves[0].P0, points[0])
	}
}

func TestCatmullRomFitTooFewPointsReturnsNil(t *testing.T) {
	if got := catmullRomFit([]Point{{0, 0}}); got != nil {
		t.Errorf("catmullRomFit(1 pt) = %v, want nil", got)
	}
}

type fakeFitter struct {
	curves []CubicBezier
	err    error
}

func (f fakeFitter) Fit(points []Point, maxError float64) ([]CubicBezier, error) {
	return f.curves, f.err
}

func TestFitSegmentUsesExternalFitterWhenItSucceeds(t *testing.T) {
	want := []CubicBezier{{P0: Point{0, 0}, P3: Point{1, 1}}}
	opts := Options{Fitter: fakeFitter{curves: want}}
	got := fitSegment([]Point{{0, 0}, {1, 1}}, 1, false, opts)
	if len(got) != 1 || got[0].P0 != want[0].P0 {
		t.Errorf("fitSegment() = %v, want external fitter's curve", got)
	}
}

func TestFitSegmentFallsBackWhenExternalFitterErrors(t *testing.T) {
	opts := Options{Fitter: fakeFitter{err: errors.New("boom")}}
	points := []Point{{0, 0}, {5, 0}, {10, 0}}
	got := fitSegment(points, 1, false, opts)
	if len(got) == 0 {
		t.Fatalf("fitSegment() produced no curves after fallback")
	}
	if got[0].P0 != points[0] {
		t.Errorf("fitSegment() fallback P0 = %v, want %v", got[0].P0, points[0])
	}
}
