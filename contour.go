package vtrace

import (
	"github.com/kestrelvec/vtrace/internal/gocvutil"
)

// Edge indices used by both the transition table and interpolation.
const (
	edgeTop = iota
	edgeRight
	edgeBottom
	edgeLeft
)

// transitionTable maps a marching-squares configuration (TL*8 + TR*4 +
// BR*2 + BL*1) to the edge pairs its boundary segments connect. Each
// pair is ordered (from, to) so that the cell's foreground corners lie
// on the same side of every segment; walking segments in that order
// gives outer boundaries a positive Shoelace area and holes a negative
// one. Configs 5 and 10 are the ambiguous saddle cases and carry two
// edge-disjoint segments (§4.5).
var transitionTable = map[int][][2]int{
	1:  {{edgeLeft, edgeBottom}},
	2:  {{edgeBottom, edgeRight}},
	3:  {{edgeLeft, edgeRight}},
	4:  {{edgeRight, edgeTop}},
	5:  {{edgeLeft, edgeTop}, {edgeRight, edgeBottom}},
	6:  {{edgeBottom, edgeTop}},
	7:  {{edgeLeft, edgeTop}},
	8:  {{edgeTop, edgeLeft}},
	9:  {{edgeTop, edgeBottom}},
	10: {{edgeTop, edgeRight}, {edgeBottom, edgeLeft}},
	11: {{edgeTop, edgeRight}},
	12: {{edgeRight, edgeLeft}},
	13: {{edgeRight, edgeBottom}},
	14: {{edgeBottom, edgeLeft}},
}

// rawContour is the contour tracer's output before simplification: a
// closed point loop (first == last) and its signed Shoelace area.
type rawContour struct {
	Points []Point
	Area   float64
}

func (r rawContour) absArea() float64 {
	if r.Area < 0 {
		return -r.Area
	}
	return r.Area
}

// outer reports whether this contour is an outer boundary (area >= 0)
// or a hole (area < 0), per §4.5/GLOSSARY.
func (r rawContour) outer() bool { return r.Area >= 0 }

type cellWalker struct {
	binary, alpha []byte
	w, h          int
}

func (c *cellWalker) cornerOn(cx, cy int) bool {
	if cx < 0 || cx >= c.w || cy < 0 || cy >= c.h {
		return false
	}
	return c.binary[cy*c.w+cx] != 0
}

func (c *cellWalker) cornerGray(cx, cy int) float64 {
	if cx < 0 || cx >= c.w || cy < 0 || cy >= c.h {
		return 0
	}
	return float64(c.alpha[cy*c.w+cx])
}

func (c *cellWalker) config(cx, cy int) int {
	tl, tr, br, bl := 0, 0, 0, 0
	if c.cornerOn(cx, cy) {
		tl = 8
	}
	if c.cornerOn(cx+1, cy) {
		tr = 4
	}
	if c.cornerOn(cx+1, cy+1) {
		br = 2
	}
	if c.cornerOn(cx, cy+1) {
		bl = 1
	}
	return tl | tr | br | bl
}

// interpolate computes the sub-pixel crossing point on the named edge
// of cell (cx,cy), per §4.5's linear interpolation on G.
func (c *cellWalker) interpolate(cx, cy, edge int) Point {
	var g1, g2 float64
	switch edge {
	case edgeTop:
		g1, g2 = c.cornerGray(cx, cy), c.cornerGray(cx+1, cy)
	case edgeRight:
		g1, g2 = c.cornerGray(cx+1, cy), c.cornerGray(cx+1, cy+1)
	case edgeBottom:
		g1, g2 = c.cornerGray(cx, cy+1), c.cornerGray(cx+1, cy+1)
	default: // edgeLeft
		g1, g2 = c.cornerGray(cx, cy), c.cornerGray(cx, cy+1)
	}

	t := 0.5
	if diff := g2 - g1; diff >= 1 || diff <= -1 {
		t = clampF((128-g1)/diff, 0.1, 0.9)
	}

	switch edge {
	case edgeTop:
		return Point{X: float64(cx) + t, Y: float64(cy)}
	case edgeRight:
		return Point{X: float64(cx + 1), Y: float64(cy) + t}
	case edgeBottom:
		return Point{X: float64(cx) + t, Y: float64(cy + 1)}
	default:
		return Point{X: float64(cx), Y: float64(cy) + t}
	}
}

func neighborCell(cx, cy, edge int) (int, int) {
	switch edge {
	case edgeTop:
		return cx, cy - 1
	case edgeRight:
		return cx + 1, cy
	case edgeBottom:
		return cx, cy + 1
	default:
		return cx - 1, cy
	}
}

func oppositeEdge(edge int) int {
	switch edge {
	case edgeTop:
		return edgeBottom
	case edgeBottom:
		return edgeTop
	case edgeRight:
		return edgeLeft
	default:
		return edgeRight
	}
}

type visitKey struct{ cx, cy, edge int }

// traceMarchingSquares implements §4.5: it iterates every 2x2 cell
// over x,y in [-1,W)x[-1,H), walking each unvisited boundary segment
// to a closed loop via the transition table. Off-image corners are
// treated as background (config bit 0), which closes contours along
// the virtual border.
func traceMarchingSquares(lb layerBitmaps) []rawContour {
	w, h := lb.width, lb.height
	cw := &cellWalker{binary: lb.binary, alpha: lb.alpha, w: w, h: h}

	configs := make(map[[2]int]int)
	for cy := -1; cy < h; cy++ {
		for cx := -1; cx < w; cx++ {
			cfg := cw.config(cx, cy)
			if cfg != 0 && cfg != 15 {
				configs[[2]int{cx, cy}] = cfg
			}
		}
	}

	visited := make(map[visitKey]bool)
	maxSteps := 4 * (w + 2) * (h + 2)
	var contours []rawContour

	for cell, cfg := range configs {
		for _, seg := range transitionTable[cfg] {
			// Segments are only walked from seg[0] to seg[1], so each
			// loop is traced once and always in the same orientation.
			start := visitKey{cell[0], cell[1], seg[1]}
			if visited[start] {
				continue
			}
			loop, closed := walkLoop(cw, configs, visited, cell[0], cell[1], seg[1], maxSteps)
			if closed && len(loop) >= 3 {
				contours = append(contours, finishContour(loop))
			}
		}
	}

	sortContoursByArea(contours)
	return contours
}

func walkLoop(cw *cellWalker, configs map[[2]int]int, visited map[visitKey]bool, cx, cy, outEdge, maxSteps int) ([]Point, bool) {
	startKey := visitKey{cx, cy, outEdge}
	var points []Point

	for step := 0; step < maxSteps; step++ {
		key := visitKey{cx, cy, outEdge}
		if visited[key] {
			return points, false // revisited a non-start edge: malformed walk, the partial loop is dropped
		}
		visited[key] = true
		points = append(points, cw.interpolate(cx, cy, outEdge))

		nx, ny := neighborCell(cx, cy, outEdge)
		inEdge := oppositeEdge(outEdge)
		cfg, ok := configs[[2]int{nx, ny}]
		if !ok {
			return points, false
		}
		nextSeg, ok := transitionEdgeFor(cfg, inEdge)
		if !ok {
			return points, false
		}
		cx, cy, outEdge = nx, ny, nextSeg
		if (visitKey{cx, cy, outEdge}) == startKey {
			points = append(points, points[0])
			return points, true
		}
	}
	return points, false
}

// transitionEdgeFor returns the out-edge paired with inEdge in cfg's
// segment set.
func transitionEdgeFor(cfg, inEdge int) (int, bool) {
	for _, seg := range transitionTable[cfg] {
		if seg[0] == inEdge {
			return seg[1], true
		}
		if seg[1] == inEdge {
			return seg[0], true
		}
	}
	return 0, false
}

func finishContour(points []Point) rawContour {
	area := shoelaceArea(points)
	return rawContour{Points: points, Area: area}
}

func shoelaceArea(points []Point) float64 {
	sum := 0.0
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return sum / 2
}

func sortContoursByArea(cs []rawContour) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].absArea() > cs[j-1].absArea(); j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

// traceFallback runs the OpenCV contour finder over the binary layer
// (no alpha interpolation) and lifts the result to []Point, the
// "preserved" fallback tracer required by §4.5's expansion.
func traceFallback(lb layerBitmaps) []rawContour {
	found := gocvutil.TraceFallback(lb.binary, lb.width, lb.height)
	out := make([]rawContour, 0, len(found))
	for _, fc := range found {
		if len(fc.Points) < 3 {
			continue
		}
		pts := make([]Point, 0, len(fc.Points)+1)
		for _, p := range fc.Points {
			pts = append(pts, Point{X: float64(p.X), Y: float64(p.Y)})
		}
		pts = append(pts, pts[0])
		out = append(out, finishContour(pts))
	}
	sortContoursByArea(out)
	return out
}

// traceLayer selects the primary or fallback tracer per opts.ContourMethod,
// falling back automatically if the primary tracer produces nothing.
func traceLayer(lb layerBitmaps, opts Options) []rawContour {
	if opts.ContourMethod == ContourVTracer || opts.ContourMethod == ContourHybrid {
		return traceFallback(lb)
	}
	contours := traceMarchingSquares(lb)
	if len(contours) == 0 {
		return traceFallback(lb)
	}
	return contours
}
