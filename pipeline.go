package vtrace

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/kestrelvec/vtrace/imageutil"
	"github.com/kestrelvec/vtrace/internal/gocvutil"
)

const minDistDefault = 4

// runPipeline implements §4.10, the Pipeline Coordinator: upscaling,
// palette construction, classification, the per-palette-index layer
// pipeline (run with bounded parallelism), noise-floor and fragment
// filtering, and SVG serialization.
func runPipeline(img Image, opts Options) (VectorResult, error) {
	if !hasOpaquePixel(&img) {
		bg := RGB{255, 255, 255}
		return VectorResult{
			SVG:           renderSVG(img.Width, img.Height, img.Width, img.Height, bg, nil),
			Width:         img.Width,
			Height:        img.Height,
			ViewBoxWidth:  img.Width,
			ViewBoxHeight: img.Height,
			Layers:        nil,
			Paths:         nil,
			Palette:       nil,
			Engine:        engineName,
		}, nil
	}

	work, workW, workH := upscale(&img, opts)

	var palette []RGB
	var binaryThreshold float64
	if opts.BinaryMode {
		palette = []RGB{{0, 0, 0}}
		binaryThreshold = otsuThresholdOf(&work)
	} else {
		palette = buildPalette(&work, opts.NumColors, opts)
	}

	var indices []byte
	if opts.BinaryMode {
		indices = make([]byte, workW*workH)
		applyOtsuClassification(&work, indices, binaryThreshold)
	} else {
		indices = classifyPixels(&work, palette, opts.Preset)
	}

	layers := buildAllLayers(&work, indices, palette, workW, workH, opts)
	layers = applyFragmentDrop(layers, workW, workH, opts)
	layers = applyGlobalSmallLayerFilter(layers, opts)
	sortLayersByLuminance(layers)
	annotateGapFillerStroke(layers, opts)

	bg := RGB{255, 255, 255}
	if len(palette) > 0 {
		bg = brightest(palette)
	}

	var flatPaths []Path
	for _, l := range layers {
		flatPaths = append(flatPaths, l.Paths...)
	}

	return VectorResult{
		SVG:           renderSVG(img.Width, img.Height, workW, workH, bg, layers),
		Width:         img.Width,
		Height:        img.Height,
		ViewBoxWidth:  workW,
		ViewBoxHeight: workH,
		Layers:        layers,
		Paths:         flatPaths,
		Palette:       palette,
		Engine:        engineName,
	}, nil
}

func hasOpaquePixel(img *Image) bool {
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if img.opaque(x, y) {
				return true
			}
		}
	}
	return false
}

func brightest(palette []RGB) RGB {
	best := palette[0]
	for _, c := range palette[1:] {
		if c.luminanceSum() > best.luminanceSum() {
			best = c
		}
	}
	return best
}

// upscale implements §4.10 step 1: images smaller than 256 in their
// larger dimension are scaled up by ceil(256/max(W,H)), bilinear
// except nearest-neighbor for the pixel preset.
func upscale(img *Image, opts Options) (Image, int, int) {
	m := img.Width
	if img.Height > m {
		m = img.Height
	}
	if m >= 256 || m == 0 {
		return *img, img.Width, img.Height
	}
	factor := int(math.Ceil(256 / float64(m)))
	workW, workH := img.Width*factor, img.Height*factor

	src := toRGBAImage(img)
	interp := imageutil.InterpolationLinear
	if opts.Preset == "pixel" {
		interp = imageutil.InterpolationNearest
	}
	dst := imageutil.Resize(src, workW, workH, interp)
	return fromRGBAImage(dst), workW, workH
}

func toRGBAImage(img *Image) *imageutil.RGBAImage {
	ri := imageutil.NewRGBAImage(img.Width, img.Height)
	copy(ri.Pix, img.Data)
	return ri
}

func fromRGBAImage(ri *imageutil.RGBAImage) Image {
	data := make([]byte, len(ri.Pix))
	copy(data, ri.Pix)
	return Image{Width: ri.Width(), Height: ri.Height(), Data: data}
}

// otsuThresholdOf computes the Otsu grayscale threshold over the
// image's luminance for binary-mode palette construction (§4.10
// step 2).
func otsuThresholdOf(img *Image) float64 {
	gray := make([]byte, img.Width*img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := y*img.Width + x
			if img.opaque(x, y) {
				gray[p] = uint8(clampF(img.at(x, y).luminance(), 0, 255))
			} else {
				gray[p] = 255
			}
		}
	}
	t, _ := gocvutil.OtsuThreshold(gray, img.Width, img.Height)
	return t
}

// applyOtsuClassification reassigns binary-mode pixel indices using
// the Otsu threshold instead of nearest-palette-color distance: at or
// below threshold is foreground (index 0), as in OpenCV's binary
// threshold output; above is background (no index, encoded here as
// the sentinel 255, matching "not this layer").
func applyOtsuClassification(img *Image, indices []byte, threshold float64) {
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := y*img.Width + x
			if !img.opaque(x, y) {
				indices[p] = 255
				continue
			}
			if img.at(x, y).luminance() <= threshold {
				indices[p] = 0
			} else {
				indices[p] = 255
			}
		}
	}
}

// buildAllLayers runs the per-palette-index layer pipeline (build
// layer, trace, noise-floor filter, simplify/corner/smooth/fit) with
// bounded worker-pool parallelism, joining before returning in
// palette order (§5).
func buildAllLayers(img *Image, indices []byte, palette []RGB, workW, workH int, opts Options) []Layer {
	results := make([]Layer, len(palette))

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > 6 {
		numWorkers = 6
	}
	if numWorkers > len(palette) {
		numWorkers = len(palette)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	next := -1
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				mu.Lock()
				next++
				i := next
				mu.Unlock()
				if i >= len(palette) {
					return
				}
				results[i] = buildLayerForIndex(img, indices, palette, i, workW, workH, opts)
			}
		}()
	}
	wg.Wait()

	var out []Layer
	for _, l := range results {
		if len(l.Paths) > 0 {
			out = append(out, l)
		}
	}
	return out
}

func buildLayerForIndex(img *Image, indices []byte, palette []RGB, i, workW, workH int, opts Options) Layer {
	lb := buildLayer(img, indices, palette, i, opts)
	contours := traceLayer(lb, opts)

	noiseFloor := noiseFloorFor(opts.Preset, workW, workH)

	var paths []Path
	for _, rc := range contours {
		floor := noiseFloor
		if !rc.outer() {
			floor /= 2
		}
		if rc.absArea() < floor {
			continue
		}
		paths = append(paths, buildPathFromContour(rc, noiseFloor, opts, palette[i]))
	}
	return Layer{Color: palette[i], Paths: paths}
}

func noiseFloorFor(preset string, w, h int) float64 {
	area := float64(w * h)
	switch preset {
	case "pixel":
		return 1
	case "logo":
		return clampF(area*0.001, 25, 200)
	default:
		return clampF(area*0.0001, 4, 50)
	}
}

// buildPathFromContour implements the §4.9 "Contour size policy": tiny
// contours are emitted as straight polygons; the pixel preset always
// uses RDP+polygon with no smoothing or fitting; everything else runs
// the full simplify -> corner-detect -> smooth -> fit chain,
// upscaling small contours by 3x for numeric precision.
func buildPathFromContour(rc rawContour, noiseFloor float64, opts Options, color RGB) Path {
	points := rc.Points
	hole := !rc.outer()
	eps := opts.PathTolerance

	length := perimeterOf(points)
	small := rc.absArea() < 500 || length < 40

	var d string
	switch {
	case rc.absArea() < math.Max(30, 3*noiseFloor) || len(points) < 12:
		d = polygonD(points)
	case opts.Preset == "pixel":
		simplified := simplifyContour(points, 0.75, false)
		d = polygonD(simplified)
	default:
		workPoints := points
		scale := 1.0
		if small {
			scale = 3
			workPoints = scalePoints(points, scale)
		}
		simplified := simplifyContour(workPoints, eps, opts.Staircase)
		corners := detectCorners(simplified, opts.AggressiveCorners, minDistDefault)
		cornerPts := make([]Point, len(corners))
		open := simplified[:len(simplified)-1]
		for i, c := range corners {
			cornerPts[i] = open[c]
		}
		smoothed := smoothChaikin(simplified, clampI(opts.Smoothness, 0, 3), cornerPts)

		if opts.Mode == ModePolygon {
			d = polygonD(scalePoints(smoothed, 1/scale))
			break
		}

		perim := perimeterOf(smoothed)
		fitErr := math.Max(0.8, opts.PathTolerance) + math.Min(0.5, (perim-100)/500)
		// cornerPts survive smoothChaikin unchanged (isNearCorner keeps the
		// anchor point verbatim), so the corner set is re-indexed by
		// position in smoothed rather than reused from simplified: every
		// Chaikin pass doubles the point count, so the original indices no
		// longer point at the corners once any smoothing has run.
		segments := segmentByCorners(smoothed, locateCorners(smoothed, cornerPts))
		var curves []CubicBezier
		for _, seg := range segments {
			curves = append(curves, fitSegment(seg, fitErr, hole, opts)...)
		}
		if scale != 1 {
			curves = scaleCurves(curves, 1/scale)
		}
		d = splineD(curves)
	}

	fillRule := ""
	if hole {
		fillRule = "evenodd"
	}
	return Path{
		Points:   points,
		D:        d,
		Fill:     color,
		FillRule: fillRule,
		Hole:     hole,
	}
}

func perimeterOf(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += dist(points[i-1], points[i])
	}
	return total
}

func scalePoints(points []Point, s float64) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: p.X * s, Y: p.Y * s}
	}
	return out
}

func scaleCurves(curves []CubicBezier, s float64) []CubicBezier {
	out := make([]CubicBezier, len(curves))
	for i, c := range curves {
		out[i] = CubicBezier{
			P0: Point{X: c.P0.X * s, Y: c.P0.Y * s},
			C1: Point{X: c.C1.X * s, Y: c.C1.Y * s},
			C2: Point{X: c.C2.X * s, Y: c.C2.Y * s},
			P3: Point{X: c.P3.X * s, Y: c.P3.Y * s},
		}
	}
	return out
}

// locateCorners re-indexes a corner-point set against points, a
// polyline corners was originally detected on but that has since been
// smoothed (and therefore resampled to a different point count).
// smoothChaikin preserves corner points exactly, so each one is found
// by position rather than carrying stale indices forward.
func locateCorners(points []Point, corners []Point) []int {
	if len(corners) == 0 {
		return nil
	}
	open := points[:len(points)-1]
	idx := make([]int, 0, len(corners))
	for _, c := range corners {
		for i, p := range open {
			if p == c {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

// syntheticSplitIndices picks evenly spaced indices around an n-point
// open loop, used to divide a closed contour into several fittable
// arcs when no real corners were detected (§4.9 step 1): fitting a
// whole closed loop as one cubic, with P0 == P3, is a degenerate
// approximation regardless of how good the corner detector is.
func syntheticSplitIndices(n int) []int {
	count := 4
	if count > n {
		count = n
	}
	if count < 2 {
		return []int{0}
	}
	idx := make([]int, count)
	for i := range idx {
		idx[i] = i * n / count
	}
	return idx
}

// segmentByCorners splits a closed, smoothed polyline into open arcs
// between consecutive corner indices. When no corners were detected,
// it splits at evenly spaced synthetic points instead of returning the
// whole closed loop as a single segment (§4.9 step 1).
func segmentByCorners(points []Point, corners []int) [][]Point {
	open := points[:len(points)-1]
	n := len(open)
	if len(corners) == 0 {
		corners = syntheticSplitIndices(n)
	}
	if len(corners) < 2 {
		return [][]Point{points}
	}
	sorted := append([]int(nil), corners...)
	sort.Ints(sorted)

	var segments [][]Point
	for i, c := range sorted {
		next := sorted[(i+1)%len(sorted)]
		seg := []Point{open[c]}
		for j := (c + 1) % n; ; j = (j + 1) % n {
			seg = append(seg, open[j])
			if j == next {
				break
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

// applyFragmentDrop implements §4.10 step 6: for logo/lineart
// presets, drop an entire layer whose contour area is small, fine-
// grained, and numerous.
func applyFragmentDrop(layers []Layer, w, h int, opts Options) []Layer {
	if !opts.FragmentDrop {
		return layers
	}
	area := float64(w * h)
	var out []Layer
	for _, l := range layers {
		total, max := 0.0, 0.0
		for _, p := range l.Paths {
			a := math.Abs(shoelaceArea(p.Points))
			total += a
			if a > max {
				max = a
			}
		}
		if total < 0.005*area && max < 300 && len(l.Paths) > 10 {
			continue
		}
		out = append(out, l)
	}
	return out
}

// applyGlobalSmallLayerFilter implements §4.10 step 7.
func applyGlobalSmallLayerFilter(layers []Layer, opts Options) []Layer {
	if opts.Preset == "pixel" {
		return layers
	}
	maxBBox := 0.0
	for _, l := range layers {
		for _, p := range l.Paths {
			if a := boundingBoxArea(p.Points); a > maxBBox {
				maxBBox = a
			}
		}
	}
	floor := clampF(maxBBox/500, 4, 100)

	var out []Layer
	for _, l := range layers {
		total := 0.0
		for _, p := range l.Paths {
			total += boundingBoxArea(p.Points)
		}
		if total < floor {
			continue
		}
		out = append(out, l)
	}
	return out
}

// boundingBoxArea is the §9-documented coarse area estimate the
// global small-layer filter uses: bounding-box area of a path's point
// set, not its true polygon area.
func boundingBoxArea(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return (maxX - minX) * (maxY - minY)
}

func sortLayersByLuminance(layers []Layer) {
	sort.Slice(layers, func(i, j int) bool {
		return layers[i].Color.luminanceSum() < layers[j].Color.luminanceSum()
	})
}

// annotateGapFillerStroke marks every path with a same-color 1-unit
// stroke (except for the pixel preset), closing the 1-pixel gaps
// between adjacent bands that the noise floor and simplification
// otherwise leave (§4.10 step 8).
func annotateGapFillerStroke(layers []Layer, opts Options) {
	if opts.Preset == "pixel" {
		return
	}
	for li := range layers {
		for pi := range layers[li].Paths {
			layers[li].Paths[pi].Stroke = true
			layers[li].Paths[pi].StrokeRGB = layers[li].Color
		}
	}
}
