// Package vtrace converts raster images into layered vector (SVG-style)
// path data: palette construction, per-pixel classification, per-color
// binary/alpha layers, sub-pixel contour tracing, simplification,
// corner-preserving smoothing, and cubic-Bézier fitting.
package vtrace

import (
	"fmt"
)

// Point is the single 2D point type used across every stage of the
// pipeline (tracer output, simplification, corner indices, smoothing,
// fitting). See SPEC_FULL.md's Data Model expansion: no {x,y}-object
// or [x,y]-pair duck-typing anywhere in this package.
type Point struct {
	X, Y float64
}

// Image is a rectangle of width x height with 4 channels (R,G,B,A) per
// pixel, 8-bit unsigned, row-major, top-left origin.
type Image struct {
	Width, Height int
	// Data is RGBA, row-major, top-left origin: len(Data) == 4*Width*Height.
	Data []byte
}

// opaque reports whether the pixel at (x,y) has alpha >= 128.
func (img *Image) opaque(x, y int) bool {
	return img.Data[(y*img.Width+x)*4+3] >= 128
}

func (img *Image) at(x, y int) RGB {
	i := (y*img.Width + x) * 4
	return RGB{R: img.Data[i], G: img.Data[i+1], B: img.Data[i+2]}
}

func (img *Image) alphaAt(x, y int) uint8 {
	return img.Data[(y*img.Width+x)*4+3]
}

// Mode selects how a contour is turned into a Path: fit cubic Béziers
// ("spline") or emit a straight-line polygon ("polygon").
type Mode string

const (
	ModeSpline  Mode = "spline"
	ModePolygon Mode = "polygon"
)

// ContourMethod selects the contour tracer.
type ContourMethod string

const (
	ContourMarching ContourMethod = "marching"
	ContourVTracer  ContourMethod = "vtracer"
	ContourHybrid   ContourMethod = "hybrid"
)

// Options controls every tunable stage of the pipeline. Vectorize fills
// zero-valued fields with defaults (see normalizeOptions), so a zero
// Options is usable; LoadPreset returns a complete preset bundle whose
// individual fields can then be overridden.
type Options struct {
	NumColors      int
	ColorTolerance float64
	PathTolerance  float64
	Smoothness     int
	MinPathLength  int
	Mode           Mode
	BinaryMode     bool
	BlurSigma      float64
	Morphology     bool
	ContourMethod  ContourMethod
	Preset         string

	// AggressiveCorners widens the corner-detector's angle threshold
	// from 130 to 140 degrees (§4.7).
	AggressiveCorners bool
	// Staircase enables the simplifier's staircase-removal pass (§4.6)
	// and is implied by the lineart/logo presets.
	Staircase bool
	// DilatePixels is the color-constrained dilation iteration count
	// (§4.4 step 7). Every shipped preset leaves this at 0 — per §9's
	// open question it is exposed here rather than hidden.
	DilatePixels int
	// FragmentDrop enables the fragmented-layer drop (§4.10 step 6),
	// implied by the lineart/logo presets.
	FragmentDrop bool

	// Fitter overrides the cubic-Bézier fitter (§4.9, §9 "runtime
	// library loading"). Nil uses the built-in least-squares fitter.
	Fitter Fitter

	// Logger receives diagnostic messages for recovered numeric
	// degeneracies and fitter fallbacks (§7 class 3/4). Nil disables
	// diagnostics; output is never affected either way.
	Logger func(format string, args ...any)
}

// Path is a single rendered vector path.
type Path struct {
	// Points is the structured point list the "d" string is rendered
	// from; area/bbox computations use this, never the string (§9).
	Points    []Point
	D         string
	Fill      RGB
	FillRule  string // "evenodd" for holes; empty omits the attribute (SVG default nonzero)
	Stroke    bool
	StrokeRGB RGB
	Hole      bool
}

// Layer is one palette color plus the paths rendered for it.
type Layer struct {
	Color RGB
	Paths []Path
}

// VectorResult is the return value of Vectorize / VectorizeWithPreset.
type VectorResult struct {
	SVG                       string
	Width, Height             int // source dimensions
	ViewBoxWidth, ViewBoxHeight int // working dimensions
	Layers                    []Layer // dark -> bright
	Paths                     []Path  // flattened, dark -> bright
	Palette                   []RGB
	Engine                    string
}

const engineName = "vtrace-marching"

func (o *Options) logf(format string, args ...any) {
	if o != nil && o.Logger != nil {
		o.Logger(format, args...)
	}
}

// Vectorize runs the full pipeline against img with the given options.
func Vectorize(img Image, opts Options) (VectorResult, error) {
	if err := validateImage(img); err != nil {
		return VectorResult{}, err
	}
	normalizeOptions(&opts)
	return runPipeline(img, opts)
}

// VectorizeWithPreset looks up a named preset bundle and runs the
// pipeline with it unmodified.
func VectorizeWithPreset(img Image, presetTag string) (VectorResult, error) {
	opts, err := LoadPreset(presetTag)
	if err != nil {
		return VectorResult{}, err
	}
	return Vectorize(img, opts)
}

func validateImage(img Image) error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("vtrace: invalid image dimensions %dx%d: %w", img.Width, img.Height, ErrInvalidImage)
	}
	want := 4 * img.Width * img.Height
	if len(img.Data) != want {
		return fmt.Errorf("vtrace: buffer length %d, want %d: %w", len(img.Data), want, ErrInvalidImage)
	}
	return nil
}

// normalizeOptions fills in spec defaults for zero-valued fields so
// that a caller-constructed Options{NumColors: 8} behaves sensibly.
func normalizeOptions(o *Options) {
	if o.NumColors <= 0 {
		o.NumColors = 16
	}
	if o.NumColors > 64 {
		o.NumColors = 64
	}
	if o.ColorTolerance <= 0 {
		o.ColorTolerance = 25
	}
	if o.PathTolerance <= 0 {
		o.PathTolerance = 1.0
	}
	if o.Smoothness < 0 {
		o.Smoothness = 0
	}
	if o.Smoothness > 3 {
		o.Smoothness = 3
	}
	if o.Mode == "" {
		o.Mode = ModeSpline
	}
	if o.ContourMethod == "" {
		o.ContourMethod = ContourMarching
	}
}
