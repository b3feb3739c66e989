package vtrace

import "errors"

// Error taxonomy (§7). Only class 1 ever crosses the public boundary
// as a non-nil error; classes 2-4 are recovered internally (see
// Options.Logger for diagnostics) and never change output shape.
var (
	// ErrInvalidImage marks class 1: bad image buffer (zero
	// dimensions, mismatched data length).
	ErrInvalidImage = errors.New("vtrace: invalid image")

	// ErrUnknownPreset marks class 1: an unrecognized preset tag.
	ErrUnknownPreset = errors.New("vtrace: unknown preset")

	// errFitTooFewPoints marks class 3 (numeric degeneracy): a segment
	// handed to the built-in fitter has fewer than two points. Never
	// returned across the public boundary; fitSegment recovers with
	// the Catmull-Rom fallback.
	errFitTooFewPoints = errors.New("vtrace: segment has too few points to fit")
)
