// Command vtrace converts a raster image into an SVG file using the
// vtrace engine.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kestrelvec/vtrace"
	"github.com/kestrelvec/vtrace/imageutil"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	outputFile := flag.String("output", "",
		"Path to save the output SVG (if not specified, prints to stdout)")
	preset := flag.String("preset", "",
		"Preset bundle: lineart, logo, illustration, photo, pixel, simple (empty: auto-detect)")
	numColors := flag.Int("colors", 0,
		"Target palette size, 1-64 (0: use preset/auto default)")
	pathTolerance := flag.Float64("tolerance", 0,
		"Path simplification tolerance (0: use preset/auto default)")
	smoothness := flag.Int("smoothness", -1,
		"Chaikin smoothing iterations, 0-3 (-1: use preset/auto default)")
	mode := flag.String("mode", "",
		"Path mode: spline or polygon (empty: use preset/auto default)")
	binary := flag.Bool("binary", false,
		"Force binary (2-color) mode")
	verbose := flag.Bool("verbose", false,
		"Log diagnostic messages from recovered fitter/numeric fallbacks")
	flag.Parse()

	if *inputFile == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	start := time.Now()
	src, err := imageutil.LoadImage(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load image: %v\n", err)
		os.Exit(1)
	}
	img := vtrace.Image{Width: src.Width(), Height: src.Height(), Data: append([]byte(nil), src.Pix...)}

	opts, err := resolveOptions(img, *preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *numColors > 0 {
		opts.NumColors = *numColors
	}
	if *pathTolerance > 0 {
		opts.PathTolerance = *pathTolerance
	}
	if *smoothness >= 0 {
		opts.Smoothness = *smoothness
	}
	if *mode != "" {
		opts.Mode = vtrace.Mode(*mode)
	}
	if *binary {
		opts.BinaryMode = true
	}
	if *verbose {
		opts.Logger = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "vtrace: "+format+"\n", args...)
		}
	}

	result, err := vtrace.Vectorize(img, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vectorize: %v\n", err)
		os.Exit(1)
	}

	if *outputFile == "" {
		fmt.Println(result.SVG)
	} else {
		if err := os.WriteFile(*outputFile, []byte(result.SVG), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stderr, "vtrace: %d layers, %d paths, %s elapsed\n",
		len(result.Layers), len(result.Paths), time.Since(start).Round(time.Millisecond))
}

// resolveOptions loads the named preset, or recommends one via the
// Image Analyzer when the caller didn't specify one.
func resolveOptions(img vtrace.Image, preset string) (vtrace.Options, error) {
	if preset != "" {
		return vtrace.LoadPreset(strings.ToLower(preset))
	}
	analysis := vtrace.AnalyzeImage(img)
	if analysis.Preset == "photo" {
		// Auto-detection never selects photo; only -preset photo does.
		analysis.Preset = "illustration"
	}
	opts, err := vtrace.LoadPreset(analysis.Preset)
	if err != nil {
		return vtrace.Options{}, err
	}
	opts.NumColors = analysis.K
	return opts, nil
}
