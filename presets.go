package vtrace

import (
	"embed"
	"encoding/json"
	"fmt"
)

// Preset bundles are stored as embedded JSON, mirroring the teacher
// repository's go:embed colordata pattern in palette.go.
//
//go:embed presets/lineart.json
//go:embed presets/logo.json
//go:embed presets/illustration.json
//go:embed presets/photo.json
//go:embed presets/pixel.json
//go:embed presets/simple.json
var presetFS embed.FS

var presetNames = []string{"lineart", "logo", "illustration", "photo", "pixel", "simple"}

// presetOptions mirrors Options' JSON-tagged subset for decoding.
type presetOptions struct {
	NumColors         int     `json:"numColors"`
	ColorTolerance    float64 `json:"colorTolerance"`
	PathTolerance     float64 `json:"pathTolerance"`
	Smoothness        int     `json:"smoothness"`
	MinPathLength     int     `json:"minPathLength"`
	Mode              string  `json:"mode"`
	BinaryMode        bool    `json:"binaryMode"`
	BlurSigma         float64 `json:"blurSigma"`
	Morphology        bool    `json:"morphology"`
	ContourMethod     string  `json:"contourMethod"`
	AggressiveCorners bool    `json:"aggressiveCorners"`
	Staircase         bool    `json:"staircase"`
	DilatePixels      int     `json:"dilatePixels"`
	FragmentDrop      bool    `json:"fragmentDrop"`
}

// LoadPreset reads a named preset bundle (lineart, logo, illustration,
// photo, pixel, simple) and returns it as Options. Unknown names are a
// class-1 (invalid input) error.
func LoadPreset(name string) (Options, error) {
	data, err := presetFS.ReadFile(fmt.Sprintf("presets/%s.json", name))
	if err != nil {
		return Options{}, fmt.Errorf("vtrace: preset %q: %w", name, ErrUnknownPreset)
	}
	var p presetOptions
	if jsonErr := json.Unmarshal(data, &p); jsonErr != nil {
		return Options{}, fmt.Errorf("vtrace: preset %q is malformed: %w", name, jsonErr)
	}
	opts := Options{
		NumColors:         p.NumColors,
		ColorTolerance:    p.ColorTolerance,
		PathTolerance:     p.PathTolerance,
		Smoothness:        p.Smoothness,
		MinPathLength:     p.MinPathLength,
		Mode:              Mode(p.Mode),
		BinaryMode:        p.BinaryMode,
		BlurSigma:         p.BlurSigma,
		Morphology:        p.Morphology,
		ContourMethod:     ContourMethod(p.ContourMethod),
		Preset:            name,
		AggressiveCorners: p.AggressiveCorners,
		Staircase:         p.Staircase,
		DilatePixels:      p.DilatePixels,
		FragmentDrop:      p.FragmentDrop,
	}
	normalizeOptions(&opts)
	return opts, nil
}

// PresetNames returns the known preset tags, in the order listed in
// the reference preset table.
func PresetNames() []string {
	out := make([]string, len(presetNames))
	copy(out, presetNames)
	return out
}
