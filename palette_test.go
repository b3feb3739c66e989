package vtrace

import "testing"

func TestBuildPaletteEmptyImageReturnsGray(t *testing.T) {
	img := newTransparentImage(8, 8)
	palette := buildPalette(&img, 8, Options{})
	if len(palette) != 1 || palette[0] != (RGB{128, 128, 128}) {
		t.Errorf("buildPalette(empty) = %v, want [{128 128 128}]", palette)
	}
}

func TestBuildPaletteSingleColorCollapses(t *testing.T) {
	img := newSolidImage(16, 16, RGB{R: 10, G: 20, B: 30})
	palette := buildPalette(&img, 8, Options{})
	if len(palette) != 1 {
		t.Fatalf("buildPalette(solid) has %d entries, want 1", len(palette))
	}
}

func TestBuildPaletteNearWhiteCollapsesToWhite(t *testing.T) {
	img := newSolidImage(8, 8, RGB{R: 245, G: 248, B: 250})
	palette := buildPalette(&img, 4, Options{})
	if len(palette) != 1 || palette[0] != (RGB{255, 255, 255}) {
		t.Errorf("buildPalette(near-white) = %v, want [{255 255 255}]", palette)
	}
}

func TestBuildPalettePairwiseSeparation(t *testing.T) {
	img := newTransparentImage(32, 32)
	colors := []RGB{{0, 0, 0}, {255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {255, 255, 0}}
	idx := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			setPixel(&img, x, y, colors[idx%len(colors)])
			idx++
		}
	}

	palette := buildPalette(&img, 8, Options{Preset: "illustration"})
	t2 := mergeThresholdSq("illustration")
	for i := 0; i < len(palette); i++ {
		for j := i + 1; j < len(palette); j++ {
			if palette[i].sqDistance(palette[j]) < t2 {
				t.Errorf("palette entries %v and %v are closer than the merge threshold", palette[i], palette[j])
			}
		}
	}
}

func TestBuildPaletteSortedAscendingLuminance(t *testing.T) {
	img := newTransparentImage(16, 16)
	colors := []RGB{{10, 10, 10}, {250, 250, 250}, {120, 120, 120}}
	idx := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			setPixel(&img, x, y, colors[idx%len(colors)])
			idx++
		}
	}
	palette := buildPalette(&img, 8, Options{})
	for i := 1; i < len(palette); i++ {
		if palette[i].luminanceSum() < palette[i-1].luminanceSum() {
			t.Errorf("palette not sorted ascending by luminance: %v", palette)
		}
	}
}

func TestKMeansPlusPlusFewerSamplesThanK(t *testing.T) {
	samples := []weightedColor{
		{color: RGB{0, 0, 0}, weight: 5},
		{color: RGB{255, 255, 255}, weight: 5},
	}
	centers := kmeansPlusPlus(samples, 10)
	if len(centers) != 2 {
		t.Errorf("kmeansPlusPlus with K>samples returned %d centers, want 2", len(centers))
	}
}
