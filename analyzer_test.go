package vtrace

import "testing"

func TestAnalyzeImageSolidColorIsLineart(t *testing.T) {
	img := newSolidImage(32, 32, RGB{R: 20, G: 20, B: 20})
	got := AnalyzeImage(img)
	if got.Preset != "lineart" {
		t.Errorf("AnalyzeImage(solid) = %q, want lineart", got.Preset)
	}
}

func TestAnalyzeImageManyDistinctColorsIsPhotoOrIllustration(t *testing.T) {
	img := newTransparentImage(128, 128)
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			setPixel(&img, x, y, RGB{R: uint8(x * 2), G: uint8(y * 2), B: uint8((x + y) % 256)})
		}
	}
	got := AnalyzeImage(img)
	if got.Preset != "photo" && got.Preset != "illustration" {
		t.Errorf("AnalyzeImage(gradient) = %q, want photo or illustration", got.Preset)
	}
}

func TestSuggestKClampsToPresetRange(t *testing.T) {
	if k := suggestK("lineart", 100); k != 4 {
		t.Errorf("suggestK(lineart, 100) = %d, want 4", k)
	}
	if k := suggestK("photo", 1); k != 32 {
		t.Errorf("suggestK(photo, 1) = %d, want 32", k)
	}
}

func TestGreedyClusterMergesNearbyColors(t *testing.T) {
	bins := []histBin{
		{color: RGB{100, 100, 100}, count: 10},
		{color: RGB{102, 101, 99}, count: 9},
		{color: RGB{250, 10, 10}, count: 8},
	}
	clusters := greedyCluster(bins, 25)
	if len(clusters) != 2 {
		t.Errorf("greedyCluster() produced %d clusters, want 2", len(clusters))
	}
}
