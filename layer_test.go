package vtrace

import "testing"

func TestLargestComponentSizeFindsBiggestBlob(t *testing.T) {
	// 5x1 row: two isolated pixels and one 3-pixel run.
	w, h := 5, 1
	binary := []byte{255, 0, 255, 255, 255}
	if got := largestComponentSize(binary, w, h); got != 3 {
		t.Errorf("largestComponentSize() = %d, want 3", got)
	}
}

func TestLargestComponentSizeEmptyIsZero(t *testing.T) {
	binary := make([]byte, 16)
	if got := largestComponentSize(binary, 4, 4); got != 0 {
		t.Errorf("largestComponentSize(empty) = %d, want 0", got)
	}
}

func TestDilateConstrainedGrowsOnlyIntoAssigned(t *testing.T) {
	w, h := 3, 1
	binary := []byte{0, 255, 0}
	indices := []byte{255, 0, 1} // left unassigned, right belongs to another layer

	out := dilateConstrained(binary, indices, w, h)
	if out[2] != 255 {
		t.Errorf("dilateConstrained() did not grow into an assigned neighbor: %v", out)
	}
	if out[0] != 0 {
		t.Errorf("dilateConstrained() grew into an unassigned pixel: %v", out)
	}
}

func TestNearestOtherSqDistExcludesSelf(t *testing.T) {
	palette := []RGB{{0, 0, 0}, {10, 10, 10}, {255, 255, 255}}
	got := nearestOtherSqDist(RGB{0, 0, 0}, palette, 0)
	want := palette[1].sqDistance(RGB{0, 0, 0})
	if got != want {
		t.Errorf("nearestOtherSqDist() = %v, want %v", got, want)
	}
}

func TestAlphaFieldZeroAtTransparentPixels(t *testing.T) {
	img := newTransparentImage(2, 2)
	setPixel(&img, 0, 0, RGB{0, 0, 0})
	palette := []RGB{{0, 0, 0}, {255, 255, 255}}
	indices := []byte{0, 255, 255, 255}

	alpha := alphaField(&img, indices, palette, 0, 2, 2)
	if alpha[1] != 0 || alpha[2] != 0 || alpha[3] != 0 {
		t.Errorf("alphaField() nonzero at transparent pixels: %v", alpha)
	}
}

func TestAlphaFieldStrongestAtExactMatch(t *testing.T) {
	img := newSolidImage(1, 1, RGB{0, 0, 0})
	palette := []RGB{{0, 0, 0}, {255, 255, 255}}
	alpha := alphaField(&img, []byte{0}, palette, 0, 1, 1)
	if alpha[0] != 0 {
		t.Errorf("alphaField() at exact match = %d, want 0", alpha[0])
	}
}

func TestBinaryModeAlphaAutoInvertsMostlyDarkImage(t *testing.T) {
	img := newSolidImage(4, 4, RGB{R: 10, G: 10, B: 10})
	out := binaryModeAlpha(&img, Options{})
	if out[0] < 128 {
		t.Errorf("binaryModeAlpha() on mostly-dark image = %d, want auto-inverted (>=128)", out[0])
	}
}

func TestBuildLayerBinaryModeForSmallPalette(t *testing.T) {
	img := newSolidImage(4, 4, RGB{0, 0, 0})
	indices := make([]byte, 16)
	palette := []RGB{{0, 0, 0}, {255, 255, 255}}
	lb := buildLayer(&img, indices, palette, 0, Options{})
	if lb.width != 4 || lb.height != 4 {
		t.Fatalf("buildLayer() dims = %dx%d, want 4x4", lb.width, lb.height)
	}
	for _, v := range lb.binary {
		if v != 255 {
			t.Errorf("buildLayer() binary mask not fully set for a uniform layer: %v", lb.binary)
			break
		}
	}
}
