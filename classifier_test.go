package vtrace

import "testing"

func TestClassifyPixelsAssignsNearestPalette(t *testing.T) {
	img := newTransparentImage(2, 2)
	setPixel(&img, 0, 0, RGB{0, 0, 0})
	setPixel(&img, 1, 0, RGB{250, 250, 250})
	setPixel(&img, 0, 1, RGB{10, 10, 10})
	// (1,1) left transparent

	palette := []RGB{{0, 0, 0}, {255, 255, 255}}
	// The pixel preset skips the denoise pass, which would otherwise
	// replace the isolated white pixel with black.
	indices := classifyPixels(&img, palette, "pixel")

	if indices[0] != 0 {
		t.Errorf("indices[0] = %d, want 0 (black)", indices[0])
	}
	if indices[1] != 1 {
		t.Errorf("indices[1] = %d, want 1 (white)", indices[1])
	}
	if indices[3] != 255 {
		t.Errorf("indices[3] (transparent) = %d, want 255", indices[3])
	}
}

func TestClassifyPixelsCheckerboardPixelPresetPreservesPattern(t *testing.T) {
	img := newTransparentImage(2, 2)
	setPixel(&img, 0, 0, RGB{0, 0, 0})
	setPixel(&img, 1, 0, RGB{255, 255, 255})
	setPixel(&img, 0, 1, RGB{255, 255, 255})
	setPixel(&img, 1, 1, RGB{0, 0, 0})

	palette := []RGB{{0, 0, 0}, {255, 255, 255}}
	indices := classifyPixels(&img, palette, "pixel")

	want := []byte{0, 1, 1, 0}
	for i := range want {
		if indices[i] != want[i] {
			t.Errorf("pixel preset indices[%d] = %d, want %d (checkerboard preserved)", i, indices[i], want[i])
		}
	}
}

func TestDenoiseReplacesIsolatedPixel(t *testing.T) {
	// 3x3 grid, all color 1 except the center which is an isolated color 0.
	w, h := 3, 3
	indices := make([]byte, w*h)
	for i := range indices {
		indices[i] = 1
	}
	indices[w+1] = 0 // center

	out := denoise(indices, w, h, 1)
	if out[w+1] != 1 {
		t.Errorf("denoise() center = %d, want 1 (isolated pixel replaced)", out[w+1])
	}
}

func TestDenoiseNeverTouchesTransparency(t *testing.T) {
	w, h := 3, 3
	indices := make([]byte, w*h)
	for i := range indices {
		indices[i] = 255
	}
	indices[w+1] = 0

	out := denoise(indices, w, h, 2)
	if out[w+1] != 0 {
		t.Errorf("denoise() overwrote an opaque pixel surrounded by transparency: got %d", out[w+1])
	}
	for i, v := range out {
		if i != w+1 && v != 255 {
			t.Errorf("denoise() wrote into transparent pixel %d: got %d", i, v)
		}
	}
}
