package vtrace

// newSolidImage builds an opaque w x h image filled with one color,
// used across tests as a minimal non-degenerate fixture.
func newSolidImage(w, h int, c RGB) Image {
	data := make([]byte, 4*w*h)
	for i := 0; i < w*h; i++ {
		data[4*i] = c.R
		data[4*i+1] = c.G
		data[4*i+2] = c.B
		data[4*i+3] = 255
	}
	return Image{Width: w, Height: h, Data: data}
}

// newTransparentImage builds a fully transparent w x h image.
func newTransparentImage(w, h int) Image {
	return Image{Width: w, Height: h, Data: make([]byte, 4*w*h)}
}

// setPixel writes an opaque color at (x,y) in img.
func setPixel(img *Image, x, y int, c RGB) {
	i := (y*img.Width + x) * 4
	img.Data[i] = c.R
	img.Data[i+1] = c.G
	img.Data[i+2] = c.B
	img.Data[i+3] = 255
}
