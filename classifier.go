package vtrace

// classifyPixels implements §4.3: nearest-palette assignment (255 for
// non-opaque pixels) followed by a 3x3 mode-filter denoise pass,
// skipped entirely when preset is "pixel" (every pixel must be taken
// literally there).
func classifyPixels(img *Image, palette []RGB, preset string) []byte {
	tree := newKDTree(palette)
	n := img.Width * img.Height
	out := make([]byte, n)

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			idx := y*img.Width + x
			if !img.opaque(x, y) {
				out[idx] = 255
				continue
			}
			nearest := tree.nearest(img.at(x, y))
			out[idx] = byte(nearest)
		}
	}

	if preset == "pixel" {
		return out
	}
	return denoise(out, img.Width, img.Height, 2)
}

// denoise runs `passes` double-buffered 3x3 mode-filter sweeps over a
// per-pixel color-index map. A non-transparent pixel is replaced by
// its neighborhood's mode when it is isolated (its own color appears
// only once in the 3x3 window) or when some other color appears at
// least 5 times in the window. Transparency (255) is never touched
// or counted.
func denoise(indices []byte, w, h, passes int) []byte {
	cur := indices
	for p := 0; p < passes; p++ {
		next := make([]byte, len(cur))
		copy(next, cur)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if cur[i] == 255 {
					continue
				}
				counts := make(map[byte]int)
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := x+dx, y+dy
						if nx < 0 || nx >= w || ny < 0 || ny >= h {
							continue
						}
						v := cur[ny*w+nx]
						if v == 255 {
							continue
						}
						counts[v]++
					}
				}
				self := counts[cur[i]]
				bestColor, bestCount := cur[i], self
				for c, n := range counts {
					if n > bestCount || (n == bestCount && c < bestColor) {
						bestColor, bestCount = c, n
					}
				}
				if self == 1 || (bestColor != cur[i] && bestCount >= 5) {
					next[i] = bestColor
				}
			}
		}
		cur = next
	}
	return cur
}
