package vtrace

import (
	"math"

	"github.com/kestrelvec/vtrace/internal/gocvutil"
)

// layerBitmaps holds the buffers built for one palette index: the
// binary foreground mask B and the continuous alpha field G the
// contour tracer interpolates against (§4.4).
type layerBitmaps struct {
	width, height int
	binary        []byte // 0 or 255
	alpha         []byte // 0-255
}

// buildLayer implements §4.4 steps 1-7 for a single palette index i.
// palette distances for the alpha field are computed against every
// other palette color; the closest "other" wins per pixel.
func buildLayer(img *Image, indices []byte, palette []RGB, i int, opts Options) layerBitmaps {
	w, h := img.Width, img.Height
	binary := make([]byte, w*h)
	for p := 0; p < w*h; p++ {
		if int(indices[p]) == i {
			binary[p] = 255
		}
	}

	var alpha []byte
	binaryMode := opts.BinaryMode || len(palette) <= 2 || opts.Preset == "lineart"
	if binaryMode {
		alpha = binaryModeAlpha(img, opts)
	} else {
		alpha = alphaField(img, indices, palette, i, w, h)
		if opts.BlurSigma > 0 {
			sigma := opts.BlurSigma
			if sigma > 1 {
				sigma = 1
			}
			alpha = gocvutil.GaussianBlurGray(alpha, w, h, sigma)
		}
	}

	maxComponent := largestComponentSize(binary, w, h)
	minSize := maxComponent / 20 // minRatio: an implementation-chosen constant, see DESIGN.md
	if minSize < 4 {
		minSize = 4
	}
	binary = gocvutil.RemoveSmallComponents(binary, w, h, minSize)

	if opts.Morphology {
		binary = gocvutil.MorphClose(binary, w, h)
	}

	for d := 0; d < opts.DilatePixels; d++ {
		binary = dilateConstrained(binary, indices, w, h)
	}

	return layerBitmaps{width: w, height: h, binary: binary, alpha: alpha}
}

// binaryModeAlpha derives the grayscale alpha field from luminance
// after an optional Gaussian blur, auto-inverting when more than 40%
// of opaque pixels fall below the midpoint threshold (§4.4 step 2).
func binaryModeAlpha(img *Image, opts Options) []byte {
	w, h := img.Width, img.Height
	gray := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*w + x
			if !img.opaque(x, y) {
				gray[p] = 255
				continue
			}
			gray[p] = uint8(clampF(img.at(x, y).luminance(), 0, 255))
		}
	}
	if opts.BlurSigma > 0 {
		gray = gocvutil.GaussianBlurGray(gray, w, h, opts.BlurSigma)
	}

	below, total := 0, 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !img.opaque(x, y) {
				continue
			}
			total++
			if gray[y*w+x] < 128 {
				below++
			}
		}
	}
	if total > 0 && float64(below)/float64(total) > 0.4 {
		for p := range gray {
			gray[p] = 255 - gray[p]
		}
	}
	return gray
}

// alphaField computes G[p] = 255*(3t^2-2t^3) where
// t = sqrt(d_i / (d_i + d_other)), d_i the squared distance from the
// pixel's actual color to palette[i] and d_other the squared distance
// to the nearest differing palette entry (§4.4 step 3).
func alphaField(img *Image, indices []byte, palette []RGB, i int, w, h int) []byte {
	out := make([]byte, w*h)
	target := palette[i]
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*w + x
			if !img.opaque(x, y) {
				out[p] = 0
				continue
			}
			c := img.at(x, y)
			di := c.sqDistance(target)
			dOther := nearestOtherSqDist(c, palette, i)
			denom := di + dOther
			t := 0.5
			if denom > 0 {
				t = clampF(math.Sqrt(di/denom), 0, 1)
			}
			out[p] = uint8(clampF(255*smoothstep(t), 0, 255))
		}
	}
	return out
}

func nearestOtherSqDist(c RGB, palette []RGB, exclude int) float64 {
	best := -1.0
	for j, pc := range palette {
		if j == exclude {
			continue
		}
		d := c.sqDistance(pc)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// largestComponentSize finds the pixel count of the biggest
// 8-connected foreground component, the "max_component" term in the
// small-component removal formula (§4.4 step 5).
func largestComponentSize(binary []byte, w, h int) int {
	visited := make([]bool, w*h)
	best := 0
	stack := make([]int, 0, 64)

	for start := 0; start < w*h; start++ {
		if binary[start] == 0 || visited[start] {
			continue
		}
		visited[start] = true
		stack = append(stack[:0], start)
		count := 0
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			count++
			x, y := p%w, p/w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					np := ny*w + nx
					if binary[np] != 0 && !visited[np] {
						visited[np] = true
						stack = append(stack, np)
					}
				}
			}
		}
		if count > best {
			best = count
		}
	}
	return best
}

// dilateConstrained grows the binary mask by one pixel into
// 4-neighbors, but only into pixels that the pixel-color map assigned
// to some palette index; pixels holding the 255 "unassigned" sentinel
// are never grown into (§4.4 step 7).
func dilateConstrained(binary []byte, indices []byte, w, h int) []byte {
	out := make([]byte, len(binary))
	copy(out, binary)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*w + x
			if binary[p] != 0 {
				continue
			}
			if indices[p] == 255 {
				continue
			}
			grow := false
			if x > 0 && binary[p-1] != 0 {
				grow = true
			}
			if x < w-1 && binary[p+1] != 0 {
				grow = true
			}
			if y > 0 && binary[p-w] != 0 {
				grow = true
			}
			if y < h-1 && binary[p+w] != 0 {
				grow = true
			}
			if grow {
				out[p] = 255
			}
		}
	}
	return out
}
