package vtrace

import (
	"math"
	"math/rand"
	"sort"
)

// weightedColor is a sample color paired with the number of sampled
// pixels that quantized to it. The palette builder works over these
// rather than raw pixels from the moment sampling finishes.
type weightedColor struct {
	color  RGB
	weight int
}

// paletteCluster is a K-Means++ center (or, after merging, a merged
// group of centers) carrying the running weight needed for a
// weight-weighted mean recomputation.
type paletteCluster struct {
	color  RGB
	weight int
}

// buildPalette implements §4.1: sampling, K-Means++ seeding and
// iteration, post-merge, and the K<=16 edge-color filter. It never
// returns an empty slice: degenerate input (no opaque pixels) yields
// a single mid-gray entry per §4.1 "Errors".
func buildPalette(img *Image, targetK int, opts Options) []RGB {
	samples := sampleColors(img)
	if len(samples) == 0 {
		return []RGB{{128, 128, 128}}
	}

	centers := kmeansPlusPlus(samples, targetK)
	centers = lloydIterate(samples, centers)

	clusters := make([]paletteCluster, len(centers))
	for i, c := range centers {
		clusters[i] = paletteCluster{color: c.color, weight: c.weight}
	}
	clusters = postMergeClusters(clusters, opts)

	if len(clusters) <= 16 {
		clusters = edgeColorFilter(clusters)
	}

	clusters = postMergeClusters(clusters, opts) // edge removal cannot violate separation, but keep invariant explicit

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].color.luminanceSum() < clusters[j].color.luminanceSum()
	})
	snapBrightestToWhite(clusters)

	out := make([]RGB, len(clusters))
	for i, c := range clusters {
		out[i] = c.color
	}
	if len(out) == 0 {
		return []RGB{{128, 128, 128}}
	}
	return out
}

// sampleColors iterates opaque pixels at stride ceil(N/500000),
// quantizes each to 7-bit (step 2) precision, and returns the
// resulting frequency table as a deterministically-ordered slice
// (sorted by descending weight, then by color for ties).
func sampleColors(img *Image) []weightedColor {
	n := img.Width * img.Height
	stride := (n + 499999) / 500000
	if stride < 1 {
		stride = 1
	}

	freq := make(map[uint32]int)
	for i := 0; i < n; i += stride {
		x, y := i%img.Width, i/img.Width
		if !img.opaque(x, y) {
			continue
		}
		q := img.at(x, y).quantize(2)
		freq[q.toUint32()]++
	}

	out := make([]weightedColor, 0, len(freq))
	for k, w := range freq {
		out = append(out, weightedColor{color: rgbFromUint32(k), weight: w})
	}
	sortWeightedColors(out)
	return out
}

func sortWeightedColors(cs []weightedColor) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].weight != cs[j].weight {
			return cs[i].weight > cs[j].weight
		}
		return cs[i].color.toUint32() < cs[j].color.toUint32()
	})
}

// kmeansPlusPlus seeds up to k centers from weighted samples: the
// heaviest sample seeds first, subsequent seeds are drawn by roulette
// over D²·weight (squared distance to the nearest existing seed times
// sample weight). Per §9, the "always true" degenerate guard in the
// original is modeled here as an explicit farthest-point fallback
// when the roulette fails to select (a zero total weight, or a
// resulting index outside the candidate set).
func kmeansPlusPlus(samples []weightedColor, k int) []weightedColor {
	if k > len(samples) {
		k = len(samples)
	}
	if k < 1 {
		k = 1
	}

	rng := rand.New(rand.NewSource(1))
	chosen := make([]bool, len(samples))
	centers := make([]weightedColor, 0, k)

	centers = append(centers, samples[0])
	chosen[0] = true

	for len(centers) < k {
		best := -1
		bestScore := -1.0
		total := 0.0
		scores := make([]float64, len(samples))
		for i, s := range samples {
			if chosen[i] {
				continue
			}
			d2 := nearestSqDist(s.color, centers)
			score := d2 * float64(s.weight)
			scores[i] = score
			total += score
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 {
			break // no unchosen samples remain
		}

		pick := -1
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, s := range scores {
				if chosen[i] {
					continue
				}
				acc += s
				if acc >= target {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			// Roulette failed to select (total==0, or floating point
			// rounding left every bucket short of target): explicit
			// farthest-point fallback, per the open question in §9.
			pick = best
		}

		centers = append(centers, samples[pick])
		chosen[pick] = true
	}
	return centers
}

func nearestSqDist(c RGB, centers []weightedColor) float64 {
	best := math.MaxFloat64
	for _, ctr := range centers {
		d := c.sqDistance(ctr.color)
		if d < best {
			best = d
		}
	}
	return best
}

// lloydIterate runs up to 10 rounds of weighted Lloyd's algorithm:
// assign every sample to its nearest center, recompute each center as
// the weight-weighted mean of its assigned samples, stop early once
// no center moves by squared distance > 4.
func lloydIterate(samples []weightedColor, seeds []weightedColor) []weightedColor {
	centers := make([]RGB, len(seeds))
	for i, s := range seeds {
		centers[i] = s.color
	}

	for round := 0; round < 10; round++ {
		var sumR, sumG, sumB, sumW = make([]int64, len(centers)), make([]int64, len(centers)),
			make([]int64, len(centers)), make([]int64, len(centers))

		for _, s := range samples {
			best, bestDist := 0, math.MaxFloat64
			for i, c := range centers {
				d := s.color.sqDistance(c)
				if d < bestDist {
					bestDist = d
					best = i
				}
			}
			sumR[best] += int64(s.color.R) * int64(s.weight)
			sumG[best] += int64(s.color.G) * int64(s.weight)
			sumB[best] += int64(s.color.B) * int64(s.weight)
			sumW[best] += int64(s.weight)
		}

		maxMove := 0.0
		for i := range centers {
			if sumW[i] == 0 {
				continue
			}
			newColor := RGB{
				R: uint8(clampI(int(sumR[i]/sumW[i]), 0, 255)),
				G: uint8(clampI(int(sumG[i]/sumW[i]), 0, 255)),
				B: uint8(clampI(int(sumB[i]/sumW[i]), 0, 255)),
			}
			move := centers[i].sqDistance(newColor)
			if move > maxMove {
				maxMove = move
			}
			centers[i] = newColor
		}
		if maxMove <= 4 {
			break
		}
	}

	// Recompute final weights (number of samples assigned) for the
	// post-merge stage's weighted mean.
	weights := make([]int, len(centers))
	for _, s := range samples {
		best, bestDist := 0, math.MaxFloat64
		for i, c := range centers {
			d := s.color.sqDistance(c)
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		weights[best] += s.weight
	}

	out := make([]weightedColor, 0, len(centers))
	for i, c := range centers {
		if weights[i] == 0 {
			continue // empty cluster; drop rather than emit a phantom center
		}
		out = append(out, weightedColor{color: c, weight: weights[i]})
	}
	return out
}

// mergeThresholdSq returns T² for the post-merge pass (§4.1).
func mergeThresholdSq(preset string) float64 {
	t := 35.0
	if preset == "logo" || preset == "simple" {
		t = 45.0
	}
	return t * t
}

// postMergeClusters repeatedly snaps the brightest cluster toward
// white and greedily merges near-neighbor clusters until a full pass
// produces no merge.
func postMergeClusters(clusters []paletteCluster, opts Options) []paletteCluster {
	if len(clusters) == 0 {
		return clusters
	}
	baseT2 := mergeThresholdSq(opts.Preset)

	for {
		sort.Slice(clusters, func(i, j int) bool {
			return clusters[i].color.luminanceSum() < clusters[j].color.luminanceSum()
		})
		snapBrightestToWhite(clusters)

		merged := false
		for i := 0; i < len(clusters) && !merged; i++ {
			for j := i + 1; j < len(clusters); j++ {
				a, b := clusters[i], clusters[j]
				d2 := a.color.sqDistance(b.color)
				t2 := baseT2
				if a.color.isNeutral() && b.color.isNeutral() {
					t2 *= 16
				}
				forceWhite := a.color.luminance() > 210 && b.color.luminance() > 210 && d2 < 2500
				if d2 < t2 || forceWhite {
					clusters[i] = mergeClusters(a, b)
					clusters = append(clusters[:j], clusters[j+1:]...)
					merged = true
					break
				}
			}
		}
		if !merged {
			break
		}
	}
	return clusters
}

func mergeClusters(a, b paletteCluster) paletteCluster {
	totalW := a.weight + b.weight
	if totalW == 0 {
		return paletteCluster{color: a.color, weight: 0}
	}
	r := (int(a.color.R)*a.weight + int(b.color.R)*b.weight) / totalW
	g := (int(a.color.G)*a.weight + int(b.color.G)*b.weight) / totalW
	bch := (int(a.color.B)*a.weight + int(b.color.B)*b.weight) / totalW
	return paletteCluster{
		color:  RGB{uint8(clampI(r, 0, 255)), uint8(clampI(g, 0, 255)), uint8(clampI(bch, 0, 255))},
		weight: totalW,
	}
}

// snapBrightestToWhite implements the palette invariant: "the
// brightest entry is snapped to (255,255,255) when all channels
// exceed 230". clusters must already be sorted ascending by
// luminance sum.
func snapBrightestToWhite(clusters []paletteCluster) {
	if len(clusters) == 0 {
		return
	}
	last := &clusters[len(clusters)-1]
	if last.color.R > 230 && last.color.G > 230 && last.color.B > 230 {
		last.color = RGB{255, 255, 255}
	}
}

// edgeColorFilter drops palette entries that sit geometrically
// between two dominant ("main") colors, the signature of an
// anti-aliasing artifact (§4.1, GLOSSARY "Edge color").
func edgeColorFilter(clusters []paletteCluster) []paletteCluster {
	if len(clusters) < 3 {
		return clusters
	}
	total := 0
	for _, c := range clusters {
		total += c.weight
	}
	if total == 0 {
		return clusters
	}
	k := len(clusters)
	mainThreshold := math.Max(0.005, 0.1/float64(k))

	byWeightDesc := append([]paletteCluster(nil), clusters...)
	sort.Slice(byWeightDesc, func(i, j int) bool { return byWeightDesc[i].weight > byWeightDesc[j].weight })

	isMain := make(map[RGB]bool)
	for _, c := range clusters {
		if float64(c.weight)/float64(total) >= mainThreshold {
			isMain[c.color] = true
		}
	}
	for i := 0; len(isMain) < 2 && i < len(byWeightDesc); i++ {
		isMain[byWeightDesc[i].color] = true
	}

	var mains []RGB
	for c := range isMain {
		mains = append(mains, c)
	}
	sort.Slice(mains, func(i, j int) bool { return mains[i].toUint32() < mains[j].toUint32() })

	var kept []paletteCluster
	for _, c := range clusters {
		if isMain[c.color] {
			kept = append(kept, c)
			continue
		}
		if isEdgeColor(c.color, mains) {
			continue // drop: anti-aliasing artifact between two mains
		}
		kept = append(kept, c) // independent (>60 from every main) or ambiguous: preserved
	}
	return kept
}

// isEdgeColor reports whether c projects onto some segment A-B
// (A, B both "main" colors) at parameter t in [0.1, 0.9] with
// perpendicular distance under 50.
func isEdgeColor(c RGB, mains []RGB) bool {
	cf := [3]float64{float64(c.R), float64(c.G), float64(c.B)}
	for i := 0; i < len(mains); i++ {
		for j := i + 1; j < len(mains); j++ {
			a := [3]float64{float64(mains[i].R), float64(mains[i].G), float64(mains[i].B)}
			b := [3]float64{float64(mains[j].R), float64(mains[j].G), float64(mains[j].B)}
			ab := [3]float64{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
			abLenSq := ab[0]*ab[0] + ab[1]*ab[1] + ab[2]*ab[2]
			if abLenSq == 0 {
				continue
			}
			ac := [3]float64{cf[0] - a[0], cf[1] - a[1], cf[2] - a[2]}
			t := (ac[0]*ab[0] + ac[1]*ab[1] + ac[2]*ab[2]) / abLenSq
			if t < 0.1 || t > 0.9 {
				continue
			}
			proj := [3]float64{a[0] + t*ab[0], a[1] + t*ab[1], a[2] + t*ab[2]}
			dx, dy, dz := cf[0]-proj[0], cf[1]-proj[1], cf[2]-proj[2]
			perp := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if perp < 50 {
				return true
			}
		}
	}
	return false
}
