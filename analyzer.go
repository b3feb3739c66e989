package vtrace

import "sort"

// Analysis is the Image Analyzer's output: a recommended preset tag
// and a suggested palette size, per §4.2.
type Analysis struct {
	Preset string
	K      int
}

type histBin struct {
	color RGB
	count int
}

// AnalyzeImage recommends a preset and palette size for img without
// requiring the caller to already know which preset fits (§4.2).
func AnalyzeImage(img Image) Analysis {
	bins := quantizedHistogram(&img, 8, 10)
	u := len(bins)
	clusters := greedyCluster(bins, 25)
	c := len(clusters)
	v := 0.0
	if c > 0 {
		v = float64(u) / float64(c)
	} else {
		v = float64(u)
	}

	switch {
	case c <= 4:
		return Analysis{Preset: "lineart", K: suggestK("lineart", c)}
	case u < 256 && c < 64 && v < 3:
		return Analysis{Preset: "pixel", K: suggestK("pixel", c)}
	case u > 5000 && c > 100:
		// cmd/vtrace's resolveOptions loads the illustration preset for a
		// "photo" recommendation; photo is used only when asked for by name.
		return Analysis{Preset: "photo", K: suggestK("photo", c)}
	}

	if c > 4 && c < 64 {
		reclustered := greedyCluster(bins, 90)
		rc := len(reclustered)
		switch {
		case rc <= 8:
			return Analysis{Preset: "simple", K: suggestK("simple", rc)}
		case rc <= 32:
			return Analysis{Preset: "logo", K: suggestK("logo", rc)}
		default:
			return Analysis{Preset: "illustration", K: suggestK("illustration", rc)}
		}
	}

	switch {
	case c <= 8:
		return Analysis{Preset: "simple", K: suggestK("simple", c)}
	case c <= 32:
		return Analysis{Preset: "logo", K: suggestK("logo", c)}
	default:
		return Analysis{Preset: "illustration", K: suggestK("illustration", c)}
	}
}

// suggestK clamps the observed cluster count to the preset's sensible
// palette-size range, so a recommendation never asks the Palette
// Builder for an implausible K.
func suggestK(preset string, clusterCount int) int {
	lo, hi := 6, 24
	switch preset {
	case "lineart":
		lo, hi = 2, 4
	case "pixel":
		lo, hi = 8, 32
	case "simple":
		lo, hi = 4, 8
	case "logo":
		lo, hi = 6, 16
	case "illustration":
		lo, hi = 16, 32
	case "photo":
		lo, hi = 32, 64
	}
	k := clusterCount
	if k < lo {
		k = lo
	}
	if k > hi {
		k = hi
	}
	return k
}

// quantizedHistogram snaps every opaque pixel to a step-quantized
// color and returns the bins with count >= minCount, sorted
// descending by count for deterministic greedy clustering.
func quantizedHistogram(img *Image, step, minCount int) []histBin {
	freq := make(map[uint32]int)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if !img.opaque(x, y) {
				continue
			}
			q := img.at(x, y).quantize(step)
			freq[q.toUint32()]++
		}
	}
	bins := make([]histBin, 0, len(freq))
	for k, count := range freq {
		if count < minCount {
			continue
		}
		bins = append(bins, histBin{color: rgbFromUint32(k), count: count})
	}
	sort.Slice(bins, func(i, j int) bool {
		if bins[i].count != bins[j].count {
			return bins[i].count > bins[j].count
		}
		return bins[i].color.toUint32() < bins[j].color.toUint32()
	})
	return bins
}

// greedyCluster assigns each bin to the first existing cluster
// representative within threshold distance, else starts a new
// cluster. Bins are processed heaviest-first (quantizedHistogram's
// sort order) so the representative is always the bin's own
// dominant color.
func greedyCluster(bins []histBin, threshold float64) [][]histBin {
	var clusters [][]histBin
	var reps []RGB
	t2 := threshold * threshold

	for _, b := range bins {
		placed := false
		for i, rep := range reps {
			if rep.sqDistance(b.color) < t2 {
				clusters[i] = append(clusters[i], b)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []histBin{b})
			reps = append(reps, b.color)
		}
	}
	return clusters
}
