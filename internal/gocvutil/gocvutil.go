// Package gocvutil bridges the Layer Builder's plain []byte bitmaps
// and alpha fields to OpenCV (gocv.io/x/gocv) for the operations that
// have a direct, well-tested OpenCV primitive: Gaussian blur, Otsu
// thresholding, morphological closing, and connected-components
// labeling. Mat construction follows the teacher repository's
// imageutil/gocv_compare conversion helpers.
package gocvutil

import (
	"image"

	"gocv.io/x/gocv"
)

// grayToMat copies a single-channel byte buffer into a CV_8U Mat.
func grayToMat(data []byte, w, h int) gocv.Mat {
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mat.SetUCharAt(y, x, data[y*w+x])
		}
	}
	return mat
}

func matToGray(mat gocv.Mat, w, h int) []byte {
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = mat.GetUCharAt(y, x)
		}
	}
	return out
}

// GaussianBlurGray blurs a single-channel buffer with the given sigma.
// The kernel size follows the expansion note in SPEC_FULL.md:
// 2*ceil(3*sigma)+1, always odd.
func GaussianBlurGray(data []byte, w, h int, sigma float64) []byte {
	if sigma <= 0 {
		return data
	}
	radius := int(sigma*3 + 0.999999)
	if radius < 1 {
		radius = 1
	}
	k := 2*radius + 1

	src := grayToMat(data, w, h)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()

	gocv.GaussianBlur(src, &dst, image.Pt(k, k), sigma, sigma, gocv.BorderDefault)
	return matToGray(dst, w, h)
}

// OtsuThreshold computes Otsu's binary threshold over a grayscale
// buffer and returns both the threshold value and the resulting
// binary (0/255) buffer.
func OtsuThreshold(data []byte, w, h int) (thresh float64, binary []byte) {
	src := grayToMat(data, w, h)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()

	t := gocv.Threshold(src, &dst, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	return float64(t), matToGray(dst, w, h)
}

// MorphClose applies dilate-then-erode (closing) over a 0/255 binary
// buffer using a 4-neighborhood (cross-shaped) structuring element,
// per the spec's "never open" rule.
func MorphClose(data []byte, w, h int) []byte {
	src := grayToMat(data, w, h)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphCross, image.Pt(3, 3))
	defer kernel.Close()

	gocv.MorphologyEx(src, &dst, gocv.MorphClose, kernel)
	return matToGray(dst, w, h)
}

// RemoveSmallComponents zeroes out every 8-connected foreground
// component in a 0/255 binary buffer whose pixel count is below
// minSize.
func RemoveSmallComponents(data []byte, w, h, minSize int) []byte {
	src := grayToMat(data, w, h)
	defer src.Close()

	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(src, &labels, &stats, &centroids, 8, gocv.MatTypeCV32S, gocv.CCL_DEFAULT)

	const statsAreaCol = 4 // OpenCV's CC_STAT_AREA column in the stats matrix
	keep := make([]bool, n)
	for i := 0; i < n; i++ {
		area := stats.GetIntAt(i, statsAreaCol)
		keep[i] = int(area) >= minSize
	}
	keep[0] = false // background label is never foreground

	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			label := int(labels.GetIntAt(y, x))
			if label >= 0 && label < n && keep[label] {
				out[y*w+x] = 255
			}
		}
	}
	return out
}

// FallbackContour is one contour traced by FindContours, already
// lifted out of OpenCV's point-matrix representation.
type FallbackContour struct {
	Points []image.Point
	Hole   bool
}

// TraceFallback runs OpenCV's contour finder over a 0/255 binary
// buffer, the "preserved" fallback tracer used when the primary
// marching-squares tracer returns no contours at all, or when the
// vtracer/hybrid contour method is requested.
func TraceFallback(data []byte, w, h int) []FallbackContour {
	src := grayToMat(data, w, h)
	defer src.Close()

	contours := gocv.FindContours(src, gocv.RetrievalCComp, gocv.ChainApproxSimple)
	defer contours.Close()

	out := make([]FallbackContour, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		pts := make([]image.Point, pv.Size())
		for j := 0; j < pv.Size(); j++ {
			pts[j] = pv.At(j)
		}
		out = append(out, FallbackContour{Points: pts})
	}
	return out
}
