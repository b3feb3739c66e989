package vtrace

import (
	"fmt"
	"strconv"
	"strings"
)

// renderSVG implements §6's output grammar: an <svg> root sized to the
// source dimensions with a working-resolution viewBox, a background
// <rect> in the brightest palette color, then <path> elements in
// render order (bright to dark, i.e. paths reversed from dark->bright
// layer order).
func renderSVG(srcW, srcH, workW, workH int, background RGB, layers []Layer) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		srcW, srcH, workW, workH)
	b.WriteByte('\n')
	fmt.Fprintf(&b, `  <rect width="%d" height="%d" fill="%s"/>`, workW, workH, hexColor(background))
	b.WriteByte('\n')

	for i := len(layers) - 1; i >= 0; i-- {
		for _, p := range layers[i].Paths {
			writePathElement(&b, p)
		}
	}

	b.WriteString("</svg>")
	return b.String()
}

func writePathElement(b *strings.Builder, p Path) {
	b.WriteString(`  <path d="`)
	b.WriteString(p.D)
	b.WriteString(`" fill="`)
	b.WriteString(hexColor(p.Fill))
	b.WriteByte('"')
	if p.FillRule != "" {
		fmt.Fprintf(b, ` fill-rule="%s"`, p.FillRule)
	}
	if p.Stroke {
		fmt.Fprintf(b, ` stroke="%s" stroke-width="1" stroke-linejoin="round"`, hexColor(p.StrokeRGB))
	}
	b.WriteString("/>\n")
}

func hexColor(c RGB) string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

func hexByte(v uint8) string {
	s := strconv.FormatUint(uint64(v), 16)
	if len(s) == 1 {
		s = "0" + s
	}
	return s
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func polygonD(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %s,%s", formatCoord(points[0].X), formatCoord(points[0].Y))
	for _, p := range points[1:] {
		fmt.Fprintf(&b, " L %s,%s", formatCoord(p.X), formatCoord(p.Y))
	}
	b.WriteString(" Z")
	return b.String()
}

func splineD(curves []CubicBezier) string {
	var b strings.Builder
	fmt.Fprintf(&b, "M %s,%s", formatCoord(curves[0].P0.X), formatCoord(curves[0].P0.Y))
	for _, c := range curves {
		fmt.Fprintf(&b, " C %s,%s %s,%s %s,%s",
			formatCoord(c.C1.X), formatCoord(c.C1.Y),
			formatCoord(c.C2.X), formatCoord(c.C2.Y),
			formatCoord(c.P3.X), formatCoord(c.P3.Y))
	}
	b.WriteString(" Z")
	return b.String()
}
