package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/resonance/internal/analysis"
)

// Line is one polyline of a plot. Each line is scaled to its own range so
// fields of very different magnitude share a panel.
type Line struct {
	Label string
	Color string
	Data  []float64
}

// LinesToSVG draws each line across the full width, one under the other in
// equal-height bands, and writes the document to w.
func LinesToSVG(w io.Writer, lines []Line, width, height int) error {
	if len(lines) == 0 {
		return fmt.Errorf("svg: nothing to draw")
	}
	band := float64(height) / float64(len(lines))

	var sb strings.Builder
	writeHeader(&sb, width, height)
	for i, line := range lines {
		if len(line.Data) < 2 {
			continue
		}
		top := float64(i) * band
		pts := make([]analysis.Point, len(line.Data))
		for j, v := range line.Data {
			pts[j] = analysis.Point{X: float64(j), Y: v}
		}
		writePath(&sb, pts, 0, top, float64(width), band, line.Color)
		sb.WriteString(fmt.Sprintf(`<text x="6" y="%.1f" fill="#888899" font-family="monospace" font-size="11">%s</text>
`, top+14, line.Label))
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// PortraitToSVG draws a phase portrait as a single path.
func PortraitToSVG(w io.Writer, p *analysis.Portrait, width, height int, strokeColor string) error {
	if p == nil || len(p.Points) < 2 {
		return fmt.Errorf("svg: portrait needs at least two points")
	}
	var sb strings.Builder
	writeHeader(&sb, width, height)
	writePath(&sb, p.Points, 0, 0, float64(width), float64(height), strokeColor)
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeHeader(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

// writePath maps points into the box at (left, top) with 10% padding.
func writePath(sb *strings.Builder, points []analysis.Point, left, top, width, height float64, strokeColor string) {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))
	for i, p := range points {
		x := left + (p.X-minX)/rangeX*width
		y := top + height - (p.Y-minY)/rangeY*height

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")
}
