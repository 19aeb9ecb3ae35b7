package analysis

import (
	"strings"

	"github.com/san-kum/resonance/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// Portrait holds data for a 2D phase plot.
type Portrait struct {
	Points []Point
}

// ParticlePortrait pairs each recorded position in [from, to) with its
// backward-difference velocity.
func ParticlePortrait(pos dynamo.Series, dt float64, from, to int) *Portrait {
	if from < 1 {
		from = 1
	}
	if to > len(pos) {
		to = len(pos)
	}
	p := &Portrait{}
	for t := from; t < to; t++ {
		p.Points = append(p.Points, Point{X: pos[t], Y: (pos[t] - pos[t-1]) / dt})
	}
	return p
}

// Crossings returns the indices at which data crosses threshold upward.
func Crossings(data []float64, threshold float64) []int {
	var idx []int
	for i := 1; i < len(data); i++ {
		if data[i-1] < threshold && data[i] >= threshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// ASCII renders the portrait on a width×height character canvas.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
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

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// zero-velocity axis
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
