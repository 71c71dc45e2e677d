package main

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Painter maps canvas coordinates onto a grid of paintable points.
type Painter interface {
	// GetPoint returns the grid point for a canvas coordinate, or false when
	// the coordinate is outside the visible window.
	GetPoint(x, y float64) (int, int, bool)
	Paint(px, py int, color lipgloss.Color)
}

// Surface is a Painter that can also place text.
type Surface interface {
	Painter
	Print(x, y float64, text string, color lipgloss.Color)
}

type Shape interface {
	Draw(p Painter)
}

// TaskBox is the outline of a node.
type TaskBox struct {
	X, Y          float64
	Width, Height float64
	Color         lipgloss.Color
}

func (b TaskBox) Draw(p Painter) {
	steps := sampleCount(b.Width * 2)
	for i := 0; i <= steps; i++ {
		px := b.X + float64(i)*b.Width/float64(steps)
		paintPoint(p, px, b.Y, b.Color)
		paintPoint(p, px, b.Y+b.Height, b.Color)
	}
	steps = sampleCount(b.Height * 2)
	for i := 0; i <= steps; i++ {
		py := b.Y + float64(i)*b.Height/float64(steps)
		paintPoint(p, b.X, py, b.Color)
		paintPoint(p, b.X+b.Width, py, b.Color)
	}
}

// ArrowLine is a straight line with a two-stroke arrowhead at (X2, Y2).
type ArrowLine struct {
	X1, Y1 float64
	X2, Y2 float64
	Color  lipgloss.Color
}

func (a ArrowLine) Draw(p Painter) {
	dx := a.X2 - a.X1
	dy := a.Y2 - a.Y1
	length := math.Hypot(dx, dy)
	if length < anchorEpsilon {
		return
	}

	sampleSegment(p, a.X1, a.Y1, a.X2, a.Y2, sampleCount(length*3), a.Color)

	headLen := math.Min(arrowHeadLength, length*arrowHeadRatio)
	angle := math.Atan2(dy, dx)
	for _, sign := range []float64{-1, 1} {
		theta := angle + math.Pi + sign*arrowHeadSpread
		hx := a.X2 + headLen*math.Cos(theta)
		hy := a.Y2 + headLen*math.Sin(theta)
		sampleSegment(p, a.X2, a.Y2, hx, hy, sampleCount(headLen*3), a.Color)
	}
}

// Diamond is a small rhombus centered on (CX, CY).
type Diamond struct {
	CX, CY float64
	Size   float64
	Color  lipgloss.Color
}

func (d Diamond) Draw(p Painter) {
	s := d.Size
	vertices := [4]Point{
		{X: d.CX, Y: d.CY + s},
		{X: d.CX + s, Y: d.CY},
		{X: d.CX, Y: d.CY - s},
		{X: d.CX - s, Y: d.CY},
	}
	steps := sampleCount(s * 4)
	for i := range vertices {
		from := vertices[i]
		to := vertices[(i+1)%len(vertices)]
		sampleSegment(p, from.X, from.Y, to.X, to.Y, steps, d.Color)
	}
}

func sampleSegment(p Painter, x1, y1, x2, y2 float64, steps int, color lipgloss.Color) {
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		paintPoint(p, x1+(x2-x1)*t, y1+(y2-y1)*t, color)
	}
}

func paintPoint(p Painter, x, y float64, color lipgloss.Color) {
	if px, py, ok := p.GetPoint(x, y); ok {
		p.Paint(px, py, color)
	}
}

func sampleCount(n float64) int {
	if n < 1 {
		return 1
	}
	return int(n)
}
