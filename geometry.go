package main

import "math"

type Point struct {
	X, Y float64
}

func nodeCenter(t *Task) Point {
	return Point{X: t.CanvasX + NodeWidth/2, Y: t.CanvasY + NodeHeight/2}
}

// EdgeAnchor returns where the ray from the center of a w×h box at (x, y)
// toward target leaves the box. A target on the center returns the center.
func EdgeAnchor(x, y, w, h float64, target Point) Point {
	cx := x + w/2
	cy := y + h/2
	dx := target.X - cx
	dy := target.Y - cy

	if math.Abs(dx) < anchorEpsilon && math.Abs(dy) < anchorEpsilon {
		return Point{X: cx, Y: cy}
	}

	halfW := w / 2
	halfH := h / 2
	slope := math.MaxFloat64
	if math.Abs(dx) > anchorEpsilon {
		slope = math.Abs(dy / dx)
	}

	if slope < halfH/halfW {
		sign := 1.0
		if dx < 0 {
			sign = -1.0
		}
		return Point{X: cx + sign*halfW, Y: cy + dy*(halfW/math.Abs(dx))}
	}
	sign := 1.0
	if dy < 0 {
		sign = -1.0
	}
	return Point{X: cx + dx*(halfH/math.Abs(dy)), Y: cy + sign*halfH}
}

func taskAnchor(t *Task, target Point) Point {
	return EdgeAnchor(t.CanvasX, t.CanvasY, NodeWidth, NodeHeight, target)
}

// connectionAnchors returns the boundary-to-boundary endpoints of an arrow
// from one task to another.
func connectionAnchors(from, to *Task) (Point, Point) {
	return taskAnchor(from, nodeCenter(to)), taskAnchor(to, nodeCenter(from))
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func gridPosition(column, row int) Point {
	return Point{X: float64(column) * GridSpacingX, Y: float64(row) * GridSpacingY}
}
