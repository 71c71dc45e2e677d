package main

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the canvas colors.
type Theme struct {
	Node          lipgloss.Color
	Selected      lipgloss.Color
	Arrow         lipgloss.Color
	ConnectSource lipgloss.Color
	HTMLBadge     lipgloss.Color
	Dimmed        lipgloss.Color
	Accent        lipgloss.Color
}

func DefaultTheme() Theme {
	return Theme{
		Node:          lipgloss.Color("6"),
		Selected:      lipgloss.Color("3"),
		Arrow:         lipgloss.Color("5"),
		ConnectSource: lipgloss.Color("2"),
		HTMLBadge:     lipgloss.Color("9"),
		Dimmed:        lipgloss.Color("8"),
		Accent:        lipgloss.Color("14"),
	}
}

// DrawCanvas draws one frame: connections underneath, then node outlines,
// then node text.
func DrawCanvas(s Surface, tasks []Task, state *CanvasState, theme Theme) {
	drawShapes(s, connectionShapes(tasks, state, theme))
	drawConnectionLabels(s, tasks, state, theme)
	drawShapes(s, nodeShapes(tasks, state, theme))
	drawLabels(s, tasks, state, theme)
}

func drawShapes(p Painter, shapes []Shape) {
	for _, shape := range shapes {
		shape.Draw(p)
	}
}

// connectionShapes returns an arrow per drawable connection, followed by a
// diamond at its midpoint when it is the marked connection.
func connectionShapes(tasks []Task, state *CanvasState, theme Theme) []Shape {
	marked, hasMarked := -1, false
	if !state.Connecting() {
		marked, hasMarked = state.SelectedConnection(tasks)
	}

	shapes := make([]Shape, 0, len(state.Connections)+1)
	for i, conn := range state.Connections {
		from, to, ok := anchorsFor(tasks, conn)
		if !ok {
			continue
		}
		shapes = append(shapes, ArrowLine{X1: from.X, Y1: from.Y, X2: to.X, Y2: to.Y, Color: theme.Arrow})
		if hasMarked && i == marked {
			mid := midpoint(from, to)
			shapes = append(shapes, Diamond{CX: mid.X, CY: mid.Y, Size: markerSize, Color: theme.Selected})
		}
	}
	return shapes
}

func drawConnectionLabels(s Surface, tasks []Task, state *CanvasState, theme Theme) {
	for _, conn := range state.Connections {
		if conn.Label == "" {
			continue
		}
		from, to, ok := anchorsFor(tasks, conn)
		if !ok {
			continue
		}
		mid := midpoint(from, to)
		s.Print(mid.X, mid.Y, conn.Label, theme.Arrow)
	}
}

// anchorsFor resolves both ends of a connection. Connections whose tasks are
// not loaded are skipped.
func anchorsFor(tasks []Task, conn TaskConnection) (Point, Point, bool) {
	fromIdx, okFrom := findTask(tasks, conn.FromTaskID)
	toIdx, okTo := findTask(tasks, conn.ToTaskID)
	if !okFrom || !okTo {
		return Point{}, Point{}, false
	}
	from, to := connectionAnchors(&tasks[fromIdx], &tasks[toIdx])
	return from, to, true
}

func nodeShapes(tasks []Task, state *CanvasState, theme Theme) []Shape {
	shapes := make([]Shape, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		shapes = append(shapes, TaskBox{
			X:      task.CanvasX,
			Y:      task.CanvasY,
			Width:  NodeWidth,
			Height: NodeHeight,
			Color:  nodeColor(i, task, state, theme),
		})
	}
	return shapes
}

func drawLabels(s Surface, tasks []Task, state *CanvasState, theme Theme) {
	maxChars := int(NodeWidth) - 2
	for i := range tasks {
		task := &tasks[i]
		color := nodeColor(i, task, state, theme)

		title := []rune(task.Title)
		if len(title) > maxChars {
			title = title[:maxChars]
		}
		s.Print(task.CanvasX+1, task.CanvasY+2, string(title), color)
		s.Print(task.CanvasX+1, task.CanvasY+4, task.Status.String(), theme.Dimmed)
		if task.HasHTML() {
			s.Print(task.CanvasX+NodeWidth-5, task.CanvasY+4, "HTML", theme.HTMLBadge)
		}
	}
}

// nodeColor picks the outline color. The connect source wins over the
// selection highlight.
func nodeColor(index int, task *Task, state *CanvasState, theme Theme) lipgloss.Color {
	if from, ok := state.ConnectSource(); ok && task.ID == from {
		return theme.ConnectSource
	}
	if index == state.SelectedNode {
		return theme.Selected
	}
	return theme.Node
}

func modeHeader(state *CanvasState) string {
	switch state.ConnectMode.(type) {
	case SelectingTarget:
		return " SELECT TARGET (enter=confirm, esc=cancel) "
	case EnteringLabel:
		return " TYPE LABEL (enter=save, esc=cancel) "
	default:
		return " CANVAS [a]connect [x]unlink [+/-]zoom [i]import [?]help "
	}
}
