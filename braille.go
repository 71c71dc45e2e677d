package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const brailleBase = 0x2800

// brailleDots[row][col] is the dot bit for a position inside a 2×4 cell.
var brailleDots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

type brailleLabel struct {
	col, row int
	text     string
	color    lipgloss.Color
}

// BrailleCanvas is a Surface backed by terminal cells, each holding a 2×4
// grid of braille dots. The visible window spans [XMin, XMax] × [YMin, YMax]
// with y growing downward.
type BrailleCanvas struct {
	cols, rows int
	XMin, XMax float64
	YMin, YMax float64

	dots   [][]rune
	colors [][]lipgloss.Color
	labels []brailleLabel
}

func NewBrailleCanvas(cols, rows int, xMin, xMax, yMin, yMax float64) *BrailleCanvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c := &BrailleCanvas{
		cols: cols,
		rows: rows,
		XMin: xMin,
		XMax: xMax,
		YMin: yMin,
		YMax: yMax,
	}
	c.dots = make([][]rune, rows)
	c.colors = make([][]lipgloss.Color, rows)
	for i := range c.dots {
		c.dots[i] = make([]rune, cols)
		c.colors[i] = make([]lipgloss.Color, cols)
	}
	return c
}

// NewViewportCanvas sizes the visible window from the canvas state: the
// window starts a margin above and left of the pan offset and covers
// cols/zoom by 2·rows/zoom canvas units.
func NewViewportCanvas(cols, rows int, state *CanvasState) *BrailleCanvas {
	zoom := state.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	xMin := state.PanX - viewportMargin
	yMin := state.PanY - viewportMargin
	xMax := xMin + float64(cols)/zoom
	yMax := yMin + float64(rows)*2/zoom
	return NewBrailleCanvas(cols, rows, xMin, xMax, yMin, yMax)
}

func (c *BrailleCanvas) GetPoint(x, y float64) (int, int, bool) {
	if x < c.XMin || x > c.XMax || y < c.YMin || y > c.YMax {
		return 0, 0, false
	}
	width := c.XMax - c.XMin
	height := c.YMax - c.YMin
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	px := int((x - c.XMin) * float64(c.cols*2-1) / width)
	py := int((y - c.YMin) * float64(c.rows*4-1) / height)
	return px, py, true
}

func (c *BrailleCanvas) Paint(px, py int, color lipgloss.Color) {
	col, row := px/2, py/4
	if px < 0 || py < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.dots[row][col] |= brailleDots[py%4][px%2]
	c.colors[row][col] = color
}

func (c *BrailleCanvas) Print(x, y float64, text string, color lipgloss.Color) {
	if text == "" || x < c.XMin || x > c.XMax || y < c.YMin || y > c.YMax {
		return
	}
	col := int((x - c.XMin) / (c.XMax - c.XMin) * float64(c.cols))
	row := int((y - c.YMin) / (c.YMax - c.YMin) * float64(c.rows))
	if col >= c.cols || row >= c.rows {
		return
	}
	c.labels = append(c.labels, brailleLabel{col: col, row: row, text: text, color: color})
}

func (c *BrailleCanvas) cells() ([][]rune, [][]lipgloss.Color) {
	grid := make([][]rune, c.rows)
	colors := make([][]lipgloss.Color, c.rows)
	for row := range grid {
		grid[row] = make([]rune, c.cols)
		colors[row] = make([]lipgloss.Color, c.cols)
		copy(colors[row], c.colors[row])
		for col, bits := range c.dots[row] {
			if bits == 0 {
				grid[row][col] = ' '
			} else {
				grid[row][col] = brailleBase + bits
			}
		}
	}

	// Text is drawn over the dots, later labels win.
	for _, label := range c.labels {
		col := label.col
		for _, r := range label.text {
			if col >= c.cols {
				break
			}
			grid[label.row][col] = r
			colors[label.row][col] = label.color
			col++
		}
	}
	return grid, colors
}

// Lines renders the canvas one string per row, styled with lipgloss when
// styled is true.
func (c *BrailleCanvas) Lines(styled bool) []string {
	grid, colors := c.cells()
	result := make([]string, c.rows)
	for row := range grid {
		if !styled {
			result[row] = string(grid[row])
			continue
		}

		var line strings.Builder
		start := 0
		for col := 1; col <= c.cols; col++ {
			if col < c.cols && colors[row][col] == colors[row][start] {
				continue
			}
			run := string(grid[row][start:col])
			if colors[row][start] == "" {
				line.WriteString(run)
			} else {
				line.WriteString(lipgloss.NewStyle().Foreground(colors[row][start]).Render(run))
			}
			start = col
		}
		result[row] = line.String()
	}
	return result
}

func (c *BrailleCanvas) String() string {
	return strings.Join(c.Lines(true), "\n")
}
