package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

var ErrNothingToExport = errors.New("nothing to export")

// Pixels per canvas unit. A vertical unit is half a terminal row.
const (
	pngUnitX   = 8.0
	pngUnitY   = 8.0
	pngPadding = 2.0
)

// ExportPNG draws all tasks and their connections to a PNG image sized to the
// bounds of the tasks.
func ExportPNG(filename string, tasks []Task, conns []TaskConnection) error {
	if len(tasks) == 0 {
		return ErrNothingToExport
	}

	minX, minY := tasks[0].CanvasX, tasks[0].CanvasY
	maxX, maxY := minX+NodeWidth, minY+NodeHeight
	for _, task := range tasks[1:] {
		minX = math.Min(minX, task.CanvasX)
		minY = math.Min(minY, task.CanvasY)
		maxX = math.Max(maxX, task.CanvasX+NodeWidth)
		maxY = math.Max(maxY, task.CanvasY+NodeHeight)
	}
	minX -= pngPadding
	minY -= pngPadding
	maxX += pngPadding
	maxY += pngPadding

	imageWidth := int(math.Ceil((maxX - minX) * pngUnitX))
	imageHeight := int(math.Ceil((maxY - minY) * pngUnitY))

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	toPixel := func(p Point) (float64, float64) {
		return (p.X - minX) * pngUnitX, (p.Y - minY) * pngUnitY
	}

	// Connections first so boxes sit on top.
	for _, conn := range conns {
		fromIdx, okFrom := findTask(tasks, conn.FromTaskID)
		toIdx, okTo := findTask(tasks, conn.ToTaskID)
		if !okFrom || !okTo {
			continue
		}
		from, to := connectionAnchors(&tasks[fromIdx], &tasks[toIdx])
		fx, fy := toPixel(from)
		tx, ty := toPixel(to)
		drawConnectionPNG(dc, fx, fy, tx, ty)
		if conn.Label != "" {
			mx, my := toPixel(midpoint(from, to))
			dc.DrawString(conn.Label, mx, my)
		}
	}

	for i := range tasks {
		drawTaskPNG(dc, &tasks[i], toPixel)
	}

	return dc.SavePNG(filename)
}

func drawConnectionPNG(dc *gg.Context, fx, fy, tx, ty float64) {
	dc.SetLineWidth(1.0)
	dc.SetColor(color.Black)
	dc.DrawLine(fx, fy, tx, ty)
	dc.Stroke()
	drawArrowPNG(dc, fx, fy, tx, ty)
}

func drawArrowPNG(dc *gg.Context, fx, fy, tx, ty float64) {
	dx := tx - fx
	dy := ty - fy
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	arrowSize := 6.0

	dc.MoveTo(tx, ty)
	dc.LineTo(tx-arrowSize*dx+arrowSize*dy*arrowHeadSpread, ty-arrowSize*dy-arrowSize*dx*arrowHeadSpread)
	dc.LineTo(tx-arrowSize*dx-arrowSize*dy*arrowHeadSpread, ty-arrowSize*dy+arrowSize*dx*arrowHeadSpread)
	dc.ClosePath()
	dc.Fill()
}

func drawTaskPNG(dc *gg.Context, task *Task, toPixel func(Point) (float64, float64)) {
	x, y := toPixel(Point{X: task.CanvasX, Y: task.CanvasY})

	// Cover the connection lines that run under the box.
	dc.SetColor(color.White)
	dc.DrawRectangle(x, y, NodeWidth*pngUnitX, NodeHeight*pngUnitY)
	dc.Fill()

	dc.SetLineWidth(1.0)
	dc.SetColor(color.Black)
	dc.DrawRectangle(x, y, NodeWidth*pngUnitX, NodeHeight*pngUnitY)
	dc.Stroke()

	title := []rune(task.Title)
	if len(title) > int(NodeWidth)-2 {
		title = title[:int(NodeWidth)-2]
	}
	dc.DrawString(string(title), x+pngUnitX, y+2*pngUnitY+4)

	dc.SetColor(color.Gray{Y: 0x80})
	dc.DrawString(task.Status.String(), x+pngUnitX, y+4*pngUnitY+4)
	if task.HasHTML() {
		dc.DrawString("HTML", x+(NodeWidth-5)*pngUnitX, y+4*pngUnitY+4)
	}
}

// ExportTXT writes the current viewport as plain braille text, without
// selection or connect highlights.
func ExportTXT(filename string, tasks []Task, state *CanvasState, cols, rows int) error {
	if len(tasks) == 0 {
		return ErrNothingToExport
	}
	if cols < 1 {
		cols = 80
	}
	if rows < 1 {
		rows = 24
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	plain := *state
	plain.SelectedNode = -1
	plain.ConnectMode = ConnectInactive{}

	canvas := NewViewportCanvas(cols, rows, &plain)
	DrawCanvas(canvas, tasks, &plain, DefaultTheme())
	for _, line := range canvas.Lines(false) {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}

// ExportMermaid writes the canvas as a Mermaid flowchart.
func ExportMermaid(filename string, tasks []Task, conns []TaskConnection) error {
	if len(tasks) == 0 {
		return ErrNothingToExport
	}
	return os.WriteFile(filename, []byte(FormatFlowchart(tasks, conns, LeftRight)), 0644)
}
