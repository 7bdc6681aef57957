package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/hatch/internal/platform"
)

// summarizeMonitors describes the virtual screen spanned by rects.
func summarizeMonitors(rects []platform.Rect) string {
	if len(rects) == 0 {
		return "no monitors"
	}
	bounds := boundingRect(rects)
	noun := "monitors"
	if len(rects) == 1 {
		noun = "monitor"
	}
	return fmt.Sprintf("%d %s • virtual screen %d×%d at %d,%d", len(rects), noun, bounds.Width, bounds.Height, bounds.X, bounds.Y)
}

func boundingRect(rects []platform.Rect) platform.Rect {
	if len(rects) == 0 {
		return platform.Rect{}
	}
	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].X+rects[0].Width, rects[0].Y+rects[0].Height
	for _, r := range rects[1:] {
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.X+r.Width)
		maxY = max(maxY, r.Y+r.Height)
	}
	return platform.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// renderMonitorPreview draws the monitor arrangement on a character canvas.
// Monitors are numbered from 1 in list order; the selected one is drawn
// with its number bracketed.
func renderMonitorPreview(rects []platform.Rect, selected, width, height int) []string {
	if len(rects) == 0 || width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	bounds := boundingRect(rects)
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return emptyCanvas(width, height)
	}
	for i, r := range rects {
		r.X -= bounds.X
		r.Y -= bounds.Y
		label := fmt.Sprintf("%d", i+1)
		if i == selected {
			label = "[" + label + "]"
		}
		drawBox(canvas, r, label, bounds.Width, bounds.Height, width, height)
	}
	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func drawBox(canvas [][]rune, rect platform.Rect, label string, spanW, spanH, canvasW, canvasH int) {
	// Map rect coordinates to the canvas interior.
	innerW, innerH := canvasW-2, canvasH-2
	x1 := 1 + rect.X*innerW/spanW
	y1 := 1 + rect.Y*innerH/spanH
	x2 := (rect.X+rect.Width)*innerW/spanW
	y2 := (rect.Y+rect.Height)*innerH/spanH

	if x2 >= canvasW-1 {
		x2 = canvasW - 2
	}
	if y2 >= canvasH-1 {
		y2 = canvasH - 2
	}
	// Need at least 2x2 for a box
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 {
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
