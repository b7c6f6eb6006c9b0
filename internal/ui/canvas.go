// Package ui renders the interactive globe in the terminal: a cell canvas
// rasterizes the scene's outline strips and station points, mouse events
// drive orbit, zoom, hover, and selection.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// canvas is a fixed-size grid of runes with a foreground color per cell.
type canvas struct {
	width  int
	height int
	cells  [][]rune
	colors [][]lipgloss.Color
}

func newCanvas(width, height int) *canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &canvas{width: width, height: height}
	c.cells = make([][]rune, height)
	c.colors = make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		c.cells[y] = make([]rune, width)
		c.colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			c.cells[y][x] = ' '
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, color lipgloss.Color) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.cells[y][x] = r
	c.colors[y][x] = color
}

func (c *canvas) at(x, y int) rune {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return 0
	}
	return c.cells[y][x]
}

// text writes a string left to right starting at (x, y), clipped to bounds.
func (c *canvas) text(x, y int, s string, color lipgloss.Color) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, color)
	}
}

// line draws a Bresenham segment between two cells.
func (c *canvas) line(x0, y0, x1, y1 int, r rune, color lipgloss.Color) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0, r, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// render flattens the canvas into a styled multi-line string, batching
// same-color runs so long frames stay cheap to build.
func (c *canvas) render() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		x := 0
		for x < c.width {
			color := c.colors[y][x]
			start := x
			for x < c.width && c.colors[y][x] == color {
				x++
			}
			run := string(c.cells[y][start:x])
			if color == "" {
				b.WriteString(run)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(run))
		}
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
