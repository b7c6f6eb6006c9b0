package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/skywatch-labs/stationglobe/internal/geodata"
)

const (
	colorTooltipFrame = "60"
	colorTooltipText  = "252"
	colorTooltipTitle = "229"
)

// tooltipLines formats the station card shown next to the pointer.
func tooltipLines(st geodata.Station) []string {
	title := st.Name
	if title == "" {
		title = st.ID
	}
	lines := []string{title}
	if st.Name != "" && st.ID != st.Name {
		lines = append(lines, st.ID)
	}
	if st.Network != "" {
		lines = append(lines, st.Network)
	}
	if st.Timezone != "" {
		lines = append(lines, st.Timezone)
	}
	lines = append(lines, fmt.Sprintf("%.3f, %.3f", st.Latitude, st.Longitude))
	if st.Elevation != nil {
		lines = append(lines, fmt.Sprintf("%.0f m", *st.Elevation))
	}
	return lines
}

// tooltipOrigin places a boxWidth x boxHeight tooltip near the pointer
// cell, preferring below-right and flipping to the opposite side of the
// cursor when the box would leave the canvas.
func tooltipOrigin(canvasW, canvasH, cellX, cellY, boxW, boxH int) (int, int) {
	x := cellX + 2
	if x+boxW > canvasW {
		x = cellX - 1 - boxW
	}
	if x < 0 {
		x = 0
	}

	y := cellY + 1
	if y+boxH > canvasH {
		y = cellY - boxH
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

// drawTooltip paints a framed station card onto the canvas near the
// pointer, flipped away from the nearest edges.
func drawTooltip(c *canvas, st geodata.Station, cellX, cellY int) {
	lines := tooltipLines(st)
	inner := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > inner {
			inner = n
		}
	}
	boxW := inner + 4
	boxH := len(lines) + 2
	ox, oy := tooltipOrigin(c.width, c.height, cellX, cellY, boxW, boxH)

	frame := lipgloss.Color(colorTooltipFrame)
	c.set(ox, oy, '┌', frame)
	c.set(ox+boxW-1, oy, '┐', frame)
	c.set(ox, oy+boxH-1, '└', frame)
	c.set(ox+boxW-1, oy+boxH-1, '┘', frame)
	for x := ox + 1; x < ox+boxW-1; x++ {
		c.set(x, oy, '─', frame)
		c.set(x, oy+boxH-1, '─', frame)
	}
	for y := oy + 1; y < oy+boxH-1; y++ {
		c.set(ox, y, '│', frame)
		c.set(ox+boxW-1, y, '│', frame)
		for x := ox + 1; x < ox+boxW-1; x++ {
			c.set(x, y, ' ', frame)
		}
	}

	for i, l := range lines {
		color := lipgloss.Color(colorTooltipText)
		if i == 0 {
			color = colorTooltipTitle
		}
		c.text(ox+2, oy+1+i, l, color)
	}
}
