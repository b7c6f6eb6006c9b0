package ui

import (
	"github.com/skywatch-labs/stationglobe/internal/geo"
	"github.com/skywatch-labs/stationglobe/internal/scene"
)

// Terminal cells are roughly twice as tall as they are wide, so the scene
// viewport uses two virtual pixel rows per cell.
const cellAspect = 2

const (
	glyphStation      = '✦'
	glyphStationHover = '◆'
	glyphOutline      = '·'
	glyphStar         = '·'

	colorStation      = "80"  // teal
	colorStationHover = "229" // bright gold
	colorOutline      = "60"  // muted purple
	colorStar         = "238" // faint gray
)

// drawGlobe rasterizes the scene onto the canvas: starfield first, then
// front-facing outline strips, then station glyphs on top.
func drawGlobe(c *canvas, sc *scene.Scene) {
	drawStars(c)
	drawOutlines(c, sc)
	drawStations(c, sc)
}

// drawStars scatters a sparse deterministic starfield so the globe reads
// against a background even before geometry loads. Purely decorative:
// skipped outright on small canvases.
func drawStars(c *canvas) {
	if c.width < 40 || c.height < 10 {
		return
	}
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			if (x*2654435761+y*40503)%97 == 0 {
				c.set(x, y, glyphStar, colorStar)
			}
		}
	}
}

func drawOutlines(c *canvas, sc *scene.Scene) {
	cam := sc.Camera
	for _, strip := range sc.Outlines().Strips {
		prevX, prevY := 0, 0
		prevOK := false
		for _, p := range strip.Positions {
			x, y, ok := projectToCell(cam, p)
			if ok && prevOK {
				c.line(prevX, prevY, x, y, glyphOutline, colorOutline)
			}
			prevX, prevY, prevOK = x, y, ok
		}
	}
}

func drawStations(c *canvas, sc *scene.Scene) {
	cloud := sc.Cloud()
	hover := sc.HoverIndex()
	for i := 0; i < cloud.Len(); i++ {
		x, y, ok := projectToCell(sc.Camera, cloud.At(i))
		if !ok {
			continue
		}
		if i == hover {
			continue // drawn last so nothing overwrites it
		}
		c.set(x, y, glyphStation, colorStation)
	}
	if hover >= 0 && hover < cloud.Len() {
		if x, y, ok := projectToCell(sc.Camera, cloud.At(hover)); ok {
			c.set(x, y, glyphStationHover, colorStationHover)
		}
	}
}

// projectToCell maps a world point to canvas cell coordinates, rejecting
// points on the far hemisphere or behind the camera.
func projectToCell(cam *scene.Camera, p geo.Vec3) (int, int, bool) {
	if p.Normalize().Dot(cam.Position.Normalize()) <= 0 {
		return 0, 0, false
	}
	px, py, _, ok := cam.WorldToScreen(p)
	if !ok {
		return 0, 0, false
	}
	return int(px), int(py) / cellAspect, true
}
