package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch-labs/stationglobe/internal/geodata"
)

func TestCanvasLine(t *testing.T) {
	t.Parallel()

	c := newCanvas(10, 10)
	c.line(0, 0, 9, 9, '·', "60")

	assert.Equal(t, '·', c.at(0, 0))
	assert.Equal(t, '·', c.at(5, 5))
	assert.Equal(t, '·', c.at(9, 9))
	assert.Equal(t, ' ', c.at(9, 0))
}

func TestCanvasClipping(t *testing.T) {
	t.Parallel()

	c := newCanvas(4, 4)
	c.set(-1, 0, 'x', "")
	c.set(0, 99, 'x', "")
	c.text(2, 1, "long text", "")

	assert.Equal(t, 'o', c.at(3, 1))
	assert.Equal(t, rune(0), c.at(4, 1))
}

func TestTooltipOriginFlipping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		cellX, cellY int
		wantX, wantY int
	}{
		{"below right of cursor", 10, 10, 12, 11},
		{"flips left near right edge", 76, 10, 65, 11},
		{"flips above near bottom edge", 10, 22, 12, 16},
		{"clamps at origin corner", 0, 0, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			x, y := tooltipOrigin(80, 24, tt.cellX, tt.cellY, 10, 6)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestTooltipLines(t *testing.T) {
	t.Parallel()

	elev := 1655.0
	st := geodata.Station{
		ID:        "KDEN",
		Name:      "Denver Intl",
		Network:   "ASOS",
		Timezone:  "America/Denver",
		Latitude:  39.86,
		Longitude: -104.67,
		Elevation: &elev,
	}

	lines := tooltipLines(st)
	require.Len(t, lines, 6)
	assert.Equal(t, "Denver Intl", lines[0])
	assert.Equal(t, "KDEN", lines[1])
	assert.Contains(t, lines, "39.860, -104.670")
	assert.Contains(t, lines, "1655 m")

	// Name falls back to the id, not emitted twice.
	lines = tooltipLines(geodata.Station{ID: "KXYZ", Latitude: 1, Longitude: 2})
	require.Len(t, lines, 2)
	assert.Equal(t, "KXYZ", lines[0])
}

func TestDrawTooltipFrameInBounds(t *testing.T) {
	t.Parallel()

	c := newCanvas(40, 12)
	drawTooltip(c, geodata.Station{ID: "KABC", Latitude: 1, Longitude: 2}, 38, 11)

	// Everything the tooltip drew must be inside the canvas; probing the
	// border runes proves it flipped away from the corner.
	found := false
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			if c.at(x, y) == '┌' {
				found = true
			}
		}
	}
	assert.True(t, found, "tooltip frame should be drawn on the canvas")
}
