package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch-labs/stationglobe/internal/geodata"
	"github.com/skywatch-labs/stationglobe/internal/scene"
)

// settle advances the scene until the damped controls converge.
func settle(m Model) {
	for i := 0; i < 200; i++ {
		m.scene.Frame()
	}
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()

	m := New(opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	next, _ = m.Update(stationsMsg{
		{ID: "KAAA", Name: "Alpha", Latitude: 0, Longitude: 0},
		{ID: "KBBB", Name: "Bravo", Latitude: 0, Longitude: 180},
	})
	m = next.(Model)
	settle(m)
	return m
}

func TestClickSelectsStationAndFetchesSummary(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{
		Scene: scene.Options{Radius: 100},
		SummarizeStation: func(_ context.Context, id string) (string, error) {
			return "42 points through 2024-01-01T12:00:00Z", nil
		},
	})

	// KAAA projects to the viewport center; the canvas starts one header
	// row down.
	centerCell := tea.MouseMsg{X: 50, Y: 1 + m.canvasHeight()/2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	next, _ := m.Update(centerCell)
	m = next.(Model)

	centerCell.Action = tea.MouseActionRelease
	next, cmd := m.Update(centerCell)
	m = next.(Model)

	require.NotNil(t, m.selected)
	assert.Equal(t, "KAAA", m.selected.ID)
	require.NotNil(t, cmd, "click should start the summary fetch")

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Contains(t, m.View(), "42 points")
}

func TestDragOrbitsWithoutSelecting(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{Scene: scene.Options{Radius: 100}})

	press := tea.MouseMsg{X: 50, Y: 1 + m.canvasHeight()/2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	next, _ := m.Update(press)
	m = next.(Model)

	for _, dx := range []int{5, 10, 15} {
		move := tea.MouseMsg{X: 50 + dx, Y: press.Y, Action: tea.MouseActionMotion}
		next, _ = m.Update(move)
		m = next.(Model)
	}

	release := tea.MouseMsg{X: 65, Y: press.Y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
	next, _ = m.Update(release)
	m = next.(Model)

	assert.Nil(t, m.selected, "a drag cycle must not select")
}

func TestEscClearsSelection(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{Scene: scene.Options{Radius: 100}})
	st := geodata.Station{ID: "KAAA"}
	m.selected = &st
	m.summary = "stale"

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	assert.Nil(t, m.selected)
	assert.Empty(t, m.summary)
}

func TestViewRendersChrome(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, Options{Scene: scene.Options{Radius: 100}})
	out := m.View()

	assert.True(t, strings.Contains(out, "Station Globe"))
	assert.True(t, strings.Contains(out, "2 stations"))
}
