package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/skywatch-labs/stationglobe/internal/geodata"
	"github.com/skywatch-labs/stationglobe/internal/scene"
)

const frameRate = 33 * time.Millisecond

// chrome rows reserved above and below the globe canvas
const chromeRows = 3

// Options configures the globe program.
type Options struct {
	Scene scene.Options

	// LoadStations and LoadOutlines fetch geometry asynchronously; either
	// may be nil when that layer is not configured.
	LoadStations func(context.Context) ([]geodata.Station, error)
	LoadOutlines func(context.Context) ([]geom.T, error)

	// SummarizeStation fetches a one-line point-data summary for a
	// clicked station; nil disables the lookup.
	SummarizeStation func(context.Context, string) (string, error)
}

// eventSink collects the scene's synchronous pick callbacks so the model
// can drain them after each pointer event. The model is copied by value
// between updates; the sink pointer survives those copies.
type eventSink struct {
	click    *scene.Hit
	hover    *scene.Hit
	hoverSet bool
}

// Model is the bubbletea program driving one globe view.
type Model struct {
	scene *scene.Scene
	sink  *eventSink

	width  int
	height int

	mouseX int
	mouseY int

	hover    *scene.Hit
	selected *geodata.Station
	summary  string

	stationCount int
	stripCount   int
	loadErr      error

	loadStations func(context.Context) ([]geodata.Station, error)
	loadOutlines func(context.Context) ([]geom.T, error)
	summarize    func(context.Context, string) (string, error)
}

// New assembles the model and the scene it owns, wiring the scene's pick
// callbacks into the model's event sink.
func New(opts Options) Model {
	sink := &eventSink{}
	sceneOpts := opts.Scene
	sceneOpts.OnStationClick = func(h scene.Hit) {
		sink.click = &h
	}
	sceneOpts.OnHover = func(h *scene.Hit) {
		sink.hover = h
		sink.hoverSet = true
	}
	return Model{
		scene:        scene.New(sceneOpts),
		sink:         sink,
		loadStations: opts.LoadStations,
		loadOutlines: opts.LoadOutlines,
		summarize:    opts.SummarizeStation,
	}
}

// Scene exposes the underlying scene, mainly for tests.
func (m Model) Scene() *scene.Scene { return m.scene }

type tickMsg time.Time

type stationsMsg []geodata.Station

type outlinesMsg []geom.T

type loadErrMsg struct {
	what string
	err  error
}

type summaryMsg struct {
	id   string
	text string
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.loadStations != nil {
		load := m.loadStations
		cmds = append(cmds, func() tea.Msg {
			stations, err := load(context.Background())
			if err != nil {
				return loadErrMsg{what: "stations", err: err}
			}
			return stationsMsg(stations)
		})
	}
	if m.loadOutlines != nil {
		load := m.loadOutlines
		cmds = append(cmds, func() tea.Msg {
			geoms, err := load(context.Background())
			if err != nil {
				return loadErrMsg{what: "outlines", err: err}
			}
			return outlinesMsg(geoms)
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.scene.Close()
			return m, tea.Quit
		case "esc":
			m.selected = nil
			m.summary = ""
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scene.Resize(msg.Width, m.canvasHeight()*cellAspect)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tickMsg:
		m.scene.Frame()
		return m, tick()

	case stationsMsg:
		if err := m.scene.SetStations(msg); err != nil {
			m.loadErr = err
			return m, nil
		}
		m.stationCount = m.scene.Cloud().Len()

	case outlinesMsg:
		m.scene.SetOutlines(msg)
		m.stripCount = len(m.scene.Outlines().Strips)

	case summaryMsg:
		// A newer selection may have superseded this fetch.
		if m.selected != nil && m.selected.ID == msg.id {
			m.summary = msg.text
		}

	case loadErrMsg:
		m.loadErr = eris.Wrap(msg.err, "ui: load "+msg.what)
	}

	return m, nil
}

// handleMouse maps terminal mouse events onto the scene's pointer space.
// The canvas sits below one header row, and each cell spans two virtual
// pixel rows.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y - 1

	px := float64(msg.X)
	py := float64(m.mouseY * cellAspect)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scene.Wheel(1)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scene.Wheel(-1)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.scene.PointerDown(px, py)
		}
	case tea.MouseActionMotion:
		m.scene.PointerMove(px, py)
	case tea.MouseActionRelease:
		m.scene.PointerUp(px, py)
	}

	return m.drainSink()
}

// drainSink folds pending pick callbacks into the model. A confirmed
// click may kick off the async point-data summary fetch.
func (m Model) drainSink() (tea.Model, tea.Cmd) {
	if m.sink.hoverSet {
		m.hover = m.sink.hover
		m.sink.hover = nil
		m.sink.hoverSet = false
	}

	var cmd tea.Cmd
	if m.sink.click != nil {
		if cloud := m.scene.Cloud(); cloud != nil && m.sink.click.Index < cloud.Len() {
			st := cloud.Stations[m.sink.click.Index]
			m.selected = &st
			m.summary = ""
			if m.summarize != nil {
				summarize := m.summarize
				id := st.ID
				cmd = func() tea.Msg {
					text, err := summarize(context.Background(), id)
					if err != nil {
						return summaryMsg{id: id, text: "points unavailable"}
					}
					return summaryMsg{id: id, text: text}
				}
			}
		}
		m.sink.click = nil
	}
	return m, cmd
}

func (m Model) canvasHeight() int {
	h := m.height - chromeRows
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) View() string {
	if m.width < 20 || m.height < 8 {
		return "Globe view requires a larger terminal"
	}

	c := newCanvas(m.width, m.canvasHeight())
	drawGlobe(c, m.scene)
	if m.hover != nil {
		if cloud := m.scene.Cloud(); cloud != nil && m.hover.Index < cloud.Len() {
			drawTooltip(c, cloud.Stations[m.hover.Index], m.mouseX, m.mouseY)
		}
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(c.render())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("80"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	title := titleStyle.Render("Station Globe")
	counts := dimStyle.Render(fmt.Sprintf("%d stations | %d outline strips", m.stationCount, m.stripCount))
	dist := dimStyle.Render(fmt.Sprintf("dist %.0f", m.scene.Camera.Distance()))
	return fmt.Sprintf("%s  %s  %s", title, counts, dist)
}

func (m Model) renderStatus() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))

	if m.loadErr != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("load error: " + m.loadErr.Error())
	}
	if m.selected != nil {
		name := m.selected.Name
		if name == "" {
			name = m.selected.ID
		}
		sel := accentStyle.Render(fmt.Sprintf(">>> %s [%s] %.3f, %.3f",
			name, m.selected.ID, m.selected.Latitude, m.selected.Longitude))
		if m.summary != "" {
			sel += dimStyle.Render("  " + m.summary)
		}
		return sel + dimStyle.Render("  esc clear | q quit")
	}
	return dimStyle.Render("drag orbit | wheel zoom | click select | q quit")
}
