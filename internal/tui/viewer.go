// Package tui renders a finished schedule in an interactive terminal viewer,
// one track at a time.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/trackplan/internal/format"
	"github.com/kingrea/trackplan/internal/scheduler"
	"github.com/kingrea/trackplan/internal/timeline"
	"github.com/kingrea/trackplan/internal/window"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 6
)

// Viewer is the bubbletea model behind `trackplan -tui`.
type Viewer struct {
	tracks   []timeline.TrackTimeline
	table    window.Table
	skipped  []scheduler.Skip
	renderer *format.Renderer

	keys     KeyMap
	help     help.Model
	viewport viewport.Model

	current         int
	showUnscheduled bool
	width           int
	height          int
}

// NewViewer builds a viewer over already-built timelines.
func NewViewer(tracks []timeline.TrackTimeline, table window.Table, skipped []scheduler.Skip, renderer *format.Renderer) *Viewer {
	if renderer == nil {
		renderer = format.NewRenderer(format.DefaultStyles())
	}
	v := &Viewer{
		tracks:   tracks,
		table:    table,
		skipped:  skipped,
		renderer: renderer,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	// Scrolling is delegated to the viewport; drive it from the viewer's own
	// bindings so help and behaviour cannot drift apart.
	v.viewport.KeyMap.Up = v.keys.Up
	v.viewport.KeyMap.Down = v.keys.Down
	v.refresh()
	return v
}

// Run starts the viewer on the alternate screen and blocks until the user quits.
func Run(v *Viewer) error {
	_, err := tea.NewProgram(v, tea.WithAltScreen()).Run()
	return err
}

// Init is called once when the program starts.
func (v *Viewer) Init() tea.Cmd {
	return nil
}

// Update handles resizes and key presses.
func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.help.Width = msg.Width
		v.viewport.Width = max(20, msg.Width-4)
		v.viewport.Height = max(1, msg.Height-chromeHeight)
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.NextTrack):
			v.selectTrack(v.current + 1)
			return v, nil
		case key.Matches(msg, v.keys.PrevTrack):
			v.selectTrack(v.current - 1)
			return v, nil
		case key.Matches(msg, v.keys.Unscheduled):
			v.showUnscheduled = !v.showUnscheduled
			v.refresh()
			return v, nil
		case key.Matches(msg, v.keys.Help):
			v.help.ShowAll = !v.help.ShowAll
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the track tabs, the current track, and the help bar.
func (v *Viewer) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render("TRACKPLAN")
	body := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(v.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		header+"  "+v.renderTabs(),
		body,
		v.help.View(v.keys),
	)
}

// Current returns the 1-based number of the track on screen, or 0 when the
// schedule has no tracks.
func (v *Viewer) Current() int {
	if len(v.tracks) == 0 {
		return 0
	}
	return v.tracks[v.current].Track
}

func (v *Viewer) selectTrack(i int) {
	if len(v.tracks) == 0 {
		return
	}
	n := len(v.tracks)
	v.current = ((i % n) + n) % n
	v.refresh()
	v.viewport.GotoTop()
}

func (v *Viewer) refresh() {
	v.viewport.SetContent(v.content())
}

func (v *Viewer) content() string {
	var b strings.Builder
	if len(v.tracks) == 0 {
		b.WriteString("No tracks to show.\n")
	} else {
		b.WriteString(v.renderer.Track(v.tracks[v.current], v.table))
	}
	if v.showUnscheduled {
		b.WriteString("\n")
		if len(v.skipped) == 0 {
			b.WriteString("Every talk was scheduled.\n")
		} else {
			b.WriteString(v.renderer.Unscheduled(v.skipped))
		}
	}
	return b.String()
}

func (v *Viewer) renderTabs() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	tabs := make([]string, 0, len(v.tracks)+1)
	for i, tl := range v.tracks {
		label := fmt.Sprintf("Track %d", tl.Track)
		if i == v.current {
			tabs = append(tabs, active.Render("["+label+"]"))
		} else {
			tabs = append(tabs, inactive.Render(" "+label+" "))
		}
	}
	if len(v.skipped) > 0 {
		tabs = append(tabs, lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).
			Render(fmt.Sprintf("%d unscheduled", len(v.skipped))))
	}
	return strings.Join(tabs, " ")
}
