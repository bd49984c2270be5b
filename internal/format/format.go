// Package format renders scheduled timelines as text. The scheduler and the
// timeline builder only deal in minute-of-day integers; this package owns the
// 12-hour clock and the "lightning" label.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/trackplan/internal/scheduler"
	"github.com/kingrea/trackplan/internal/talk"
	"github.com/kingrea/trackplan/internal/timeline"
	"github.com/kingrea/trackplan/internal/window"
)

// Clock renders a minute-of-day as 12-hour time, e.g. 09:00AM or 01:45PM.
func Clock(minute int) string {
	hour, mins := minute/60, minute%60
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	if hour > 12 {
		hour -= 12
	}
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%02d:%02d%s", hour, mins, period)
}

// Label is the duration suffix shown after a talk title.
func Label(t talk.Talk) string {
	if t.IsLightning() {
		return "lightning"
	}
	return fmt.Sprintf("%dmin", t.Minutes)
}

// Styles controls how each kind of line is decorated.
type Styles struct {
	Heading lipgloss.Style
	Time    lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Break   lipgloss.Style
	Warning lipgloss.Style

	plain bool
}

// DefaultStyles colours the schedule for terminals.
func DefaultStyles() Styles {
	return Styles{
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")),
		Time:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Italic(true),
		Break:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}
}

// PlainStyles renders undecorated text.
func PlainStyles() Styles {
	return Styles{plain: true}
}

func (s Styles) render(style lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return style.Render(text)
}

// Renderer writes schedules as text.
type Renderer struct {
	Styles Styles
}

// NewRenderer returns a Renderer using the given styles.
func NewRenderer(styles Styles) *Renderer {
	return &Renderer{Styles: styles}
}

// Render writes every track followed by the unscheduled talks, if any.
func (r *Renderer) Render(w io.Writer, timelines []timeline.TrackTimeline, table window.Table, skipped []scheduler.Skip) error {
	var b strings.Builder
	for i, tl := range timelines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Track(tl, table))
	}
	if len(skipped) > 0 {
		b.WriteString("\n")
		b.WriteString(r.Unscheduled(skipped))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Track renders one track: heading, morning, lunch, afternoon, networking.
func (r *Renderer) Track(tl timeline.TrackTimeline, table window.Table) string {
	var b strings.Builder
	b.WriteString(r.Styles.render(r.Styles.Heading, fmt.Sprintf("Track %d:", tl.Track)))
	b.WriteString("\n")
	lunchWritten := false
	for _, entry := range tl.Entries {
		if !lunchWritten && entry.Session == window.Afternoon {
			b.WriteString(r.breakLine(table.Lunch, "Lunch"))
			lunchWritten = true
		}
		if entry.Networking {
			b.WriteString(r.breakLine(entry.Start, entry.Talk.Title))
			continue
		}
		b.WriteString(r.Line(entry))
	}
	if !lunchWritten {
		b.WriteString(r.breakLine(table.Lunch, "Lunch"))
	}
	return b.String()
}

// Line renders a single talk entry.
func (r *Renderer) Line(entry timeline.Entry) string {
	return fmt.Sprintf("%s %s %s\n",
		r.Styles.render(r.Styles.Time, Clock(entry.Start)),
		r.Styles.render(r.Styles.Title, entry.Talk.Title),
		r.Styles.render(r.Styles.Label, Label(entry.Talk)),
	)
}

func (r *Renderer) breakLine(start int, title string) string {
	return fmt.Sprintf("%s %s\n",
		r.Styles.render(r.Styles.Time, Clock(start)),
		r.Styles.render(r.Styles.Break, title),
	)
}

// Unscheduled lists skipped talks with the reason they were left out.
func (r *Renderer) Unscheduled(skipped []scheduler.Skip) string {
	var b strings.Builder
	b.WriteString(r.Styles.render(r.Styles.Warning, "Unscheduled:"))
	b.WriteString("\n")
	for _, skip := range skipped {
		fmt.Fprintf(&b, "  %s %s (%s)\n",
			r.Styles.render(r.Styles.Title, skip.Talk.Title),
			r.Styles.render(r.Styles.Label, Label(skip.Talk)),
			skip.Reason,
		)
	}
	return b.String()
}
