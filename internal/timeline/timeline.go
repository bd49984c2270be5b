// Package timeline turns scheduled tracks into absolute start times.
package timeline

import (
	"fmt"

	"github.com/kingrea/trackplan/internal/scheduler"
	"github.com/kingrea/trackplan/internal/talk"
	"github.com/kingrea/trackplan/internal/window"
)

// Entry is one talk pinned to its start minute.
type Entry struct {
	Start      int            `json:"start"`
	Talk       talk.Talk      `json:"talk"`
	Session    window.Session `json:"session"`
	Networking bool           `json:"networking,omitempty"`
}

// End is the minute the entry finishes.
func (e Entry) End() int {
	return e.Start + e.Talk.Minutes
}

// TrackTimeline is the ordered day for one track.
type TrackTimeline struct {
	Track   int     `json:"track"`
	Entries []Entry `json:"entries"`
}

// InvariantViolationError reports a track whose session overruns its window or
// holds a talk that cannot occupy time. Scheduler output never triggers it;
// hand-built tracks can.
type InvariantViolationError struct {
	Track    int
	Session  window.Session
	Minutes  int
	Capacity int
	// Err is the talk validation failure; nil when the session is overfull.
	Err error
}

func (e *InvariantViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("timeline: track %d %s: %v", e.Track, e.Session, e.Err)
	}
	return fmt.Sprintf("timeline: track %d %s holds %d minutes, window allows %d", e.Track, e.Session, e.Minutes, e.Capacity)
}

func (e *InvariantViolationError) Unwrap() error {
	return e.Err
}

// Build rejects tracks with malformed talks or overfull sessions. It then
// walks the morning from the morning start and the afternoon from the
// afternoon start, and closes the day with the networking event at the later
// of its fixed start and the end of the last afternoon talk.
func Build(track scheduler.Track, table window.Table) ([]Entry, error) {
	for _, session := range []window.Session{window.Morning, window.Afternoon} {
		minutes, capacity := track.Minutes(session), table.Window(session).Capacity()
		for _, tk := range track.Talks(session) {
			if err := tk.Validate(); err != nil {
				return nil, &InvariantViolationError{Track: track.Number, Session: session, Minutes: minutes, Capacity: capacity, Err: err}
			}
		}
		if minutes > capacity {
			return nil, &InvariantViolationError{Track: track.Number, Session: session, Minutes: minutes, Capacity: capacity}
		}
	}

	entries := make([]Entry, 0, len(track.Morning)+len(track.Afternoon)+1)
	clock := table.MorningStart
	for _, tk := range track.Morning {
		entries = append(entries, Entry{Start: clock, Talk: tk, Session: window.Morning})
		clock += tk.Minutes
	}
	clock = table.AfternoonStart
	for _, tk := range track.Afternoon {
		entries = append(entries, Entry{Start: clock, Talk: tk, Session: window.Afternoon})
		clock += tk.Minutes
	}
	if clock < table.NetworkingStart {
		clock = table.NetworkingStart
	}
	entries = append(entries, Entry{
		Start:      clock,
		Talk:       talk.Networking(table.NetworkingMinutes),
		Session:    window.Afternoon,
		Networking: true,
	})
	return entries, nil
}

// BuildSchedule builds every track of a schedule in track order.
func BuildSchedule(schedule scheduler.Schedule, table window.Table) ([]TrackTimeline, error) {
	out := make([]TrackTimeline, 0, len(schedule.Tracks))
	for _, track := range schedule.Tracks {
		entries, err := Build(track, table)
		if err != nil {
			return nil, err
		}
		out = append(out, TrackTimeline{Track: track.Number, Entries: entries})
	}
	return out, nil
}
