package window

import (
	"fmt"
)

const (
	// MinutesPerDay bounds every boundary in the table.
	MinutesPerDay = 24 * 60
	// MaxTracks is the number of parallel tracks the scheduler supports.
	MaxTracks = 2
)

// Session identifies one half of a track's day.
type Session int

const (
	Morning Session = iota
	Afternoon
)

func (s Session) String() string {
	switch s {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	default:
		return fmt.Sprintf("session(%d)", int(s))
	}
}

// MarshalText encodes the session by name so JSON carries "morning" or
// "afternoon" rather than an integer.
func (s Session) MarshalText() ([]byte, error) {
	switch s {
	case Morning, Afternoon:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("window: unknown session %d", int(s))
	}
}

// UnmarshalText parses a session name.
func (s *Session) UnmarshalText(text []byte) error {
	switch string(text) {
	case "morning":
		*s = Morning
	case "afternoon":
		*s = Afternoon
	default:
		return fmt.Errorf("window: unknown session %q", text)
	}
	return nil
}

// Window is a half-open [Start, End) range in minutes after midnight.
type Window struct {
	Start int
	End   int
}

// Capacity is the number of minutes that fit inside the window.
func (w Window) Capacity() int {
	return w.End - w.Start
}

// Table captures the day boundaries shared by every track.
type Table struct {
	MorningStart      int
	Lunch             int
	AfternoonStart    int
	NetworkingStart   int
	NetworkingMinutes int
	Tracks            int
}

// Default returns the conference day: 9:00 start, lunch at 12:00, afternoon at
// 13:00, networking from 16:00 for an hour, two tracks.
func Default() Table {
	return Table{
		MorningStart:      9 * 60,
		Lunch:             12 * 60,
		AfternoonStart:    13 * 60,
		NetworkingStart:   16 * 60,
		NetworkingMinutes: 60,
		Tracks:            2,
	}
}

// Validate checks the boundaries are ordered and the track count is supported.
func (t Table) Validate() error {
	if t.MorningStart < 0 {
		return fmt.Errorf("window: morning start %d is before midnight", t.MorningStart)
	}
	if t.Lunch <= t.MorningStart {
		return fmt.Errorf("window: lunch (%d) must be after morning start (%d)", t.Lunch, t.MorningStart)
	}
	if t.AfternoonStart < t.Lunch {
		return fmt.Errorf("window: afternoon start (%d) must not be before lunch (%d)", t.AfternoonStart, t.Lunch)
	}
	if t.NetworkingStart <= t.AfternoonStart {
		return fmt.Errorf("window: networking start (%d) must be after afternoon start (%d)", t.NetworkingStart, t.AfternoonStart)
	}
	if t.NetworkingStart >= MinutesPerDay {
		return fmt.Errorf("window: networking start (%d) must be before midnight", t.NetworkingStart)
	}
	if t.NetworkingMinutes <= 0 {
		return fmt.Errorf("window: networking duration must be positive, got %d", t.NetworkingMinutes)
	}
	if t.Tracks < 1 || t.Tracks > MaxTracks {
		return fmt.Errorf("window: tracks must be between 1 and %d, got %d", MaxTracks, t.Tracks)
	}
	return nil
}

// Morning is the window between the opening talk and lunch.
func (t Table) Morning() Window {
	return Window{Start: t.MorningStart, End: t.Lunch}
}

// Afternoon is the window between the end of lunch and the networking event.
func (t Table) Afternoon() Window {
	return Window{Start: t.AfternoonStart, End: t.NetworkingStart}
}

// Window returns the window backing a session.
func (t Table) Window(s Session) Window {
	if s == Afternoon {
		return t.Afternoon()
	}
	return t.Morning()
}

// Bin is one (track, session) container the scheduler fills.
type Bin struct {
	Track   int
	Session Session
	Window  Window
}

// Capacity is the bin's window length in minutes.
func (b Bin) Capacity() int {
	return b.Window.Capacity()
}

func (b Bin) String() string {
	return fmt.Sprintf("track %d %s", b.Track, b.Session)
}

// Bins lists the containers in visiting order: each track's morning, then its
// afternoon, track 1 first.
func (t Table) Bins() []Bin {
	bins := make([]Bin, 0, t.Tracks*2)
	for track := 1; track <= t.Tracks; track++ {
		bins = append(bins,
			Bin{Track: track, Session: Morning, Window: t.Morning()},
			Bin{Track: track, Session: Afternoon, Window: t.Afternoon()},
		)
	}
	return bins
}

// MaxCapacity is the largest single-bin capacity in the table.
func (t Table) MaxCapacity() int {
	morning, afternoon := t.Morning().Capacity(), t.Afternoon().Capacity()
	if afternoon > morning {
		return afternoon
	}
	return morning
}
