package scheduler

import (
	"github.com/kingrea/trackplan/internal/talk"
	"github.com/kingrea/trackplan/internal/window"
)

// Track holds one track's talks in assigned order. The networking event is not
// stored here; the timeline builder appends it.
type Track struct {
	Number    int         `json:"track"`
	Morning   []talk.Talk `json:"morning"`
	Afternoon []talk.Talk `json:"afternoon"`
}

// Talks returns the talks of one session.
func (t Track) Talks(s window.Session) []talk.Talk {
	if s == window.Afternoon {
		return t.Afternoon
	}
	return t.Morning
}

// Minutes sums the durations booked into a session.
func (t Track) Minutes(s window.Session) int {
	return talk.TotalMinutes(t.Talks(s))
}

func (t *Track) add(s window.Session, tk talk.Talk) {
	if s == window.Afternoon {
		t.Afternoon = append(t.Afternoon, tk)
		return
	}
	t.Morning = append(t.Morning, tk)
}

// Schedule is the full set of tracks for one conference day.
type Schedule struct {
	Tracks []Track `json:"tracks"`
}

// Track returns the 1-based track n.
func (s Schedule) Track(n int) (Track, bool) {
	if n < 1 || n > len(s.Tracks) {
		return Track{}, false
	}
	return s.Tracks[n-1], true
}

// Placement records where a catalog entry landed.
type Placement struct {
	Index   int
	Talk    talk.Talk
	Track   int
	Session window.Session
}

// SkipReasonCode enumerates why a talk was left out of the schedule.
type SkipReasonCode string

const (
	// SkipReasonTooLong marks a talk longer than every session window.
	SkipReasonTooLong SkipReasonCode = "too-long"
	// SkipReasonNoCapacity marks a talk that would fit an empty bin but found
	// none with enough room left.
	SkipReasonNoCapacity SkipReasonCode = "no-capacity"
)

// Skip describes one unscheduled catalog entry.
type Skip struct {
	Index  int
	Talk   talk.Talk
	Reason SkipReasonCode
	Detail string
}

// Outcome tells callers whether the whole catalog was placed.
type Outcome string

const (
	OutcomeScheduled          Outcome = "scheduled"
	OutcomePartiallyScheduled Outcome = "partially-scheduled"
)

// Result is the scheduler's decision for one catalog.
type Result struct {
	Schedule   Schedule
	Placements []Placement
	// Skipped lists unscheduled talks in catalog order.
	Skipped []Skip
}

// Outcome reports OutcomePartiallyScheduled when any talk was skipped.
func (r Result) Outcome() Outcome {
	if len(r.Skipped) > 0 {
		return OutcomePartiallyScheduled
	}
	return OutcomeScheduled
}

// Unscheduled returns the skipped talks in catalog order.
func (r Result) Unscheduled() []talk.Talk {
	if len(r.Skipped) == 0 {
		return nil
	}
	out := make([]talk.Talk, len(r.Skipped))
	for i, skip := range r.Skipped {
		out[i] = skip.Talk
	}
	return out
}

func (r *Result) addSkip(skip Skip) {
	r.Skipped = append(r.Skipped, skip)
}
