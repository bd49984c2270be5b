package format

import (
	"github.com/kingrea/trackplan/internal/scheduler"
	"github.com/kingrea/trackplan/internal/timeline"
)

// Document is the JSON view of a scheduling run, shared by the CLI -json flag
// and the HTTP API.
type Document struct {
	RunID       string            `json:"run_id,omitempty"`
	Outcome     scheduler.Outcome `json:"outcome"`
	Tracks      []TrackDocument   `json:"tracks"`
	Unscheduled []SkipDocument    `json:"unscheduled"`
}

// TrackDocument is one track's rendered day.
type TrackDocument struct {
	Track   int             `json:"track"`
	Entries []EntryDocument `json:"entries"`
}

// EntryDocument is one line of a track, with both raw and rendered times.
type EntryDocument struct {
	Start      int    `json:"start"`
	Clock      string `json:"clock"`
	Title      string `json:"title"`
	Minutes    int    `json:"minutes"`
	Label      string `json:"label,omitempty"`
	Session    string `json:"session"`
	Networking bool   `json:"networking,omitempty"`
}

// SkipDocument describes an unscheduled talk.
type SkipDocument struct {
	Title   string `json:"title"`
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

// NewDocument assembles the JSON view from a scheduler result and its timelines.
func NewDocument(runID string, result scheduler.Result, timelines []timeline.TrackTimeline) Document {
	doc := Document{
		RunID:       runID,
		Outcome:     result.Outcome(),
		Tracks:      make([]TrackDocument, 0, len(timelines)),
		Unscheduled: make([]SkipDocument, 0, len(result.Skipped)),
	}
	for _, tl := range timelines {
		td := TrackDocument{Track: tl.Track, Entries: make([]EntryDocument, 0, len(tl.Entries))}
		for _, e := range tl.Entries {
			ed := EntryDocument{
				Start:      e.Start,
				Clock:      Clock(e.Start),
				Title:      e.Talk.Title,
				Minutes:    e.Talk.Minutes,
				Session:    e.Session.String(),
				Networking: e.Networking,
			}
			if !e.Networking {
				ed.Label = Label(e.Talk)
			}
			td.Entries = append(td.Entries, ed)
		}
		doc.Tracks = append(doc.Tracks, td)
	}
	for _, skip := range result.Skipped {
		doc.Unscheduled = append(doc.Unscheduled, SkipDocument{
			Title:   skip.Talk.Title,
			Minutes: skip.Talk.Minutes,
			Label:   Label(skip.Talk),
			Reason:  string(skip.Reason),
			Detail:  skip.Detail,
		})
	}
	return doc
}
