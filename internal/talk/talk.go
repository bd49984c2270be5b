// Package talk defines the conference talk value type shared by the catalog
// readers, the scheduler, and the renderers.
package talk

import (
	"fmt"
	"strings"
)

const (
	// LightningMinutes is the duration rendered as "lightning" instead of "5min".
	LightningMinutes = 5
	// NetworkingTitle names the pseudo-talk that closes every track.
	NetworkingTitle = "Networking Event"
)

// Talk is a single catalog entry. Values are never mutated after construction.
type Talk struct {
	Title   string `json:"title" yaml:"title"`
	Minutes int    `json:"minutes" yaml:"minutes"`
}

// InvalidTalkError reports a talk that cannot be scheduled at all.
type InvalidTalkError struct {
	Title   string
	Minutes int
	Reason  string
}

func (e *InvalidTalkError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("talk: invalid talk: %s", e.Reason)
	}
	return fmt.Sprintf("talk: invalid talk %q: %s", e.Title, e.Reason)
}

// New validates and builds a Talk. Titles are trimmed; durations must be positive.
func New(title string, minutes int) (Talk, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Talk{}, &InvalidTalkError{Minutes: minutes, Reason: "title is required"}
	}
	if minutes <= 0 {
		return Talk{}, &InvalidTalkError{Title: title, Minutes: minutes, Reason: fmt.Sprintf("duration must be positive, got %d", minutes)}
	}
	return Talk{Title: title, Minutes: minutes}, nil
}

// MustNew is New for fixed catalogs compiled into the binary.
func MustNew(title string, minutes int) Talk {
	t, err := New(title, minutes)
	if err != nil {
		panic(err)
	}
	return t
}

// Networking builds the trailing networking event for a track.
func Networking(minutes int) Talk {
	return Talk{Title: NetworkingTitle, Minutes: minutes}
}

// IsLightning reports whether the talk uses the lightning slot length.
func (t Talk) IsLightning() bool {
	return t.Minutes == LightningMinutes
}

// Validate re-checks a Talk built as a struct literal rather than through New.
func (t Talk) Validate() error {
	_, err := New(t.Title, t.Minutes)
	return err
}

// TotalMinutes sums the durations of talks.
func TotalMinutes(talks []Talk) int {
	total := 0
	for _, t := range talks {
		total += t.Minutes
	}
	return total
}
