package scheduler

import (
	"fmt"
	"sort"

	"github.com/kingrea/trackplan/internal/talk"
	"github.com/kingrea/trackplan/internal/window"
)

// Planner exposes the contract the CLI, server, and viewer depend on.
type Planner interface {
	Schedule(talks []talk.Talk) Result
	Table() window.Table
}

// Logger records scheduling decisions. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

// Scheduler implements Planner for a fixed window table. It keeps no state
// between calls and may be shared across goroutines.
type Scheduler struct {
	table  window.Table
	logger Logger
}

// Option customizes scheduler construction.
type Option func(*Scheduler)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New wires a Scheduler to a validated window table.
func New(table window.Table, opts ...Option) (*Scheduler, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	s := &Scheduler{table: table, logger: nopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Table returns the window table the scheduler packs against.
func (s *Scheduler) Table() window.Table {
	return s.table
}

// Schedule assigns talks to bins first-fit-decreasing. The input slice is not
// modified. Every talk is either placed exactly once or listed in Skipped.
func (s *Scheduler) Schedule(talks []talk.Talk) Result {
	order := sortedOrder(talks)
	used := make([]bool, len(talks))

	result := Result{Schedule: Schedule{Tracks: make([]Track, s.table.Tracks)}}
	for i := range result.Schedule.Tracks {
		result.Schedule.Tracks[i].Number = i + 1
	}

	for _, bin := range s.table.Bins() {
		capacity := bin.Capacity()
		booked := 0
		track := &result.Schedule.Tracks[bin.Track-1]
		for _, idx := range order {
			if used[idx] {
				continue
			}
			tk := talks[idx]
			if booked+tk.Minutes > capacity {
				continue
			}
			used[idx] = true
			booked += tk.Minutes
			track.add(bin.Session, tk)
			result.Placements = append(result.Placements, Placement{
				Index:   idx,
				Talk:    tk,
				Track:   bin.Track,
				Session: bin.Session,
			})
		}
		s.logger.Printf("scheduler: %s booked %d/%d minutes", bin, booked, capacity)
	}

	maxCapacity := s.table.MaxCapacity()
	for idx, tk := range talks {
		if used[idx] {
			continue
		}
		skip := Skip{Index: idx, Talk: tk, Reason: SkipReasonNoCapacity, Detail: "no session had enough minutes left"}
		if tk.Minutes > maxCapacity {
			skip.Reason = SkipReasonTooLong
			skip.Detail = fmt.Sprintf("%d minutes exceeds the longest session (%d)", tk.Minutes, maxCapacity)
		}
		result.addSkip(skip)
	}
	if len(result.Skipped) > 0 {
		s.logger.Printf("scheduler: %d of %d talks unscheduled", len(result.Skipped), len(talks))
	}
	return result
}

// sortedOrder returns catalog indices ordered by duration descending. Equal
// durations keep catalog order.
func sortedOrder(talks []talk.Talk) []int {
	order := make([]int, len(talks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return talks[order[a]].Minutes > talks[order[b]].Minutes
	})
	return order
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
