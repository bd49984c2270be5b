package scheduler

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/kingrea/trackplan/internal/talk"
	"github.com/kingrea/trackplan/internal/window"
)

func TestSchedulerPacksMorningFirstFitDecreasing(t *testing.T) {
	talks := []talk.Talk{
		talk.MustNew("A", 60),
		talk.MustNew("B", 45),
		talk.MustNew("C", 30),
		talk.MustNew("D", 5),
		talk.MustNew("E", 60),
	}
	result := newScheduler(t, window.Default()).Schedule(talks)

	track1, ok := result.Schedule.Track(1)
	if !ok {
		t.Fatalf("missing track 1")
	}
	if got, want := titles(track1.Morning), []string{"A", "E", "B", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("track 1 morning = %v, want %v", got, want)
	}
	if got, want := titles(track1.Afternoon), []string{"C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("track 1 afternoon = %v, want %v", got, want)
	}
	track2, _ := result.Schedule.Track(2)
	if len(track2.Morning) != 0 || len(track2.Afternoon) != 0 {
		t.Fatalf("expected empty track 2, got %+v", track2)
	}
	if result.Outcome() != OutcomeScheduled {
		t.Fatalf("outcome = %s, want %s", result.Outcome(), OutcomeScheduled)
	}
}

func TestSchedulerEmptyCatalog(t *testing.T) {
	result := newScheduler(t, window.Default()).Schedule(nil)
	if len(result.Schedule.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(result.Schedule.Tracks))
	}
	for _, track := range result.Schedule.Tracks {
		if len(track.Morning) != 0 || len(track.Afternoon) != 0 {
			t.Fatalf("expected empty track, got %+v", track)
		}
	}
	if result.Outcome() != OutcomeScheduled || len(result.Unscheduled()) != 0 {
		t.Fatalf("empty catalog should be fully scheduled")
	}
}

func TestSchedulerFillsBinExactly(t *testing.T) {
	talks := []talk.Talk{talk.MustNew("Keynote", 180), talk.MustNew("Lightning", 5)}
	result := newScheduler(t, window.Default()).Schedule(talks)
	track1, _ := result.Schedule.Track(1)
	if got := titles(track1.Morning); !reflect.DeepEqual(got, []string{"Keynote"}) {
		t.Fatalf("track 1 morning = %v, want [Keynote]", got)
	}
	if track1.Minutes(window.Morning) != 180 {
		t.Fatalf("morning minutes = %d, want 180", track1.Minutes(window.Morning))
	}
	if got := titles(track1.Afternoon); !reflect.DeepEqual(got, []string{"Lightning"}) {
		t.Fatalf("track 1 afternoon = %v, want [Lightning]", got)
	}
}

func TestSchedulerPlacesEverythingUnderCapacity(t *testing.T) {
	cases := []struct {
		count          int
		wantPerSession [4]int
	}{
		{count: 5, wantPerSession: [4]int{3, 2, 0, 0}},
		{count: 9, wantPerSession: [4]int{3, 3, 3, 0}},
		{count: 12, wantPerSession: [4]int{3, 3, 3, 3}},
	}
	for _, tc := range cases {
		result := newScheduler(t, window.Default()).Schedule(uniformCatalog(tc.count, 60))
		if result.Outcome() != OutcomeScheduled {
			t.Fatalf("%d talks: outcome = %s", tc.count, result.Outcome())
		}
		got := [4]int{
			len(result.Schedule.Tracks[0].Morning),
			len(result.Schedule.Tracks[0].Afternoon),
			len(result.Schedule.Tracks[1].Morning),
			len(result.Schedule.Tracks[1].Afternoon),
		}
		if got != tc.wantPerSession {
			t.Fatalf("%d talks: per-session counts = %v, want %v", tc.count, got, tc.wantPerSession)
		}
	}
}

func TestSchedulerSurfacesOverflow(t *testing.T) {
	talks := uniformCatalog(13, 60)
	result := newScheduler(t, window.Default()).Schedule(talks)
	if result.Outcome() != OutcomePartiallyScheduled {
		t.Fatalf("outcome = %s, want %s", result.Outcome(), OutcomePartiallyScheduled)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped talk, got %d", len(result.Skipped))
	}
	skip := result.Skipped[0]
	if skip.Index != 12 || skip.Talk.Title != "talk-12" {
		t.Fatalf("expected last catalog entry skipped, got %+v", skip)
	}
	if skip.Reason != SkipReasonNoCapacity {
		t.Fatalf("reason = %s, want %s", skip.Reason, SkipReasonNoCapacity)
	}
	if len(result.Placements)+len(result.Skipped) != len(talks) {
		t.Fatalf("placements + skipped = %d, want %d", len(result.Placements)+len(result.Skipped), len(talks))
	}
}

func TestSchedulerReportsTooLongTalks(t *testing.T) {
	talks := []talk.Talk{talk.MustNew("Marathon", 200), talk.MustNew("Short", 30)}
	result := newScheduler(t, window.Default()).Schedule(talks)
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != SkipReasonTooLong {
		t.Fatalf("expected too-long skip, got %+v", result.Skipped)
	}
	if got := result.Unscheduled(); len(got) != 1 || got[0].Title != "Marathon" {
		t.Fatalf("unscheduled = %+v", got)
	}
}

func TestSchedulerKeepsCatalogOrderOnTies(t *testing.T) {
	talks := []talk.Talk{
		talk.MustNew("first-45", 45),
		talk.MustNew("first-60", 60),
		talk.MustNew("second-45", 45),
		talk.MustNew("second-60", 60),
		talk.MustNew("third-45", 45),
	}
	result := newScheduler(t, window.Default()).Schedule(talks)
	want := []string{"first-60", "second-60", "first-45"}
	if got := titles(result.Schedule.Tracks[0].Morning); !reflect.DeepEqual(got, want) {
		t.Fatalf("track 1 morning = %v, want %v", got, want)
	}
	want = []string{"second-45", "third-45"}
	if got := titles(result.Schedule.Tracks[0].Afternoon); !reflect.DeepEqual(got, want) {
		t.Fatalf("track 1 afternoon = %v, want %v", got, want)
	}
}

func TestSchedulerIsDeterministic(t *testing.T) {
	talks := randomCatalog(rand.New(rand.NewSource(7)), 40)
	sched := newScheduler(t, window.Default())
	first, err := json.Marshal(sched.Schedule(talks))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(sched.Schedule(talks))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(again) != string(first) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestSchedulerHoldsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sched := newScheduler(t, window.Default())
	for round := 0; round < 50; round++ {
		talks := randomCatalog(rng, rng.Intn(30))
		original := append([]talk.Talk(nil), talks...)
		result := sched.Schedule(talks)

		if !reflect.DeepEqual(talks, original) {
			t.Fatalf("round %d: input catalog was modified", round)
		}
		for _, track := range result.Schedule.Tracks {
			if m := track.Minutes(window.Morning); m > 180 {
				t.Fatalf("round %d: track %d morning has %d minutes", round, track.Number, m)
			}
			if m := track.Minutes(window.Afternoon); m > 180 {
				t.Fatalf("round %d: track %d afternoon has %d minutes", round, track.Number, m)
			}
		}
		seen := make(map[int]bool, len(talks))
		for _, p := range result.Placements {
			if seen[p.Index] {
				t.Fatalf("round %d: talk %d placed twice", round, p.Index)
			}
			seen[p.Index] = true
		}
		for _, s := range result.Skipped {
			if seen[s.Index] {
				t.Fatalf("round %d: talk %d both placed and skipped", round, s.Index)
			}
			seen[s.Index] = true
		}
		if len(seen) != len(talks) {
			t.Fatalf("round %d: accounted for %d of %d talks", round, len(seen), len(talks))
		}
	}
}

func TestSchedulerHonorsSingleTrackTable(t *testing.T) {
	table := window.Default()
	table.Tracks = 1
	result := newScheduler(t, table).Schedule(uniformCatalog(7, 60))
	if len(result.Schedule.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(result.Schedule.Tracks))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped talk, got %d", len(result.Skipped))
	}
}

func TestNewRejectsInvalidTable(t *testing.T) {
	table := window.Default()
	table.Tracks = 3
	if _, err := New(table); err == nil {
		t.Fatalf("expected error for three tracks")
	}
}

func TestSchedulerLogsBins(t *testing.T) {
	var log recordingLogger
	sched, err := New(window.Default(), WithLogger(&log))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	sched.Schedule(uniformCatalog(13, 60))
	if len(log.lines) != 5 {
		t.Fatalf("expected 4 bin lines and 1 summary, got %d: %v", len(log.lines), log.lines)
	}
	if !strings.Contains(log.lines[0], "track 1 morning booked 180/180") {
		t.Fatalf("unexpected first line %q", log.lines[0])
	}
	if !strings.Contains(log.lines[4], "1 of 13 talks unscheduled") {
		t.Fatalf("unexpected summary %q", log.lines[4])
	}
}

func newScheduler(t *testing.T, table window.Table) *Scheduler {
	t.Helper()
	sched, err := New(table)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched
}

func titles(talks []talk.Talk) []string {
	out := make([]string, len(talks))
	for i, tk := range talks {
		out[i] = tk.Title
	}
	return out
}

func uniformCatalog(n, minutes int) []talk.Talk {
	talks := make([]talk.Talk, n)
	for i := range talks {
		talks[i] = talk.MustNew(fmt.Sprintf("talk-%d", i), minutes)
	}
	return talks
}

func randomCatalog(rng *rand.Rand, n int) []talk.Talk {
	durations := []int{5, 30, 45, 60, 90, 120, 180, 200}
	talks := make([]talk.Talk, n)
	for i := range talks {
		talks[i] = talk.MustNew(fmt.Sprintf("talk-%d", i), durations[rng.Intn(len(durations))])
	}
	return talks
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}
