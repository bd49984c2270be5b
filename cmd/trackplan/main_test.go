package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/trackplan/internal/catalog"
	"github.com/kingrea/trackplan/internal/format"
	"github.com/kingrea/trackplan/internal/scheduler"
)

func TestRunSchedulesStdinCatalog(t *testing.T) {
	dir := t.TempDir()
	input := strings.Join([]string{
		"Writing Fast Tests Against Enterprise Rails 60min",
		"Overdoing it in Python 45min",
		"Rails for Python Developers lightning",
	}, "\n")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-dir", dir, "-plain"}, strings.NewReader(input), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"Track 1:",
		"09:00AM Writing Fast Tests Against Enterprise Rails 60min",
		"10:00AM Overdoing it in Python 45min",
		"10:45AM Rails for Python Developers lightning",
		"12:00PM Lunch",
		"04:00PM Networking Event",
		"Track 2:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Unscheduled:") {
		t.Fatalf("nothing should be unscheduled:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, ".trackplan", "logs", "runs.log")); err != nil {
		t.Fatalf("expected run history to be written: %v", err)
	}
}

func TestRunRejectsMalformedCatalog(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-dir", t.TempDir()}, strings.NewReader("A talk without a duration\n"), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "line 1") {
		t.Fatalf("expected line number in error, got %q", stderr.String())
	}
}

func TestRunSampleAsJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-dir", t.TempDir(), "-sample", "-json"}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	var doc format.Document
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.RunID == "" {
		t.Fatalf("expected run id")
	}
	if doc.Outcome != scheduler.OutcomePartiallyScheduled || len(doc.Unscheduled) != 3 {
		t.Fatalf("unexpected outcome %s with %d unscheduled", doc.Outcome, len(doc.Unscheduled))
	}
}

func TestRunLoadsCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "talks.yaml")
	if err := os.WriteFile(path, []byte("talks:\n  - title: Keynote\n    minutes: 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	code := run([]string{"-dir", dir, "-catalog", path, "-plain"}, strings.NewReader(""), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "09:00AM Keynote 60min") {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
}

func TestRunHistoryListsRuns(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-dir", dir, "-sample", "-plain"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("schedule exit %d: %s", code, stderr.String())
	}
	stdout.Reset()
	if code := run([]string{"-dir", dir, "-history", "5"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("history exit %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "source=sample") || !strings.Contains(out, "(1 of 1 entries in ") {
		t.Fatalf("unexpected history output:\n%s", out)
	}
}

func TestRunSetCatalogBecomesDefault(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "day1.txt"), []byte("Keynote 60min\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-dir", dir, "-set-catalog", "day1.txt"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("set-catalog exit %d: %s", code, stderr.String())
	}
	stdout.Reset()
	if code := run([]string{"-dir", dir, "-plain"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("schedule exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "09:00AM Keynote 60min") {
		t.Fatalf("expected configured catalog to be scheduled, got:\n%s", stdout.String())
	}
}

func TestRunExportYAML(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	input := "Keynote 60min\nRails for Python Developers lightning\n"
	if code := run([]string{"-dir", dir, "-export-yaml"}, strings.NewReader(input), &stdout, &stderr); code != 0 {
		t.Fatalf("export exit %d: %s", code, stderr.String())
	}
	talks, err := catalog.ParseYAML(stdout.Bytes())
	if err != nil {
		t.Fatalf("exported yaml does not parse: %v\n%s", err, stdout.String())
	}
	if len(talks) != 2 || talks[0].Title != "Keynote" || !talks[1].IsLightning() {
		t.Fatalf("unexpected exported talks %+v", talks)
	}
	if !strings.Contains(stdout.String(), "lightning: true") {
		t.Fatalf("expected lightning flag in yaml:\n%s", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(dir, ".trackplan", "logs", "runs.log")); err == nil {
		t.Fatalf("export must not record a scheduling run")
	}
}

func TestRunInitCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-dir", dir, "-init"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("init exit %d: %s", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, ".trackplan", "config.yaml")); err != nil {
		t.Fatalf("expected config.yaml: %v", err)
	}
}

func TestRunRejectsConflictingFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-sample", "-catalog", "x.txt"}, strings.NewReader(""), &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}
