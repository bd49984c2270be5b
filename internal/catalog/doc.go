// Package catalog reads talk lists for the scheduler. Two formats are
// understood: the plain text proposal list ("Title 45min", "Title lightning",
// one talk per line) and a YAML document with a top-level talks sequence.
// Every entry is validated through talk.New, so the scheduler never sees an
// invalid talk.
package catalog
