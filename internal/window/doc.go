// Package window holds the session window table: the fixed minute-of-day
// boundaries (start, lunch, afternoon start, networking start) that every track
// shares, and the order in which the scheduler visits the resulting bins. The
// table is a plain value handed to the scheduler and the timeline builder, so
// alternative day shapes can be exercised without touching package state.
package window
