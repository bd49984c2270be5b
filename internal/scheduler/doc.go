// Package scheduler packs a talk catalog into conference tracks. It runs a
// first-fit-decreasing pass over the bins of a window.Table: talks are ordered
// by duration (longest first, catalog order on ties) and each bin takes every
// remaining talk that still fits, in that order. Talks left over after the last
// bin are reported as skipped rather than dropped, so callers always see the
// whole catalog accounted for.
package scheduler
