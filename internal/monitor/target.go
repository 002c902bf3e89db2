// Package monitor holds the monitoring core: the target configuration
// and merge engine, the per-row formatters, and the polling loop that
// drives the counter provider and renders frames.
package monitor

import (
	"sort"

	"rdtmon/internal/events"
	"rdtmon/internal/provider"
)

// Target is one monitored unit: a group of cores or a single process.
// Identity is immutable after registration; only the event mask grows
// as later config tokens reference the same unit.
type Target struct {
	// Desc is the display descriptor: the decimal core number for
	// singleton groups, the raw bracket contents for multi-core
	// groups, unused in process mode.
	Desc   string
	Cores  []int
	PID    int
	Events events.Mask

	// Session is the opened provider group, set during setup and
	// released exactly once at teardown.
	Session *provider.Session
}

// Process reports whether the target monitors a PID rather than cores.
func (t *Target) Process() bool {
	return t.PID > 0
}

type overlap int

const (
	overlapNone overlap = iota
	overlapSame
	overlapPartial
)

// compareCores classifies two core sets as identical, disjoint, or
// partially overlapping. Partial overlap is a configuration error at
// the registry level.
func compareCores(a, b []int) overlap {
	found := 0
	for _, x := range a {
		for _, y := range b {
			if x == y {
				found++
				break
			}
		}
	}
	switch {
	case found == 0:
		return overlapNone
	case found == len(a) && found == len(b):
		return overlapSame
	default:
		return overlapPartial
	}
}

// normalizeCores returns a sorted copy with duplicates removed.
func normalizeCores(cores []int) []int {
	out := append([]int(nil), cores...)
	sort.Ints(out)
	n := 0
	for i, c := range out {
		if i == 0 || c != out[n-1] {
			out[n] = c
			n++
		}
	}
	return out[:n]
}
