package events

import (
	"fmt"
	"strings"
)

// Mask is a bit set over the monitored event types.
type Mask uint8

const (
	// Occupancy is LLC cache occupancy, displayed in kilobytes.
	Occupancy Mask = 1 << iota
	// LocalBandwidth is local memory bandwidth, displayed in MB/s.
	LocalBandwidth
	// RemoteBandwidth is remote memory bandwidth, displayed in MB/s.
	RemoteBandwidth
)

// All requests every event the platform supports. It is kept as a
// sentinel until setup time, where it resolves against the provider
// capabilities (core-capable events in core mode, PID-capable events
// in process mode).
const All Mask = 1 << 7

// Union merges two masks.
func (m Mask) Union(o Mask) Mask {
	return m | o
}

// Has reports whether every bit of e is set in m.
func (m Mask) Has(e Mask) bool {
	return m&e == e
}

// IsAll reports whether m is the unresolved all-events sentinel.
func (m Mask) IsAll() bool {
	return m.Has(All)
}

// Resolve replaces the all-events sentinel with the platform's
// supported mask. Masks without the sentinel pass through unchanged.
func (m Mask) Resolve(platform Mask) Mask {
	if !m.IsAll() {
		return m
	}
	return (m &^ All) | platform
}

func (m Mask) String() string {
	if m.IsAll() {
		return "all"
	}
	var names []string
	if m.Has(Occupancy) {
		names = append(names, "llc")
	}
	if m.Has(LocalBandwidth) {
		names = append(names, "mbl")
	}
	if m.Has(RemoteBandwidth) {
		names = append(names, "mbr")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParsePrefix splits a monitoring token of the form <prefix>:<body> and
// maps the prefix onto an event mask. An empty prefix means all events.
func ParsePrefix(token string) (Mask, string, error) {
	prefix, body, ok := strings.Cut(token, ":")
	if !ok {
		return 0, "", fmt.Errorf("%q: unrecognized monitoring event type", token)
	}
	switch strings.ToLower(prefix) {
	case "llc":
		return Occupancy, body, nil
	case "mbr":
		return RemoteBandwidth, body, nil
	case "mbl":
		return LocalBandwidth, body, nil
	case "all", "":
		return All, body, nil
	default:
		return 0, "", fmt.Errorf("%q: unrecognized monitoring event type", token)
	}
}
