// Package provider abstracts the hardware resource-monitoring backend.
// A provider hands out monitoring sessions for core groups or PIDs and
// refreshes their counter values in place on every poll.
package provider

import (
	"rdtmon/internal/events"
)

// Values holds the latest readings for one session. Occupancy is an
// absolute value in the provider's native unit; the bandwidth fields
// are deltas since the previous poll.
type Values struct {
	Occupancy   uint64
	LocalDelta  uint64
	RemoteDelta uint64
}

// Session is one opened monitoring group. The identity fields are set
// once at start; Values is rewritten by every Poll.
type Session struct {
	RMID   int
	Socket int
	Cores  []int
	PID    int
	Events events.Mask
	Values Values

	// resctrl bookkeeping: group directory and previous cumulative
	// bandwidth counters for delta computation.
	dir        string
	prevLocal  uint64
	prevRemote uint64
	primed     bool
}

// EventInfo describes one event type the platform supports.
type EventInfo struct {
	Event       events.Mask
	ScaleFactor float64
	PIDSupport  bool
}

// Core identifies one online logical CPU and its socket.
type Core struct {
	ID     int
	Socket int
}

// Capabilities is the provider's self-description, queried once at
// startup.
type Capabilities struct {
	Events []EventInfo
	Cores  []Core
}

// Event looks up the capability entry for a single event type.
func (c Capabilities) Event(e events.Mask) (EventInfo, bool) {
	for _, info := range c.Events {
		if info.Event == e {
			return info, true
		}
	}
	return EventInfo{}, false
}

// CoreEvents returns the union of all events supported for core groups.
func (c Capabilities) CoreEvents() events.Mask {
	var m events.Mask
	for _, info := range c.Events {
		m = m.Union(info.Event)
	}
	return m
}

// PIDEvents returns the union of all events supported for PID groups.
func (c Capabilities) PIDEvents() events.Mask {
	var m events.Mask
	for _, info := range c.Events {
		if info.PIDSupport {
			m = m.Union(info.Event)
		}
	}
	return m
}

// Provider is the counter backend consumed by the monitor core.
type Provider interface {
	// Capabilities reports supported events, scale factors and the
	// online core topology.
	Capabilities() (Capabilities, error)
	// StartCores opens a monitoring session over a group of cores.
	StartCores(cores []int, evts events.Mask) (*Session, error)
	// StartPID opens a monitoring session attributed to one process.
	StartPID(pid int, evts events.Mask) (*Session, error)
	// Poll refreshes Values of all given sessions in one batch.
	Poll(groups []*Session) error
	// Stop releases one session.
	Stop(g *Session) error
}
