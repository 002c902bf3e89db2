package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rdtmon/internal/events"
	"rdtmon/internal/provider"
)

// DefaultInterval is the sampling interval in 100 ms units (1 second).
const DefaultInterval = 10

// MonitorConfig carries one run's validated settings. It is built by
// the CLI and passed into Setup; nothing here mutates after that.
type MonitorConfig struct {
	// Interval is the sampling interval in 100 ms units.
	Interval int
	// Timeout is the run duration in seconds; negative means
	// unbounded.
	Timeout int
	// TopLike ranks rows by descending occupancy and truncates to
	// the terminal height.
	TopLike bool
	Format  Format
	// Output is the sink path; empty selects stdout.
	Output string
}

func (c MonitorConfig) validate() error {
	if c.Interval <= 0 {
		return errors.New("monitoring interval must be a positive number")
	}
	return nil
}

// ParseTimeout parses the run duration CLI value: non-negative seconds,
// or inf/infinite for an unbounded run.
func ParseTimeout(s string) (int, error) {
	if strings.EqualFold(s, "inf") || strings.EqualFold(s, "infinite") {
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%q: invalid monitoring time", s)
	}
	return n, nil
}

// Monitor is one configured monitoring run: validated registry, opened
// provider sessions, resolved scale factors, and the output sink.
type Monitor struct {
	cfg      MonitorConfig
	prov     provider.Provider
	reg      *Registry
	display  events.Mask
	factors  Factors
	out      *sink
	groups   []*provider.Session
	released bool

	// terminal queries the sink's interactive row count; swapped out
	// in tests.
	terminal func() (rows int, ok bool)
}

// Setup validates the configuration, resolves provider capabilities,
// opens the sink, and starts one provider session per target. On error
// every session opened so far is released before returning.
func Setup(prov provider.Provider, reg *Registry, cfg MonitorConfig) (*Monitor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	caps, err := prov.Capabilities()
	if err != nil {
		return nil, err
	}

	// No targets configured: monitor every online core with every
	// core-capable event.
	if reg.Empty() {
		for _, c := range caps.Cores {
			if err := reg.addDefaultCore(c.ID, caps.CoreEvents()); err != nil {
				return nil, err
			}
		}
		if reg.Empty() {
			return nil, errors.New("no cores available for monitoring")
		}
	}

	platform := caps.CoreEvents()
	if reg.ProcessMode() {
		platform = caps.PIDEvents()
	}
	for _, t := range reg.Targets() {
		t.Events = t.Events.Resolve(platform)
	}

	display := reg.DisplayMask()
	factors, err := ResolveFactors(caps, display)
	if err != nil {
		return nil, err
	}

	out, err := openSink(cfg.Output, cfg.Format)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:      cfg,
		prov:     prov,
		reg:      reg,
		display:  display,
		factors:  factors,
		out:      out,
		terminal: out.Terminal,
	}
	for _, t := range reg.Targets() {
		var g *provider.Session
		if t.Process() {
			g, err = prov.StartPID(t.PID, t.Events)
		} else {
			g, err = prov.StartCores(t.Cores, t.Events)
		}
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("monitoring start error on %s: %w", t.Desc, err)
		}
		t.Session = g
		m.groups = append(m.groups, g)
	}
	return m, nil
}

// Close releases every opened provider session and the sink. Safe to
// call on every exit path; the release happens exactly once.
func (m *Monitor) Close() error {
	var err error
	if !m.released {
		m.released = true
		for _, g := range m.groups {
			if serr := m.prov.Stop(g); serr != nil && err == nil {
				err = serr
			}
		}
	}
	if cerr := m.out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// DisplayMask returns the union of events active anywhere in the run.
func (m *Monitor) DisplayMask() events.Mask {
	return m.display
}

// ScaleFactors returns the resolved unit-conversion factors.
func (m *Monitor) ScaleFactors() Factors {
	return m.factors
}

// ProcessMode reports whether the run tracks processes.
func (m *Monitor) ProcessMode() bool {
	return m.reg.ProcessMode()
}

// IntervalDuration returns the configured sampling interval.
func (m *Monitor) IntervalDuration() time.Duration {
	return time.Duration(m.cfg.Interval) * 100 * time.Millisecond
}

// PollTargets refreshes every session in one batch and returns the
// target table in registration order.
func (m *Monitor) PollTargets() ([]*Target, error) {
	if err := m.prov.Poll(m.groups); err != nil {
		return nil, err
	}
	return m.reg.Targets(), nil
}
