package monitor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"rdtmon/internal/events"
)

const defaultCapacity = 128

// Registry is the long-lived target table. It is mutated only while
// configuration strings are parsed; the loop reads it afterwards.
type Registry struct {
	coreCap int
	pidCap  int
	targets []*Target
	process bool
}

// NewRegistry returns an empty registry. Non-positive capacities select
// the default of 128 core groups and 128 process targets.
func NewRegistry(coreCap, pidCap int) *Registry {
	if coreCap <= 0 {
		coreCap = defaultCapacity
	}
	if pidCap <= 0 {
		pidCap = defaultCapacity
	}
	return &Registry{coreCap: coreCap, pidCap: pidCap}
}

// Targets returns the registered targets in registration order.
func (r *Registry) Targets() []*Target {
	return r.targets
}

// Empty reports whether nothing was registered yet.
func (r *Registry) Empty() bool {
	return len(r.targets) == 0
}

// ProcessMode reports whether the registry tracks processes. Core and
// process targets are mutually exclusive within one run.
func (r *Registry) ProcessMode() bool {
	return r.process
}

// DisplayMask is the union of every target's event mask. It decides
// which columns exist in the output at all.
func (r *Registry) DisplayMask() events.Mask {
	var m events.Mask
	for _, t := range r.targets {
		m = m.Union(t.Events)
	}
	return m
}

// AddCoreSpec parses one core monitoring spec string (`;`-separated
// tokens of <event-prefix>:<core-spec>) and merges the resulting
// targets into the registry.
func (r *Registry) AddCoreSpec(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return errors.New("empty monitoring spec string")
	}
	if r.process {
		return errors.New("process and core tracking can not be done simultaneously")
	}
	for _, token := range strings.Split(spec, ";") {
		if token == "" {
			continue
		}
		mask, body, err := events.ParsePrefix(token)
		if err != nil {
			return err
		}
		groups, err := parseCoreSpec(body)
		if err != nil {
			return err
		}
		for _, g := range groups {
			if err := r.registerCore(g, mask); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddPIDSpec parses one process monitoring spec string. PID lists use
// the same comma/range element parser as core specs but never support
// bracket grouping; each PID is its own target.
func (r *Registry) AddPIDSpec(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return errors.New("empty monitoring spec string")
	}
	if len(r.targets) > 0 && !r.process {
		return errors.New("process and core tracking can not be done simultaneously")
	}
	for _, token := range strings.Split(spec, ";") {
		if token == "" {
			continue
		}
		mask, body, err := events.ParsePrefix(token)
		if err != nil {
			return err
		}
		pids, err := parseList(body)
		if err != nil {
			return err
		}
		if len(pids) == 0 {
			return fmt.Errorf("%q: no process id selected for monitoring", token)
		}
		for _, pid := range pids {
			if err := r.registerPID(pid, mask); err != nil {
				return err
			}
		}
	}
	return nil
}

// registerCore merges one core group against the table: identical core
// sets merge masks, disjoint sets insert a new target, and a partial
// overlap is a configuration error.
func (r *Registry) registerCore(g coreGroup, mask events.Mask) error {
	cores := normalizeCores(g.cores)
	for _, t := range r.targets {
		switch compareCores(cores, t.Cores) {
		case overlapSame:
			t.Events = t.Events.Union(mask)
			return nil
		case overlapPartial:
			return errors.New("cannot monitor same cores in different groups")
		}
	}
	if len(r.targets) >= r.coreCap {
		return fmt.Errorf("too many core groups selected for monitoring (max %d)", r.coreCap)
	}
	r.targets = append(r.targets, &Target{Desc: g.desc, Cores: cores, Events: mask})
	return nil
}

// registerPID merges one PID against the table; re-registering the same
// PID grows its mask instead of duplicating the target.
func (r *Registry) registerPID(pid int, mask events.Mask) error {
	if pid <= 0 {
		return fmt.Errorf("invalid process id %d", pid)
	}
	for _, t := range r.targets {
		if t.PID == pid {
			t.Events = t.Events.Union(mask)
			return nil
		}
	}
	if len(r.targets) >= r.pidCap {
		return fmt.Errorf("too many processes selected for monitoring (max %d)", r.pidCap)
	}
	r.targets = append(r.targets, &Target{Desc: strconv.Itoa(pid), PID: pid, Events: mask})
	r.process = true
	return nil
}

// addDefaultCore registers one online core during default-target setup.
func (r *Registry) addDefaultCore(core int, mask events.Mask) error {
	g := coreGroup{desc: strconv.Itoa(core), cores: []int{core}}
	return r.registerCore(g, mask)
}
