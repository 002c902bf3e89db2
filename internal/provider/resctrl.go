package provider

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"rdtmon/internal/events"
)

const (
	// DefaultResctrlPath is where the kernel mounts the resctrl
	// filesystem.
	DefaultResctrlPath = "/sys/fs/resctrl"
	// DefaultCPUPath is the sysfs directory used for core topology
	// discovery.
	DefaultCPUPath = "/sys/devices/system/cpu"
)

// Resctrl implements Provider on top of the Linux resctrl filesystem.
// Each session is a directory under mon_groups/ whose counter files are
// read on every poll.
type Resctrl struct {
	root     string
	cpuRoot  string
	nextRMID int
}

// NewResctrl returns a provider rooted at the given resctrl mount point
// and sysfs cpu directory. Empty arguments select the defaults.
func NewResctrl(root, cpuRoot string) *Resctrl {
	if root == "" {
		root = DefaultResctrlPath
	}
	if cpuRoot == "" {
		cpuRoot = DefaultCPUPath
	}
	return &Resctrl{root: root, cpuRoot: cpuRoot, nextRMID: 1}
}

// Capabilities reads info/L3_MON/mon_features and the online core list.
// resctrl counters are plain byte values, so every scale factor is 1.
func (r *Resctrl) Capabilities() (Capabilities, error) {
	raw, err := os.ReadFile(filepath.Join(r.root, "info", "L3_MON", "mon_features"))
	if err != nil {
		return Capabilities{}, fmt.Errorf("resctrl monitoring not available: %w", err)
	}

	var caps Capabilities
	features := make(map[string]bool)
	for _, line := range strings.Fields(string(raw)) {
		features[line] = true
	}
	if features["llc_occupancy"] {
		caps.Events = append(caps.Events, EventInfo{Event: events.Occupancy, ScaleFactor: 1, PIDSupport: true})
	}
	if features["mbm_local_bytes"] {
		caps.Events = append(caps.Events, EventInfo{Event: events.LocalBandwidth, ScaleFactor: 1, PIDSupport: true})
	}
	// Remote bandwidth is derived as total minus local, so it needs
	// both counters.
	if features["mbm_total_bytes"] && features["mbm_local_bytes"] {
		caps.Events = append(caps.Events, EventInfo{Event: events.RemoteBandwidth, ScaleFactor: 1, PIDSupport: true})
	}

	cores, err := r.onlineCores()
	if err != nil {
		return Capabilities{}, err
	}
	caps.Cores = cores
	return caps, nil
}

func (r *Resctrl) onlineCores() ([]Core, error) {
	raw, err := os.ReadFile(filepath.Join(r.cpuRoot, "online"))
	if err != nil {
		return nil, fmt.Errorf("read online cores: %w", err)
	}
	ids, err := parseCPUList(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse online cores: %w", err)
	}
	cores := make([]Core, 0, len(ids))
	for _, id := range ids {
		socket, err := r.socketOf(id)
		if err != nil {
			return nil, err
		}
		cores = append(cores, Core{ID: id, Socket: socket})
	}
	return cores, nil
}

func (r *Resctrl) socketOf(core int) (int, error) {
	path := filepath.Join(r.cpuRoot, fmt.Sprintf("cpu%d", core), "topology", "physical_package_id")
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read socket of core %d: %w", core, err)
	}
	socket, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parse socket of core %d: %w", core, err)
	}
	return socket, nil
}

// StartCores creates a monitoring group and assigns the cores to it.
func (r *Resctrl) StartCores(cores []int, evts events.Mask) (*Session, error) {
	if len(cores) == 0 {
		return nil, fmt.Errorf("empty core group")
	}
	socket, err := r.socketOf(cores[0])
	if err != nil {
		return nil, err
	}
	g, err := r.newGroup(evts)
	if err != nil {
		return nil, err
	}
	g.Cores = append([]int(nil), cores...)
	g.Socket = socket

	list := make([]string, len(cores))
	for i, c := range cores {
		list[i] = strconv.Itoa(c)
	}
	if err := os.WriteFile(filepath.Join(g.dir, "cpus_list"), []byte(strings.Join(list, ",")+"\n"), 0o644); err != nil {
		_ = r.Stop(g)
		return nil, fmt.Errorf("assign cores to monitoring group: %w", err)
	}
	return g, nil
}

// StartPID creates a monitoring group and moves the process into it.
func (r *Resctrl) StartPID(pid int, evts events.Mask) (*Session, error) {
	if pid <= 0 {
		return nil, fmt.Errorf("invalid pid %d", pid)
	}
	g, err := r.newGroup(evts)
	if err != nil {
		return nil, err
	}
	g.PID = pid
	if err := os.WriteFile(filepath.Join(g.dir, "tasks"), []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		_ = r.Stop(g)
		return nil, fmt.Errorf("assign pid %d to monitoring group: %w", pid, err)
	}
	return g, nil
}

func (r *Resctrl) newGroup(evts events.Mask) (*Session, error) {
	rmid := r.nextRMID
	dir := filepath.Join(r.root, "mon_groups", fmt.Sprintf("rdtmon-%d", rmid))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create monitoring group: %w", err)
	}
	r.nextRMID++
	return &Session{RMID: rmid, Events: evts, dir: dir}, nil
}

// Poll refreshes all sessions. Bandwidth counters in resctrl are
// cumulative, so the deltas come from the previous poll's totals; the
// first poll of a session reports zero deltas.
func (r *Resctrl) Poll(groups []*Session) error {
	for _, g := range groups {
		if err := r.poll(g); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resctrl) poll(g *Session) error {
	domains, err := filepath.Glob(filepath.Join(g.dir, "mon_data", "mon_L3_*"))
	if err != nil {
		return err
	}
	if len(domains) == 0 {
		return fmt.Errorf("no monitoring domains under %s", g.dir)
	}
	sort.Strings(domains)

	var occupancy, local, total uint64
	for _, d := range domains {
		v, err := readCounter(filepath.Join(d, "llc_occupancy"))
		if err == nil {
			occupancy += v
		}
		v, err = readCounter(filepath.Join(d, "mbm_local_bytes"))
		if err == nil {
			local += v
		}
		v, err = readCounter(filepath.Join(d, "mbm_total_bytes"))
		if err == nil {
			total += v
		}
	}

	remote := uint64(0)
	if total > local {
		remote = total - local
	}

	g.Values.Occupancy = occupancy
	if g.primed {
		g.Values.LocalDelta = counterDelta(local, g.prevLocal)
		g.Values.RemoteDelta = counterDelta(remote, g.prevRemote)
	} else {
		g.Values.LocalDelta = 0
		g.Values.RemoteDelta = 0
		g.primed = true
	}
	g.prevLocal = local
	g.prevRemote = remote
	return nil
}

func counterDelta(cur, prev uint64) uint64 {
	// Cumulative MBM counters can wrap on overflow.
	if cur < prev {
		return cur
	}
	return cur - prev
}

func readCounter(path string) (uint64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
}

// Stop removes the session's monitoring group. Stopping a session that
// was never opened by this provider is a no-op.
func (r *Resctrl) Stop(g *Session) error {
	if g == nil || g.dir == "" {
		return nil
	}
	dir := g.dir
	g.dir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove monitoring group: %w", err)
	}
	return nil
}

// parseCPUList parses sysfs list syntax, e.g. "0-3,5,7-8".
func parseCPUList(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty cpu list")
	}
	var ids []int
	for _, part := range strings.Split(s, ",") {
		lo, hi, ok := strings.Cut(part, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("bad cpu list element %q", part)
		}
		end := start
		if ok {
			end, err = strconv.Atoi(hi)
			if err != nil || end < start {
				return nil, fmt.Errorf("bad cpu list element %q", part)
			}
		}
		for id := start; id <= end; id++ {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
