package monitor

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync/atomic"
	"syscall"
	"time"
)

// termMinLines is the number of terminal rows reserved for the time
// line, the table header, and the cursor row.
const termMinLines = 3

// ordering is the row-ranking policy selected once per tick. A nil
// ordering keeps registration order.
type ordering func(a, b *Target) bool

func orderingFor(topLike, processMode bool) ordering {
	switch {
	case topLike:
		return func(a, b *Target) bool {
			return a.Session.Values.Occupancy > b.Session.Values.Occupancy
		}
	case !processMode:
		return func(a, b *Target) bool {
			return a.Cores[0] < b.Cores[0]
		}
	default:
		return nil
	}
}

// Run drives the polling loop until a stop signal, the configured
// timeout, or an unrecoverable error. The caller releases sessions and
// the sink through Close on every exit path.
func (m *Monitor) Run() error {
	var stop atomic.Bool
	stopCh := make(chan struct{})
	done := make(chan struct{})
	defer close(done)

	// The signal path only flips the stop flag; the loop observes it
	// at the defined polling points.
	sigc := make(chan os.Signal, 2)
	signal.Notify(sigc, os.Interrupt, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		select {
		case <-sigc:
			stop.Store(true)
			close(stopCh)
		case <-done:
		}
	}()

	interval := m.IntervalDuration()
	coeff := 10.0 / float64(m.cfg.Interval)
	processMode := m.reg.ProcessMode()
	istext := m.cfg.Format == FormatText
	_, istty := m.terminal()

	var header string
	switch m.cfg.Format {
	case FormatText:
		header = TextHeader(processMode, m.display)
	case FormatCSV:
		fmt.Fprintf(m.out, "%s\n", CSVHeader(processMode, m.display))
	}

	targets := m.reg.Targets()
	start := time.Now()

loop:
	for !stop.Load() {
		tickStart := time.Now()

		if err := m.prov.Poll(m.groups); err != nil {
			return fmt.Errorf("failed to poll monitoring data: %w", err)
		}

		if istty {
			m.out.WriteString("\033[2J\033[0;0H")
		}
		timeStr := tickStart.Format(timeLayout)
		if istext {
			fmt.Fprintf(m.out, "TIME %s\n", timeStr)
		}

		ordered := append([]*Target(nil), targets...)
		if less := orderingFor(m.cfg.TopLike, processMode); less != nil {
			sort.SliceStable(ordered, func(i, j int) bool {
				return less(ordered[i], ordered[j])
			})
		}

		// The displayable subset is recomputed from the live terminal
		// height on every tick; enlarging the terminal restores rows.
		if istty {
			if rows, ok := m.terminal(); ok {
				if rows < termMinLines {
					rows = termMinLines
				}
				if len(ordered)+termMinLines-1 > rows {
					ordered = ordered[:rows-termMinLines+1]
				}
			}
		}

		if istext {
			m.out.WriteString(header)
		}
		for _, t := range ordered {
			llc := float64(t.Session.Values.Occupancy) * m.factors.LLC
			mbr := float64(t.Session.Values.RemoteDelta) * m.factors.MBR * coeff
			mbl := float64(t.Session.Values.LocalDelta) * m.factors.MBL * coeff
			switch m.cfg.Format {
			case FormatXML:
				m.out.WriteString(XMLRow(t, timeStr, m.display, llc, mbr, mbl))
			case FormatCSV:
				m.out.WriteString(CSVRow(t, timeStr, m.display, llc, mbr, mbl))
			default:
				m.out.WriteString(TextRow(t, m.display, llc, mbr, mbl))
			}
		}
		if err := m.out.Flush(); err != nil {
			return fmt.Errorf("write monitoring data: %w", err)
		}

		if stop.Load() {
			break
		}
		if remain := interval - time.Since(tickStart); remain > 0 {
			timer := time.NewTimer(remain)
			select {
			case <-timer.C:
			case <-stopCh:
				timer.Stop()
				break loop
			}
		}
		if stop.Load() {
			break
		}
		if m.cfg.Timeout >= 0 && time.Since(start) > time.Duration(m.cfg.Timeout)*time.Second {
			break
		}
	}

	if m.cfg.Format == FormatXML {
		fmt.Fprintf(m.out, "%s\n", xmlRootClose)
	}
	if istty {
		m.out.WriteString("\n\n")
	}
	return m.out.Flush()
}
