package tui

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rdtmon/internal/events"
	"rdtmon/internal/monitor"
)

// Controller defines the subset of monitor.Monitor behaviour the TUI
// needs.
type Controller interface {
	PollTargets() ([]*monitor.Target, error)
	DisplayMask() events.Mask
	ScaleFactors() monitor.Factors
	ProcessMode() bool
	IntervalDuration() time.Duration
}

// Model represents the Bubble Tea state.
type Model struct {
	controller Controller

	table       table.Model
	display     events.Mask
	factors     monitor.Factors
	processMode bool
	interval    time.Duration

	err    error
	paused bool

	width  int
	height int

	lastUpdated time.Time
}

// New constructs a TUI model with default styles.
func New(ctrl Controller) *Model {
	m := &Model{
		controller:  ctrl,
		display:     ctrl.DisplayMask(),
		factors:     ctrl.ScaleFactors(),
		processMode: ctrl.ProcessMode(),
		interval:    ctrl.IntervalDuration(),
	}

	tbl := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	tbl.SetStyles(styles)
	m.table = tbl
	return m
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(ctrl Controller) error {
	m := New(ctrl)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return pollCmd(m.controller)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.height > 4 {
			m.table.SetHeight(msg.Height - 4)
		}

	case samplesMsg:
		m.err = nil
		m.table.SetRows(m.rows(msg.targets))
		m.lastUpdated = time.Now()
		return m, tickCmd(m.interval)

	case tickMsg:
		if m.paused {
			return m, tickCmd(m.interval)
		}
		return m, pollCmd(m.controller)

	case errMsg:
		// Counter reads stop being useful once one fails; leave the
		// last frame on screen with the error.
		m.err = msg.err

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	title := "Resource monitoring"
	if m.paused {
		title += " (paused)"
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	out := titleStyle.Render(title) + "\n"

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		out += errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	out += m.table.View() + "\n"

	help := "Commands: q quit • p pause"
	if !m.lastUpdated.IsZero() {
		help += fmt.Sprintf(" • last update %s", m.lastUpdated.Format(time.Kitchen))
	}
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	out += helpStyle.Render(help)
	return out
}

func (m *Model) columns() []table.Column {
	var cols []table.Column
	if m.processMode {
		cols = append(cols, table.Column{Title: "PID", Width: 8})
	} else {
		cols = append(cols, table.Column{Title: "SKT", Width: 4})
	}
	cols = append(cols,
		table.Column{Title: "CORE", Width: 10},
		table.Column{Title: "RMID", Width: 6},
	)
	if m.display.Has(events.Occupancy) {
		cols = append(cols, table.Column{Title: "LLC[KB]", Width: 11})
	}
	if m.display.Has(events.LocalBandwidth) {
		cols = append(cols, table.Column{Title: "MBL[MB/s]", Width: 11})
	}
	if m.display.Has(events.RemoteBandwidth) {
		cols = append(cols, table.Column{Title: "MBR[MB/s]", Width: 11})
	}
	return cols
}

// rows renders one sampled frame, heaviest cache users first.
func (m *Model) rows(targets []*monitor.Target) []table.Row {
	ordered := append([]*monitor.Target(nil), targets...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Session.Values.Occupancy > ordered[j].Session.Values.Occupancy
	})

	coeff := float64(time.Second) / float64(m.interval)
	rows := make([]table.Row, 0, len(ordered))
	for _, t := range ordered {
		var row table.Row
		if m.processMode {
			row = table.Row{strconv.Itoa(t.PID), "N/A", "N/A"}
		} else {
			row = table.Row{
				strconv.Itoa(t.Session.Socket),
				t.Desc,
				strconv.Itoa(t.Session.RMID),
			}
		}
		v := t.Session.Values
		if m.display.Has(events.Occupancy) {
			row = append(row, cell(float64(v.Occupancy)*m.factors.LLC, t.Events.Has(events.Occupancy)))
		}
		if m.display.Has(events.LocalBandwidth) {
			row = append(row, cell(float64(v.LocalDelta)*m.factors.MBL*coeff, t.Events.Has(events.LocalBandwidth)))
		}
		if m.display.Has(events.RemoteBandwidth) {
			row = append(row, cell(float64(v.RemoteDelta)*m.factors.MBR*coeff, t.Events.Has(events.RemoteBandwidth)))
		}
		rows = append(rows, row)
	}
	return rows
}

func cell(value float64, monitored bool) string {
	if !monitored {
		return ""
	}
	return strconv.FormatFloat(value, 'f', 1, 64)
}

type samplesMsg struct {
	targets []*monitor.Target
}

type tickMsg time.Time

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func pollCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		targets, err := ctrl.PollTargets()
		if err != nil {
			return errMsg{err}
		}
		return samplesMsg{targets: targets}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
