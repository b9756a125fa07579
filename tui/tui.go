// Package tui is a minimal bubbletea consumer of the core pipeline: a
// live table of the top processes by CPU percent plus a one-line system
// summary. It holds no derivation logic of its own — everything it
// renders comes from model.ProcessSnapshot / model.SystemSnapshot.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/arborist-labs/resmon/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// Snapshotter is the read side of the process/system models the TUI
// polls on a timer. ProcessModel/SystemModel do not satisfy it directly
// (their methods are Snapshots/Snapshot); cmd/resmon wraps them in an
// adapter.
type Snapshotter interface {
	ProcessSnapshots() []model.ProcessSnapshot
	SystemSnapshot() model.SystemSnapshot
}

type tickMsg time.Time

// Model is the bubbletea Model for the live table.
type Model struct {
	source   Snapshotter
	interval time.Duration
	width    int
	height   int
}

func New(source Snapshotter, interval time.Duration) Model {
	return Model{source: source, interval: interval}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case tickMsg:
		return m, tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	sys := m.source.SystemSnapshot()
	procs := m.source.ProcessSnapshots()
	sort.Slice(procs, func(i, j int) bool { return procs[i].CPUPercent > procs[j].CPUPercent })
	if len(procs) > 20 {
		procs = procs[:20]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  mem %.1f%%  load %.2f %.2f %.2f\n\n",
		headerStyle.Render(fmt.Sprintf("CPU %.1f%%", sys.CPUTotalPercent)),
		sys.MemoryUsedPercent, sys.LoadAvg.One, sys.LoadAvg.Five, sys.LoadAvg.Fifteen)

	fmt.Fprintln(&b, headerStyle.Render(fmt.Sprintf("%6s %-20s %8s %8s %10s", "PID", "NAME", "CPU%", "MEM%", "RSS")))
	for _, p := range procs {
		fmt.Fprintf(&b, "%6d %-20s %7.1f%% %7.1f%% %10s\n",
			p.Identity.Pid, truncate(p.Name, 20), p.CPUPercent, p.MemoryPercent, humanize.Bytes(p.RSSBytes))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, dimStyle.Render("q to quit"))
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
