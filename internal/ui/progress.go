package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"kipper/internal/heap"
)

// maxHeaderWidth caps the title line so a long script path doesn't wrap
// the display across terminal columns.
const maxHeaderWidth = 72

func truncateHeader(s string) string {
	if runewidth.StringWidth(s) <= maxHeaderWidth {
		return s
	}
	return runewidth.Truncate(s, maxHeaderWidth-3, "...")
}

// Snapshot is one point-in-time reading of heap occupancy, emitted on a
// channel while a script runs.
type Snapshot struct {
	YoungUsed, YoungCap uint32
	OldUsed, OldCap     uint32
	Stats               heap.Stats
	Collected           heap.Space
	Done                bool
}

type snapshotMsg Snapshot

// NewGCModel returns a Bubble Tea model rendering live young/old heap
// occupancy bars and collection counters as snapshots arrive on events.
func NewGCModel(title string, events <-chan Snapshot) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	young := progress.New(progress.WithDefaultGradient())
	young.Width = 56
	old := progress.New(progress.WithScaledGradient("#874BFD", "#FF7CCB"))
	old.Width = 56

	return &gcModel{title: title, events: events, spinner: sp, young: young, old: old}
}

type gcModel struct {
	title   string
	events  <-chan Snapshot
	spinner spinner.Model
	young   progress.Model
	old     progress.Model
	last    Snapshot
	done    bool
}

func (m *gcModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *gcModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.last = Snapshot(msg)
		if m.last.Done {
			m.done = true
			return m, tea.Quit
		}
		youngPct := float64(0)
		if m.last.YoungCap > 0 {
			youngPct = float64(m.last.YoungUsed) / float64(m.last.YoungCap)
		}
		oldPct := float64(0)
		if m.last.OldCap > 0 {
			oldPct = float64(m.last.OldUsed) / float64(m.last.OldCap)
		}
		return m, tea.Batch(m.young.SetPercent(youngPct), m.old.SetPercent(oldPct), m.listen())
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		youngModel, youngCmd := m.young.Update(msg)
		m.young = youngModel.(progress.Model)
		oldModel, oldCmd := m.old.Update(msg)
		m.old = oldModel.(progress.Model)
		return m, tea.Batch(youngCmd, oldCmd)
	}
	return m, nil
}

func (m *gcModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(truncateHeader(header)))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("young  %s  %d/%d bytes\n", m.young.View(), m.last.YoungUsed, m.last.YoungCap))
	b.WriteString(fmt.Sprintf("old    %s  %d/%d bytes\n", m.old.View(), m.last.OldUsed, m.last.OldCap))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("young collections: %d  old collections: %d  promoted: %d  allocated: %d bytes\n",
		m.last.Stats.YoungCollections, m.last.Stats.OldCollections, m.last.Stats.ObjectsPromoted, m.last.Stats.BytesAllocated))
	return b.String()
}

func (m *gcModel) listen() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.events
		if !ok {
			return snapshotMsg(Snapshot{Done: true})
		}
		return snapshotMsg(snap)
	}
}
