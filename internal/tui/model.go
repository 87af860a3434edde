package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"recast/internal/processor"
)

const (
	defaultBarWidth = 40
	maxBarWidth     = 60
	minBarWidth     = 20
)

type Model struct {
	updates     <-chan processor.ProgressUpdate
	bar         progress.Model
	started     time.Time
	total       int
	processed   int
	errors      int
	outputs     int
	current     string
	quitting    bool
	interrupted bool
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

// NewModel renders progress for a run of total files. The model quits once
// updates is closed.
func NewModel(updates <-chan processor.ProgressUpdate, total int) Model {
	bar := progress.New(
		progress.WithGradient(string(ColorAccentAlt), string(ColorAccent)),
		progress.WithWidth(defaultBarWidth),
	)
	return Model{updates: updates, bar: bar, total: total, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		if msg.Total > 0 {
			m.total = msg.Total
		}
		m.processed += msg.ProcessedDelta
		m.errors += msg.ErrorDelta
		m.outputs += msg.OutputDelta
		if msg.File != "" {
			m.current = msg.File
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			m.interrupted = true
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.bar.Width = barWidth(msg.Width)
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)
	lines := []string{
		titleStyle.Render("recast"),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.processed, m.total)) + dimStyle.Render(fmt.Sprintf("  errors:%d", m.errors)),
		labelStyle.Render(fmt.Sprintf("Outputs written: %d", m.outputs)),
	}
	if m.current != "" {
		lines = append(lines, dimStyle.Render("Last: "+m.current))
	}
	lines = append(lines,
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		m.bar.ViewAs(ratio(m.processed, m.total)),
	)

	return strings.Join(lines, "\n")
}

// Interrupted reports whether the user quit before the run finished.
func (m Model) Interrupted() bool {
	return m.interrupted
}

// Processed reports how many files the model has seen complete.
func (m Model) Processed() int {
	return m.processed
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func barWidth(termWidth int) int {
	if termWidth <= 0 {
		return defaultBarWidth
	}
	w := termWidth - 10
	if w > maxBarWidth {
		w = maxBarWidth
	}
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}

func ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	r := float64(done) / float64(total)
	if r > 1 {
		return 1
	}
	return r
}
