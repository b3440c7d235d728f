package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user aborts a progress screen.
var ErrCancelled = errors.New("cancelled by user")

// ProgressUpdate is one download progress report. Total is 0 when the
// server did not announce a length.
type ProgressUpdate struct {
	Read  int64
	Total int64
}

// progressDoneMsg is sent once the operation finished.
type progressDoneMsg struct{}

// tickMsg is sent periodically to refresh the UI
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForDownload blocks until the next update or until done is closed.
// Senders never close updates, so a late report cannot panic.
func waitForDownload(updates <-chan ProgressUpdate, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-updates:
			return u
		case <-done:
			return progressDoneMsg{}
		}
	}
}

// progressModel is the standalone download progress screen.
type progressModel struct {
	progress  progress.Model
	label     string
	current   ProgressUpdate
	done      bool
	cancelled bool
	updates   <-chan ProgressUpdate
	finished  <-chan struct{}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForDownload(m.updates, m.finished))
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		}

	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		return m, tickCmd()

	case ProgressUpdate:
		m.current = msg
		return m, waitForDownload(m.updates, m.finished)

	case progressDoneMsg:
		m.done = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-20, 80)
		return m, nil
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	if m.current.Total <= 0 {
		return fmt.Sprintf("%s\n%s downloaded\n", m.label, formatBytes(m.current.Read))
	}

	percent := float64(m.current.Read) / float64(m.current.Total)
	return fmt.Sprintf(
		"%s\n%s\n%s / %s (%.0f%%)\n",
		m.label,
		m.progress.ViewAs(percent),
		formatBytes(m.current.Read),
		formatBytes(m.current.Total),
		percent*100,
	)
}

// ShowProgress displays a progress bar fed by updates until finished is
// closed. It returns ErrCancelled if the user pressed Ctrl+C first.
func ShowProgress(label string, updates <-chan ProgressUpdate, finished <-chan struct{}) error {
	m := progressModel{
		progress: progress.New(progress.WithDefaultGradient()),
		label:    label,
		updates:  updates,
		finished: finished,
	}

	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := finalModel.(progressModel); ok && fm.cancelled {
		return ErrCancelled
	}
	return nil
}
