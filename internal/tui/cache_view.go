package tui

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/shelfread/internal/cache"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// cacheModel lists downloaded books and can clear them.
type cacheModel struct {
	mgr        *cache.Manager
	titles     map[string]string
	entries    []cache.Entry
	totalSize  int64
	confirming bool
	status     string
	err        error
	width      int
	height     int
}

func newCacheModel(mgr *cache.Manager, books []catalog.Book) cacheModel {
	m := cacheModel{mgr: mgr, titles: make(map[string]string, len(books))}
	for _, b := range books {
		m.titles[b.ID] = b.Title
	}
	m.reload()
	return m
}

func (m *cacheModel) reload() {
	m.entries, m.err = m.mgr.Entries()
	m.totalSize = 0
	for _, e := range m.entries {
		m.totalSize += e.Size
	}
}

func (m cacheModel) Update(msg tea.Msg) (cacheModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.confirming {
			switch msg.String() {
			case "y", "Y":
				n, err := m.mgr.Clear()
				m.confirming = false
				if err != nil {
					m.err = err
					return m, nil
				}
				m.status = fmt.Sprintf("Removed %d book(s)", n)
				m.reload()
			case "n", "N", "esc":
				m.confirming = false
			}
			return m, nil
		}
		switch msg.String() {
		case "x":
			if len(m.entries) > 0 {
				m.confirming = true
			}
			return m, nil
		case "r":
			m.reload()
			return m, nil
		case "enter", "esc", "q":
			return m, navigate(ViewHub)
		case "ctrl+c":
			return m, quitApp
		}
	}
	return m, nil
}

func (m cacheModel) View() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	var b strings.Builder

	b.WriteString(StyleHeader.Render("Downloaded Books"))
	b.WriteString("\n\n")
	b.WriteString(StyleNormal.Render(fmt.Sprintf("  Books:      %d", len(m.entries))))
	b.WriteString("\n")
	b.WriteString(StyleNormal.Render(fmt.Sprintf("  Disk usage: %s", formatBytes(m.totalSize))))
	b.WriteString("\n")
	b.WriteString(dim.Render(fmt.Sprintf("  Directory:  %s", m.mgr.Dir())))
	b.WriteString("\n\n")

	limit := min(len(m.entries), max(m.height-16, 5))
	for _, e := range m.entries[:limit] {
		title := m.titles[e.BookID]
		if title == "" {
			title = "(not in catalog)"
		}
		b.WriteString(StyleNormal.Render(fmt.Sprintf("    %-10s %s", formatBytes(e.Size), padOrTruncate(e.BookID, 20))))
		b.WriteString(dim.Render(" " + title))
		b.WriteString("\n")
	}
	if len(m.entries) > limit {
		b.WriteString(dim.Render(fmt.Sprintf("    ... and %d more", len(m.entries)-limit)))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(StyleError.Render("✗ " + m.err.Error()))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleCached.Render("✓ " + m.status))
		b.WriteString("\n")
	}
	if m.confirming {
		b.WriteString("\n")
		b.WriteString(StyleHighlight.Render(fmt.Sprintf("  Delete all %d downloaded book(s)? (y/n)", len(m.entries))))
		b.WriteString("\n")
	}

	shortcuts := []ShortcutEntry{{Label: "x clear all"}, {Label: "r refresh"}, {Label: "esc back"}}
	innerPadding := lipgloss.NewStyle().Padding(0, 2, 0, 1)
	return outerStyle.Render(RenderWithFooter(innerPadding.Render(b.String()), shortcuts, ""))
}
