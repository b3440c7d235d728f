package tui

import (
	"fmt"
	"io"

	"github.com/blackwell-systems/shelfread/internal/tui/delegate"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuItem represents an action in the hub menu
type MenuItem struct {
	Key         string
	Label       string
	Description string
}

// FilterValue implements list.Item
func (m MenuItem) FilterValue() string {
	return m.Label + " " + m.Description
}

var menuItems = []MenuItem{
	{Key: "browse", Label: "Browse Books", Description: "Search the catalog and start reading"},
	{Key: "cache", Label: "Downloads", Description: "Show and clear downloaded books"},
	{Key: "quit", Label: "Quit", Description: "Exit shelfread"},
}

// renderMenuItem renders a menu item in the hub
func renderMenuItem(w io.Writer, m list.Model, index int, item list.Item) {
	menuItem, ok := item.(MenuItem)
	if !ok {
		return
	}

	display := fmt.Sprintf("%-20s %s", menuItem.Label, StyleHelp.Render(menuItem.Description))

	if index == m.Index() {
		_, _ = fmt.Fprint(w, StyleHighlight.Render("› "+display))
	} else {
		_, _ = fmt.Fprint(w, "  "+StyleNormal.Render(display))
	}
}

type hubModel struct {
	list      list.Model
	bookCount int
	cached    int
	width     int
	height    int
}

var hubKeyMap = NewStandardKeys()

func newHubModel(deps Deps) hubModel {
	var items []list.Item
	for _, item := range menuItems {
		// Nothing to browse in an empty catalog.
		if item.Key == "browse" && len(deps.Books) == 0 {
			continue
		}
		items = append(items, item)
	}

	d := delegate.NewWithSpacing(renderMenuItem, 1)
	l := list.New(items, d, 40, 10)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.HelpStyle = StyleHelp
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{hubKeyMap.Select}
	}

	m := hubModel{list: l, bookCount: len(deps.Books)}
	if deps.Resolver != nil {
		m.cached, _, _ = deps.Resolver.Cache().Usage()
	}
	return m
}

func (m hubModel) Update(msg tea.Msg) (hubModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, hubKeyMap.Quit):
			return m, quitApp
		case key.Matches(msg, hubKeyMap.Select):
			item, ok := m.list.SelectedItem().(MenuItem)
			if !ok {
				return m, nil
			}
			switch item.Key {
			case "browse":
				return m, navigate(ViewBrowse)
			case "cache":
				return m, navigate(ViewCache)
			case "quit":
				return m, quitApp
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		const headerLines = 4
		h, v := StyleBorder.GetFrameSize()
		oh, ov := outerStyle.GetFrameSize()
		m.list.SetSize(max(msg.Width-oh-h-3, 40), max(msg.Height-ov-v-headerLines, 5))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m hubModel) View() string {
	header := titleStyle.Render("shelfread - PDF Reader")

	status := StyleHelp.Render(fmt.Sprintf("  %d books · %d downloaded", m.bookCount, m.cached))
	if m.bookCount == 0 {
		status = StyleHelp.Render("  catalog is empty")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, status, "", m.list.View())
	innerPadding := lipgloss.NewStyle().Padding(0, 2, 0, 1)
	return outerStyle.Render(StyleBorder.Render(innerPadding.Render(content)))
}
