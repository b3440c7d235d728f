package tui

import (
	"fmt"

	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/tui/delegate"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// browserModel lists the catalog under a search box. The search is a plain
// case-insensitive substring match on title and author.
type browserModel struct {
	books    []catalog.Book
	resolver *acquire.Resolver
	search   textinput.Model
	list     list.Model
	keys     BrowserKeys
	shown    int
	width    int
	height   int
}

func newBrowserModel(books []catalog.Book, r *acquire.Resolver) browserModel {
	if books == nil {
		books = []catalog.Book{}
	}
	ti := textinput.New()
	ti.Placeholder = "Search by title or author"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	l := list.New(nil, delegate.New(renderBookItem), 60, 10)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.HelpStyle = StyleHelp

	m := browserModel{books: books, resolver: r, search: ti, list: l, keys: NewBrowserKeys()}
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{m.keys.Filter, m.keys.Open, m.keys.Read}
	}
	m.list = l
	m.applyFilter()
	return m
}

// applyFilter rebuilds the list from the current search text.
func (m *browserModel) applyFilter() {
	filtered := catalog.Filter{Search: m.search.Value()}.Apply(m.books)
	items := make([]list.Item, len(filtered))
	for i, b := range filtered {
		items[i] = BookItem{Book: b, Cached: m.isCached(b.ID)}
	}
	m.list.SetItems(items)
	m.list.ResetSelected()
	m.shown = len(filtered)
}

// refreshCached re-checks download state without touching the filter.
func (m *browserModel) refreshCached() {
	items := m.list.Items()
	for i, it := range items {
		if bi, ok := it.(BookItem); ok {
			bi.Cached = m.isCached(bi.Book.ID)
			items[i] = bi
		}
	}
	m.list.SetItems(items)
}

func (m browserModel) isCached(id string) bool {
	return m.resolver != nil && m.resolver.Cache().Exists(id)
}

// Visible returns the books currently listed.
func (m browserModel) Visible() []catalog.Book {
	out := make([]catalog.Book, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if bi, ok := it.(BookItem); ok {
			out = append(out, bi.Book)
		}
	}
	return out
}

func (m browserModel) selected() (catalog.Book, bool) {
	bi, ok := m.list.SelectedItem().(BookItem)
	return bi.Book, ok
}

func (m browserModel) Update(msg tea.Msg) (browserModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		const headerLines = 5
		h, v := StyleBorder.GetFrameSize()
		oh, ov := outerStyle.GetFrameSize()
		m.list.SetSize(max(msg.Width-oh-h-3, 40), max(msg.Height-ov-v-headerLines, 5))
		m.search.Width = max(msg.Width-oh-h-8, 20)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, quitApp
		}

		if m.search.Focused() {
			switch msg.String() {
			case "enter", "down":
				m.search.Blur()
				return m, nil
			case "esc":
				m.search.Blur()
				m.search.SetValue("")
				m.applyFilter()
				return m, nil
			}
			var cmd tea.Cmd
			before := m.search.Value()
			m.search, cmd = m.search.Update(msg)
			if m.search.Value() != before {
				m.applyFilter()
			}
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Filter):
			cmd := m.search.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Back), msg.String() == "q":
			return m, navigate(ViewHub)
		case key.Matches(msg, m.keys.Open):
			if b, ok := m.selected(); ok {
				return m, navigateBook(ViewDetails, b)
			}
			return m, nil
		case key.Matches(msg, m.keys.Read):
			if b, ok := m.selected(); ok {
				return m, func() tea.Msg { return NavigateMsg{Target: ViewDetails, Book: &b, Read: true} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browserModel) View() string {
	header := titleStyle.Render("Browse Books")
	count := StyleHelp.Render(fmt.Sprintf("  %d of %d books", m.shown, len(m.books)))

	var body string
	if m.shown == 0 {
		body = StyleHelp.Render("  No books match your search.")
	} else {
		body = m.list.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, count, m.search.View(), "", body)
	innerPadding := lipgloss.NewStyle().Padding(0, 2, 0, 1)
	return outerStyle.Render(StyleBorder.Render(innerPadding.Render(content)))
}
