package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/blackwell-systems/shelfread/internal/render"
	"github.com/blackwell-systems/shelfread/internal/tui/delegate"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type readingMode int

const (
	modeRead readingMode = iota
	modeAddBookmark
	modeBookmarks
	modeConfirmDelete
)

// sourceLoadedMsg is the "load complete" event for the open document.
type sourceLoadedMsg struct {
	bookID string
	pages  int
	err    error
}

type bookmarkItem struct {
	index int
	mark  reader.Bookmark
}

func (b bookmarkItem) FilterValue() string { return b.mark.Note }

func renderBookmarkItem(w io.Writer, m list.Model, index int, item list.Item) {
	bi, ok := item.(bookmarkItem)
	if !ok {
		return
	}
	line := fmt.Sprintf("p.%-5d %s", bi.mark.Page, truncateText(bi.mark.Note, max(m.Width()-12, 10)))
	if index == m.Index() {
		_, _ = fmt.Fprint(w, StyleHighlight.Render("› "+line))
		return
	}
	_, _ = fmt.Fprint(w, "  "+StyleNormal.Render(line))
}

// readingModel is the reading screen for one open session.
type readingModel struct {
	ctx     context.Context
	deps    Deps
	book    catalog.Book
	src     acquire.Source
	session *reader.Session
	keys    ReaderKeys

	mode          readingMode
	loaded        bool
	night         bool
	input         textinput.Model
	marks         list.Model
	pendingDelete int

	status    string
	alert     alert
	activeCmd string
	width     int
	height    int
}

func newReadingModel(ctx context.Context, deps Deps, b catalog.Book, src acquire.Source) readingModel {
	ti := textinput.New()
	ti.Placeholder = "Note for this page"
	ti.Prompt = "> "
	ti.CharLimit = 200

	l := list.New(nil, delegate.New(renderBookmarkItem), 50, 8)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return readingModel{
		ctx:     ctx,
		deps:    deps,
		book:    b,
		src:     src,
		session: reader.Open(ctx, b, deps.Writer, reader.Options{Log: deps.Log}),
		keys:    NewReaderKeys(),
		input:   ti,
		marks:   l,
		width:   80,
		height:  24,
	}
}

// Init inspects the document and then hands the page count to the session,
// which restores the saved page.
func (m readingModel) Init() tea.Cmd {
	ctx, sess, src, book := m.ctx, m.session, m.src, m.book
	return func() tea.Msg {
		pages := book.TotalPages
		if src.Kind == acquire.Local {
			info, err := render.Inspect(src.Path)
			if err != nil {
				return sourceLoadedMsg{bookID: book.ID, err: err}
			}
			pages = info.Pages
		}
		sess.OnSourceResolved(ctx, pages)
		return sourceLoadedMsg{bookID: book.ID, pages: pages}
	}
}

func (m readingModel) Update(msg tea.Msg) (readingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = min(max(msg.Width-20, 20), 60)
		m.marks.SetSize(min(max(msg.Width-12, 30), 70), min(max(msg.Height-16, 4), 12))
		return m, nil

	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case sourceLoadedMsg:
		if msg.bookID != m.book.ID {
			return m, nil
		}
		if msg.err != nil {
			m.alert = alertFor(msg.err)
			return m, nil
		}
		m.loaded = true
		if s := m.session.Snapshot(); s.Page > 1 {
			m.status = fmt.Sprintf("Resumed at page %d", s.Page)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, quitApp
		}
		switch m.mode {
		case modeAddBookmark:
			return m.updateAddBookmark(msg)
		case modeBookmarks:
			return m.updateBookmarks(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateRead(msg)
		}
	}
	return m, nil
}

func (m readingModel) updateRead(msg tea.KeyMsg) (readingModel, tea.Cmd) {
	s := m.session.Snapshot()
	m.alert = alert{}

	switch {
	case key.Matches(msg, m.keys.Prev):
		if s.Page > 1 {
			m.setPage(s.Page - 1)
		}

	case key.Matches(msg, m.keys.Next):
		if s.TotalPages == 0 || s.Page < s.TotalPages {
			m.setPage(s.Page + 1)
		}

	case key.Matches(msg, m.keys.SliderBack), key.Matches(msg, m.keys.SliderFwd):
		step := max(s.SliderMax/20, 1)
		if key.Matches(msg, m.keys.SliderBack) {
			step = -step
		}
		page := m.session.OnSliderChange(float64(s.Page + step))
		m.status = fmt.Sprintf("Release at page %d (enter)", page)

	case key.Matches(msg, m.keys.Release):
		if s.Dragging {
			page := m.session.OnSliderComplete(float64(s.Page))
			m.status = fmt.Sprintf("Jumped to page %d", page)
		}

	case key.Matches(msg, m.keys.AddBookmark):
		m.mode = modeAddBookmark
		m.input.SetValue("")
		m.activeCmd = "b"
		focus := m.input.Focus()
		return m, tea.Batch(focus, HighlightCmd())

	case key.Matches(msg, m.keys.Bookmarks):
		m.reloadMarks()
		m.mode = modeBookmarks
		m.activeCmd = "B"
		return m, HighlightCmd()

	case key.Matches(msg, m.keys.Night):
		m.night = !m.night
		m.activeCmd = "n"
		return m, HighlightCmd()

	case key.Matches(msg, m.keys.OpenExternal):
		m.activeCmd = "o"
		if m.deps.Viewer == nil {
			return m, HighlightCmd()
		}
		if err := m.deps.Viewer.Open(m.src.Target()); err != nil {
			m.alert = alertFor(err)
		} else {
			m.status = fmt.Sprintf("Opened in viewer, go to page %d", s.Page)
		}
		return m, HighlightCmd()

	case key.Matches(msg, m.keys.Close):
		return m, navigateBook(ViewDetails, m.book)
	}
	return m, nil
}

func (m *readingModel) setPage(page int) {
	if err := m.session.OnPageChanged(page); err != nil {
		m.alert = alertFor(err)
		return
	}
	m.status = ""
}

func (m readingModel) updateAddBookmark(msg tea.KeyMsg) (readingModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeRead
		m.input.Blur()
		m.alert = alert{}
		return m, nil
	case "enter":
		b, err := m.session.AddBookmark(m.input.Value())
		if err != nil {
			// Keep the prompt open so the note can be fixed.
			m.alert = alertFor(err)
			return m, nil
		}
		m.mode = modeRead
		m.input.Blur()
		m.alert = alert{}
		m.status = fmt.Sprintf("Bookmarked page %d", b.Page)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m readingModel) updateBookmarks(msg tea.KeyMsg) (readingModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "B":
		m.mode = modeRead
		return m, nil
	case "enter":
		bi, ok := m.marks.SelectedItem().(bookmarkItem)
		if !ok {
			return m, nil
		}
		page, err := m.session.JumpToBookmark(bi.mark.Page)
		if err != nil {
			m.alert = alertFor(err)
			return m, nil
		}
		m.mode = modeRead
		m.status = fmt.Sprintf("Jumped to page %d", page)
		return m, nil
	case "d", "delete":
		bi, ok := m.marks.SelectedItem().(bookmarkItem)
		if !ok {
			return m, nil
		}
		m.pendingDelete = bi.index
		m.mode = modeConfirmDelete
		return m, nil
	}
	var cmd tea.Cmd
	m.marks, cmd = m.marks.Update(msg)
	return m, cmd
}

func (m readingModel) updateConfirmDelete(msg tea.KeyMsg) (readingModel, tea.Cmd) {
	var yes bool
	switch msg.String() {
	case "y", "Y":
		yes = true
	case "n", "N", "esc":
	default:
		return m, nil
	}

	answer := reader.ConfirmFunc(func(context.Context, string, string) bool { return yes })
	removed, err := m.session.DeleteBookmark(m.ctx, m.pendingDelete, answer)
	if err != nil {
		m.alert = alertFor(err)
	} else if removed {
		m.status = "Bookmark deleted"
	}
	m.reloadMarks()
	m.mode = modeBookmarks
	if len(m.marks.Items()) == 0 {
		m.mode = modeRead
	}
	return m, nil
}

func (m *readingModel) reloadMarks() {
	marks := m.session.Bookmarks()
	items := make([]list.Item, len(marks))
	for i, b := range marks {
		items[i] = bookmarkItem{index: i, mark: b}
	}
	m.marks.SetItems(items)
}

func (m readingModel) View() string {
	s := m.session.Snapshot()
	width := max(m.width-10, 30)

	header := titleStyle.Render(m.book.Title)
	if m.night {
		header += StyleHelp.Render("  night")
	}

	var page strings.Builder
	switch {
	case !m.loaded && m.alert.empty():
		page.WriteString("Loading...")
	case s.TotalPages > 0:
		fmt.Fprintf(&page, "Page %d of %d", s.Page, s.TotalPages)
	default:
		fmt.Fprintf(&page, "Page %d", s.Page)
	}
	for _, b := range m.session.Bookmarks() {
		if b.Page == s.Page {
			page.WriteString("\n» " + b.Note)
		}
	}
	pane := PageStyle(m.night).Width(width).Render(page.String())

	slider := renderSlider(s.Page, s.SliderMax, width, m.session.Bookmarks())
	if s.Dragging {
		slider = StyleHighlight.Render(slider)
	} else {
		slider = StyleTag.Render(slider)
	}

	parts := []string{header, StyleHelp.Render("  " + truncateText(m.src.Target(), width)), "", pane, slider}
	if m.status != "" {
		parts = append(parts, StyleCached.Render(m.status))
	}
	if !m.alert.empty() {
		parts = append(parts, m.alert.render(width))
	}

	switch m.mode {
	case modeAddBookmark:
		parts = append(parts, "", StyleHeader.Render(fmt.Sprintf("Bookmark page %d", s.Page)), m.input.View())
	case modeBookmarks:
		parts = append(parts, "", StyleHeader.Render("Bookmarks"))
		if len(m.marks.Items()) == 0 {
			parts = append(parts, StyleHelp.Render("  No bookmarks yet. Press b to add one."))
		} else {
			parts = append(parts, m.marks.View())
		}
	case modeConfirmDelete:
		parts = append(parts, "",
			StyleError.Render(reader.DeleteBookmarkTitle),
			StyleNormal.Render(reader.DeleteBookmarkPrompt+" (y/n)"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return outerStyle.Render(RenderWithFooter(content, m.shortcuts(), m.activeCmd))
}

func (m readingModel) shortcuts() []ShortcutEntry {
	switch m.mode {
	case modeAddBookmark:
		return []ShortcutEntry{{Label: "enter save"}, {Label: "esc cancel"}}
	case modeBookmarks:
		return []ShortcutEntry{{Label: "enter jump"}, {Label: "d delete"}, {Label: "esc close"}}
	case modeConfirmDelete:
		return []ShortcutEntry{{Label: "y delete"}, {Label: "n keep"}}
	}
	return []ShortcutEntry{
		{Label: "←/→ page"},
		{Label: "[/] slide"},
		{Key: "b", Label: "b bookmark"},
		{Key: "B", Label: "B list"},
		{Key: "n", Label: "n night"},
		{Key: "o", Label: "o viewer"},
		{Label: "q close"},
	}
}

// renderSlider draws the page slider with bookmark ticks.
func renderSlider(page, maxPage, width int, marks []reader.Bookmark) string {
	width = max(width, 10)
	cells := []rune(strings.Repeat("─", width))
	pos := func(p int) int {
		if maxPage <= 1 {
			return 0
		}
		p = min(max(p, 1), maxPage)
		return (p - 1) * (width - 1) / (maxPage - 1)
	}
	for _, b := range marks {
		cells[pos(b.Page)] = '┼'
	}
	cells[pos(page)] = '●'
	return string(cells)
}
