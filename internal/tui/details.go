package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/config"
	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type readingStateMsg struct {
	bookID    string
	page      int
	started   bool
	bookmarks int
}

type coverMsg struct {
	bookID string
	seq    string
	err    error
}

type acquiredMsg struct {
	bookID string
	src    acquire.Source
	err    error
}

// detailsModel shows one book and acquires it for reading.
type detailsModel struct {
	ctx  context.Context
	deps Deps
	book catalog.Book

	cached    bool
	cover     string // rendered escape sequence, "" when not shown
	page      int
	started   bool
	bookmarks int

	acquiring bool
	cancel    context.CancelFunc
	progress  progress.Model
	read      int64
	total     int64
	updates   chan ProgressUpdate
	done      chan struct{}

	alert     alert
	activeCmd string
	width     int
	height    int
}

func newDetailsModel(ctx context.Context, deps Deps, b catalog.Book) detailsModel {
	m := detailsModel{
		ctx:      ctx,
		deps:     deps,
		book:     b,
		page:     1,
		progress: progress.New(progress.WithDefaultGradient()),
	}
	if deps.Resolver != nil {
		m.cached = deps.Resolver.Cache().Exists(b.ID)
	}
	return m
}

func (m detailsModel) Init() tea.Cmd {
	return tea.Batch(m.loadState(), m.loadCover())
}

func (m detailsModel) loadState() tea.Cmd {
	w, ctx, id := m.deps.Writer, m.ctx, m.book.ID
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		// Pick up writes a reading session just queued for this book.
		_ = w.Settled(ctx, id)
		msg := readingStateMsg{bookID: id, page: 1}
		if page, ok, err := reader.LoadPosition(ctx, w.Store(), id); err == nil && ok {
			msg.page, msg.started = page, true
		}
		if list, err := reader.LoadBookmarks(ctx, w.Store(), id); err == nil {
			msg.bookmarks = len(list)
		}
		return msg
	}
}

// loadCover fetches the cover into the cache and renders it for the
// terminal's image protocol.
func (m detailsModel) loadCover() tea.Cmd {
	r, proto, ctx, book := m.deps.Resolver, m.deps.Images, m.ctx, m.book
	if r == nil || proto == ProtocolNone || book.CoverURL() == "" {
		return nil
	}
	return func() tea.Msg {
		path, err := r.Cover(ctx, book)
		if err != nil {
			return coverMsg{bookID: book.ID, err: err}
		}
		return coverMsg{bookID: book.ID, seq: renderCover(path, proto, coverCols, coverRows)}
	}
}

// startAcquire resolves the book in mode. Download progress arrives as
// ProgressUpdate until acquiredMsg reports the outcome.
func (m detailsModel) startAcquire(mode string) (detailsModel, tea.Cmd) {
	if m.acquiring || m.deps.Resolver == nil {
		return m, nil
	}
	ctx, cancel := context.WithCancel(m.ctx)
	updates := make(chan ProgressUpdate, 16)
	done := make(chan struct{})

	m.acquiring = true
	m.cancel = cancel
	m.updates = updates
	m.done = done
	m.read, m.total = 0, 0
	m.alert = alert{}

	r, book := m.deps.Resolver, m.book
	r.SetProgress(func(id string, read, total int64) {
		if id != book.ID {
			return
		}
		select {
		case updates <- ProgressUpdate{Read: read, Total: total}:
		default:
		}
	})

	resolve := func() tea.Msg {
		defer close(done)
		defer cancel()
		src, err := r.ResolveMode(ctx, book, mode)
		r.SetProgress(nil)
		return acquiredMsg{bookID: book.ID, src: src, err: err}
	}
	return m, tea.Batch(resolve, waitForDownload(updates, done))
}

func (m detailsModel) Update(msg tea.Msg) (detailsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 60)
		return m, nil

	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case readingStateMsg:
		if msg.bookID == m.book.ID {
			m.page, m.started, m.bookmarks = msg.page, msg.started, msg.bookmarks
		}
		return m, nil

	case coverMsg:
		if msg.bookID != m.book.ID {
			return m, nil
		}
		if msg.err != nil {
			m.deps.Log.Debug("cover unavailable", "book", msg.bookID, "err", msg.err)
			return m, nil
		}
		m.cover = msg.seq
		return m, nil

	case ProgressUpdate:
		m.read, m.total = msg.Read, msg.Total
		return m, waitForDownload(m.updates, m.done)

	case progressDoneMsg:
		return m, nil

	case acquiredMsg:
		if msg.bookID != m.book.ID {
			return m, nil
		}
		m.acquiring = false
		m.cancel = nil
		if msg.err != nil {
			if errors.Is(msg.err, context.Canceled) {
				m.alert = alert{Title: "Cancelled", Message: "Download stopped."}
			} else {
				m.alert = alertFor(msg.err)
			}
			return m, nil
		}
		book, src := m.book, msg.src
		return m, func() tea.Msg { return NavigateMsg{Target: ViewReader, Book: &book, Source: &src} }

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.stop()
			return m, quitApp
		case "esc", "backspace", "q":
			if m.acquiring {
				m.stop()
				return m, nil
			}
			return m, navigate(ViewBrowse)
		case "enter", "r":
			m.activeCmd = "enter"
			var cmd tea.Cmd
			m, cmd = m.startAcquire(m.mode())
			return m, tea.Batch(cmd, HighlightCmd())
		case "s":
			m.activeCmd = "s"
			var cmd tea.Cmd
			m, cmd = m.startAcquire(config.ModeStream)
			return m, tea.Batch(cmd, HighlightCmd())
		}
	}
	return m, nil
}

func (m detailsModel) mode() string {
	if m.deps.Resolver == nil {
		return config.ModeLocal
	}
	return m.deps.Resolver.Mode()
}

func (m *detailsModel) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m detailsModel) View() string {
	width := max(m.width-12, 40)
	var b strings.Builder

	b.WriteString(coverBlock(m.cover, m.deps.Images))
	b.WriteString(titleStyle.Render(m.book.Title))
	b.WriteString("\n")
	if m.book.Author != "" {
		b.WriteString(StyleTag.Render("  by " + m.book.Author))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.book.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(width).PaddingLeft(2).Render(m.book.Description))
		b.WriteString("\n\n")
	}

	field := func(label, value string) {
		b.WriteString(StyleHelp.Render(fmt.Sprintf("  %-12s ", label+":")))
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("ID", m.book.ID)
	if m.book.TotalPages > 0 {
		field("Pages", fmt.Sprintf("%d", m.book.TotalPages))
	}
	if m.cached {
		field("Status", StyleCached.Render("✓ downloaded"))
	} else {
		field("Status", StyleHelp.Render("not downloaded"))
	}
	if m.started {
		field("Last read", fmt.Sprintf("page %d", m.page))
	} else {
		field("Last read", StyleHelp.Render("not started"))
	}
	field("Bookmarks", fmt.Sprintf("%d", m.bookmarks))
	field("Mode", m.mode())

	if m.acquiring {
		b.WriteString("\n")
		if m.total > 0 {
			pct := float64(m.read) / float64(m.total)
			b.WriteString("  " + m.progress.ViewAs(pct))
			b.WriteString("\n")
			b.WriteString(StyleHelp.Render(fmt.Sprintf("  %s / %s", formatBytes(m.read), formatBytes(m.total))))
		} else if m.read > 0 {
			b.WriteString(StyleHelp.Render("  Downloading... " + formatBytes(m.read)))
		} else {
			b.WriteString(StyleHelp.Render("  Preparing book..."))
		}
		b.WriteString("\n")
	}

	if !m.alert.empty() {
		b.WriteString("\n")
		b.WriteString(m.alert.render(width))
		b.WriteString("\n")
	}

	shortcuts := []ShortcutEntry{
		{Key: "enter", Label: "enter read"},
		{Key: "s", Label: "s stream"},
		{Key: "esc", Label: "esc back"},
	}
	if m.acquiring {
		shortcuts = []ShortcutEntry{{Key: "esc", Label: "esc cancel"}}
	}
	return outerStyle.Render(RenderWithFooter(b.String(), shortcuts, m.activeCmd))
}
