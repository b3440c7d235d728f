package tui

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/blackwell-systems/shelfread/internal/render"
	tea "github.com/charmbracelet/bubbletea"
)

// Deps are the services the screens act on.
type Deps struct {
	Books    []catalog.Book
	Resolver *acquire.Resolver
	Writer   *reader.Writer
	Viewer   *render.Viewer
	Log      *slog.Logger
	Images   ImageProtocol // covers are drawn only when not ProtocolNone
}

// Start picks the first screen. Book is required for ViewDetails and
// ViewReader; Source is required for ViewReader.
type Start struct {
	View   View
	Book   *catalog.Book
	Source *acquire.Source
}

// Model is the app orchestrator. It owns one screen model per view and
// switches between them on NavigateMsg.
type Model struct {
	ctx  context.Context
	deps Deps

	currentView View
	width       int
	height      int

	hub     hubModel
	browse  browserModel
	details detailsModel
	reading readingModel
	cache   cacheModel
}

// New creates the orchestrator positioned at start.
func New(ctx context.Context, deps Deps, start Start) Model {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	m := Model{ctx: ctx, deps: deps, currentView: ViewHub}
	m.hub = newHubModel(deps)

	switch start.View {
	case ViewBrowse:
		m.currentView = ViewBrowse
		m.browse = newBrowserModel(deps.Books, deps.Resolver)
	case ViewDetails:
		if start.Book != nil {
			m.currentView = ViewDetails
			m.details = newDetailsModel(ctx, deps, *start.Book)
		}
	case ViewReader:
		if start.Book != nil && start.Source != nil {
			m.currentView = ViewReader
			m.reading = newReadingModel(ctx, deps, *start.Book, *start.Source)
		}
	case ViewCache:
		m.currentView = ViewCache
		m.cache = newCacheModel(deps.Resolver.Cache(), deps.Books)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	switch m.currentView {
	case ViewDetails:
		return m.details.Init()
	case ViewReader:
		return m.reading.Init()
	default:
		return nil
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.updateCurrentView(msg)

	case NavigateMsg:
		return m.handleNavigation(msg)

	case QuitAppMsg:
		m.closeSession()
		return m, tea.Quit

	default:
		return m.updateCurrentView(msg)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	view := m.currentScreen()
	// Kitty keeps placed images until told otherwise; the cover must not
	// linger over other screens.
	if m.deps.Images == ProtocolKitty && m.currentView != ViewDetails {
		view = kittyClear + view
	}
	return view
}

func (m Model) currentScreen() string {
	switch m.currentView {
	case ViewHub:
		return m.hub.View()
	case ViewBrowse:
		return m.browse.View()
	case ViewDetails:
		return m.details.View()
	case ViewReader:
		return m.reading.View()
	case ViewCache:
		return m.cache.View()
	default:
		return "Unknown view"
	}
}

// CurrentView reports the active screen.
func (m Model) CurrentView() View { return m.currentView }

func (m Model) updateCurrentView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewHub:
		m.hub, cmd = m.hub.Update(msg)
	case ViewBrowse:
		m.browse, cmd = m.browse.Update(msg)
	case ViewDetails:
		m.details, cmd = m.details.Update(msg)
	case ViewReader:
		m.reading, cmd = m.reading.Update(msg)
	case ViewCache:
		m.cache, cmd = m.cache.Update(msg)
	}
	return m, cmd
}

func (m Model) handleNavigation(msg NavigateMsg) (tea.Model, tea.Cmd) {
	if m.currentView == ViewReader && msg.Target != ViewReader {
		m.closeSession()
	}

	var first tea.Cmd
	switch msg.Target {
	case ViewHub:
		m.hub = newHubModel(m.deps)
	case ViewBrowse:
		// Keep the filter and cursor when coming back from a book.
		if m.browse.books == nil {
			m.browse = newBrowserModel(m.deps.Books, m.deps.Resolver)
		} else {
			m.browse.refreshCached()
		}
	case ViewDetails:
		if msg.Book == nil {
			return m, nil
		}
		m.details = newDetailsModel(m.ctx, m.deps, *msg.Book)
		first = m.details.Init()
		if msg.Read {
			var acq tea.Cmd
			m.details, acq = m.details.startAcquire(m.details.mode())
			first = tea.Batch(first, acq)
		}
	case ViewReader:
		if msg.Book == nil || msg.Source == nil {
			return m, nil
		}
		m.reading = newReadingModel(m.ctx, m.deps, *msg.Book, *msg.Source)
		first = m.reading.Init()
	case ViewCache:
		m.cache = newCacheModel(m.deps.Resolver.Cache(), m.deps.Books)
	default:
		return m, nil
	}
	m.currentView = msg.Target

	// New screens need the terminal size before their first render.
	size := func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }
	if m.width == 0 {
		return m, first
	}
	return m, tea.Batch(first, size)
}

func (m *Model) closeSession() {
	if m.reading.session != nil {
		m.reading.session.Close()
	}
}

// Run starts the app in the alternate screen and blocks until it exits.
// Any open reading session is closed before Run returns.
func Run(ctx context.Context, deps Deps, start Start) error {
	m := New(ctx, deps, start)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.closeSession()
	}
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
