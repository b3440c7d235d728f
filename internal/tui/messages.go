package tui

import (
	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	tea "github.com/charmbracelet/bubbletea"
)

// View identifies a screen of the app.
type View string

const (
	ViewHub     View = "hub"
	ViewBrowse  View = "browse"
	ViewDetails View = "details"
	ViewReader  View = "reader"
	ViewCache   View = "cache"
)

// NavigateMsg is emitted when a screen wants to switch to another.
type NavigateMsg struct {
	Target View
	Book   *catalog.Book   // details and reader
	Source *acquire.Source // reader
	Read   bool            // details: start acquiring right away
}

// QuitAppMsg is emitted when the whole app should exit.
type QuitAppMsg struct{}

func navigate(target View) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Target: target} }
}

func navigateBook(target View, b catalog.Book) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Target: target, Book: &b} }
}

func quitApp() tea.Msg { return QuitAppMsg{} }
