package tui

import "github.com/charmbracelet/bubbles/key"

// StandardKeys defines common key bindings used across screens.
type StandardKeys struct {
	Quit   key.Binding
	Select key.Binding
	Back   key.Binding
	Help   key.Binding
}

// NewStandardKeys creates a standard set of key bindings.
func NewStandardKeys() StandardKeys {
	return StandardKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ReaderKeys are the reading screen bindings.
type ReaderKeys struct {
	Prev         key.Binding
	Next         key.Binding
	SliderBack   key.Binding
	SliderFwd    key.Binding
	Release      key.Binding
	AddBookmark  key.Binding
	Bookmarks    key.Binding
	Night        key.Binding
	OpenExternal key.Binding
	Close        key.Binding
}

// NewReaderKeys creates the reading screen bindings.
func NewReaderKeys() ReaderKeys {
	return ReaderKeys{
		Prev:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev")),
		Next:         key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next")),
		SliderBack:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "slide back")),
		SliderFwd:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "slide fwd")),
		Release:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "jump")),
		AddBookmark:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmark")),
		Bookmarks:    key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "bookmarks")),
		Night:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "night")),
		OpenExternal: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open viewer")),
		Close:        key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "close")),
	}
}

// ShortHelp implements help.KeyMap.
func (k ReaderKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.SliderBack, k.SliderFwd, k.AddBookmark, k.Bookmarks, k.Night, k.OpenExternal, k.Close}
}

// FullHelp implements help.KeyMap.
func (k ReaderKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.SliderBack, k.SliderFwd, k.Release},
		{k.AddBookmark, k.Bookmarks, k.Night, k.OpenExternal, k.Close},
	}
}

// BrowserKeys are the catalog browser bindings.
type BrowserKeys struct {
	Filter key.Binding
	Open   key.Binding
	Read   key.Binding
	Back   key.Binding
}

// NewBrowserKeys creates the catalog browser bindings.
func NewBrowserKeys() BrowserKeys {
	return BrowserKeys{
		Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Read:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "read")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}
