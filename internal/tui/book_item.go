package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// BookItem represents a book in the browser list.
type BookItem struct {
	Book   catalog.Book
	Cached bool
}

// FilterValue returns a string used for filtering in the list
func (b BookItem) FilterValue() string {
	return b.Book.Title + " " + b.Book.Author
}

// truncateText truncates s to maxWidth display cells with an ellipsis.
func truncateText(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, "…")
}

// padOrTruncate fits s to exactly width display cells.
func padOrTruncate(s string, width int) string {
	s = truncateText(s, width)
	if n := ansi.StringWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// formatBytes formats bytes as human-readable size
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for n := n / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Column width constraints
const (
	minTitleWidth  = 12
	maxTitleWidth  = 48
	minAuthorWidth = 8
	maxAuthorWidth = 26
	pagesWidth     = 9
	cachedWidth    = 8
	columnGap      = 1
)

// computeColumnWidths splits the list width between title and author.
func computeColumnWidths(totalWidth int) (titleW, authorW int) {
	const prefix = 2
	usable := totalWidth - prefix - pagesWidth - cachedWidth - columnGap*3
	if usable < minTitleWidth+minAuthorWidth {
		return minTitleWidth, minAuthorWidth
	}
	titleW = min(usable*60/100, maxTitleWidth)
	authorW = min(usable-titleW, maxAuthorWidth)
	return max(titleW, minTitleWidth), max(authorW, minAuthorWidth)
}

// renderBookItem renders a book in the browser list with fixed-width columns.
func renderBookItem(w io.Writer, m list.Model, index int, item list.Item) {
	bookItem, ok := item.(BookItem)
	if !ok {
		return
	}

	listWidth := m.Width()
	if listWidth <= 0 {
		listWidth = 80
	}
	titleW, authorW := computeColumnWidths(listWidth)
	gap := strings.Repeat(" ", columnGap)

	isCursor := index == m.Index()
	prefix := "  "
	if isCursor {
		prefix = lipgloss.NewStyle().Foreground(ColorOrange).Render("›") + " "
	}

	titleCol := padOrTruncate(bookItem.Book.Title, titleW)
	authorCol := padOrTruncate(bookItem.Book.Author, authorW)
	pages := ""
	if bookItem.Book.TotalPages > 0 {
		pages = fmt.Sprintf("%d pp", bookItem.Book.TotalPages)
	}
	pagesCol := padOrTruncate(pages, pagesWidth)
	cached := ""
	if bookItem.Cached {
		cached = "✓ local"
	}
	cachedCol := padOrTruncate(cached, cachedWidth)

	var line string
	if isCursor {
		line = prefix +
			StyleHighlight.Render(titleCol) + gap +
			lipgloss.NewStyle().Foreground(ColorOrange).Faint(true).Render(authorCol) + gap +
			lipgloss.NewStyle().Foreground(ColorTealLight).Render(pagesCol) + gap +
			StyleHighlight.Render(cachedCol)
	} else {
		line = prefix +
			StyleNormal.Render(titleCol) + gap +
			StyleHelp.Render(authorCol) + gap +
			StyleTag.Render(pagesCol) + gap +
			StyleCached.Render(cachedCol)
	}
	_, _ = fmt.Fprint(w, line)
}
