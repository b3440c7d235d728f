package tui

import (
	"errors"
	"strings"

	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/blackwell-systems/shelfread/internal/render"
)

// alert is a dismissable message shown above a screen's footer.
type alert struct {
	Title   string
	Message string
}

func (a alert) empty() bool { return a.Title == "" && a.Message == "" }

// alertFor titles err the way the reading screen reports each error class.
func alertFor(err error) alert {
	var ve *reader.ValidationError
	var de *acquire.DownloadError
	var re *render.RenderError
	switch {
	case errors.As(err, &ve):
		return alert{Title: ve.Title, Message: ve.Message}
	case errors.As(err, &de):
		return alert{Title: "Download Failed", Message: de.Error()}
	case errors.As(err, &re):
		return alert{Title: "Cannot Display Book", Message: re.Error()}
	default:
		return alert{Title: "Error", Message: err.Error()}
	}
}

func (a alert) render(width int) string {
	if a.empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleError.Render("✗ " + a.Title))
	if a.Message != "" {
		b.WriteString("  ")
		b.WriteString(StyleNormal.Render(truncateText(a.Message, max(width-len(a.Title)-6, 10))))
	}
	return b.String()
}
