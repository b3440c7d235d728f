package delegate

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/bubbles/list"
)

type row string

func (r row) FilterValue() string { return string(r) }

func TestBaseRendersThroughFunc(t *testing.T) {
	d := NewWithSpacing(func(w io.Writer, _ list.Model, index int, item list.Item) {
		_, _ = fmt.Fprintf(w, "%d:%s", index, item.FilterValue())
	}, 1)

	if d.Height() != 1 || d.Spacing() != 1 {
		t.Fatalf("Height/Spacing = %d/%d, want 1/1", d.Height(), d.Spacing())
	}

	var buf bytes.Buffer
	d.Render(&buf, list.Model{}, 3, row("dune"))
	if got := buf.String(); got != "3:dune" {
		t.Errorf("Render wrote %q, want %q", got, "3:dune")
	}
}

func TestBaseNilRenderFunc(t *testing.T) {
	var buf bytes.Buffer
	New(nil).Render(&buf, list.Model{}, 0, row("x"))
	if buf.Len() != 0 {
		t.Errorf("nil render func wrote %q", buf.String())
	}
}
