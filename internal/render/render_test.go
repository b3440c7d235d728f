package render_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/shelfread/internal/render"
)

func writePDF(t *testing.T, pages int) string {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 14)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, "page")
	}
	path := filepath.Join(t.TempDir(), "fixture.pdf")
	require.NoError(t, pdf.OutputFileAndClose(path))
	return path
}

func TestInspect_CountsPages(t *testing.T) {
	path := writePDF(t, 3)

	info, err := render.Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Pages)
	assert.Equal(t, path, info.Path)
	assert.Positive(t, info.Size)
}

func TestInspect_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))

	_, err := render.Inspect(path)
	var re *render.RenderError
	require.True(t, errors.As(err, &re), "want *RenderError, got %v", err)
	assert.Equal(t, path, re.Path)
}

func TestInspect_Missing(t *testing.T) {
	_, err := render.Inspect(filepath.Join(t.TempDir(), "none.pdf"))
	var re *render.RenderError
	require.True(t, errors.As(err, &re))
	assert.True(t, os.IsNotExist(errors.Unwrap(err)))
}

func TestCommand(t *testing.T) {
	name, args := render.Command("linux", "", "/tmp/a.pdf")
	assert.Equal(t, "xdg-open", name)
	assert.Equal(t, []string{"/tmp/a.pdf"}, args)

	name, args = render.Command("darwin", "", "/tmp/a.pdf")
	assert.Equal(t, "open", name)
	assert.Equal(t, []string{"/tmp/a.pdf"}, args)

	name, args = render.Command("windows", "", "C:\\a.pdf")
	assert.Equal(t, "cmd", name)
	assert.Equal(t, []string{"/c", "start", "", "C:\\a.pdf"}, args)

	name, args = render.Command("linux", "zathura", "/tmp/a.pdf")
	assert.Equal(t, "zathura", name)
	assert.Equal(t, []string{"/tmp/a.pdf"}, args)
}

func TestViewer_OpenFailureIsRenderError(t *testing.T) {
	v := render.NewViewer("/definitely/not/a/viewer-binary")
	err := v.Open("/tmp/a.pdf")
	var re *render.RenderError
	require.True(t, errors.As(err, &re), "want *RenderError, got %v", err)
}
