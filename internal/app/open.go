package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackwell-systems/shelfread/internal/acquire"
	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/config"
	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/blackwell-systems/shelfread/internal/render"
	"github.com/blackwell-systems/shelfread/internal/tui"
	"github.com/spf13/cobra"
)

func newOpenCmd() *cobra.Command {
	var (
		app    string
		stream bool
	)

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Read a book (downloads it first unless streaming)",
		Long: `Acquire a book and start reading it.

In local mode the PDF is downloaded to the documents directory once and
reused afterwards. With --stream (or acquire.mode: stream) nothing is
downloaded; the book is shown through the remote viewer instead.

In a terminal the reading screen opens; with --no-tui the book is handed
to the system PDF viewer and the saved page is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := findBook(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			mode := resolver.Mode()
			if stream {
				mode = config.ModeStream
			}
			v := viewer
			if app != "" {
				v = render.NewViewer(app)
			}

			useTUI := tui.ShouldUseTUI(cmd)
			src, err := acquireBook(ctx, *b, mode, useTUI)
			if err != nil {
				var de *acquire.DownloadError
				if errors.As(err, &de) {
					fail("Could not download %s", b.ID)
				}
				return err
			}

			if useTUI {
				deps := tuiDeps()
				deps.Viewer = v
				return tui.Run(ctx, deps, tui.Start{View: tui.ViewReader, Book: b, Source: &src})
			}
			return openDetached(ctx, *b, src, v)
		},
		ValidArgsFunction: completeBookIDs,
	}

	cmd.Flags().StringVar(&app, "app", "", "Application to open the book with")
	cmd.Flags().BoolVar(&stream, "stream", false, "View through the remote viewer instead of downloading")
	cmd.Flags().Bool("no-tui", false, "Open in the system viewer instead of the reading screen")
	return cmd
}

// acquireBook resolves b, showing a progress bar for a fresh download when
// showProgress is set.
func acquireBook(ctx context.Context, b catalog.Book, mode string, showProgress bool) (acquire.Source, error) {
	if mode == config.ModeStream || cacheMgr.Exists(b.ID) {
		return resolver.ResolveMode(ctx, b, mode)
	}

	if !showProgress {
		fmt.Printf("Downloading %s …\n", b.ID)
		src, err := resolver.ResolveMode(ctx, b, mode)
		if err == nil {
			ok("Downloaded to %s", src.Path)
		}
		return src, err
	}

	updates := make(chan tui.ProgressUpdate, 16)
	done := make(chan struct{})
	resolver.SetProgress(func(id string, read, total int64) {
		if id != b.ID {
			return
		}
		select {
		case updates <- tui.ProgressUpdate{Read: read, Total: total}:
		default:
		}
	})
	defer resolver.SetProgress(nil)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		src acquire.Source
		err error
	)
	go func() {
		defer close(done)
		src, err = resolver.ResolveMode(ctx, b, mode)
	}()

	if perr := tui.ShowProgress(fmt.Sprintf("Downloading %s", b.Title), updates, done); perr != nil {
		cancel()
		<-done
		return acquire.Source{}, perr
	}
	<-done
	return src, err
}

// openDetached hands the source to the system viewer and reports where the
// reader left off.
func openDetached(ctx context.Context, b catalog.Book, src acquire.Source, v *render.Viewer) error {
	pages := b.TotalPages
	if src.Kind == acquire.Local {
		info, err := render.Inspect(src.Path)
		if err != nil {
			return err
		}
		pages = info.Pages
	}

	s := reader.Open(ctx, b, writer, reader.Options{Log: log})
	s.OnSourceResolved(ctx, pages)
	state := s.Snapshot()
	s.Close()

	if err := v.Open(src.Target()); err != nil {
		return err
	}
	if state.TotalPages > 0 {
		ok("Opened %s, resume at page %d of %d", b.Title, state.Page, state.TotalPages)
	} else {
		ok("Opened %s, resume at page %d", b.Title, state.Page)
	}
	return nil
}
