package app

import (
	"fmt"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage downloaded books",
		Long:  "Manage the PDFs downloaded to the documents directory. Reading state is not affected.",
	}

	cmd.AddCommand(
		newCacheInfoCmd(),
		newCacheClearCmd(),
		newCacheVerifyCmd(),
	)
	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show downloaded books and disk usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tui.ShouldUseTUI(cmd) {
				return tui.Run(cmd.Context(), tuiDeps(), tui.Start{View: tui.ViewCache})
			}

			entries, err := cacheMgr.Entries()
			if err != nil {
				return fmt.Errorf("reading documents directory: %w", err)
			}
			var total int64
			for _, e := range entries {
				total += e.Size
			}

			header("Downloaded Books")
			printField("books", fmt.Sprintf("%d of %d", len(entries), len(books)))
			printField("disk usage", humanBytes(total))
			printField("directory", cacheMgr.Dir())

			if len(entries) > 0 {
				fmt.Println()
			}
			for _, e := range entries {
				title := color.New(color.Faint).Sprint("(not in catalog)")
				if b := catalog.ByID(books, e.BookID); b != nil {
					title = b.Title
				}
				fmt.Printf("  %-10s %-20s %s\n", humanBytes(e.Size), color.CyanString(e.BookID), title)
			}
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear [book-id...]",
		Short: "Remove downloaded books",
		Long: `Remove downloaded PDFs. They are downloaded again the next time the
book is opened. Without ids every downloaded book is removed.

Examples:
  shelfread cache clear dune hyperion
  shelfread cache clear --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				for _, id := range args {
					if !cacheMgr.Exists(id) {
						warn("%s is not downloaded", id)
						continue
					}
					if err := cacheMgr.Remove(id); err != nil {
						return fmt.Errorf("removing %s: %w", id, err)
					}
					ok("Removed %s", id)
				}
				return nil
			}

			count, size, err := cacheMgr.Usage()
			if err != nil {
				return fmt.Errorf("reading documents directory: %w", err)
			}
			if count == 0 {
				ok("Nothing downloaded")
				return nil
			}

			confirm, err := confirmer(force)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("This will remove %d downloaded book(s) (%s). Proceed?", count, humanBytes(size))
			if !confirm.Confirm(cmd.Context(), "Clear Downloads", msg) {
				return fmt.Errorf("cancelled")
			}

			n, err := cacheMgr.Clear()
			if err != nil {
				return fmt.Errorf("clearing documents directory: %w", err)
			}
			ok("Removed %d book(s) (%s)", n, humanBytes(size))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

func newCacheVerifyCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "verify [book-id...]",
		Short: "Check downloaded books against their catalog checksums",
		Long: `Hash downloaded PDFs and compare them with the sha256 published in the
catalog. Books without a checksum are skipped. Use --fix to remove
mismatched files so they are downloaded again on next open.

Examples:
  shelfread cache verify
  shelfread cache verify dune --fix`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args
			if len(ids) == 0 {
				entries, err := cacheMgr.Entries()
				if err != nil {
					return fmt.Errorf("reading documents directory: %w", err)
				}
				for _, e := range entries {
					ids = append(ids, e.BookID)
				}
			}

			bad := 0
			for _, id := range ids {
				b := catalog.ByID(books, id)
				if b == nil {
					warn("%s is not in the catalog", id)
					continue
				}
				checked, err := cacheMgr.Verify(id, b.SHA256)
				switch {
				case err != nil:
					bad++
					fail("%s: %v", id, err)
					if fix {
						if err := cacheMgr.Remove(id); err != nil {
							return fmt.Errorf("removing %s: %w", id, err)
						}
						ok("Removed %s", id)
					}
				case !checked:
					fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint("skip"), id)
				default:
					ok("%s", id)
				}
			}

			if bad > 0 && !fix {
				return fmt.Errorf("%d book(s) failed verification; run with --fix to remove them", bad)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Remove books that fail verification")
	return cmd
}
