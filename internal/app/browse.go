package app

import (
	"fmt"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "browse",
		Aliases: []string{"ls"},
		Short:   "Browse the catalog (interactive TUI or text output)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tui.ShouldUseTUI(cmd) {
				return tui.Run(cmd.Context(), tuiDeps(), tui.Start{View: tui.ViewBrowse})
			}

			if len(books) == 0 {
				warn("The catalog is empty.")
				return nil
			}

			matched := catalog.Search(books, search)
			if len(matched) == 0 {
				warn("No books match %q", search)
				return nil
			}
			printBookTable(matched)
			fmt.Printf("\n%d of %d books\n", len(matched), len(books))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only list books whose title or author contains this text")
	return cmd
}

// printBookTable prints one line per book with its download state.
func printBookTable(list []catalog.Book) {
	for _, b := range list {
		mark := "  "
		if cacheMgr.Exists(b.ID) {
			mark = color.GreenString("✓ ")
		}
		author := ""
		if b.Author != "" {
			author = color.New(color.Faint).Sprint(" by " + b.Author)
		}
		fmt.Printf("%s%-20s %s%s\n", mark, color.CyanString(b.ID), b.Title, author)
	}
}
