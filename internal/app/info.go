package app

import (
	"fmt"

	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <id>",
		Short: "Show metadata, download status and reading state for a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := findBook(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			header("Book: %s", b.ID)
			printField("title", b.Title)
			if b.Author != "" {
				printField("author", b.Author)
			}
			if b.TotalPages > 0 {
				printField("pages", fmt.Sprintf("%d", b.TotalPages))
			}
			printField("url", b.URL)
			if b.Cover != "" {
				printField("cover", b.Cover)
			}

			status := color.RedString("not downloaded")
			if cacheMgr.Exists(b.ID) {
				status = color.GreenString("downloaded") + "  " + cacheMgr.Path(b.ID)
			}
			printField("local", status)

			page, started, err := reader.LoadPosition(ctx, store, b.ID)
			switch {
			case err != nil:
				printField("last page", color.YellowString("unavailable (%v)", err))
			case started:
				printField("last page", fmt.Sprintf("%d", page))
			default:
				printField("last page", "not started")
			}
			if marks, err := reader.LoadBookmarks(ctx, store, b.ID); err == nil {
				printField("bookmarks", fmt.Sprintf("%d", len(marks)))
			}

			if b.Description != "" {
				fmt.Println()
				fmt.Println(b.Description)
			}
			return nil
		},
		ValidArgsFunction: completeBookIDs,
	}
}
