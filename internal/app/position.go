package app

import (
	"fmt"
	"strconv"

	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/spf13/cobra"
)

func newPositionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "position <id> [page]",
		Short: "Show or set the last page read for a book",
		Example: `  shelfread position dune
  shelfread position dune 42`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := findBook(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if len(args) == 1 {
				page, started, err := reader.LoadPosition(ctx, store, b.ID)
				if err != nil {
					return fmt.Errorf("reading position: %w", err)
				}
				if !started {
					fmt.Printf("%s: not started (page 1)\n", b.ID)
					return nil
				}
				fmt.Printf("%s: page %d\n", b.ID, page)
				return nil
			}

			page, valid := reader.ParsePage(args[1])
			if !valid {
				return fmt.Errorf("invalid page %q: page numbers start at 1", args[1])
			}
			if err := <-writer.Set(b.ID, reader.PositionKey(b.ID), strconv.Itoa(page)); err != nil {
				return fmt.Errorf("saving position: %w", err)
			}
			ok("%s: page %d saved", b.ID, page)
			return nil
		},
		ValidArgsFunction: completeBookIDs,
	}
}
