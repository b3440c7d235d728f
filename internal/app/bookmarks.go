package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blackwell-systems/shelfread/internal/reader"
	"github.com/blackwell-systems/shelfread/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newBookmarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"bm"},
		Short:   "List, add or delete bookmarks",
	}
	cmd.AddCommand(
		newBookmarksListCmd(),
		newBookmarksAddCmd(),
		newBookmarksDeleteCmd(),
	)
	return cmd
}

func newBookmarksListCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list <id>",
		Short: "List a book's bookmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := findBook(args[0])
			if err != nil {
				return err
			}
			marks, err := reader.LoadBookmarks(cmd.Context(), store, b.ID)
			if err != nil {
				return fmt.Errorf("reading bookmarks: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(marks)
			}
			if len(marks) == 0 {
				fmt.Printf("No bookmarks for %s\n", b.ID)
				return nil
			}
			header("Bookmarks: %s", b.Title)
			for i, m := range marks {
				fmt.Printf("  %2d. %s  %s\n", i+1, color.CyanString("p.%-4d", m.Page), m.Note)
			}
			return nil
		},
		ValidArgsFunction: completeBookIDs,
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newBookmarksAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <id> <note>",
		Short: "Bookmark the last page read",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := findBook(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			s := reader.Open(ctx, *b, writer, reader.Options{Log: log})
			defer s.Close()
			s.OnSourceResolved(ctx, b.TotalPages)

			mark, err := s.AddBookmark(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if err := s.Settled(ctx); err != nil {
				return err
			}
			ok("Bookmarked page %d of %s", mark.Page, b.ID)
			return nil
		},
		ValidArgsFunction: completeBookIDs,
	}
	return cmd
}

func newBookmarksDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id> <number>",
		Short: "Delete a bookmark by its number in 'bookmarks list'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := findBook(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid bookmark number %q", args[1])
			}
			ctx := cmd.Context()

			confirm, err := confirmer(yes)
			if err != nil {
				return err
			}

			s := reader.Open(ctx, *b, writer, reader.Options{Log: log})
			defer s.Close()

			removed, err := s.DeleteBookmark(ctx, n-1, confirm)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Println("Cancelled.")
				return nil
			}
			if err := s.Settled(ctx); err != nil {
				return err
			}
			ok("Deleted bookmark %d of %s", n, b.ID)
			return nil
		},
		ValidArgsFunction: completeBookIDs,
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// stdinTTY is swapped in tests.
var stdinTTY = util.IsStdinTTY

// confirmer returns the confirmation for a destructive command: yes skips
// it, otherwise the user is asked on the terminal. Without a terminal on
// stdin nobody can answer, so the command is refused.
func confirmer(yes bool) (reader.Confirmer, error) {
	if yes {
		return reader.AlwaysConfirm, nil
	}
	if !stdinTTY() {
		return nil, fmt.Errorf("stdin is not a terminal; pass --yes to confirm")
	}
	return promptConfirm(os.Stdin, os.Stdout), nil
}

// promptConfirm asks on out and reads a y/n answer from in.
func promptConfirm(in io.Reader, out io.Writer) reader.Confirmer {
	return reader.ConfirmFunc(func(_ context.Context, title, message string) bool {
		_, _ = fmt.Fprintf(out, "%s\n%s (y/n): ", color.YellowString(title), message)
		var resp string
		_, _ = fmt.Fscanln(in, &resp)
		resp = strings.ToLower(strings.TrimSpace(resp))
		return resp == "y" || resp == "yes"
	})
}
