package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/spf13/cobra"
)

type searchResult struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	URL        string `json:"url,omitempty"`
	TotalPages int    `json:"totalPages,omitempty"`
	Cached     bool   `json:"cached"`
}

func newSearchCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title or author",
		Long: `Search the catalog for books whose title or author contains the query
(case-insensitive).

Examples:
  shelfread search dune
  shelfread search "dan simmons" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matched := catalog.Search(books, args[0])

			if jsonOut {
				results := make([]searchResult, 0, len(matched))
				for _, b := range matched {
					results = append(results, searchResult{
						ID:         b.ID,
						Title:      b.Title,
						Author:     b.Author,
						URL:        b.URL,
						TotalPages: b.TotalPages,
						Cached:     cacheMgr.Exists(b.ID),
					})
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(matched) == 0 {
				warn("No books match %q", args[0])
				return nil
			}
			printBookTable(matched)
			fmt.Printf("\n%d result(s)\n", len(matched))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output results as JSON")
	return cmd
}
