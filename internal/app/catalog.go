package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with the book catalog",
	}
	cmd.AddCommand(newCatalogExportCmd())
	return cmd
}

func newCatalogExportCmd() *cobra.Command {
	var (
		output  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current catalog to a file or stdout",
		Long: `Write the loaded catalog as YAML (or JSON with --json). The output can
be used as catalog.path with catalog.source: file.

Examples:
  shelfread catalog export > books.yml
  shelfread catalog export -o ~/books.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if err := catalog.Save(output, books); err != nil {
					return fmt.Errorf("writing catalog: %w", err)
				}
				ok("Wrote %d book(s) to %s", len(books), output)
				return nil
			}

			var (
				data []byte
				err  error
			)
			if jsonOut {
				data, err = catalog.MarshalJSON(books)
			} else {
				data, err = catalog.Marshal(books)
			}
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file (.json selects JSON)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print JSON instead of YAML")
	return cmd
}
