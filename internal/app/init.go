package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/blackwell-systems/shelfread/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		force        bool
		catalogPath  string
		catalogURL   string
		documentsDir string
		backend      string
		mode         string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write a shelfread config file. Every setting has a default, so this is
only needed to change where the catalog comes from, where PDFs are kept,
or which store holds reading state.

The Postgres DSN is never written; set SHELFREAD_STORE_DSN instead.`,
		Example: `  shelfread init
  shelfread init --catalog-url https://example.com/books.json
  shelfread init --store memory --mode stream`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ResolvePath(flagConfig)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			c, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading defaults: %w", err)
			}

			switch {
			case catalogURL != "":
				c.Catalog = config.CatalogConfig{Source: config.CatalogRemote, URL: catalogURL}
			case catalogPath != "":
				c.Catalog = config.CatalogConfig{Source: config.CatalogFile, Path: catalogPath}
			}
			if documentsDir != "" {
				c.Acquire.DocumentsDir = documentsDir
			}
			if backend != "" {
				c.Store.Backend = backend
			}
			if mode != "" {
				c.Acquire.Mode = mode
			}
			if c.Store.Backend != config.StorePostgres {
				if err := c.Validate(); err != nil {
					return err
				}
			}

			if err := config.Save(c, path); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ok("Wrote %s", path)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Printf("  %s  browse the catalog\n", color.CyanString("shelfread browse"))
			fmt.Printf("  %s  start reading\n", color.CyanString("shelfread open <id>"))
			if c.Store.Backend == config.StorePostgres {
				fmt.Printf("  %s\n", color.YellowString("export SHELFREAD_STORE_DSN=postgres://..."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().StringVar(&catalogPath, "catalog-file", "", "Load the catalog from this JSON or YAML file")
	cmd.Flags().StringVar(&catalogURL, "catalog-url", "", "Fetch the catalog from this URL")
	cmd.Flags().StringVar(&documentsDir, "documents-dir", "", "Where downloaded PDFs are kept")
	cmd.Flags().StringVar(&backend, "store", "", "Reading state store: file, memory or postgres")
	cmd.Flags().StringVar(&mode, "mode", "", "Acquisition mode: local or stream")
	return cmd
}
