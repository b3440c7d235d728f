package app

import (
	"fmt"

	"github.com/blackwell-systems/shelfread/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reading positions and bookmarks over HTTP",
		Long: `Start the HTTP API so another device can read and update the same
reading state. Stops on Ctrl+C after in-flight requests finish.

Endpoints:
  GET    /healthz
  GET    /api/books?q=
  GET    /api/books/{id}
  GET    /api/books/{id}/position
  PUT    /api/books/{id}/position
  GET    /api/books/{id}/bookmarks
  POST   /api/books/{id}/bookmarks
  DELETE /api/books/{id}/bookmarks/{index}
  GET    /api/books/{id}/viewer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := cfg.Serve
			if host != "" {
				sc.Host = host
			}
			if port != 0 {
				sc.Port = port
			}
			addr := sc.Addr()

			srv := server.New(server.Options{
				Books:          books,
				Writer:         writer,
				ViewerEndpoint: cfg.Acquire.ViewerEndpoint,
				RateLimit:      sc.RateLimit,
				Log:            log,
			})

			ok("Serving %d book(s) on http://%s", len(books), addr)
			if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
				return fmt.Errorf("serving: %w", err)
			}
			ok("Stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default from serve.host)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default from serve.port)")
	return cmd
}
