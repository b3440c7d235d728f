package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxCatalogBytes bounds a remote catalog document.
const maxCatalogBytes = 8 << 20

// Fetch downloads and decodes a remote JSON catalog. Any failure is a
// *LoadError.
func Fetch(ctx context.Context, client *http.Client, url string) ([]Book, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &LoadError{
			Source: url,
			Err:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var books []Book
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogBytes))
	if err := dec.Decode(&books); err != nil {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("decoding catalog JSON: %w", err)}
	}
	if books == nil {
		books = []Book{}
	}
	if err := validate(books); err != nil {
		return nil, &LoadError{Source: url, Err: err}
	}
	return books, nil
}
