package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/blackwell-systems/shelfread/internal/util"
	"gopkg.in/yaml.v3"
)

//go:embed books.json
var bundledJSON []byte

// LoadError reports a catalog that could not be fetched or parsed.
type LoadError struct {
	Source string // file path or URL
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Bundled returns the catalog shipped inside the binary.
func Bundled() ([]Book, error) {
	books, err := Parse(bundledJSON)
	if err != nil {
		return nil, &LoadError{Source: "bundled catalog", Err: err}
	}
	return books, nil
}

// Load reads a catalog file from disk. JSON and YAML are both accepted.
// A missing file is an empty catalog.
func Load(path string) ([]Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Book{}, nil
		}
		return nil, &LoadError{Source: path, Err: err}
	}
	books, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return books, nil
}

// Parse decodes catalog bytes into a book list. yaml.v3 reads JSON arrays
// as flow sequences, so one decoder serves both formats.
func Parse(data []byte) ([]Book, error) {
	if len(data) == 0 {
		return []Book{}, nil
	}
	var books []Book
	if err := yaml.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if books == nil {
		return []Book{}, nil
	}
	if err := validate(books); err != nil {
		return nil, err
	}
	return books, nil
}

func validate(books []Book) error {
	seen := make(map[string]bool, len(books))
	for i, b := range books {
		if b.ID == "" {
			return fmt.Errorf("catalog entry %d has no id", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("duplicate book id %q", b.ID)
		}
		seen[b.ID] = true
		if b.SHA256 != "" && !util.ValidSHA256(b.SHA256) {
			return fmt.Errorf("book %q: sha256 %q is not a hex sha256 digest", b.ID, b.SHA256)
		}
	}
	return nil
}
