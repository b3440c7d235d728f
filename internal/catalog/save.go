package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blackwell-systems/shelfread/internal/util"
	"gopkg.in/yaml.v3"
)

// Marshal encodes a book list to YAML bytes.
func Marshal(books []Book) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(books); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalJSON encodes a book list in the published JSON catalog format.
func MarshalJSON(books []Book) ([]byte, error) {
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the book list to path; a .json extension selects JSON,
// anything else YAML.
func Save(path string, books []Book) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		data, err = MarshalJSON(books)
	} else {
		data, err = Marshal(books)
	}
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, data, 0644)
}
