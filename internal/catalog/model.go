package catalog

// Book is one entry in the catalog. Field names follow the published JSON
// catalog format: url is the PDF content, cover the cover image.
type Book struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url" yaml:"url"`
	Cover       string `json:"cover,omitempty" yaml:"cover,omitempty"`
	SHA256      string `json:"sha256,omitempty" yaml:"sha256,omitempty"` // of the PDF, optional
	TotalPages  int    `json:"totalPages,omitempty" yaml:"totalPages,omitempty"`
}

// ContentURL returns the remote location of the book's PDF.
func (b Book) ContentURL() string { return b.URL }

// CoverURL returns the remote location of the cover image.
func (b Book) CoverURL() string { return b.Cover }
