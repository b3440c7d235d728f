package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/shelfread/internal/catalog"
	"github.com/blackwell-systems/shelfread/internal/config"
)

var sampleJSON = []byte(`[
  {"id": "b1", "title": "Dune", "author": "Frank Herbert", "url": "https://example.com/dune.pdf", "cover": "https://example.com/dune.jpg", "totalPages": 412},
  {"id": "b2", "title": "Hyperion", "author": "Dan Simmons", "url": "https://example.com/hyperion.pdf"}
]`)

// --- Parse ---

func TestParse_JSON(t *testing.T) {
	books, err := catalog.Parse(sampleJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].TotalPages != 412 {
		t.Errorf("books[0].TotalPages = %d, want 412", books[0].TotalPages)
	}
	if books[0].CoverURL() != "https://example.com/dune.jpg" {
		t.Errorf("CoverURL = %q", books[0].CoverURL())
	}
	if books[1].ContentURL() != "https://example.com/hyperion.pdf" {
		t.Errorf("ContentURL = %q", books[1].ContentURL())
	}
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
- id: b1
  title: Dune
  author: Frank Herbert
  url: https://example.com/dune.pdf
`)
	books, err := catalog.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(books) != 1 || books[0].Author != "Frank Herbert" {
		t.Errorf("unexpected books: %+v", books)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "[]\n"} {
		books, err := catalog.Parse([]byte(in))
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if books == nil || len(books) != 0 {
			t.Errorf("Parse(%q) = %v, want empty non-nil", in, books)
		}
	}
}

func TestParse_RejectsDuplicateID(t *testing.T) {
	_, err := catalog.Parse([]byte(`[{"id":"a","title":"x"},{"id":"a","title":"y"}]`))
	if err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestParse_RejectsMissingID(t *testing.T) {
	if _, err := catalog.Parse([]byte(`[{"title":"x"}]`)); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestParse_Checksum(t *testing.T) {
	sum := strings.Repeat("0f", 32)
	books, err := catalog.Parse([]byte(`[{"id":"a","title":"x","sha256":"` + sum + `"}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if books[0].SHA256 != sum {
		t.Errorf("SHA256 = %q, want %q", books[0].SHA256, sum)
	}

	if _, err := catalog.Parse([]byte(`[{"id":"a","title":"x","sha256":"nothex"}]`)); err == nil {
		t.Error("expected error for malformed sha256")
	}
}

func TestBundled(t *testing.T) {
	books, err := catalog.Bundled()
	if err != nil {
		t.Fatalf("Bundled: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 bundled books, got %d", len(books))
	}
	for _, b := range books {
		if b.Title == "" || b.URL == "" || b.Cover == "" {
			t.Errorf("bundled book %q is incomplete: %+v", b.ID, b)
		}
	}
}

// --- Load / Save ---

func TestLoad_MissingFile(t *testing.T) {
	books, err := catalog.Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(books) != 0 {
		t.Errorf("expected empty catalog, got %d", len(books))
	}
}

func TestLoad_CorruptIsLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{{{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := catalog.Load(path)
	var le *catalog.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if le.Source != path {
		t.Errorf("LoadError.Source = %q, want %q", le.Source, path)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	books, _ := catalog.Parse(sampleJSON)
	dir := t.TempDir()

	for _, name := range []string{"out.json", "out.yml"} {
		path := filepath.Join(dir, name)
		if err := catalog.Save(path, books); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		got, err := catalog.Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if len(got) != 2 || got[0].Title != "Dune" || got[0].TotalPages != 412 {
			t.Errorf("%s round trip mismatch: %+v", name, got)
		}
	}

	raw, _ := os.ReadFile(filepath.Join(dir, "out.json"))
	if !bytes.Contains(raw, []byte(`"totalPages": 412`)) {
		t.Errorf("JSON export should use totalPages field, got:\n%s", raw)
	}
}

// --- Fetch ---

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(sampleJSON)
	}))
	defer srv.Close()

	books, err := catalog.Fetch(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(books) != 2 {
		t.Errorf("expected 2 books, got %d", len(books))
	}
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := catalog.Fetch(context.Background(), srv.Client(), srv.URL)
	var le *catalog.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "410") {
		t.Errorf("error should mention status, got %v", err)
	}
}

func TestFetch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := catalog.Fetch(context.Background(), srv.Client(), srv.URL)
	var le *catalog.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %v", err)
	}
}

// --- Loader ---

func TestLoader_DegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	l := catalog.NewLoader(config.CatalogConfig{Source: config.CatalogRemote, URL: srv.URL}, srv.Client(), log)

	books := l.Load(context.Background())
	if books == nil || len(books) != 0 {
		t.Errorf("Load = %v, want empty non-nil catalog", books)
	}
	if !strings.Contains(logs.String(), "catalog unavailable") {
		t.Errorf("expected a warning in the log, got %q", logs.String())
	}
}

func TestLoader_Bundled(t *testing.T) {
	l := catalog.NewLoader(config.CatalogConfig{Source: config.CatalogBundled}, nil, nil)
	books, err := l.LoadStrict(context.Background())
	if err != nil {
		t.Fatalf("LoadStrict: %v", err)
	}
	if len(books) != 2 {
		t.Errorf("expected 2 books, got %d", len(books))
	}
}

// --- Filter ---

func TestFilter_TitleOrAuthor(t *testing.T) {
	books, _ := catalog.Parse(sampleJSON)

	got := catalog.Search(books, "herb")
	if len(got) != 1 || got[0].Title != "Dune" {
		t.Errorf("Search(herb) = %+v, want [Dune]", got)
	}

	got = catalog.Filter{Search: "HYPER"}.Apply(books)
	if len(got) != 1 || got[0].ID != "b2" {
		t.Errorf("Search(HYPER) = %+v, want [Hyperion]", got)
	}
}

func TestFilter_EmptyQueryReturnsAllInOrder(t *testing.T) {
	books, _ := catalog.Parse(sampleJSON)
	got := catalog.Search(books, "")
	if len(got) != 2 || got[0].ID != "b1" || got[1].ID != "b2" {
		t.Errorf("Search(\"\") = %+v", got)
	}
	got[0].Title = "changed"
	if books[0].Title != "Dune" {
		t.Error("Filter must return a copy, not alias the catalog")
	}
}

func TestFilter_NoMatch(t *testing.T) {
	books, _ := catalog.Parse(sampleJSON)
	got := catalog.Search(books, "zzz")
	if got == nil || len(got) != 0 {
		t.Errorf("Search(zzz) = %v, want empty non-nil", got)
	}
}

func TestFilter_WhitespaceIsLiteral(t *testing.T) {
	books, _ := catalog.Parse(sampleJSON)
	if got := catalog.Search(books, "Dune "); len(got) != 0 {
		t.Errorf("Search(\"Dune \") = %+v, want no match", got)
	}
	if got := catalog.Search(books, "   "); len(got) != 0 {
		t.Errorf("Search(whitespace) = %+v, want no match", got)
	}
	if got := catalog.Search(books, "frank h"); len(got) != 1 || got[0].ID != "b1" {
		t.Errorf("Search(\"frank h\") = %+v, want [Dune]", got)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	books, _ := catalog.Parse(sampleJSON)
	once := catalog.Search(books, "an")
	twice := catalog.Search(once, "an")
	if len(once) != len(twice) {
		t.Errorf("filter not idempotent: %d vs %d", len(once), len(twice))
	}
}

func TestByID(t *testing.T) {
	books, _ := catalog.Parse(sampleJSON)
	if b := catalog.ByID(books, "b2"); b == nil || b.Title != "Hyperion" {
		t.Errorf("ByID(b2) = %+v", b)
	}
	if b := catalog.ByID(books, "missing"); b != nil {
		t.Errorf("ByID(missing) = %+v, want nil", b)
	}
}
