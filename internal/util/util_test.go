package util_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/shelfread/internal/util"
)

func TestSHA256Reader(t *testing.T) {
	// sha256("") is well known
	got, err := util.SHA256Reader(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("SHA256('') = %q, want %q", got, want)
	}
}

func TestSHA256File_MissingFile(t *testing.T) {
	_, err := util.SHA256File("/no/such/file.bin")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestWriteFileAtomic_CreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "store.yml")

	if err := util.WriteFileAtomic(path, []byte("k: v\n"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "k: v\n" {
		t.Errorf("content = %q, want %q", got, "k: v\n")
	}
}

func TestWriteFileAtomic_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.yml")

	if err := util.WriteFileAtomic(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := util.WriteFileAtomic(path, []byte("new"), 0600); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	if err := util.EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	fi, err := os.Stat(nested)
	if err != nil {
		t.Fatalf("Stat after EnsureDir: %v", err)
	}
	if !fi.IsDir() {
		t.Error("EnsureDir path is not a directory")
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	cases := []struct{ in, want string }{
		{"~/books/docs", filepath.Join(home, "books", "docs")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}
	for _, c := range cases {
		got := util.ExpandHome(c.in)
		if got != c.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDigest(t *testing.T) {
	d := util.NewDigest()
	_, _ = d.Write([]byte("hello "))
	_, _ = d.Write([]byte("world"))
	want, _ := util.SHA256Reader(strings.NewReader("hello world"))
	if d.Hex() != want {
		t.Errorf("Hex() = %q, want %q", d.Hex(), want)
	}
	if d.Len() != 11 {
		t.Errorf("Len() = %d, want 11", d.Len())
	}
}

func TestValidSHA256(t *testing.T) {
	good := strings.Repeat("ab", 32)
	if !util.ValidSHA256(good) || !util.ValidSHA256(strings.ToUpper(good)) {
		t.Error("a 64-char hex string should be valid")
	}
	for _, s := range []string{"", "abc", strings.Repeat("zz", 32), good + "00"} {
		if util.ValidSHA256(s) {
			t.Errorf("ValidSHA256(%q) = true", s)
		}
	}
	if !util.SameSHA256(good, strings.ToUpper(good)) {
		t.Error("SameSHA256 should ignore case")
	}
}
