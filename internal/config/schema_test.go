package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/shelfread/internal/config"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.Source != config.CatalogBundled {
		t.Errorf("Catalog.Source = %q, want %q", cfg.Catalog.Source, config.CatalogBundled)
	}
	if cfg.Store.Backend != config.StoreFile {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, config.StoreFile)
	}
	if cfg.Acquire.Mode != config.ModeLocal {
		t.Errorf("Acquire.Mode = %q, want %q", cfg.Acquire.Mode, config.ModeLocal)
	}
	if cfg.Acquire.ViewerEndpoint != config.DefaultViewerEndpoint {
		t.Errorf("ViewerEndpoint = %q", cfg.Acquire.ViewerEndpoint)
	}
	if !strings.HasSuffix(cfg.Store.Path, "state.yml") {
		t.Errorf("Store.Path = %q, should end with state.yml", cfg.Store.Path)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
catalog:
  source: remote
  url: https://example.com/books.json
acquire:
  mode: stream
  timeout: 30s
store:
  backend: memory
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.URL != "https://example.com/books.json" {
		t.Errorf("Catalog.URL = %q", cfg.Catalog.URL)
	}
	if !cfg.Acquire.IsStreaming() {
		t.Error("IsStreaming() = false, want true")
	}
	if cfg.Acquire.Timeout != 30*time.Second {
		t.Errorf("Acquire.Timeout = %v, want 30s", cfg.Acquire.Timeout)
	}
	if cfg.Store.Backend != config.StoreMemory {
		t.Errorf("Store.Backend = %q", cfg.Store.Backend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SHELFREAD_ACQUIRE_MODE", "stream")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Acquire.Mode != config.ModeStream {
		t.Errorf("Acquire.Mode = %q, want %q", cfg.Acquire.Mode, config.ModeStream)
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("SHELFREAD_STORE_BACKEND", "redis")
	if _, err := config.Load(filepath.Join(t.TempDir(), "none.yml")); err == nil {
		t.Error("expected error for unknown store backend")
	}
}

func TestValidate_RemoteNeedsURL(t *testing.T) {
	cfg := &config.Config{
		Catalog: config.CatalogConfig{Source: config.CatalogRemote},
		Store:   config.StoreConfig{Backend: config.StoreMemory},
		Acquire: config.AcquireConfig{Mode: config.ModeLocal},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail for remote catalog without url")
	}
}

func TestValidate_PostgresNeedsDSN(t *testing.T) {
	cfg := &config.Config{
		Catalog: config.CatalogConfig{Source: config.CatalogBundled},
		Store:   config.StoreConfig{Backend: config.StorePostgres},
		Acquire: config.AcquireConfig{Mode: config.ModeLocal},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail for postgres backend without dsn")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yml")
	in := &config.Config{
		Catalog: config.CatalogConfig{Source: config.CatalogFile, Path: "/tmp/books.json"},
		Store:   config.StoreConfig{Backend: config.StoreFile, Path: "/tmp/state.yml", DSN: "secret"},
		Acquire: config.AcquireConfig{Mode: config.ModeLocal, DocumentsDir: "/tmp/docs"},
		Serve:   config.ServeConfig{Host: "0.0.0.0", Port: 9000},
		Log:     config.LogConfig{Level: "info"},
	}
	if err := config.Save(in, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "secret") {
		t.Error("Save must not write the store DSN")
	}

	out, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Catalog.Path != "/tmp/books.json" {
		t.Errorf("Catalog.Path = %q", out.Catalog.Path)
	}
	if out.Serve.Port != 9000 {
		t.Errorf("Serve.Port = %d, want 9000", out.Serve.Port)
	}
}

func TestServeAddr_Defaults(t *testing.T) {
	if got := (config.ServeConfig{}).Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:8080")
	}
	if got := (config.ServeConfig{Host: "0.0.0.0", Port: 9090}).Addr(); got != "0.0.0.0:9090" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestEffectiveTimeout(t *testing.T) {
	if got := (config.StoreConfig{}).EffectiveTimeout(); got != 5*time.Second {
		t.Errorf("EffectiveTimeout = %v, want 5s", got)
	}
	if got := (config.StoreConfig{Timeout: time.Second}).EffectiveTimeout(); got != time.Second {
		t.Errorf("EffectiveTimeout = %v, want 1s", got)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("SHELFREAD_CONFIG", "/etc/shelfread.yml")
	if got := config.ResolvePath("/flag.yml"); got != "/flag.yml" {
		t.Errorf("flag should win, got %q", got)
	}
	if got := config.ResolvePath(""); got != "/etc/shelfread.yml" {
		t.Errorf("env should be used, got %q", got)
	}
}

func TestDefaultPath(t *testing.T) {
	p := config.DefaultPath()
	if p == "" {
		t.Fatal("DefaultPath returned empty string")
	}
	if !strings.HasSuffix(p, "config.yml") {
		t.Errorf("DefaultPath = %q, should end with config.yml", p)
	}
}
