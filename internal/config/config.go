package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/shelfread/internal/util"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultViewerEndpoint is the embedded document viewer used in stream mode.
const DefaultViewerEndpoint = "https://docs.google.com/viewer?embedded=true"

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shelfread", "config.yml")
}

// ResolvePath picks the config file: explicit flag, then SHELFREAD_CONFIG,
// then the default location.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return util.ExpandHome(flagPath)
	}
	if p := os.Getenv("SHELFREAD_CONFIG"); p != "" {
		return util.ExpandHome(p)
	}
	return DefaultPath()
}

// Load reads the config from disk (or env). A missing file is fine: every
// setting has a default and `shelfread init` can write one later.
func Load(path string) (*Config, error) {
	// A .env next to the working directory may carry SHELFREAD_* settings.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("catalog.source", CatalogBundled)
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.url", "")
	v.SetDefault("store.backend", StoreFile)
	v.SetDefault("store.path", filepath.Join(defaultDataDir(), "state.yml"))
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("acquire.mode", ModeLocal)
	v.SetDefault("acquire.documents_dir", filepath.Join(defaultDataDir(), "documents"))
	v.SetDefault("acquire.viewer_endpoint", DefaultViewerEndpoint)
	v.SetDefault("acquire.timeout", 5*time.Minute)
	v.SetDefault("viewer.app", "")
	v.SetDefault("serve.port", 8080)
	v.SetDefault("serve.host", "127.0.0.1")
	v.SetDefault("serve.rate_limit", 120)
	v.SetDefault("log.level", "warn")

	v.SetEnvPrefix("SHELFREAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = ResolvePath("")
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Store.Path = util.ExpandHome(cfg.Store.Path)
	cfg.Catalog.Path = util.ExpandHome(cfg.Catalog.Path)
	cfg.Acquire.DocumentsDir = util.ExpandHome(cfg.Acquire.DocumentsDir)

	return &cfg, nil
}

// Validate rejects settings no component can act on.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogBundled:
	case CatalogFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.source is %q but catalog.path is empty", CatalogFile)
		}
	case CatalogRemote:
		if c.Catalog.URL == "" {
			return fmt.Errorf("catalog.source is %q but catalog.url is empty", CatalogRemote)
		}
	default:
		return fmt.Errorf("unknown catalog.source %q (want bundled, file or remote)", c.Catalog.Source)
	}

	switch c.Store.Backend {
	case StoreFile, StoreMemory:
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.backend is %q but store.dsn is empty (set SHELFREAD_STORE_DSN)", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown store.backend %q (want file, memory or postgres)", c.Store.Backend)
	}

	switch c.Acquire.Mode {
	case ModeLocal, ModeStream:
	default:
		return fmt.Errorf("unknown acquire.mode %q (want local or stream)", c.Acquire.Mode)
	}
	return nil
}

// Save writes the config as YAML to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return util.WriteFileAtomic(path, data, 0600)
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "shelfread")
}
