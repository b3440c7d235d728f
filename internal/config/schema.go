package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the top-level shelfread configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Acquire AcquireConfig `mapstructure:"acquire" yaml:"acquire"`
	Viewer  ViewerConfig  `mapstructure:"viewer" yaml:"viewer"`
	Serve   ServeConfig   `mapstructure:"serve" yaml:"serve"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// Catalog sources.
const (
	CatalogBundled = "bundled"
	CatalogFile    = "file"
	CatalogRemote  = "remote"
)

// CatalogConfig selects where the book list comes from.
type CatalogConfig struct {
	Source string `mapstructure:"source" yaml:"source"` // bundled, file or remote
	Path   string `mapstructure:"path" yaml:"path,omitempty"`
	URL    string `mapstructure:"url" yaml:"url,omitempty"`
}

// Store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// StoreConfig holds key-value store settings for reading state.
type StoreConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend"`
	Path    string        `mapstructure:"path" yaml:"path,omitempty"`
	DSN     string        `mapstructure:"dsn" yaml:"-"` // from env only, may carry a password
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// Acquisition modes.
const (
	ModeLocal  = "local"
	ModeStream = "stream"
)

// AcquireConfig controls how book content is obtained.
type AcquireConfig struct {
	Mode           string        `mapstructure:"mode" yaml:"mode"`
	DocumentsDir   string        `mapstructure:"documents_dir" yaml:"documents_dir"`
	ViewerEndpoint string        `mapstructure:"viewer_endpoint" yaml:"viewer_endpoint"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// ViewerConfig names the external application used to display pages.
type ViewerConfig struct {
	App string `mapstructure:"app" yaml:"app,omitempty"`
}

// ServeConfig holds HTTP API settings.
type ServeConfig struct {
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per minute per IP
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// IsStreaming reports whether books are viewed through the remote viewer
// instead of being downloaded.
func (a AcquireConfig) IsStreaming() bool {
	return a.Mode == ModeStream
}

// EffectiveTimeout returns the store timeout or a sane default.
func (s StoreConfig) EffectiveTimeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return 5 * time.Second
}

// Addr returns host:port for the HTTP listener.
func (s ServeConfig) Addr() string {
	host := s.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := s.Port
	if port == 0 {
		port = 8080
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
