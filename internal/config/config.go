// Package config handles the XDG configuration directory, credential file
// paths and layered settings (defaults, config.yaml, VTASK_* environment).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "vtask"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SettingsFile is the optional settings file, without extension.
	SettingsFile = "config"

	// EnvPrefix prefixes environment overrides, e.g. VTASK_BACKEND.
	EnvPrefix = "VTASK"
)

// ErrNotConfigured is returned when a required setting is missing.
var ErrNotConfigured = errors.New("not configured")

// Backends.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// DefaultFirestoreDatabase is the database id used when none is configured.
const DefaultFirestoreDatabase = "(default)"

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Fs is the filesystem config and credential files live on.
	Fs afero.Fs

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Backend           string
	Owner             string
	FirestoreProject  string
	FirestoreDatabase string
	SQLitePath        string
	CacheDir          string
	BridgeDir         string
	BridgeInterval    time.Duration
	VoiceTimeout      time.Duration
}

// New creates a new Config with the default or specified config directory
// on the OS filesystem.
// If configDir is empty, uses XDG_CONFIG_HOME/vtask or $HOME/.config/vtask.
func New(configDir string) (*Config, error) {
	return Load(afero.NewOsFs(), configDir)
}

// Load reads settings for configDir from fsys and the environment.
func Load(fsys afero.Fs, configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigName(SettingsFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("owner", "default-user")
	v.SetDefault("firestore.project", "")
	v.SetDefault("firestore.database", DefaultFirestoreDatabase)
	v.SetDefault("sqlite.path", filepath.Join(dir, "tasks.db"))
	v.SetDefault("cache.dir", filepath.Join(dir, "cache"))
	v.SetDefault("bridge.dir", filepath.Join(dir, "native"))
	v.SetDefault("bridge.interval", 5*time.Second)
	v.SetDefault("voice.timeout", 5*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s.yaml: %w", SettingsFile, err)
		}
	}

	cfg := &Config{
		Dir:               dir,
		Fs:                fsys,
		Backend:           strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		Owner:             v.GetString("owner"),
		FirestoreProject:  v.GetString("firestore.project"),
		FirestoreDatabase: v.GetString("firestore.database"),
		SQLitePath:        v.GetString("sqlite.path"),
		CacheDir:          v.GetString("cache.dir"),
		BridgeDir:         v.GetString("bridge.dir"),
		BridgeInterval:    v.GetDuration("bridge.interval"),
		VoiceTimeout:      v.GetDuration("voice.timeout"),
	}
	if cfg.Backend != BackendSQLite && cfg.Backend != BackendFirestore {
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, BackendSQLite, BackendFirestore)
	}
	if cfg.BridgeInterval <= 0 {
		return nil, fmt.Errorf("bridge.interval must be positive")
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return c.Fs.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	ok, err := afero.Exists(c.Fs, c.OAuthClientPath())
	return err == nil && ok
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	ok, err := afero.Exists(c.Fs, c.TokenPath())
	return err == nil && ok
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return c.Fs.Remove(c.TokenPath())
}

// ReadFile reads a file from the config filesystem.
func (c *Config) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(c.Fs, path)
}

// WriteFile writes a file to the config filesystem.
func (c *Config) WriteFile(path string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(c.Fs, path, data, perm)
}
