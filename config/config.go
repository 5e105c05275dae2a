// ABOUTME: Configuration for the webhook server and Google OAuth client
// ABOUTME: Loads defaults, an optional XDG JSON file, then environment overrides
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/harperreed/peoplesync/db"
	"github.com/harperreed/peoplesync/sync"
)

const (
	// AppName names the XDG directories.
	AppName = "peoplesync"

	// ConfigFileName is where we store local config.
	ConfigFileName = "config.json"

	DefaultPort         = 8080
	DefaultRedirectPort = 8080
	DefaultMaxBodyBytes = 1 << 20
)

// Config holds server and OAuth settings.
type Config struct {
	Port              int    `json:"port,omitempty"`
	ClientID          string `json:"client_id,omitempty"`
	ClientSecret      string `json:"client_secret,omitempty"`
	ClientSecretsFile string `json:"client_secrets_file,omitempty"`
	RedirectPort      int    `json:"redirect_port,omitempty"`
	WebhookSecret     string `json:"webhook_secret,omitempty"`
	DatabasePath      string `json:"database_path,omitempty"`
	MaxBodyBytes      int64  `json:"max_body_bytes,omitempty"`

	// PageSize for the contact lookup; 0 keeps the People API default
	PageSize int64 `json:"page_size,omitempty"`
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:         DefaultPort,
		RedirectPort: DefaultRedirectPort,
		DatabasePath: db.DefaultPath(),
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Path returns XDG-compliant path of the config file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// Load reads config from path (or Path when empty). A missing file is not an
// error. Environment variables override file values:
// - PEOPLESYNC_PORT
// - GOOGLE_CLIENT_ID
// - GOOGLE_CLIENT_SECRET
// - GOOGLE_OAUTH_CLIENT_FILE
// - PEOPLESYNC_OAUTH_PORT
// - PEOPLESYNC_WEBHOOK_SECRET
// - PEOPLESYNC_DB_PATH
// - PEOPLESYNC_MAX_BODY_BYTES
// - PEOPLESYNC_PAGE_SIZE.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"); v != "" {
		cfg.ClientSecretsFile = v
	}
	if v := os.Getenv("PEOPLESYNC_WEBHOOK_SECRET"); v != "" {
		cfg.WebhookSecret = v
	}
	if v := os.Getenv("PEOPLESYNC_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}

	ints := []struct {
		key string
		dst *int64
	}{
		{"PEOPLESYNC_MAX_BODY_BYTES", &cfg.MaxBodyBytes},
		{"PEOPLESYNC_PAGE_SIZE", &cfg.PageSize},
	}
	for _, entry := range ints {
		v := os.Getenv(entry.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", entry.key, v, err)
		}
		*entry.dst = n
	}

	ports := []struct {
		key string
		dst *int
	}{
		{"PEOPLESYNC_PORT", &cfg.Port},
		{"PEOPLESYNC_OAUTH_PORT", &cfg.RedirectPort},
	}
	for _, entry := range ports {
		v := os.Getenv(entry.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", entry.key, v, err)
		}
		*entry.dst = n
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.RedirectPort == 0 {
		cfg.RedirectPort = DefaultRedirectPort
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = db.DefaultPath()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// OAuthOptions extracts the OAuth client settings.
func (c *Config) OAuthOptions() sync.OAuthOptions {
	return sync.OAuthOptions{
		ClientID:          c.ClientID,
		ClientSecret:      c.ClientSecret,
		ClientSecretsFile: c.ClientSecretsFile,
		RedirectPort:      c.RedirectPort,
	}
}
