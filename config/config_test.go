// ABOUTME: Tests for config loading
// ABOUTME: Covers defaults, file values, and environment overrides
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PEOPLESYNC_PORT",
	"GOOGLE_CLIENT_ID",
	"GOOGLE_CLIENT_SECRET",
	"GOOGLE_OAUTH_CLIENT_FILE",
	"PEOPLESYNC_OAUTH_PORT",
	"PEOPLESYNC_WEBHOOK_SECRET",
	"PEOPLESYNC_DB_PATH",
	"PEOPLESYNC_MAX_BODY_BYTES",
	"PEOPLESYNC_PAGE_SIZE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultRedirectPort, cfg.RedirectPort)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Equal(t, int64(0), cfg.PageSize)
	assert.NotEmpty(t, cfg.DatabasePath)
	assert.Empty(t, cfg.WebhookSecret)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	fileJSON := `{
		"port": 9000,
		"client_id": "file-id",
		"client_secret": "file-secret",
		"webhook_secret": "file-secret-header",
		"page_size": 500
	}`
	require.NoError(t, os.WriteFile(path, []byte(fileJSON), 0600))

	t.Setenv("GOOGLE_CLIENT_ID", "env-id")
	t.Setenv("PEOPLESYNC_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "env-id", cfg.ClientID)
	assert.Equal(t, "file-secret", cfg.ClientSecret)
	assert.Equal(t, "file-secret-header", cfg.WebhookSecret)
	assert.Equal(t, int64(500), cfg.PageSize)
	assert.Equal(t, DefaultRedirectPort, cfg.RedirectPort)
}

func TestLoad_InvalidEnvNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("PEOPLESYNC_PAGE_SIZE", "lots")

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PEOPLESYNC_PAGE_SIZE")
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestOAuthOptions(t *testing.T) {
	cfg := &Config{
		ClientID:          "id",
		ClientSecret:      "secret",
		ClientSecretsFile: "/tmp/oauth_client.json",
		RedirectPort:      8181,
	}

	opts := cfg.OAuthOptions()
	assert.Equal(t, "id", opts.ClientID)
	assert.Equal(t, "secret", opts.ClientSecret)
	assert.Equal(t, "/tmp/oauth_client.json", opts.ClientSecretsFile)
	assert.Equal(t, 8181, opts.RedirectPort)
}
