package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "github", config.OAuth.Provider)
	assert.Equal(t, "https://github.com/login/oauth/access_token", config.OAuth.TokenURL)
	assert.Equal(t, "https://api.github.com/user", config.OAuth.UserURL)
	assert.Equal(t, "buildsmith", config.Redirect.ElectronScheme)
	assert.Equal(t, "https://buildsmith.app", config.Redirect.WebOrigin)
	assert.Equal(t, "dev.buildsmith.app", config.Redirect.DevDomain)
	assert.Equal(t, 32, config.Resolver.MaxProbes)
	assert.Equal(t, ".zip", config.Upload.AcceptedExtension)

	// Secrets have no defaults
	assert.Empty(t, config.OAuth.ClientID)
	assert.Empty(t, config.OAuth.ClientSecret)
	assert.Empty(t, config.Backend.APIKey)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildsmith.toml")

	content := `
environment = "production"

[server]
port = 9090
host = "0.0.0.0"

[oauth]
client_id = "Iv1.test"
client_secret = "shhh"

[backend]
base_url = "https://api.example.test"
api_key = "key123"

[resolver]
max_probes = 5
probe_rate = "250ms"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.IsProduction())
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "Iv1.test", config.OAuth.ClientID)
	assert.Equal(t, "shhh", config.OAuth.ClientSecret)
	assert.Equal(t, "https://api.example.test", config.Backend.BaseURL)
	assert.Equal(t, "key123", config.Backend.APIKey)
	assert.Equal(t, 5, config.Resolver.MaxProbes)
	assert.Equal(t, "250ms", config.Resolver.ProbeRate)

	// Untouched fields retain defaults
	assert.Equal(t, ".zip", config.Upload.AcceptedExtension)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/buildsmith.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BUILDSMITH_SERVER_PORT", "7070")
	t.Setenv("BUILDSMITH_GITHUB_CLIENT_ID", "env-client")
	t.Setenv("BUILDSMITH_API_KEY", "env-key")
	t.Setenv("BUILDSMITH_RESOLVER_MAX_PROBES", "3")
	t.Setenv("BUILDSMITH_RESOLVER_PROBE_RATE", "50ms")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "env-client", config.OAuth.ClientID)
	assert.Equal(t, "env-key", config.Backend.APIKey)
	assert.Equal(t, 3, config.Resolver.MaxProbes)
	assert.Equal(t, "50ms", config.Resolver.ProbeRate)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 3000, "127.0.0.1")
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)

	// Zero values leave config untouched
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}
