package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	OAuth       OAuthConfig    `toml:"oauth"`
	Backend     BackendConfig  `toml:"backend"`
	CDN         CDNConfig      `toml:"cdn"`
	Redirect    RedirectConfig `toml:"redirect"`
	Resolver    ResolverConfig `toml:"resolver"`
	Upload      UploadConfig   `toml:"upload"`
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// OAuthConfig holds identity-provider application credentials.
// ClientID/ClientSecret are provider-issued secrets; they are passed into the
// identity client at construction time and never read from globals afterwards.
type OAuthConfig struct {
	Provider     string `toml:"provider"`      // default provider name ("github")
	ClientID     string `toml:"client_id"`     // provider application client id
	ClientSecret string `toml:"client_secret"` // provider application client secret
	TokenURL     string `toml:"token_url"`     // code-for-token exchange endpoint
	UserURL      string `toml:"user_url"`      // authenticated user-info endpoint
}

// BackendConfig points at the record-store API (users, teams, games)
type BackendConfig struct {
	BaseURL string `toml:"base_url"` // e.g. "https://api.buildsmith.app"
	APIKey  string `toml:"api_key"`  // shared secret for user registration
}

// CDNConfig points at the presigned-upload service
type CDNConfig struct {
	BaseURL string `toml:"base_url"` // e.g. "https://cdn.buildsmith.services"
}

// RedirectConfig controls post-auth redirect target selection
type RedirectConfig struct {
	ElectronScheme string `toml:"electron_scheme"` // custom URI scheme for the desktop client
	WebOrigin      string `toml:"web_origin"`      // production web origin
	DevOrigin      string `toml:"dev_origin"`      // development web origin
	DevDomain      string `toml:"dev_domain"`      // substring matched against Origin/Referer
	WebPath        string `toml:"web_path"`        // path appended to the web origin
}

// ResolverConfig bounds the credential probe loop
type ResolverConfig struct {
	MaxProbes int    `toml:"max_probes"` // defensive cap on sequential grant probes
	ProbeRate string `toml:"probe_rate"` // minimum interval between probes, e.g. "100ms" ("" = unlimited)
}

// UploadConfig controls the release upload pipeline
type UploadConfig struct {
	AcceptedExtension string `toml:"accepted_extension"` // archive extension required for selection
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Secrets (client id/secret, API key) have no defaults; they must come from
// the config file or environment.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		OAuth: OAuthConfig{
			Provider: "github",
			TokenURL: "https://github.com/login/oauth/access_token",
			UserURL:  "https://api.github.com/user",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8080",
		},
		CDN: CDNConfig{
			BaseURL: "https://cdn.buildsmith.services",
		},
		Redirect: RedirectConfig{
			ElectronScheme: "buildsmith",
			WebOrigin:      "https://buildsmith.app",
			DevOrigin:      "https://dev.buildsmith.app",
			DevDomain:      "dev.buildsmith.app",
			WebPath:        "/account",
		},
		Resolver: ResolverConfig{
			MaxProbes: 32,
			ProbeRate: "",
		},
		Upload: UploadConfig{
			AcceptedExtension: ".zip",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files, later files
// overriding earlier ones. Priority: CLI flags > env > last file > ... > defaults.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BUILDSMITH_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("BUILDSMITH_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("BUILDSMITH_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Identity-provider credentials
	if clientID := os.Getenv("BUILDSMITH_GITHUB_CLIENT_ID"); clientID != "" {
		config.OAuth.ClientID = clientID
	}
	if clientSecret := os.Getenv("BUILDSMITH_GITHUB_CLIENT_SECRET"); clientSecret != "" {
		config.OAuth.ClientSecret = clientSecret
	}

	// Backend record store
	if baseURL := os.Getenv("BUILDSMITH_API_BASE_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if apiKey := os.Getenv("BUILDSMITH_API_KEY"); apiKey != "" {
		config.Backend.APIKey = apiKey
	}

	// CDN
	if cdnURL := os.Getenv("BUILDSMITH_CDN_BASE_URL"); cdnURL != "" {
		config.CDN.BaseURL = cdnURL
	}

	// Resolver
	if maxProbes := os.Getenv("BUILDSMITH_RESOLVER_MAX_PROBES"); maxProbes != "" {
		if mp, err := strconv.Atoi(maxProbes); err == nil && mp > 0 {
			config.Resolver.MaxProbes = mp
		}
	}
	if probeRate := os.Getenv("BUILDSMITH_RESOLVER_PROBE_RATE"); probeRate != "" {
		config.Resolver.ProbeRate = probeRate
	}

	// Storage configuration
	if badgerPath := os.Getenv("BUILDSMITH_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("BUILDSMITH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
