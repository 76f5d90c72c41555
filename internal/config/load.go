package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/dgellow/auth-front/internal/log"
)

// Version is the config schema version accepted by Load
const Version = "v0.1.0"

// Load loads and processes the config with immediate env var resolution
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse processes raw config bytes the same way Load does
func Parse(data []byte) (Config, error) {
	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		return Config{}, fmt.Errorf("config version is required")
	}
	if !strings.HasPrefix(version, Version) {
		return Config{}, fmt.Errorf("unsupported config version: %s", version)
	}

	if err := validateRawConfig(rawConfig); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	// The custom UnmarshalJSON methods resolve env vars immediately
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	ApplyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validateRawConfig rejects secrets written inline before env resolution
func validateRawConfig(rawConfig map[string]any) error {
	secrets := []struct {
		section string
		name    string
	}{
		{"session", "encryptionKey"},
		{"google", "clientSecret"},
	}

	for _, secret := range secrets {
		section, ok := rawConfig[secret.section].(map[string]any)
		if !ok {
			continue
		}
		value, exists := section[secret.name]
		if !exists {
			continue
		}
		if _, isString := value.(string); isString {
			return fmt.Errorf("%s.%s must use environment variable reference for security", secret.section, secret.name)
		}
		if refMap, isMap := value.(map[string]any); isMap {
			if _, hasEnv := refMap["$env"]; !hasEnv {
				return fmt.Errorf("%s.%s must use {\"$env\": \"VAR_NAME\"} format", secret.section, secret.name)
			}
		}
	}
	return nil
}

// ApplyDefaults fills omitted fields
func ApplyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = DefaultAddr
	}
	if config.Server.Name == "" {
		config.Server.Name = DefaultName
	}
	if config.Server.BrandName == "" {
		config.Server.BrandName = DefaultBrandName
	}
	if config.API.Timeout == 0 {
		config.API.Timeout = DefaultAPITimeout
	}
	if config.Session.CookieMaxAge == 0 && !config.Session.cookieMaxAgeSet {
		config.Session.CookieMaxAge = DefaultCookieMaxAge
	}
	if config.Metrics.Enabled && config.Metrics.Addr == "" {
		config.Metrics.Addr = DefaultMetricsAddr
	}
	if g := config.Google; g != nil {
		if len(g.Scopes) == 0 {
			g.Scopes = []string{"openid", "email", "profile"}
		}
		if g.ClientSecret != "" && g.RedirectURI == "" && config.Server.BaseURL != "" {
			g.RedirectURI = strings.TrimRight(config.Server.BaseURL, "/") + CallbackPath
		}
	}
}

// ValidateConfig validates the resolved configuration
func ValidateConfig(config *Config) error {
	if config.Server.BaseURL == "" {
		return fmt.Errorf("server.baseURL is required")
	}
	if err := validateHTTPURL(config.Server.BaseURL); err != nil {
		return fmt.Errorf("server.baseURL: %w", err)
	}
	if config.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if config.API.BaseURL == "" {
		return fmt.Errorf("api.baseURL is required")
	}
	if err := validateHTTPURL(config.API.BaseURL); err != nil {
		return fmt.Errorf("api.baseURL: %w", err)
	}
	if config.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	if len(config.Session.EncryptionKey) != 32 {
		return fmt.Errorf("session.encryptionKey must be exactly 32 characters (got %d). Generate with: openssl rand -base64 32 | head -c 32", len(config.Session.EncryptionKey))
	}
	if config.Session.CookieMaxAge < 0 {
		return fmt.Errorf("session.cookieMaxAge cannot be negative")
	}

	if g := config.Google; g != nil {
		if g.ClientID == "" {
			return fmt.Errorf("google.clientId is required when google is configured")
		}
		if g.RedirectURI != "" && g.ClientSecret == "" {
			return fmt.Errorf("google.redirectUri requires google.clientSecret")
		}
		if g.RedirectURI != "" {
			if err := validateHTTPURL(g.RedirectURI); err != nil {
				return fmt.Errorf("google.redirectUri: %w", err)
			}
		}
	}

	if config.Metrics.Enabled && config.Metrics.Addr == config.Server.Addr {
		return fmt.Errorf("metrics.addr must differ from server.addr")
	}

	if config.Log.Level != "" {
		if _, err := log.ParseLevel(config.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
