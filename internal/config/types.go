package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// Defaults applied when a field is omitted
const (
	DefaultAddr         = ":8080"
	DefaultName         = "auth-front"
	DefaultBrandName    = "Auth Front"
	DefaultAPITimeout   = 30 * time.Second
	DefaultCookieMaxAge = 30 * 24 * time.Hour
	DefaultMetricsAddr  = ":9090"
)

// CallbackPath is appended to server.baseURL when google.redirectUri is omitted
const CallbackPath = "/oauth/callback"

// ServerConfig is the browser-facing listener
type ServerConfig struct {
	BaseURL   string `json:"baseURL"`
	Addr      string `json:"addr"`
	Name      string `json:"name"`
	BrandName string `json:"brandName"`
}

// APIConfig points at the remote auth API. BaseURL is the prefix for
// /login, /register and /google-login.
type APIConfig struct {
	BaseURL string        `json:"baseURL"`
	Timeout time.Duration `json:"timeout"`
}

// SessionConfig controls the session cookie
type SessionConfig struct {
	EncryptionKey Secret        `json:"encryptionKey"`
	CookieMaxAge  time.Duration `json:"cookieMaxAge"`

	// cookieMaxAgeSet distinguishes an explicit "0s" (browser-session
	// cookie) from an omitted field
	cookieMaxAgeSet bool
}

// GoogleConfig enables Google sign-in. ClientID alone enables the popup
// flow; ClientSecret and RedirectURI additionally enable the redirect flow.
type GoogleConfig struct {
	ClientID     string   `json:"clientId"`
	ClientSecret Secret   `json:"clientSecret"`
	RedirectURI  string   `json:"redirectUri"`
	Scopes       []string `json:"scopes,omitempty"`
}

// MetricsConfig controls the Prometheus listener
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// LogConfig overrides LOG_LEVEL and LOG_FORMAT
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Config represents the config structure with resolved values
type Config struct {
	Server  ServerConfig  `json:"server"`
	API     APIConfig     `json:"api"`
	Session SessionConfig `json:"session"`
	Google  *GoogleConfig `json:"google,omitempty"`
	Metrics MetricsConfig `json:"metrics"`
	Log     LogConfig     `json:"log"`
}

// ParseConfigValue parses a JSON value that is either a plain string or an
// {"$env": "VAR_NAME"} reference resolved immediately.
func ParseConfigValue(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}

	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", fmt.Errorf("config value must be string or reference object")
	}

	envVar, ok := ref["$env"]
	if !ok {
		return "", fmt.Errorf("unknown reference type in config value")
	}
	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set", envVar)
	}
	// Strip surrounding quotes if present (only matching pairs)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return value, nil
}

// parseOptional resolves a value that may be absent
func parseOptional(raw json.RawMessage, field string) (string, error) {
	if raw == nil {
		return "", nil
	}
	value, err := ParseConfigValue(raw)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", field, err)
	}
	return value, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", field, err)
	}
	return d, nil
}
