package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

// ValidationResult holds validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// ValidationError represents a validation issue
type ValidationError struct {
	Path    string
	Message string
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

func (v *ValidationResult) addError(path, format string, args ...any) {
	v.Errors = append(v.Errors, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *ValidationResult) addWarning(path, format string, args ...any) {
	v.Warnings = append(v.Warnings, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

var bashStyleRegex = regexp.MustCompile(`\$\{?([A-Z_][A-Z0-9_]*)\}?`)

// ValidateFile validates a config file structure without requiring env vars
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ValidateBytes(data), nil
}

// ValidateBytes is ValidateFile over an in-memory document
func ValidateBytes(data []byte) *ValidationResult {
	result := &ValidationResult{}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		result.addError("", "invalid JSON: %v", err)
		return result
	}

	checkBashStyleSyntax(rawConfig, "", result)

	version, ok := rawConfig["version"].(string)
	if !ok {
		result.addError("version", "version field is required. Hint: Add \"version\": %q", Version)
	} else if !strings.HasPrefix(version, Version) {
		result.addError("version", "unsupported version '%s' - use '%s'", version, Version)
	}

	validateServerStructure(rawConfig, result)
	validateAPIStructure(rawConfig, result)
	validateSessionStructure(rawConfig, result)
	validateGoogleStructure(rawConfig, result)
	validateMetricsStructure(rawConfig, result)

	return result
}

func section(rawConfig map[string]any, name string, required bool, result *ValidationResult) (map[string]any, bool) {
	raw, exists := rawConfig[name]
	if !exists {
		if required {
			result.addError(name, "%s field is required and must be an object", name)
		}
		return nil, false
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		result.addError(name, "%s must be an object", name)
		return nil, false
	}
	return obj, true
}

func validateServerStructure(rawConfig map[string]any, result *ValidationResult) {
	server, ok := section(rawConfig, "server", true, result)
	if !ok {
		return
	}
	if _, ok := server["baseURL"]; !ok {
		result.addError("server.baseURL", "baseURL is required. Example: \"https://app.example.com\"")
	}
	if _, ok := server["addr"]; !ok {
		result.addWarning("server.addr", "addr not set, defaulting to %q", DefaultAddr)
	}
}

func validateAPIStructure(rawConfig map[string]any, result *ValidationResult) {
	api, ok := section(rawConfig, "api", true, result)
	if !ok {
		return
	}
	if _, ok := api["baseURL"]; !ok {
		result.addError("api.baseURL", "baseURL is required. Example: \"https://api.example.com/auth\"")
	} else if s, isString := api["baseURL"].(string); isString && strings.HasSuffix(s, "/login") {
		result.addWarning("api.baseURL", "baseURL ends with /login - it should be the prefix that /login, /register and /google-login are appended to")
	}
	validateDurationField(api, "timeout", "api.timeout", result)
}

func validateSessionStructure(rawConfig map[string]any, result *ValidationResult) {
	session, ok := section(rawConfig, "session", true, result)
	if !ok {
		return
	}
	key, exists := session["encryptionKey"]
	if !exists {
		result.addError("session.encryptionKey", "encryptionKey is required. Hint: Must be exactly 32 bytes for XChaCha20-Poly1305 encryption")
	} else if err := validateEnvVarReference(key, "encryptionKey", "session.encryptionKey"); err != nil {
		result.Errors = append(result.Errors, *err)
	}
	validateDurationField(session, "cookieMaxAge", "session.cookieMaxAge", result)
}

func validateGoogleStructure(rawConfig map[string]any, result *ValidationResult) {
	google, ok := section(rawConfig, "google", false, result)
	if !ok {
		return
	}
	if _, ok := google["clientId"]; !ok {
		result.addError("google.clientId", "clientId is required when google is configured")
	}

	secret, hasSecret := google["clientSecret"]
	_, hasRedirect := google["redirectUri"]
	if hasSecret {
		if err := validateEnvVarReference(secret, "clientSecret", "google.clientSecret"); err != nil {
			result.Errors = append(result.Errors, *err)
		}
	}
	switch {
	case hasSecret && !hasRedirect:
		result.addWarning("google.redirectUri", "redirectUri not set, defaulting to server.baseURL + %q", CallbackPath)
	case !hasSecret && hasRedirect:
		result.addError("google.clientSecret", "clientSecret is required when redirectUri is set")
	case !hasSecret && !hasRedirect:
		result.addWarning("google", "only the popup sign-in flow is enabled. Set clientSecret and redirectUri to enable /oauth/google")
	}
}

func validateMetricsStructure(rawConfig map[string]any, result *ValidationResult) {
	metrics, ok := section(rawConfig, "metrics", false, result)
	if !ok {
		return
	}
	enabled, ok := metrics["enabled"].(bool)
	if !ok {
		result.addError("metrics.enabled", "enabled field is required and must be a boolean")
		return
	}
	if !enabled {
		return
	}
	if server, ok := rawConfig["server"].(map[string]any); ok {
		if addr, ok := metrics["addr"].(string); ok && addr == server["addr"] {
			result.addError("metrics.addr", "metrics.addr must differ from server.addr")
		}
	}
}

func validateDurationField(obj map[string]any, key, path string, result *ValidationResult) {
	raw, exists := obj[key]
	if !exists {
		return
	}
	s, ok := raw.(string)
	if !ok {
		result.addError(path, "%s must be a duration string like \"30s\", got %T", key, raw)
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		result.addError(path, "invalid duration %q: %v", s, err)
		return
	}
	if d < 0 {
		result.addError(path, "%s cannot be negative", key)
	}
}

func validateEnvVarReference(value any, fieldName, path string) *ValidationError {
	switch v := value.(type) {
	case string:
		if matches := bashStyleRegex.FindStringSubmatch(v); len(matches) > 1 {
			return &ValidationError{
				Path:    path,
				Message: fmt.Sprintf("found bash-style syntax '%s' - use {\"$env\": \"%s\"} instead. Hint: JSON syntax prevents accidental shell expansion and ensures security", v, matches[1]),
			}
		}
		return &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("%s must use environment variable reference {\"$env\": \"YOUR_ENV_VAR\"} instead of plain text. Hint: This prevents secrets from being stored in config files", fieldName),
		}
	case map[string]any:
		if _, hasEnv := v["$env"]; !hasEnv {
			return &ValidationError{
				Path:    path,
				Message: fmt.Sprintf("%s must use {\"$env\": \"YOUR_ENV_VAR\"} format", fieldName),
			}
		}
		return nil
	default:
		return &ValidationError{
			Path:    path,
			Message: fmt.Sprintf("%s must be an environment variable reference {\"$env\": \"YOUR_ENV_VAR\"}, not %T", fieldName, value),
		}
	}
}

// checkBashStyleSyntax recursively checks for bash-style env var syntax
func checkBashStyleSyntax(value any, path string, result *ValidationResult) {
	switch v := value.(type) {
	case string:
		for _, match := range bashStyleRegex.FindAllString(v, -1) {
			varName := strings.Trim(match, "${}")
			result.addWarning(path, "found bash-style syntax '%s' - use {\"$env\": \"%s\"} instead", match, varName)
		}
	case map[string]any:
		if _, hasEnv := v["$env"]; hasEnv {
			return
		}
		for key, val := range v {
			newPath := key
			if path != "" {
				newPath = path + "." + key
			}
			checkBashStyleSyntax(val, newPath, result)
		}
	case []any:
		for i, item := range v {
			checkBashStyleSyntax(item, fmt.Sprintf("%s[%d]", path, i), result)
		}
	}
}
