package config

import (
	"encoding/json"
)

// UnmarshalJSON implements custom unmarshaling for ServerConfig
func (s *ServerConfig) UnmarshalJSON(data []byte) error {
	type rawServer struct {
		BaseURL   json.RawMessage `json:"baseURL"`
		Addr      json.RawMessage `json:"addr"`
		Name      string          `json:"name"`
		BrandName string          `json:"brandName"`
	}

	var raw rawServer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if s.BaseURL, err = parseOptional(raw.BaseURL, "baseURL"); err != nil {
		return err
	}
	if s.Addr, err = parseOptional(raw.Addr, "addr"); err != nil {
		return err
	}
	s.Name = raw.Name
	s.BrandName = raw.BrandName
	return nil
}

// UnmarshalJSON implements custom unmarshaling for APIConfig
func (a *APIConfig) UnmarshalJSON(data []byte) error {
	type rawAPI struct {
		BaseURL json.RawMessage `json:"baseURL"`
		Timeout string          `json:"timeout"`
	}

	var raw rawAPI
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if a.BaseURL, err = parseOptional(raw.BaseURL, "baseURL"); err != nil {
		return err
	}
	if a.Timeout, err = parseDuration(raw.Timeout, "timeout"); err != nil {
		return err
	}
	return nil
}

// UnmarshalJSON implements custom unmarshaling for SessionConfig
func (s *SessionConfig) UnmarshalJSON(data []byte) error {
	type rawSession struct {
		EncryptionKey json.RawMessage `json:"encryptionKey"`
		CookieMaxAge  string          `json:"cookieMaxAge"`
	}

	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	key, err := parseOptional(raw.EncryptionKey, "encryptionKey")
	if err != nil {
		return err
	}
	s.EncryptionKey = Secret(key)

	if s.CookieMaxAge, err = parseDuration(raw.CookieMaxAge, "cookieMaxAge"); err != nil {
		return err
	}
	s.cookieMaxAgeSet = raw.CookieMaxAge != ""
	return nil
}

// UnmarshalJSON implements custom unmarshaling for GoogleConfig
func (g *GoogleConfig) UnmarshalJSON(data []byte) error {
	type rawGoogle struct {
		ClientID     json.RawMessage `json:"clientId"`
		ClientSecret json.RawMessage `json:"clientSecret"`
		RedirectURI  json.RawMessage `json:"redirectUri"`
		Scopes       []string        `json:"scopes"`
	}

	var raw rawGoogle
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var err error
	if g.ClientID, err = parseOptional(raw.ClientID, "clientId"); err != nil {
		return err
	}
	secret, err := parseOptional(raw.ClientSecret, "clientSecret")
	if err != nil {
		return err
	}
	g.ClientSecret = Secret(secret)
	if g.RedirectURI, err = parseOptional(raw.RedirectURI, "redirectUri"); err != nil {
		return err
	}
	g.Scopes = raw.Scopes
	return nil
}
