package idp

import (
	"fmt"

	"github.com/dgellow/auth-front/internal/config"
)

// NewProvider creates the configured Provider. A nil config means social
// sign-in is disabled and yields a nil Provider.
func NewProvider(cfg *config.GoogleConfig) (Provider, error) {
	if cfg == nil {
		return nil, nil
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("google clientId is required")
	}
	return NewGoogleProvider(*cfg), nil
}
