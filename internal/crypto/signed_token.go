package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidToken is returned for malformed or tampered tokens
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a well-formed token is past its TTL
	ErrTokenExpired = errors.New("token expired")
)

// TokenSigner provides HMAC-signed JSON tokens with optional expiry. It
// carries OAuth state and flash messages; the values are signed, not hidden.
type TokenSigner struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenSigner creates a new token signer. A zero ttl disables expiry.
func NewTokenSigner(signingKey []byte, ttl time.Duration) TokenSigner {
	return TokenSigner{
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
	}
}

type tokenEnvelope struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
}

// Sign marshals v, wraps it with its expiry and returns "payload.signature"
func (ts *TokenSigner) Sign(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}

	envelope := tokenEnvelope{Data: data}
	if ts.ttl > 0 {
		envelope.ExpiresAt = ts.now().Add(ts.ttl)
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + SignData(encoded, ts.signingKey), nil
}

// Verify checks the signature and expiry, then unmarshals the data into v
func (ts *TokenSigner) Verify(token string, v any) error {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" {
		return fmt.Errorf("%w: malformed", ErrInvalidToken)
	}

	if !ValidateSignedData(encoded, signature, ts.signingKey) {
		return fmt.Errorf("%w: bad signature", ErrInvalidToken)
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var envelope tokenEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !envelope.ExpiresAt.IsZero() && ts.now().After(envelope.ExpiresAt) {
		return ErrTokenExpired
	}

	if err := json.Unmarshal(envelope.Data, v); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}
