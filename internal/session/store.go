package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgellow/auth-front/internal/cookie"
	"github.com/dgellow/auth-front/internal/crypto"
	"github.com/dgellow/auth-front/internal/log"
)

var (
	// ErrEmptyToken is returned when saving an empty session token
	ErrEmptyToken = errors.New("empty session token")
	// ErrTokenTooLarge is returned when the sealed token would not fit in a cookie
	ErrTokenTooLarge = errors.New("session token too large for a cookie")
)

// maxSealedBytes leaves room for the cookie name and attributes under the
// 4096-byte Set-Cookie limit browsers enforce
const maxSealedBytes = 3900

// Store holds at most one session token per browser. The token is opaque:
// it is never decoded or validated.
type Store interface {
	// Token returns the stored token, if any
	Token(r *http.Request) (string, bool)
	// Has reports whether a readable session exists
	Has(r *http.Request) bool
	// Save replaces any existing session with token
	Save(w http.ResponseWriter, token string) error
	// Clear removes the session
	Clear(w http.ResponseWriter)
}

// CookieStore keeps the token sealed inside the session cookie
type CookieStore struct {
	encryptor crypto.Encryptor
	maxAge    time.Duration
}

// NewCookieStore creates a cookie-backed store. maxAge of zero yields a
// browser-session cookie.
func NewCookieStore(encryptor crypto.Encryptor, maxAge time.Duration) *CookieStore {
	return &CookieStore{
		encryptor: encryptor,
		maxAge:    maxAge,
	}
}

// Token returns the unsealed token. Cookies that fail to unseal count as absent.
func (s *CookieStore) Token(r *http.Request) (string, bool) {
	sealed, err := cookie.GetSession(r)
	if err != nil {
		return "", false
	}

	token, err := s.encryptor.Decrypt(sealed)
	if err != nil {
		log.LogDebugWithFields("session", "Discarding unreadable session cookie", map[string]any{
			"error": err.Error(),
		})
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// Has reports whether the request carries a readable session
func (s *CookieStore) Has(r *http.Request) bool {
	_, ok := s.Token(r)
	return ok
}

// Save seals token into the session cookie
func (s *CookieStore) Save(w http.ResponseWriter, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	sealed, err := s.encryptor.Encrypt(token)
	if err != nil {
		return err
	}
	if len(sealed) > maxSealedBytes {
		return fmt.Errorf("%w: %d bytes sealed, limit %d", ErrTokenTooLarge, len(sealed), maxSealedBytes)
	}
	cookie.SetSession(w, sealed, s.maxAge)
	return nil
}

// Clear removes the session cookie
func (s *CookieStore) Clear(w http.ResponseWriter) {
	cookie.ClearSession(w)
}
