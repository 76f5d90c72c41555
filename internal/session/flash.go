package session

import (
	"net/http"
	"time"

	"github.com/dgellow/auth-front/internal/cookie"
	"github.com/dgellow/auth-front/internal/crypto"
)

// FlashKind selects how a flash message is rendered
type FlashKind string

const (
	FlashNotice FlashKind = "notice"
	FlashError  FlashKind = "error"
)

// Flash is a one-shot message carried across a redirect
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// FlashStore signs flashes into a short-lived cookie
type FlashStore struct {
	signer crypto.TokenSigner
}

// NewFlashStore creates a flash store signing with key
func NewFlashStore(key []byte) *FlashStore {
	return &FlashStore{signer: crypto.NewTokenSigner(key, time.Minute)}
}

// Set stores f for the next request
func (s *FlashStore) Set(w http.ResponseWriter, f Flash) error {
	token, err := s.signer.Sign(f)
	if err != nil {
		return err
	}
	cookie.SetFlash(w, token)
	return nil
}

// Pop returns the pending flash and clears it. Tampered or expired flashes
// are cleared and ignored.
func (s *FlashStore) Pop(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	token, err := cookie.GetFlash(r)
	if err != nil {
		return Flash{}, false
	}
	cookie.ClearFlash(w)

	var f Flash
	if err := s.signer.Verify(token, &f); err != nil {
		return Flash{}, false
	}
	return f, f.Message != ""
}
