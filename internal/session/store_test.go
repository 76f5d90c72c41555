package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgellow/auth-front/internal/cookie"
	"github.com/dgellow/auth-front/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, key string) *CookieStore {
	t.Helper()
	enc, err := crypto.NewEncryptor([]byte(key))
	require.NoError(t, err)
	return NewCookieStore(enc, time.Hour)
}

// replay copies the cookies set on rr onto a fresh request
func replay(rr *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestCookieStore_SaveAndRead(t *testing.T) {
	store := newTestStore(t, "0123456789abcdef0123456789abcdef")

	rr := httptest.NewRecorder()
	require.NoError(t, store.Save(rr, "abc123"))

	c := rr.Result().Cookies()[0]
	assert.Equal(t, cookie.SessionCookie, c.Name)
	assert.NotContains(t, c.Value, "abc123", "token must not be stored in clear text")

	req := replay(rr)
	token, ok := store.Token(req)
	require.True(t, ok)
	assert.Equal(t, "abc123", token)
	assert.True(t, store.Has(req))
}

func TestCookieStore_NoCookie(t *testing.T) {
	store := newTestStore(t, "0123456789abcdef0123456789abcdef")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	_, ok := store.Token(req)
	assert.False(t, ok)
	assert.False(t, store.Has(req))
}

func TestCookieStore_UnreadableCookieIsAbsent(t *testing.T) {
	store := newTestStore(t, "0123456789abcdef0123456789abcdef")
	other := newTestStore(t, "fedcba9876543210fedcba9876543210")

	rr := httptest.NewRecorder()
	require.NoError(t, other.Save(rr, "abc123"))
	assert.False(t, store.Has(replay(rr)), "cookie sealed under another key")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: cookie.SessionCookie, Value: "not-a-sealed-value"})
	assert.False(t, store.Has(req))
}

func TestCookieStore_SaveRejectsEmptyToken(t *testing.T) {
	store := newTestStore(t, "0123456789abcdef0123456789abcdef")

	rr := httptest.NewRecorder()
	assert.ErrorIs(t, store.Save(rr, ""), ErrEmptyToken)
	assert.Empty(t, rr.Result().Cookies())
}

func TestCookieStore_SaveRejectsOversizedToken(t *testing.T) {
	store := newTestStore(t, "0123456789abcdef0123456789abcdef")

	rr := httptest.NewRecorder()
	err := store.Save(rr, strings.Repeat("x", 3200))
	assert.ErrorIs(t, err, ErrTokenTooLarge)
	assert.Empty(t, rr.Result().Cookies())

	rr = httptest.NewRecorder()
	require.NoError(t, store.Save(rr, strings.Repeat("x", 2000)))
	header := rr.Header().Get("Set-Cookie")
	assert.Less(t, len(header), 4096)

	token, ok := store.Token(replay(rr))
	require.True(t, ok)
	assert.Len(t, token, 2000)
}

func TestCookieStore_ZeroMaxAgeIsBrowserSession(t *testing.T) {
	enc, err := crypto.NewEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	store := NewCookieStore(enc, 0)

	rr := httptest.NewRecorder()
	require.NoError(t, store.Save(rr, "abc123"))
	header := rr.Header().Get("Set-Cookie")
	assert.NotContains(t, header, "Max-Age")
	assert.NotContains(t, header, "Expires")
}

func TestCookieStore_Clear(t *testing.T) {
	store := newTestStore(t, "0123456789abcdef0123456789abcdef")

	rr := httptest.NewRecorder()
	store.Clear(rr)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookie.SessionCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.False(t, store.Has(replay(rr)))
}
