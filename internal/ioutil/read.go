package ioutil

import (
	"fmt"
	"io"
)

// ReadLimited reads up to limit bytes from r. Bodies longer than limit are
// truncated rather than rejected.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// Snippet returns at most limit bytes of r as a string for logs. A failed
// read is described instead of silenced.
func Snippet(r io.Reader, limit int64) string {
	body, err := ReadLimited(r, limit)
	if err != nil {
		return fmt.Sprintf("<unreadable: %v>", err)
	}
	return string(body)
}

// DrainClose discards what is left of rc, up to limit bytes, and closes it
// so the underlying connection can be reused.
func DrainClose(rc io.ReadCloser, limit int64) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, limit))
	_ = rc.Close()
}
