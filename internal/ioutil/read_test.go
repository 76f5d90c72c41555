package ioutil

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func TestReadLimited(t *testing.T) {
	t.Run("reads content up to limit", func(t *testing.T) {
		body, err := ReadLimited(strings.NewReader("hello world"), 1024)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(body))
	})

	t.Run("truncates at limit", func(t *testing.T) {
		body, err := ReadLimited(strings.NewReader("hello world"), 5)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(body))
	})

	t.Run("read error is wrapped", func(t *testing.T) {
		cause := fmt.Errorf("connection reset")
		_, err := ReadLimited(&failingReader{err: cause}, 1024)
		assert.ErrorIs(t, err, cause)
	})
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "", Snippet(strings.NewReader(""), 16))
	assert.Equal(t, "<unreadable: reading body: boom>", Snippet(&failingReader{err: fmt.Errorf("boom")}, 16))
}

func TestDrainClose(t *testing.T) {
	r := strings.NewReader("leftover bytes")
	rc := &trackingCloser{Reader: r}

	DrainClose(rc, 1024)

	assert.True(t, rc.closed)
	assert.Equal(t, 0, r.Len())
}
