package authapi

import (
	"context"
	"io"
)

// cancelOnClose releases the per-call deadline once the body is closed
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
