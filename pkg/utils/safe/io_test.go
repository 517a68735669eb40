package safe_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/vlah-sh/mosaic/pkg/utils/safe"
)

type errCloser struct {
	closed bool
}

func (c *errCloser) Close() error {
	c.closed = true
	return goerr.New("close failed")
}

func TestClose(t *testing.T) {
	t.Run("nil closer is a no-op", func(t *testing.T) {
		safe.Close(context.Background(), nil)
	})

	t.Run("close error does not propagate", func(t *testing.T) {
		c := &errCloser{}
		safe.Close(context.Background(), c)
		gt.True(t, c.closed)
	})
}

func TestWrite(t *testing.T) {
	t.Run("nil writer is a no-op", func(t *testing.T) {
		safe.Write(context.Background(), nil, []byte("data"))
	})

	t.Run("writes payload", func(t *testing.T) {
		var buf bytes.Buffer
		safe.Write(context.Background(), &buf, []byte("data"))
		gt.Value(t, buf.String()).Equal("data")
	})
}
