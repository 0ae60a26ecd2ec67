package channel

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// DefaultReadLimit caps a single inbound message.
const DefaultReadLimit int64 = 1 << 20

// WebsocketDialer dials the backend's websocket endpoint.
type WebsocketDialer struct {
	// Timeout bounds the opening handshake. Zero means no limit beyond ctx.
	Timeout time.Duration
	// ReadLimit caps inbound message size. Zero means DefaultReadLimit.
	ReadLimit int64
	// HTTPClient is used for the handshake. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Dial opens a websocket connection to url.
func (d WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	c, _, err := websocket.Dial(dialCtx, url, &websocket.DialOptions{HTTPClient: d.HTTPClient})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	limit := d.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	c.SetReadLimit(limit)
	return &wsConn{c: c}, nil
}

type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := w.c.Read(ctx)
	return data, err
}

func (w *wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "")
}
