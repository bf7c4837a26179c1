package live

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/logging"
)

// ErrClosed is returned for requests sent after the connection ended.
var ErrClosed = errors.New("live connection closed")

// ResolveURL returns the websocket URL of path as seen from the page at
// pageURL. http pages use ws and https pages use wss.
func ResolveURL(pageURL, path string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse live path: %w", err)
	}

	u := base.ResolveReference(ref)
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("live path %q: unsupported scheme %q", path, u.Scheme)
	}
	u.Fragment = ""
	return u.String(), nil
}

// Client is the page end of a live connection.
type Client struct {
	conn   *websocket.Conn
	logger logging.Logger
	done   chan struct{}
}

// Dial opens a live connection to target. opts may be nil; browsers
// supply the Origin header themselves.
func Dial(ctx context.Context, target string, opts *websocket.DialOptions, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	conn, _, err := websocket.Dial(ctx, target, opts)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{
		conn:   conn,
		logger: logger.WithComponent("live"),
		done:   make(chan struct{}),
	}, nil
}

// Run reads messages and hands each to handle until the connection ends.
// A normal closure returns nil.
func (c *Client) Run(ctx context.Context, handle func(Message)) error {
	defer close(c.done)
	for {
		var m Message
		if err := wsjson.Read(ctx, c.conn, &m); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return err
		}
		c.logger.Debug(ctx, "Live message", "op", m.Op)
		handle(m)
	}
}

// Submit asks the server to run one attempt with fields. The UI operations
// and the outcome arrive through Run.
func (c *Client) Submit(ctx context.Context, fields contact.Fields) error {
	return c.send(ctx, Request{Type: MsgSubmit, Fields: fields})
}

func (c *Client) send(ctx context.Context, req Request) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	return wsjson.Write(ctx, c.conn, req)
}

// Close ends the connection with a normal closure.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
