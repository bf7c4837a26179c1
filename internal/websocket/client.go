package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/folio/internal/logging"
)

// Send errors.
var (
	ErrClientClosed   = errors.New("websocket client closed")
	ErrSendBufferFull = errors.New("websocket send buffer full")
)

// Client is one browser connection.
type Client struct {
	id     string
	conn   *websocket.Conn
	logger logging.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// ID returns the connection id used in logs.
func (c *Client) ID() string { return c.id }

// Send queues v as a JSON text message. It never blocks.
func (c *Client) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *Client) enqueue(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump(ctx context.Context, session Session) {
	for {
		_, message, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				c.logger.Debug(ctx, "WebSocket read ended", "error", err.Error())
			}
			return
		}
		session.HandleMessage(ctx, message)
	}
}

// writePump drains the send channel. A write or ping failure cancels the
// connection so the read loop ends too.
func (c *Client) writePump(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, message)
			wcancel()
			if err != nil {
				c.logger.Debug(ctx, "WebSocket write failed", "error", err.Error())
				cancel()
				return
			}

		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			pcancel()
			if err != nil {
				c.logger.Debug(ctx, "WebSocket ping failed", "error", err.Error())
				cancel()
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
