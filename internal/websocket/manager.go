// Package websocket manages live browser connections. Each connection gets
// its own Session that receives the client's messages; the manager owns the
// connection lifecycle, the write pump and broadcasting.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/conneroisu/folio/internal/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Period between pings. A failed ping ends the connection.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 16 << 10

	// Outbound messages buffered per client.
	sendBuffer = 64
)

// OriginValidator decides whether a connection's Origin header is allowed.
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// OriginFunc adapts a function to OriginValidator.
type OriginFunc func(origin string) bool

func (f OriginFunc) IsAllowedOrigin(origin string) bool { return f(origin) }

// Session handles the messages of one connection. HandleMessage is called
// from the connection's read loop, one message at a time. Close is called
// once after the read loop ends and ctx is cancelled; the session must not
// send on the client after Close returns.
type Session interface {
	HandleMessage(ctx context.Context, data []byte)
	Close()
}

// SessionFactory creates the session for a new client.
type SessionFactory func(ctx context.Context, client *Client) Session

// Manager accepts connections and tracks the connected clients.
//
// Invariants:
// - clients map access always protected by clientsMutex
// - a client's send channel is closed exactly once, after its session closed
type Manager struct {
	clients      map[*Client]struct{}
	clientsMutex sync.RWMutex

	originValidator OriginValidator
	newSession      SessionFactory
	logger          logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// NewManager creates a manager. It panics if originValidator or newSession
// is nil.
func NewManager(originValidator OriginValidator, newSession SessionFactory, logger logging.Logger) *Manager {
	if originValidator == nil {
		panic("websocket.Manager: originValidator cannot be nil")
	}
	if newSession == nil {
		panic("websocket.Manager: newSession cannot be nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		clients:         make(map[*Client]struct{}),
		originValidator: originValidator,
		newSession:      newSession,
		logger:          logger.WithComponent("websocket"),
		ctx:             ctx,
		cancel:          cancel,
	}
}

// HandleWebSocket upgrades the request and serves the connection until the
// peer goes away or the manager shuts down.
//
// Security Responses:
// - 403 Forbidden: missing or disallowed origin
// - 503 Service Unavailable: manager already shut down
func (m *Manager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if m.ctx.Err() != nil {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" || !m.originValidator.IsAllowedOrigin(origin) {
		m.logger.Warn(r.Context(), nil, "WebSocket connection rejected", "origin", origin)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origins are validated above.
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		m.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(m.ctx)
	defer cancel()

	client := &Client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: m.logger,
	}
	client.logger = m.logger.With("client_id", client.id)

	m.registerClient(client)
	defer m.unregisterClient(client)

	session := m.newSession(ctx, client)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		client.writePump(ctx, cancel)
	}()

	client.readPump(ctx, session)

	cancel()
	session.Close()
	client.close()
	<-writerDone
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	m.clients[client] = struct{}{}
	total := len(m.clients)
	m.clientsMutex.Unlock()

	client.logger.Debug(m.ctx, "WebSocket client connected", "total", total)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	delete(m.clients, client)
	total := len(m.clients)
	m.clientsMutex.Unlock()

	client.logger.Debug(m.ctx, "WebSocket client disconnected", "total", total)
}

// Broadcast sends v as JSON to every connected client. Clients whose buffer
// is full miss the message.
func (m *Manager) Broadcast(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.clientsMutex.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for c := range m.clients {
		clients = append(clients, c)
	}
	m.clientsMutex.RUnlock()

	for _, c := range clients {
		if err := c.enqueue(data); err != nil {
			c.logger.Warn(m.ctx, err, "Dropped broadcast message")
		}
	}
	return nil
}

// ConnectedClients returns the number of live connections.
func (m *Manager) ConnectedClients() int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()
	return len(m.clients)
}

// Shutdown cancels every connection. Handlers finish their own cleanup.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.shutdownOnce.Do(func() {
		m.cancel()
		m.logger.Info(ctx, "WebSocket manager shut down", "clients", m.ConnectedClients())
	})
	return nil
}
