package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	defaultSendBufferSize = 256
	defaultMaxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin browsers are expected; the demo client is served
		// from the same process but nothing depends on that.
		return true
	},
}

// Options tune per-connection buffers.
type Options struct {
	SendBufferSize int
	MaxMessageSize int64
}

func (o Options) withDefaults() Options {
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = defaultSendBufferSize
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = defaultMaxMessageSize
	}
	return o
}

// Client owns one live transport session. Its lifetime is driven by two
// goroutines: a read pump that feeds inbound frames to the handler and a
// write pump that drains the outbound queue onto the wire. Whichever pump
// exits first triggers teardown; teardown runs exactly once no matter how
// many paths race into it.
type Client struct {
	id   string
	conn *websocket.Conn

	// send is the outbound queue. It is never closed; enqueue and the
	// write pump both watch done instead, so a racing delivery can never
	// panic on a closed channel.
	send chan []byte
	done chan struct{}

	registry *Registry
	handler  *Handler

	mu     sync.RWMutex
	topics map[string]bool

	maxMessageSize int64
	teardownOnce   sync.Once
}

func NewClient(registry *Registry, handler *Handler, conn *websocket.Conn, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		id:             uuid.NewString(),
		conn:           conn,
		send:           make(chan []byte, opts.SendBufferSize),
		done:           make(chan struct{}),
		registry:       registry,
		handler:        handler,
		topics:         make(map[string]bool),
		maxMessageSize: opts.MaxMessageSize,
	}
}

func (c *Client) ID() string {
	return c.id
}

// AddTopic subscribes the connection to a topic. No request kind drives
// this yet; the relay and router only consume the membership.
func (c *Client) AddTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic] = true
}

func (c *Client) RemoveTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics, topic)
}

func (c *Client) HasTopic(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

func (c *Client) Topics() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	topics := make([]string, 0, len(c.topics))
	for topic := range c.topics {
		topics = append(topics, topic)
	}
	return topics
}

// enqueue offers one serialized message to the outbound queue without
// blocking. It reports false when the client is shutting down or the
// queue is full; the caller drops that single delivery.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close tears the connection down. Safe to call from any goroutine and
// any number of times.
func (c *Client) Close() {
	c.teardown()
}

func (c *Client) teardown() {
	c.teardownOnce.Do(func() {
		c.registry.Remove(c.id)
		close(c.done)
		c.conn.Close()
		slog.Info("Client disconnected", "clientID", c.id)
	})
}

// readPump pulls inbound frames off the transport and dispatches them in
// arrival order. A read error ends the connection; a malformed frame is
// logged and skipped.
func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(c.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket read error", "clientID", c.id, "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "clientID", c.id, "error", err)
			}
			return
		}

		req, err := ParseRequest(data)
		if err != nil {
			slog.Warn("Dropping bad frame", "clientID", c.id, "error", err)
			continue
		}

		c.handler.Handle(context.Background(), c.id, req)
	}
}

// writePump forwards the outbound queue to the transport and keeps the
// connection alive with pings. A write error ends the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("WebSocket write error", "clientID", c.id, "error", err)
				c.teardown()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("Ping failed", "clientID", c.id, "error", err)
				c.teardown()
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// ServeWS upgrades an HTTP request, registers the resulting connection and
// starts its pumps.
func ServeWS(registry *Registry, handler *Handler, opts Options, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := NewClient(registry, handler, conn, opts)
	registry.Insert(client)
	slog.Info("Client connected", "clientID", client.id, "remote", r.RemoteAddr)

	go client.writePump()
	go client.readPump()
}
