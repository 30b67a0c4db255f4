// internal/hub/client.go
package hub

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrClientClosed   = errors.New("client closed")
)

// Conn is a live bidirectional channel to one client as seen by the hub.
// The ID is for logging only.
type Conn interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Client is a websocket connection. Send only enqueues; WritePump does the I/O.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, bufferSize int) *Client {
	return &Client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, bufferSize),
	}
}

func (c *Client) ID() string { return c.id }

// Send queues data for the write pump. It never blocks: a full buffer means
// the client is too slow and is reported as a failure.
func (c *Client) Send(data []byte) error {
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

// Close stops the write pump, which sends a close frame and closes the socket.
// Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return nil
}
