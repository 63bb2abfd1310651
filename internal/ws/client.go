package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Envelope is the wire frame for every websocket message, inbound and
// outbound: an event name plus an event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Sender is the outbound half of a connection. Handlers and the broadcast
// router depend on this rather than on the concrete client so tests can
// substitute a recording fake.
type Sender interface {
	ID() string
	Send(event string, data any) error
}

// Client wraps a websocket connection with a stable connection id and a
// write mutex. gorilla/websocket permits only one concurrent writer, and
// broadcasts fan out from whichever goroutine is handling the triggering
// event.
type Client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewClient wraps an upgraded connection and assigns it a connection id.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.New().String(),
		conn: conn,
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// Send marshals data and writes it as an event envelope.
func (c *Client) Send(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(Envelope{Event: event, Data: raw})
}

// ReadRaw blocks until the next inbound frame and returns its bytes. A
// non-nil error means the connection is gone.
func (c *Client) ReadRaw() ([]byte, error) {
	_, raw, err := c.conn.ReadMessage()
	return raw, err
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
