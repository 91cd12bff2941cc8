package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before dropping the peer.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = 45 * time.Second

	// maxFrameSize bounds an inbound frame.
	maxFrameSize = 1 << 20

	sendBuffer = 128
)

// Client wraps one websocket connection. All writes to the peer funnel
// through the send channel and a single write loop; Send and Close are safe
// from any goroutine.
type Client struct {
	ID   string
	conn *websocket.Conn

	send   chan []byte
	once   sync.Once
	closed chan struct{}

	closeCode int
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
	}
}

// Start launches the write loop. Call exactly once, before Send.
func (c *Client) Start() {
	go c.writeLoop()
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.shutdown()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}
		case <-c.closed:
			if c.closeCode != 0 {
				msg := websocket.FormatCloseMessage(c.closeCode, "")
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
			}
			_ = c.conn.Close()
			return
		}
	}
}

// Send queues a message for delivery. A peer that cannot drain its buffer is
// disconnected rather than allowed to stall everyone else.
func (c *Client) Send(msg []byte) error {
	select {
	case <-c.closed:
		return websocket.ErrCloseSent
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		log.Warn().Str("clientId", c.ID).Msg("send buffer full, dropping connection")
		c.shutdown()
		return websocket.ErrCloseSent
	}
}

// Close hands a close frame to the write loop and tears the connection
// down. Safe to call more than once; requires Start to have run.
func (c *Client) Close(code int, reason string) {
	c.once.Do(func() {
		c.closeCode = code
		close(c.closed)
	})
}

// shutdown drops the connection without a close frame, for peers that are
// already gone or too slow to matter.
func (c *Client) shutdown() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}
