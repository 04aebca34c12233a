package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	apperrors "github.com/manmad-web/sfubot/internal/errors"
	"github.com/manmad-web/sfubot/internal/logger"
	"github.com/manmad-web/sfubot/internal/ratelimit"
)

const (
	// writeWait is the deadline for a single write.
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before dropping the peer.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames.
	maxMessageSize = 4096

	// sendBufferSize is the outbound queue per connection. A peer that
	// cannot drain it gets disconnected.
	sendBufferSize = 256
)

// Conn wraps one WebSocket connection with a buffered outbound queue.
// It implements rooms.Client.
type Conn struct {
	ws      *websocket.Conn
	send    chan []byte
	limiter *ratelimit.Limiter
	log     *logger.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func newConn(ws *websocket.Conn, limiter *ratelimit.Limiter, log *logger.Logger) *Conn {
	return &Conn{
		ws:      ws,
		send:    make(chan []byte, sendBufferSize),
		limiter: limiter,
		log:     log,
		closed:  make(chan struct{}),
	}
}

// Send marshals the event and queues it for delivery. A full queue means
// the peer stopped reading; the connection is closed rather than blocking
// everyone behind it.
func (c *Conn) Send(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		c.log.WithError(err).Error("marshal outbound event")
		return
	}

	select {
	case <-c.closed:
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, closing connection")
		c.close()
	}
}

// allowMessage consumes one token from the connection's bucket.
func (c *Conn) allowMessage() error {
	if !c.limiter.Allow() {
		return apperrors.Wrap("ws", "dispatch", apperrors.ErrRateLimitExceeded,
			"Rate limit exceeded. Please slow down.")
	}
	return nil
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.ws.Close()
	})
}

// readPump reads inbound frames and dispatches them until the peer goes
// away. Runs on its own goroutine; cleanup fires on exit.
func (c *Conn) readPump(dispatch func(*Conn, []byte), cleanup func(*Conn)) {
	defer func() {
		cleanup(c)
		c.close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Debug("websocket read failed")
			}
			return
		}
		dispatch(c, data)
	}
}

// writePump drains the send queue and keeps the peer alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
