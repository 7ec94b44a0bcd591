package ws

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pburman754/Project-ChatApp/internal/domain"
)

// Client wraps one websocket connection behind the presence.Conn contract.
// Send never blocks: when the buffer is full or the client is closing, the
// event is dropped and Send reports false.
type Client struct {
	id   string
	ws   *websocket.Conn
	send chan domain.Event
	done chan struct{}
	once sync.Once
	log  *zap.SugaredLogger
}

func NewClient(conn *websocket.Conn, log *zap.SugaredLogger) *Client {
	return &Client{
		id:   uuid.NewString(),
		ws:   conn,
		send: make(chan domain.Event, 256),
		done: make(chan struct{}),
		log:  log,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Send(ev domain.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// Close stops the write pump. Safe to call more than once; in-flight
// publishes that still hold this connection simply see Send return false.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) writePump(pingInterval, writeDeadline time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
			return
		case ev := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteJSON(ev); err != nil {
				c.log.Warnw("write failed", "conn", c.id, "err", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}
