// README: WebSocket client pumps and the gin upgrade handler.
package dispatch

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	readLimit    = 64 * 1024
	egressBuffer = 32
)

// wsConn is the slice of *websocket.Conn the client uses, kept narrow so
// tests can run the pumps against an in-memory connection.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	Close() error
}

// Client owns one dispatch connection. The read pump hands frames to the
// hub; the write pump drains the egress queue. send never blocks: when
// the queue is full the frame is dropped.
type Client struct {
	conn     wsConn
	hub      *Hub
	egress   chan []byte
	done     chan struct{}
	stopOnce sync.Once
	log      *slog.Logger
}

func newClient(conn wsConn, hub *Hub, log *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		egress: make(chan []byte, egressBuffer),
		done:   make(chan struct{}),
		log:    log,
	}
}

func (c *Client) send(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error("marshal outbound frame", "err", err)
		return false
	}
	// Checked before enqueueing so a closed client never reports delivery,
	// even while the egress buffer still has room.
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.egress <- data:
		return true
	case <-c.done:
		return false
	default:
		c.log.Warn("egress queue full, dropping frame")
		return false
	}
}

// close is safe to call from any goroutine, any number of times: the hub
// may evict a stale connection while its own pumps are tearing it down.
func (c *Client) close() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()
	c.conn.SetReadLimit(readLimit)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("dispatch connection dropped", "err", err)
			}
			return
		}
		c.hub.HandleMessage(c, payload)
	}
}

func (c *Client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.egress:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from a separate frontend origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Serve upgrades the request and runs the connection until either side
// closes it.
func Serve(hub *Hub, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "err", err)
			return
		}
		client := newClient(conn, hub, log)
		go client.writePump()
		client.readPump()
	}
}
