package ws

import (
	"sync"
	"time"

	"tap_duel/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer  = 256
	readLimit   = 64 * 1024
	enqueueWait = time.Second
)

// Client is one browser connection. It owns the socket pumps; everything it
// reads is handed to its Session.
type Client struct {
	DeviceID string
	Conn     *websocket.Conn
	Send     chan []byte
	Done     chan struct{} // closed when the read side ends

	quit      chan struct{}
	closeOnce sync.Once
}

func NewClient(deviceID string, conn *websocket.Conn) *Client {
	return &Client{
		DeviceID: deviceID,
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		Done:     make(chan struct{}),
		quit:     make(chan struct{}),
	}
}

// Run starts the writer and blocks reading until the connection drops.
func (c *Client) Run(s *Session) {
	go c.writePump()
	c.readPump(s)
}

func (c *Client) readPump(s *Session) {
	defer func() {
		close(c.Done)
		s.Close()
		c.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "device_id", c.DeviceID, "error", err)
			}
			return
		}
		s.HandleMessage(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Warn("ws write error", "device_id", c.DeviceID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.quit:
			c.flush()
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes whatever is still queued before a close.
func (c *Client) flush() {
	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

// Enqueue queues msg for the writer. Droppable messages are discarded when
// the buffer is full; others wait up to enqueueWait.
func (c *Client) Enqueue(msg []byte, droppable bool) bool {
	select {
	case c.Send <- msg:
		return true
	case <-c.quit:
		return false
	default:
	}
	if droppable {
		return false
	}

	t := time.NewTimer(enqueueWait)
	defer t.Stop()
	select {
	case c.Send <- msg:
		return true
	case <-c.quit:
		return false
	case <-t.C:
		logger.Warn("ws send buffer full", "device_id", c.DeviceID)
		return false
	}
}

// Close asks the writer to send a close frame and stop. Safe to call twice.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.quit) })
}
