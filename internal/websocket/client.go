package websocket

import (
	"github.com/gorilla/websocket"
)

// Ile zdarzeń może czekać w kolejce na pojedyncze połączenie, zanim
// zaczniemy je gubić.
const sendBufferSize = 256

// Client is one upgraded connection. The protocol is one-directional:
// the server pushes events, the browser sends nothing meaningful back.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	UserID int64
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		UserID: userID,
	}
}

// ReadPump drains incoming frames until the peer goes away, then
// unregisters the client. Frame contents are ignored; reading is only
// how gorilla surfaces close and ping frames.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WritePump forwards queued events to the connection. A closed send
// channel means the hub dropped us, so we say goodbye cleanly.
func (c *Client) WritePump() {
	defer c.conn.Close()
	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
