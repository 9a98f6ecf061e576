package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer = 256
)

// Role of a connected client, fixed at upgrade time.
type Role string

const (
	RolePlayer Role = "player"
	RoleScreen Role = "screen"
	RoleAdmin  Role = "admin"
)

// EventSink receives everything read off a connection. Implemented by
// the game controller, which serializes all of it onto one loop.
type EventSink interface {
	HandleMessage(c *Client, raw []byte)
	HandleDisconnect(c *Client)
}

type Client struct {
	ID   string
	Role Role
	Conn *websocket.Conn
	Send chan []byte

	sink      EventSink
	closeOnce sync.Once
}

func NewClient(id string, role Role, conn *websocket.Conn) *Client {
	return &Client{
		ID:   id,
		Role: role,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

// Run starts the pumps and blocks until the connection is gone.
func (c *Client) Run(sink EventSink) {
	c.sink = sink
	go c.writePump()
	c.readPump()
}

//read
func (c *Client) readPump() {
	defer func() {
		c.sink.HandleDisconnect(c)
		c.CloseSend()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Client.readPump: conn=%s read error: %v", c.ID, err)
			}
			break
		}
		c.sink.HandleMessage(c, msg)
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Send closed: remaining queued messages were already
				// drained, say goodbye and drop the connection.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("Client.writePump: conn=%s write error: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseSend shuts the outbound queue exactly once. writePump flushes
// whatever is already queued before closing the socket, which is what
// lets an eviction notice reach the superseded connection first.
func (c *Client) CloseSend() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}
