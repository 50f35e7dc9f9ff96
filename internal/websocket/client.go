package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize    = 16
	keepAliveInterval = 30 * time.Second
)

// Client is one dashboard connection, pinned to the shop it was watching
// when it connected. The socket is broadcast-only; inbound frames are
// discarded.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	shopID int64
	send   chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, shopID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		shopID: shopID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Run registers the client and drains its send queue onto the socket
// until the connection drops, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	// CloseRead discards inbound frames and cancels the context when the
	// peer goes away.
	ctx = c.conn.CloseRead(ctx)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
