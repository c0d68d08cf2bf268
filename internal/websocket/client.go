package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one connection, subscribed to a single relationship's events.
type Client struct {
	hub            *Hub
	conn           *ws.Conn
	relationshipID int64
	send           chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, relationshipID int64) *Client {
	return &Client{
		hub:            hub,
		conn:           conn,
		relationshipID: relationshipID,
		send:           make(chan []byte, sendBufferSize),
	}
}

// Serve joins the relationship's room and forwards events until the peer
// goes away or ctx is cancelled. Inbound frames are discarded.
func (c *Client) Serve(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx = c.conn.CloseRead(ctx)
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(ws.StatusGoingAway, "hub closed")
				return
			}
			if err := c.write(ctx, msg); err != nil {
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
