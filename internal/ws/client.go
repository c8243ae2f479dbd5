package ws

import (
	"context"
	"encoding/json"

	"github.com/gofiber/websocket/v2"
)

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	session  *Session
	username string
	send     chan []byte
}

// ReadPump decodes inbound envelopes and runs them through the session.
// Responses go through the send channel so WritePump stays the only
// writer on the connection.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var in Inbound
		if err := json.Unmarshal(message, &in); err != nil {
			c.reply(newEvent(EventError, ErrorPayload{
				Code:    "BAD_ENVELOPE",
				Message: "Message is not a valid event envelope",
			}))
			continue
		}

		for _, out := range c.session.Handle(ctx, in) {
			c.reply(out)
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *Client) reply(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}
