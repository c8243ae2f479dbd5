package ws

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/saturnino-fabrica-de-software/shield/internal/api/middleware"
)

// Handler upgrades an authenticated request into a protocol session.
// Auth middleware must have run already; a connection without a
// username in locals is closed immediately.
func Handler(hub *Hub, deps SessionDeps) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		usernameValue := c.Locals(middleware.LocalUsername)
		username, ok := usernameValue.(string)
		if !ok || username == "" {
			_ = c.Close()
			return
		}

		client := &Client{
			hub:      hub,
			conn:     c,
			session:  NewSession(deps, username),
			username: username,
			send:     make(chan []byte, 256),
		}

		hub.register <- client

		go client.WritePump()
		client.ReadPump(context.Background())
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
