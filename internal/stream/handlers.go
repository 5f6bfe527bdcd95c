package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Snapshotter returns the payload a newly connected client should see
// before any broadcast, if the topic has one.
type Snapshotter func(topic string) ([]byte, bool)

func RegisterRoutes(r fiber.Router, hub *Hub, current Snapshotter) {
	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	r.Get("/ws/:topic", websocket.New(func(c *websocket.Conn) {
		topic := c.Params("topic")
		client := hub.Register(topic)
		defer hub.Unregister(client)

		if current != nil {
			if payload, ok := current(topic); ok {
				if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(client)
		<-done
	}))
}
